// Package resend implements a transport.Transport on top of the Resend HTTP API.
package resend

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/forgemail/pkg/transport"
)

// Sender implements transport.Transport using the Resend API.
// The SMTP envelope override is not supported by the API and is ignored.
type Sender struct {
	client *resend.Client
}

// New creates a Resend sender. Settings.APIKey is required;
// Settings.Endpoint overrides the API base URL.
func New(s transport.Settings) (*Sender, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("%w: resend api key is required", transport.ErrInvalidSettings)
	}

	client := resend.NewClient(s.APIKey)
	if s.Endpoint != "" {
		endpoint := s.Endpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("%w: resend endpoint: %v", transport.ErrInvalidSettings, err)
		}
		client.BaseURL = u
	}

	return &Sender{client: client}, nil
}

// Send implements transport.Transport.
func (s *Sender) Send(ctx context.Context, msg *transport.Message) (*transport.Result, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	req := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.PlainText(),
		ReplyTo: msg.ReplyTo,
		Cc:      msg.CC,
		Bcc:     msg.BCC,
		Headers: headers(msg),
	}

	if len(msg.Attachments) > 0 {
		req.Attachments = convertAttachments(msg.Attachments)
	}

	resp, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("resend: failed to send email: %w", err)
	}

	return &transport.Result{
		MessageID: resp.Id,
		Accepted:  msg.EnvelopeTo(),
	}, nil
}

// Close implements transport.Transport. The HTTP client holds no state to release.
func (s *Sender) Close() error {
	return nil
}

func headers(msg *transport.Message) map[string]string {
	custom := msg.CustomHeaders()
	if len(custom) == 0 && msg.InReplyTo == "" && len(msg.References) == 0 && msg.MessageID == "" {
		return nil
	}

	h := make(map[string]string, len(custom)+3)
	for k, v := range custom {
		h[k] = v
	}
	if msg.InReplyTo != "" {
		h["In-Reply-To"] = msg.InReplyTo
	}
	if len(msg.References) > 0 {
		h["References"] = strings.Join(msg.References, " ")
	}
	if msg.MessageID != "" {
		h["Message-ID"] = msg.MessageID
	}
	return h
}

func convertAttachments(attachments []transport.Attachment) []*resend.Attachment {
	result := make([]*resend.Attachment, len(attachments))
	for i, a := range attachments {
		result[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		}
	}
	return result
}
