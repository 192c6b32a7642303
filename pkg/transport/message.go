package transport

import (
	"net/mail"
	"net/textproto"
	"strings"

	"github.com/dmitrymomot/forgemail/pkg/sanitizer"
)

// Message is a fully merged email ready for a transport.
type Message struct {
	Headers              map[string]string // Custom headers
	Envelope             *Envelope         // SMTP envelope override
	From                 string            // Sender address
	ReplyTo              string            // Reply-to address
	Subject              string            // Email subject
	HTML                 string            // HTML body content
	Text                 string            // Plain text alternative
	InReplyTo            string            // In-Reply-To header
	MessageID            string            // Message-ID header, generated when empty
	To                   []string          // Recipients
	CC                   []string          // Carbon copy recipients
	BCC                  []string          // Blind carbon copy recipients
	References           []string          // References header
	Attachments          []Attachment      // File attachments
	GenerateTextFromHTML bool              // Derive Text from HTML when Text is empty
}

// Envelope overrides the SMTP envelope addresses.
type Envelope struct {
	From string
	To   []string
}

// Attachment represents an email attachment.
type Attachment struct {
	Filename    string // Display name for the attachment
	ContentType string // MIME type (e.g., "application/pdf")
	ContentID   string // Optional Content-ID for inline attachments
	Content     []byte // Raw file content
}

// PlainText returns Text, or text derived from HTML when allowed.
func (m *Message) PlainText() string {
	if m.Text != "" || !m.GenerateTextFromHTML {
		return m.Text
	}
	return sanitizer.PlainText(m.HTML)
}

// EnvelopeFrom returns the bare MAIL FROM address.
func (m *Message) EnvelopeFrom() string {
	if m.Envelope != nil && m.Envelope.From != "" {
		return bareAddress(m.Envelope.From)
	}
	return bareAddress(m.From)
}

// EnvelopeTo returns the bare RCPT TO addresses.
func (m *Message) EnvelopeTo() []string {
	if m.Envelope != nil && len(m.Envelope.To) > 0 {
		return bareAddresses(m.Envelope.To)
	}

	all := make([]string, 0, len(m.To)+len(m.CC)+len(m.BCC))
	all = append(all, m.To...)
	all = append(all, m.CC...)
	all = append(all, m.BCC...)
	return bareAddresses(all)
}

// reservedHeaders are written from Message fields and cannot be set through Headers.
var reservedHeaders = map[string]struct{}{
	"From":                      {},
	"To":                        {},
	"Cc":                        {},
	"Bcc":                       {},
	"Reply-To":                  {},
	"Subject":                   {},
	"Date":                      {},
	"Message-Id":                {},
	"In-Reply-To":               {},
	"References":                {},
	"Mime-Version":              {},
	"Content-Type":              {},
	"Content-Transfer-Encoding": {},
}

// CustomHeaders returns Headers without the names that Message fields control.
func (m *Message) CustomHeaders() map[string]string {
	if len(m.Headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.Headers))
	for k, v := range m.Headers {
		if _, ok := reservedHeaders[textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(k))]; ok {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validate checks that the message can be delivered.
func (m *Message) Validate() error {
	if m.EnvelopeFrom() == "" {
		return ErrNoSender
	}
	if len(m.EnvelopeTo()) == 0 {
		return ErrNoRecipients
	}
	return nil
}

func bareAddresses(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		addr := bareAddress(s)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// bareAddress strips the display name from an RFC 5322 address.
// Unparseable input is returned trimmed so the server can reject it.
func bareAddress(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if a, err := mail.ParseAddress(s); err == nil {
		return a.Address
	}
	return s
}
