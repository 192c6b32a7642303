package internal

import (
	"github.com/dmitrymomot/forgemail/pkg/transport"
)

// Request identifies the template to render and optional envelope overrides.
// It is either ByTemplateName or WithOverrides.
type Request interface {
	resolve() (string, Fields)
}

// ByTemplateName renders the named template with no overrides.
type ByTemplateName string

func (r ByTemplateName) resolve() (string, Fields) {
	return string(r), Fields{}
}

// WithOverrides renders Template and applies Fields over Locals and defaults.
type WithOverrides struct {
	Template string
	Fields   Fields
}

func (r WithOverrides) resolve() (string, Fields) {
	return r.Template, r.Fields
}

// Fields are explicit envelope values for a single send.
// Zero values mean "not set".
type Fields struct {
	Headers     map[string]string
	Envelope    *transport.Envelope
	From        string
	ReplyTo     string
	Subject     string
	Body        string // alias of Text, used when Text resolves empty
	Text        string
	InReplyTo   string
	To          []string
	CC          []string
	BCC         []string
	References  []string
	Attachments []transport.Attachment
}

func resolveRequest(req Request) (string, Fields, error) {
	if req == nil {
		return "", Fields{}, ErrNoTemplate
	}
	name, fields := req.resolve()
	if name == "" {
		return "", Fields{}, ErrNoTemplate
	}
	return name, fields, nil
}

// buildMessage merges overrides, locals and the default sender around the
// rendered HTML. Each field resolves on its own; the text-from-HTML flag is
// always set.
func buildMessage(f Fields, locals Locals, defaultFrom, html string) *transport.Message {
	text := first(f.Text, locals.String(LocalText))
	if text == "" {
		text = first(f.Body, locals.String(LocalBody))
	}

	msg := &transport.Message{
		From:                 first(f.From, locals.String(LocalFrom), defaultFrom),
		To:                   firstList(f.To, locals.Addresses(LocalTo)),
		CC:                   firstList(f.CC, locals.Addresses(LocalCC)),
		BCC:                  firstList(f.BCC, locals.Addresses(LocalBCC)),
		ReplyTo:              first(f.ReplyTo, locals.String(LocalReplyTo)),
		Subject:              first(f.Subject, locals.String(LocalSubject)),
		Text:                 text,
		InReplyTo:            first(f.InReplyTo, locals.String(LocalInReplyTo)),
		References:           firstList(f.References, locals.List(LocalReferences)),
		Envelope:             f.Envelope,
		Attachments:          f.Attachments,
		Headers:              f.Headers,
		HTML:                 html,
		GenerateTextFromHTML: true,
	}

	if msg.Envelope == nil {
		msg.Envelope = locals.envelope()
	}
	if msg.Attachments == nil {
		msg.Attachments = locals.attachments()
	}
	if msg.Headers == nil {
		msg.Headers = locals.headers()
	}

	return msg
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstList(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}
