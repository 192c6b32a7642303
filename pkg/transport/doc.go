// Package transport delivers composed email messages.
//
// A Transport is a reusable handle created once from Settings and shared by
// every caller until it is closed. Three kinds ship with the package family:
//
//   - smtp: delivers over SMTP using gopkg.in/mail.v2, reusing idle connections
//   - stub: composes the full MIME message and returns it without delivery
//   - resend: delivers through the Resend HTTP API (see the resend sub-package)
//
// # Messages
//
// Message carries the envelope fields (From, To, CC, BCC, ReplyTo, Subject,
// InReplyTo, References), the HTML body, an optional plain text body and
// attachments. When GenerateTextFromHTML is set and Text is empty, the plain
// text alternative is derived from HTML:
//
//	msg := &transport.Message{
//		From:                 "app@example.com",
//		To:                   []string{"user@example.com"},
//		Subject:              "Welcome",
//		HTML:                 "<p>Hello!</p>",
//		GenerateTextFromHTML: true,
//	}
//
//	t := transport.NewStub()
//	res, err := t.Send(ctx, msg)
//	// res.Message holds the RFC 5322 message text
//
// # SMTP envelope
//
// Envelope overrides the SMTP MAIL FROM / RCPT TO addresses. Without it the
// envelope is derived from From and the union of To, CC and BCC.
//
// # Errors
//
//   - ErrUnknownKind: no transport registered for the requested kind
//   - ErrInvalidSettings: settings cannot produce a transport
//   - ErrNoSender: message has no sender
//   - ErrNoRecipients: message has no recipients
//   - ErrClosed: transport was closed
package transport
