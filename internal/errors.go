package internal

import "errors"

var (
	// ErrAlreadyExtended indicates the host already carries a mailer.
	ErrAlreadyExtended = errors.New("host already has a mailer")

	// ErrInvalidOptions indicates the mailer options are unusable.
	ErrInvalidOptions = errors.New("invalid mailer options")

	// ErrNoTemplate indicates the request names no template.
	ErrNoTemplate = errors.New("template name is required")

	// ErrRenderFailed indicates the host failed to render the template.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrSendFailed indicates the live transport failed to deliver the message.
	ErrSendFailed = errors.New("failed to send email")

	// ErrComposeFailed indicates the stub transport failed to compose the message.
	ErrComposeFailed = errors.New("failed to compose email")

	// ErrCloseFailed indicates the outgoing transport failed to close during update.
	ErrCloseFailed = errors.New("failed to close transport")

	// ErrNoTransport indicates there is no live transport to deliver with.
	ErrNoTransport = errors.New("no live transport")

	// ErrClosed indicates the mailer was closed.
	ErrClosed = errors.New("mailer is closed")
)
