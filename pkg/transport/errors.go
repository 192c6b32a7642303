package transport

import "errors"

var (
	// ErrUnknownKind indicates no transport exists for the requested kind.
	ErrUnknownKind = errors.New("unknown transport kind")

	// ErrInvalidSettings indicates the settings cannot produce a transport.
	ErrInvalidSettings = errors.New("invalid transport settings")

	// ErrNoSender indicates the message has no sender address.
	ErrNoSender = errors.New("message must have a sender")

	// ErrNoRecipients indicates the message has no recipients.
	ErrNoRecipients = errors.New("message must have at least one recipient")

	// ErrClosed indicates the transport was closed.
	ErrClosed = errors.New("transport is closed")
)
