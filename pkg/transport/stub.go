package transport

import (
	"bytes"
	"context"
	"fmt"
)

// Stub composes messages without delivering them.
// Result.Message holds the composed RFC 5322 text.
type Stub struct{}

// NewStub creates a stub transport.
func NewStub() *Stub {
	return &Stub{}
}

// Send implements Transport.
func (s *Stub) Send(ctx context.Context, msg *Message) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, messageID, err := Compose(msg)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("stub: failed to write message: %w", err)
	}

	return &Result{
		MessageID: messageID,
		Message:   buf.String(),
		Accepted:  msg.EnvelopeTo(),
	}, nil
}

// Close implements Transport. It never fails.
func (s *Stub) Close() error {
	return nil
}
