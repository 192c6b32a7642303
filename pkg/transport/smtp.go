package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"gopkg.in/mail.v2"
)

// SMTP delivers messages over SMTP and keeps idle connections for reuse.
// A connection that fails during a send is dropped; the send is not retried.
type SMTP struct {
	dialer *mail.Dialer
	pool   *connPool[mail.SendCloser]
}

// NewSMTP creates an SMTP transport. No connection is opened until the first send.
func NewSMTP(s Settings) (*SMTP, error) {
	if s.Host == "" {
		return nil, fmt.Errorf("%w: smtp host is required", ErrInvalidSettings)
	}

	port := s.Port
	if port == 0 {
		port = 587
		if s.Secure {
			port = 465
		}
	}

	d := mail.NewDialer(s.Host, port, s.Username, s.Password)
	if s.Secure {
		d.SSL = true
	}
	if s.Timeout > 0 {
		d.Timeout = s.Timeout
	}
	if s.LocalName != "" {
		d.LocalName = s.LocalName
	}
	if s.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{ServerName: s.Host, InsecureSkipVerify: true} //nolint:gosec // opt-in for dev servers
	}

	switch strings.ToLower(s.StartTLS) {
	case "", "opportunistic":
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	case "mandatory":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		return nil, fmt.Errorf("%w: unknown starttls policy %q", ErrInvalidSettings, s.StartTLS)
	}

	t := &SMTP{dialer: d}
	t.pool = newConnPool(s.MaxIdle, s.IdleTTL, d.Dial, func(c mail.SendCloser) error {
		return c.Close()
	})
	return t, nil
}

// Send implements Transport.
func (t *SMTP) Send(ctx context.Context, msg *Message) (*Result, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, messageID, err := Compose(msg)
	if err != nil {
		return nil, err
	}

	conn, err := t.pool.get()
	if err != nil {
		return nil, fmt.Errorf("smtp: failed to connect to %s:%d: %w", t.dialer.Host, t.dialer.Port, err)
	}

	to := msg.EnvelopeTo()
	if err := conn.Send(msg.EnvelopeFrom(), to, m); err != nil {
		t.pool.discard(conn)
		return nil, fmt.Errorf("smtp: failed to send message: %w", err)
	}
	t.pool.put(conn)

	return &Result{MessageID: messageID, Accepted: to}, nil
}

// Ping implements Pinger. It dials and authenticates a fresh connection
// and closes it; pooled connections are left alone.
func (t *SMTP) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := t.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp: failed to connect to %s:%d: %w", t.dialer.Host, t.dialer.Port, err)
	}
	return conn.Close()
}

// Close implements Transport. Idle connections are closed with QUIT.
func (t *SMTP) Close() error {
	if err := t.pool.closeAll(); err != nil {
		return fmt.Errorf("smtp: failed to close connection: %w", err)
	}
	return nil
}
