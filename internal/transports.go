package internal

import (
	"github.com/dmitrymomot/forgemail/pkg/transport"
	"github.com/dmitrymomot/forgemail/pkg/transport/resend"
)

// DefaultTransportFactory creates smtp, stub and resend transports.
func DefaultTransportFactory(kind string, s transport.Settings) (transport.Transport, error) {
	if transport.NormalizeKind(kind) == transport.KindResend {
		sender, err := resend.New(s)
		if err != nil {
			return nil, err
		}
		return sender, nil
	}
	return transport.New(kind, s)
}
