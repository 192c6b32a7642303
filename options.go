package forgemail

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/forgemail/internal"
	"github.com/dmitrymomot/forgemail/pkg/transport"
)

// WithLogger sets the logger used for render, delivery and update events.
// Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithTransportFactory replaces the factory creating live and stub transports.
// Defaults to DefaultTransportFactory.
func WithTransportFactory(f transport.Factory) Option {
	return internal.WithTransportFactory(f)
}

// WithRequestRenderer derives the renderer used by request scopes.
// Request locals are still merged under call locals.
func WithRequestRenderer(fn func(r *http.Request) Renderer) Option {
	return internal.WithRequestRenderer(fn)
}

// DefaultTransportFactory creates smtp, stub and resend transports.
func DefaultTransportFactory(kind string, s transport.Settings) (transport.Transport, error) {
	return internal.DefaultTransportFactory(kind, s)
}
