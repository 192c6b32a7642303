package internal

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/forgemail/pkg/transport"
)

// Options is the transport configuration of a Mailer.
// Embed this in your app config for env parsing with caarlos0/env.
type Options struct {
	Settings  transport.Settings
	From      string `env:"MAILER_FROM"`
	Transport string `env:"MAILER_TRANSPORT" envDefault:"smtp"`
}

func (o Options) validate() error {
	if o.From == "" {
		return errors.Join(ErrInvalidOptions, transport.ErrNoSender)
	}
	return nil
}

func (o Options) normalized() Options {
	o.Transport = transport.NormalizeKind(o.Transport)
	return o
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithLogger sets the logger used for render, delivery and update events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithTransportFactory replaces the factory that creates live and stub transports.
func WithTransportFactory(f transport.Factory) Option {
	return func(m *Mailer) {
		if f != nil {
			m.factory = f
		}
	}
}

// WithRequestRenderer derives the renderer used by request scopes.
// By default scopes render through the host.
//
// Example:
//
//	forgemail.WithRequestRenderer(func(r *http.Request) forgemail.Renderer {
//	    return themes.ForHost(r.Host)
//	})
func WithRequestRenderer(fn func(r *http.Request) Renderer) Option {
	return func(m *Mailer) {
		m.requestRenderer = fn
	}
}
