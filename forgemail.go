package forgemail

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/forgemail/internal"
	"github.com/dmitrymomot/forgemail/pkg/transport"
)

// Type aliases - public API
type (
	// Mailer renders templates through its host and delivers them as email.
	Mailer = internal.Mailer

	// Scope is the mailer bound to a single request.
	Scope = internal.Scope

	// Host is an application that renders templates and accepts middleware.
	Host = internal.Host

	// Renderer renders a named template with locals into HTML.
	Renderer = internal.Renderer

	// RendererFunc adapts a function to Renderer.
	RendererFunc = internal.RendererFunc

	// MapRenderer renders templates from plain maps.
	MapRenderer = internal.MapRenderer

	// App is a Host backed by a chi router.
	App = internal.App

	// Options is the transport configuration of a Mailer.
	Options = internal.Options

	// Option configures a Mailer.
	Option = internal.Option

	// Request identifies the template to render and optional overrides.
	Request = internal.Request

	// ByTemplateName renders the named template with no overrides.
	ByTemplateName = internal.ByTemplateName

	// WithOverrides renders a template and applies explicit envelope fields.
	WithOverrides = internal.WithOverrides

	// Fields are explicit envelope values for a single send.
	Fields = internal.Fields

	// Locals holds template variables.
	Locals = internal.Locals

	// Settings holds transport-specific configuration.
	Settings = transport.Settings

	// Attachment represents an email attachment.
	Attachment = transport.Attachment

	// Envelope overrides the SMTP envelope addresses.
	Envelope = transport.Envelope
)

// Errors
var (
	ErrAlreadyExtended = internal.ErrAlreadyExtended
	ErrInvalidOptions  = internal.ErrInvalidOptions
	ErrNoTemplate      = internal.ErrNoTemplate
	ErrRenderFailed    = internal.ErrRenderFailed
	ErrSendFailed      = internal.ErrSendFailed
	ErrComposeFailed   = internal.ErrComposeFailed
	ErrCloseFailed     = internal.ErrCloseFailed
	ErrNoTransport     = internal.ErrNoTransport
	ErrClosed          = internal.ErrClosed
)

// Extend attaches a mailer to host and registers its per-request middleware.
// Extending the same host twice returns ErrAlreadyExtended.
//
// Example:
//
//	app := forgemail.NewApp(chi.NewRouter(), forgemail.AdaptRenderer(view.NewMarkdown(emails.FS)))
//	m, err := forgemail.Extend(app, forgemail.Options{
//	    From:      "team@example.com",
//	    Transport: "smtp",
//	    Settings:  forgemail.Settings{Host: "smtp.example.com", Port: 587},
//	})
func Extend(host Host, opts Options, options ...Option) (*Mailer, error) {
	return internal.Extend(host, opts, options...)
}

// MustExtend is like Extend but panics on error.
// Use it during application setup where a duplicate extension is a bug.
func MustExtend(host Host, opts Options, options ...Option) *Mailer {
	return internal.MustExtend(host, opts, options...)
}

// NewApp creates a chi-backed Host. A nil router gets chi.NewRouter().
func NewApp(router chi.Router, renderer Renderer) *App {
	return internal.NewApp(router, renderer)
}

// AdaptRenderer turns a map-based renderer, such as view.Markdown, into a Renderer.
func AdaptRenderer(r MapRenderer) Renderer {
	return internal.AdaptRenderer(r)
}

// Template references a template by name.
//
//	m.Send(ctx, forgemail.Template("welcome"), forgemail.Locals{"to": "user@example.com"})
func Template(name string) Request {
	return internal.ByTemplateName(name)
}

// Override references a template and sets explicit envelope fields that win
// over locals and defaults.
//
//	m.Send(ctx, forgemail.Override("welcome", forgemail.Fields{
//	    To:      []string{"user@example.com"},
//	    Subject: "Welcome aboard",
//	}), locals)
func Override(name string, fields Fields) Request {
	return internal.WithOverrides{Template: name, Fields: fields}
}

// FromContext returns the request Scope set by the mailer middleware.
func FromContext(ctx context.Context) (*Scope, bool) {
	return internal.FromContext(ctx)
}

// FromRequest returns the request Scope set by the mailer middleware.
func FromRequest(r *http.Request) (*Scope, bool) {
	return internal.FromContext(r.Context())
}

// SetLocal sets a request local for templates rendered through the request Scope.
// It is a no-op when the mailer middleware did not run.
func SetLocal(r *http.Request, key string, value any) {
	if s, ok := internal.FromContext(r.Context()); ok {
		s.SetLocal(key, value)
	}
}
