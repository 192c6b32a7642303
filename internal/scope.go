package internal

import (
	"context"
	"net/http"
	"sync"
)

// scopeKey is the context key for the request Scope.
type scopeKey struct{}

// Scope is the mailer bound to a single request. Send and Render render
// through the request renderer with request locals underneath call locals.
// Update is shared with the Mailer.
type Scope struct {
	mailer   *Mailer
	renderer Renderer
	locals   Locals
	mu       sync.RWMutex
}

// NewScope creates the Scope for r.
func (m *Mailer) NewScope(r *http.Request) *Scope {
	base := m.renderer
	if m.requestRenderer != nil && r != nil {
		if rr := m.requestRenderer(r); rr != nil {
			base = rr
		}
	}

	s := &Scope{mailer: m, locals: Locals{}}
	s.renderer = RendererFunc(func(ctx context.Context, name string, locals Locals) (string, error) {
		return base.Render(ctx, name, s.Locals().Merge(locals))
	})
	return s
}

// Send is Mailer.Send rendered in the request scope.
func (s *Scope) Send(ctx context.Context, req Request, locals Locals) error {
	return s.mailer.send(ctx, s.renderer, req, locals)
}

// Render is Mailer.Render rendered in the request scope.
func (s *Scope) Render(ctx context.Context, req Request, locals Locals) (string, error) {
	return s.mailer.render(ctx, s.renderer, req, locals)
}

// Update updates the shared Mailer; see Mailer.Update.
func (s *Scope) Update(ctx context.Context, opts Options) error {
	return s.mailer.Update(ctx, opts)
}

// Mailer returns the shared Mailer.
func (s *Scope) Mailer() *Mailer {
	return s.mailer
}

// SetLocal sets a request local available to every template rendered in this scope.
func (s *Scope) SetLocal(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locals[key] = value
}

// Locals returns a copy of the request locals.
func (s *Scope) Locals() Locals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Locals{}.Merge(s.locals)
}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the request Scope stored by the mailer middleware.
func FromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok && s != nil
}
