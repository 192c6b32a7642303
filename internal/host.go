package internal

import (
	"context"
	"net/http"
)

// Renderer renders a named template with locals into HTML.
type Renderer interface {
	Render(ctx context.Context, name string, locals Locals) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, name string, locals Locals) (string, error)

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, name string, locals Locals) (string, error) {
	return f(ctx, name, locals)
}

// Host is an application that renders templates and accepts middleware.
// Middleware must run before route handlers.
// Hosts are tracked by identity, so implementations must be comparable
// (pointer receivers are the norm).
type Host interface {
	Renderer
	Use(middlewares ...func(http.Handler) http.Handler)
}

// MapRenderer renders templates from plain maps, like the view package renderers.
type MapRenderer interface {
	Render(ctx context.Context, name string, locals map[string]any) (string, error)
}

// AdaptRenderer turns a MapRenderer into a Renderer.
func AdaptRenderer(r MapRenderer) Renderer {
	return RendererFunc(func(ctx context.Context, name string, locals Locals) (string, error) {
		return r.Render(ctx, name, locals)
	})
}
