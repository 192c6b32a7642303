package internal

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// errNoRenderer is returned by App.Render when no renderer is configured.
var errNoRenderer = errors.New("app has no renderer")

// App is a Host backed by a chi router.
//
// Extend the App before declaring routes; chi rejects middleware added
// after the first route.
//
// Example:
//
//	app := forgemail.NewApp(chi.NewRouter(), forgemail.AdaptRenderer(view.NewMarkdown(emails.FS)))
//	m := forgemail.MustExtend(app, forgemail.Options{From: "team@example.com"})
//	app.Router().Post("/invite", inviteHandler(m))
type App struct {
	router   chi.Router
	renderer Renderer
}

// NewApp creates an App. A nil router is replaced with chi.NewRouter().
func NewApp(router chi.Router, renderer Renderer) *App {
	if router == nil {
		router = chi.NewRouter()
	}
	return &App{router: router, renderer: renderer}
}

// Render implements Renderer.
func (a *App) Render(ctx context.Context, name string, locals Locals) (string, error) {
	if a.renderer == nil {
		return "", errNoRenderer
	}
	return a.renderer.Render(ctx, name, locals)
}

// Use implements Host.
func (a *App) Use(middlewares ...func(http.Handler) http.Handler) {
	a.router.Use(middlewares...)
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}
