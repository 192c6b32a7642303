package main

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrymomot/forgemail"
	"github.com/dmitrymomot/forgemail/pkg/health"
)

var indexPage = template.Must(template.New("index").Parse(`<!doctype html>
<html><head><title>forgemail example</title></head><body>
<h1>forgemail example</h1>
<p><a href="/render-mail">Render a message</a> or <a href="/render-mail?template=receipt">a receipt</a></p>
{{range .}}
<form method="post" action="{{.}}">
  <input type="email" name="email" placeholder="you@example.com" required>
  <button type="submit">POST {{.}}</button>
</form>
{{end}}
</body></html>`))

// handlers serves the example routes.
type handlers struct {
	mailer *forgemail.Mailer
	logger *slog.Logger

	// initial and alternate are swapped by /send-mail-with-update
	initial   forgemail.Options
	alternate forgemail.Options
	current   bool
	mu        sync.Mutex
}

func routes(app *forgemail.App, m *forgemail.Mailer, log *slog.Logger) {
	initial := m.Config()
	alternate := initial
	alternate.From = updatedSender(initial.From)

	h := &handlers{mailer: m, logger: log, initial: initial, alternate: alternate}

	r := app.Router()
	r.Get("/", h.index)
	r.Get("/render-mail", h.renderMail)
	r.Post("/send-mail-via-app", h.sendViaApp)
	r.Post("/send-mail-via-res", h.sendViaRequest)
	r.Post("/send-mail-with-update", h.sendWithUpdate)
	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
		"mailer": m.Ping,
	}, health.WithLogger(log)))
}

func (h *handlers) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexPage.Execute(w, []string{"/send-mail-via-app", "/send-mail-via-res", "/send-mail-with-update"})
}

func (h *handlers) renderMail(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("template")
	if name == "" {
		name = "email"
	}
	raw, err := h.mailer.Render(r.Context(), forgemail.Template(name), forgemail.Locals{
		"to":      "test@localhost",
		"subject": "Test Email",
	})
	if err != nil {
		h.fail(w, r, "render mail", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprint(w, raw)
}

func (h *handlers) sendViaApp(w http.ResponseWriter, r *http.Request) {
	to, ok := recipient(w, r)
	if !ok {
		return
	}
	if err := h.mailer.Send(r.Context(), forgemail.Template("email"), testLocals(to)); err != nil {
		h.fail(w, r, "send mail", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handlers) sendViaRequest(w http.ResponseWriter, r *http.Request) {
	to, ok := recipient(w, r)
	if !ok {
		return
	}
	scope, ok := forgemail.FromRequest(r)
	if !ok {
		h.fail(w, r, "send mail", forgemail.ErrNoTransport)
		return
	}
	forgemail.SetLocal(r, "viaRequest", true)
	if err := scope.Send(r.Context(), forgemail.Template("email"), testLocals(to)); err != nil {
		h.fail(w, r, "send mail", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handlers) sendWithUpdate(w http.ResponseWriter, r *http.Request) {
	to, ok := recipient(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	next := h.alternate
	if h.current {
		next = h.initial
	}
	err := h.mailer.Update(r.Context(), next)
	if err == nil {
		h.current = !h.current
	}
	h.mu.Unlock()

	if err != nil {
		h.fail(w, r, "update mailer", err)
		return
	}
	if err := h.mailer.Send(r.Context(), forgemail.Template("email"), testLocals(to)); err != nil {
		h.fail(w, r, "send mail", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	h.logger.ErrorContext(r.Context(), action+" failed", slog.Any("error", err))
	http.Error(w, action+" failed", http.StatusBadGateway)
}

func recipient(w http.ResponseWriter, r *http.Request) (string, bool) {
	to := strings.TrimSpace(r.FormValue("email"))
	if to == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return "", false
	}
	return to, true
}

func testLocals(to string) forgemail.Locals {
	return forgemail.Locals{"to": to, "subject": "Test Email"}
}

// updatedSender renames the sender so updated deliveries are easy to spot.
func updatedSender(from string) string {
	if i := strings.IndexByte(from, '<'); i >= 0 {
		return strings.TrimSpace("Updated "+strings.TrimSpace(from[:i])) + " " + from[i:]
	}
	return "Updated <" + from + ">"
}
