// Package forgemail adds email sending to a web application.
//
// A Mailer renders a template through the application's own renderer and
// delivers the resulting HTML through a reusable transport (SMTP, Resend, or
// a stub that only composes the message). Every request additionally gets a
// Scope that renders with request-local data.
//
// # Quick Start
//
//	app := forgemail.NewApp(chi.NewRouter(), forgemail.AdaptRenderer(view.NewMarkdown(emails.FS)))
//
//	mailer := forgemail.MustExtend(app, forgemail.Options{
//	    From:     "team@example.com",
//	    Settings: forgemail.Settings{Host: "smtp.example.com", Port: 587},
//	}, forgemail.WithLogger(log))
//	defer mailer.Close()
//
//	err := mailer.Send(ctx, forgemail.Template("welcome.md"), forgemail.Locals{
//	    "to":      "user@example.com",
//	    "subject": "Welcome",
//	    "Name":    "Alice",
//	})
//
// # Requests
//
// A Request is either a bare template name or a template with explicit
// envelope fields:
//
//	forgemail.Template("welcome.md")
//	forgemail.Override("welcome.md", forgemail.Fields{To: []string{"a@example.com"}})
//
// Each envelope field resolves on its own: explicit field, then the Locals
// value of the same key (from, to, cc, bcc, replyTo, subject, body, text,
// envelope, inReplyTo, references, attachments, headers), then the configured
// default (sender only). The rendered HTML is always the HTML body and a
// plain text alternative is always derived from it unless text is given.
//
// # Previewing
//
// Render produces the complete MIME message without delivering it:
//
//	raw, err := mailer.Render(ctx, forgemail.Template("welcome.md"), locals)
//
// # Per-request Scope
//
// Extend registers middleware that stores a Scope in every request context:
//
//	func invite(w http.ResponseWriter, r *http.Request) {
//	    scope, _ := forgemail.FromRequest(r)
//	    forgemail.SetLocal(r, "Inviter", currentUser(r).Name)
//	    err := scope.Send(r.Context(), forgemail.Template("invite.md"), forgemail.Locals{
//	        "to": r.FormValue("email"),
//	    })
//	    ...
//	}
//
// Scope.Update and Mailer.Update act on the same configuration.
//
// # Reconfiguration
//
// Update closes the live transport and builds a new one from fresh options.
// It waits for deliveries in flight. A close failure leaves the previous
// configuration in effect.
//
// # Errors
//
//   - ErrAlreadyExtended: host already has a mailer
//   - ErrInvalidOptions: options lack a sender or host is nil
//   - ErrNoTemplate: request has no template name
//   - ErrRenderFailed: the host failed to render (nothing is sent)
//   - ErrSendFailed: the live transport failed
//   - ErrComposeFailed: the stub transport failed
//   - ErrCloseFailed: closing a transport failed
//   - ErrNoTransport: no live transport after a failed Update
//   - ErrClosed: the mailer was closed
package forgemail
