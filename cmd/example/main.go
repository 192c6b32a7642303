// Command example runs a small web application that renders and sends
// email through forgemail. With DEV_MAILBOX=true (the default) it also runs
// an in-process SMTP sink and points the mailer at it.
package main

import (
	"context"
	"embed"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/forgemail"
	"github.com/dmitrymomot/forgemail/middlewares"
	"github.com/dmitrymomot/forgemail/pkg/logger"
	"github.com/dmitrymomot/forgemail/pkg/mailbox"
	"github.com/dmitrymomot/forgemail/pkg/view"
)

//go:embed emails
var emails embed.FS

func main() {
	cfg, err := loadConfig(".env", ".env.local")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(append(logger.FromConfig(cfg.Log),
		logger.WithExtractors(middlewares.RequestIDExtractor()),
	)...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := start(ctx, cfg, log); err != nil {
		log.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

func start(ctx context.Context, cfg Config, log *slog.Logger) error {
	app, mailer, box, err := setup(cfg, log)
	if err != nil {
		return err
	}

	return run(ctx, runConfig{
		handler:         app,
		logger:          log,
		mailbox:         box,
		address:         cfg.Address,
		shutdownTimeout: cfg.ShutdownTimeout,
		shutdownHooks: []func(context.Context) error{
			func(context.Context) error { return mailer.Close() },
		},
	})
}

// setup wires the router, renderer, mailer and, when enabled, the dev
// mailbox. The mailbox is listening but not yet serving.
func setup(cfg Config, log *slog.Logger) (*forgemail.App, *forgemail.Mailer, *mailbox.Mailbox, error) {
	var box *mailbox.Mailbox
	if cfg.DevMailbox {
		box = mailbox.NewFromConfig(cfg.Mailbox, mailbox.WithLogger(log.With(slog.String("component", "mailbox"))))
		if err := box.Listen(cfg.Mailbox.Addr); err != nil {
			return nil, nil, nil, err
		}
		cfg.Mailer.Transport = "smtp"
		cfg.Mailer.Settings.Host = "127.0.0.1"
		cfg.Mailer.Settings.Port = box.Port()
		cfg.Mailer.Settings.StartTLS = "none"
		cfg.Mailer.Settings.Username = cfg.Mailbox.Username
		cfg.Mailer.Settings.Password = cfg.Mailbox.Password
	}

	router := chi.NewRouter()
	router.Use(
		middlewares.RequestID(),
		middlewares.Recover(log),
	)

	markdown := view.NewMarkdown(emails,
		view.WithTemplateDir("emails"),
		view.WithLayoutDir("emails/layouts"),
		view.WithDefaultLayout("base.html"),
	)
	renderer := view.First(emailComponents(), markdown)
	app := forgemail.NewApp(router, forgemail.AdaptRenderer(renderer))

	mailer, err := forgemail.Extend(app, cfg.Mailer, forgemail.WithLogger(log))
	if err != nil {
		if box != nil {
			_ = box.Close()
		}
		return nil, nil, nil, err
	}

	app.Use(middlewares.ScopeLocals(func(r *http.Request) map[string]any {
		return map[string]any{"requestID": middlewares.GetRequestID(r.Context())}
	}))
	routes(app, mailer, log)

	return app, mailer, box, nil
}
