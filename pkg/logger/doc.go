// Package logger builds *slog.Logger values for the mailer and its host apps.
//
// Loggers write JSON (or text) to stdout, enrich every record with values
// pulled from the context, and optionally fan out warnings and errors to
// Sentry.
//
// # Basic Usage
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithExtractors(middlewares.RequestIDExtractor()),
//	)
//
//	log.InfoContext(ctx, "mail sent", slog.String("to", "user@example.com"))
//	// {"level":"INFO","msg":"mail sent","to":"user@example.com","request_id":"..."}
//
// # Sentry Integration
//
//	log := logger.New(logger.WithSentry(logger.SentryConfig{
//		DSN:         os.Getenv("SENTRY_DSN"),
//		Environment: "production",
//		MinLevel:    slog.LevelWarn,
//	}))
//
// An empty DSN, or a failed Sentry initialization, leaves stdout logging in
// place, so the same code path works in development and production.
//
// # Context Extractors
//
// A ContextExtractor returns an attribute for the current context:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// Extractors run on every log call. Returning false skips the attribute.
package logger
