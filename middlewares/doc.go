// Package middlewares provides net/http middleware for applications using forgemail.
//
// # Request ID
//
// RequestID assigns an ID to each request, reusing an upstream one when a
// known header carries it. RequestIDExtractor adds it to every log entry:
//
//	log := logger.New(logger.WithExtractors(middlewares.RequestIDExtractor()))
//	router.Use(middlewares.RequestID())
//
// # Recover
//
// Recover turns handler panics into 500 responses and logs them with the
// stack trace.
//
//	router.Use(middlewares.Recover(log))
//
// # Scope locals
//
// ScopeLocals copies request data into the mailer scope so every email sent
// while handling the request can use it. It must run after the mailer
// middleware registered by forgemail.Extend:
//
//	forgemail.MustExtend(app, opts)
//	app.Use(middlewares.ScopeLocals(func(r *http.Request) map[string]any {
//	    return map[string]any{"requestID": middlewares.GetRequestID(r.Context())}
//	}))
package middlewares
