// Package health provides HTTP handlers for liveness and readiness probes.
//
// [LivenessHandler] always responds OK. [ReadinessHandler] runs named
// [Checks] in parallel under a shared timeout and responds 503 when any fails.
// A mailer exposes its transport check as Mailer.Ping:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "mailer": mailer.Ping,
//	}, health.WithTimeout(3*time.Second)))
//
// Handlers answer in plain text ("OK" or "Service Unavailable") unless the
// client sends Accept: application/json or ?format=json:
//
//	{"status":"unhealthy","checks":{"mailer":{"status":"unhealthy","error":"smtp: failed to connect ..."}}}
package health
