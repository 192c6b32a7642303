// Package internal provides the core types and implementation for forgemail.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/forgemail" instead, which re-exports the public API.
//
// # Core Types
//
//   - Mailer: renders templates through the host and hands the result to a transport
//   - Scope: per-request view of a Mailer that renders with request locals
//   - Request: template reference, either ByTemplateName or WithOverrides
//   - Fields: explicit envelope overrides for a single send
//   - Locals: template variables, also consulted for envelope defaults
//   - Host: application that renders templates and accepts middleware
//   - App: chi-backed Host implementation
//
// # Envelope Resolution
//
// Every envelope field resolves independently:
//
//	explicit override (Fields) > Locals value with the same key > configured default
//
// Only the sender has a configured default. The rendered HTML always becomes
// the HTML body and plain text derivation from HTML is always requested.
//
// # Concurrency
//
// The live transport is guarded by a read/write lock. Deliveries hold the
// read lock while the transport sends; Update takes the write lock, so it
// waits for in-flight deliveries, closes the old transport and installs the
// new one before any later delivery starts. Template rendering runs outside
// the lock.
package internal
