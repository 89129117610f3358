// Package observability groups the logging, metrics and tracing helpers used by the
// registry.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics for registrations and creation events
//   - tracing: OpenTelemetry span helpers
package observability
