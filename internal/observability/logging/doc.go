// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the registry.
//
// Key features:
//   - JSON and text output formats
//   - Configurable log levels (LOG_LEVEL)
//   - Context-aware logging
//   - Registration-scoped attributes (entity kind, natural key)
//
// Example usage:
//
//	logger := logging.New(os.Stdout, cfg.LogLevel, false)
//	logger.Info("registry started", slog.String("transport", "kafka"))
//
//	log := logging.WithRegistration(logging.FromContext(ctx), "company", "Acme")
//	log.Warn("publish failed", slog.Any("error", err))
package logging
