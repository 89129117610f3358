// Package tracing provides OpenTelemetry span helpers.
//
// Spans are created from the global tracer provider, which is a no-op until the process
// installs a real provider.
//
//	ctx, span := tracing.StartSpan(ctx, "registry.RegisterSource")
//	defer span.End()
package tracing
