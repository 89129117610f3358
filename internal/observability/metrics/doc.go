// Package metrics provides the Prometheus metrics of the registry.
//
// This package centralizes:
//   - Registration outcomes per entity kind (created, existing, or failure class)
//   - Registration latency per entity kind
//   - Creation-event publication and consumption counts
//   - Subscriber liveness
//
// All metrics are registered with the Prometheus default registry and exposed via the
// /metrics endpoint of cmd/registry.
//
// Example usage:
//
//	start := time.Now()
//	reg, err := engine.Register(ctx, st)
//	metrics.RecordRegistration("source", "created", time.Since(start))
package metrics
