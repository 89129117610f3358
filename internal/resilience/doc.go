// Package resilience holds fault-isolation helpers shared by the registry's
// outbound dependencies.
//
// The registry never retries on a caller's behalf; circuit breakers only make a
// dead dependency fail fast so callers see a transport error immediately.
//
//	cb := circuitbreaker.New(circuitbreaker.PublisherConfig())
//	_, err := cb.Execute(func() (interface{}, error) {
//	    return nil, transport.Publish(ctx, topic, payload)
//	})
package resilience
