package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration metrics
var (
	// RegistrationsTotal counts get-or-create calls by kind and outcome.
	// outcome is one of created, existing, validation, transport, fatal.
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Total number of registration calls by entity kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// RegistrationDuration measures a registration round trip in seconds
	RegistrationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "registration_duration_seconds",
			Help:    "Registration duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind"},
	)
)

// Event metrics
var (
	// EventsPublishedTotal counts creation-event publications by topic and status
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of creation events handed to the transport",
		},
		[]string{"topic", "status"},
	)

	// EventsConsumedTotal counts subscriber deliveries by topic and status.
	// status is one of handled, decode_error, handler_error.
	EventsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of creation events received by the subscriber",
		},
		[]string{"topic", "status"},
	)

	// SubscriberListening is 1 while the subscriber loop runs for a topic
	SubscriberListening = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_subscriber_listening",
			Help: "1 while the event subscriber is listening, 0 once terminated",
		},
		[]string{"topic"},
	)
)
