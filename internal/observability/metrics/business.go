package metrics

import "time"

// RecordRegistration records the outcome and latency of one registration.
func RecordRegistration(kind, outcome string, duration time.Duration) {
	RegistrationsTotal.WithLabelValues(kind, outcome).Inc()
	RegistrationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordEventPublished records a publication attempt.
func RecordEventPublished(topic string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	EventsPublishedTotal.WithLabelValues(topic, status).Inc()
}

// RecordEventConsumed records what the subscriber did with one delivery.
func RecordEventConsumed(topic, status string) {
	EventsConsumedTotal.WithLabelValues(topic, status).Inc()
}

// SetSubscriberListening flips the liveness gauge for topic.
func SetSubscriberListening(topic string, listening bool) {
	v := 0.0
	if listening {
		v = 1
	}
	SubscriberListening.WithLabelValues(topic).Set(v)
}
