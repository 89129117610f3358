package registrar

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/sony/gobreaker"

	"catchup-registry/internal/domain/entity"
)

// Class is the outcome of classifying a failed write.
type Class int

const (
	ClassFatal Class = iota
	ClassCollision
	ClassValidation
	ClassTransport
)

// ErrFatal marks failures that are neither collisions, validation errors nor transport errors.
var ErrFatal = errors.New("registration failed")

// ErrUnresolved is returned when the insert was suppressed but no row carries the natural key.
// Rows are never deleted by this package, so this indicates an external delete or a
// constraint that does not match the lookup.
var ErrUnresolved = errors.New("natural key neither inserted nor found")

func (c Class) String() string {
	switch c {
	case ClassCollision:
		return "collision"
	case ClassValidation:
		return "validation"
	case ClassTransport:
		return "transport"
	default:
		return "fatal"
	}
}

func (c Class) sentinel() error {
	switch c {
	case ClassValidation:
		return entity.ErrValidationFailed
	case ClassTransport:
		return entity.ErrTransport
	default:
		return ErrFatal
	}
}

// Classifier decides whether a failed write is a benign natural-key collision.
// Implementations must look at structured driver error codes before anything else.
type Classifier interface {
	Classify(kind entity.Kind, err error) Class
}

// CommonClass classifies driver-independent failures: cancellation, deadlines,
// broken connections, network errors and an open circuit breaker.
// ok is false when err carries none of these signals.
func CommonClass(err error) (class Class, ok bool) {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ClassTransport, true
	case errors.Is(err, driver.ErrBadConn):
		return ClassTransport, true
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return ClassTransport, true
	case errors.As(err, &netErr):
		return ClassTransport, true
	}
	return ClassFatal, false
}
