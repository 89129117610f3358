package registrar

import (
	"fmt"

	"catchup-registry/internal/domain/entity"
)

// Error annotates a non-collision registration failure with the entity kind and the
// natural key that was being registered.
type Error struct {
	Kind       entity.Kind
	NaturalKey string
	Class      Class
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("register %s %q: %s: %v", e.Kind, e.NaturalKey, e.Class, e.Err)
}

// Unwrap exposes both the class sentinel and the underlying driver error.
func (e *Error) Unwrap() []error {
	return []error{e.Class.sentinel(), e.Err}
}

// Retryable reports whether repeating the whole registration may succeed.
func (e *Error) Retryable() bool {
	return e.Class == ClassTransport
}
