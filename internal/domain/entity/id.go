package entity

import "github.com/google/uuid"

// IDGenerator produces provisional identifiers for records that have not been persisted yet.
type IDGenerator func() uuid.UUID

// NewID returns a random (version 4) UUID. It needs no coordination with any store;
// the identifier only becomes permanent if the record wins its natural-key race.
func NewID() uuid.UUID {
	return uuid.New()
}
