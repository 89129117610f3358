package entity

import (
	"time"

	"github.com/google/uuid"
)

// Feed is a syndication endpoint (RSS, Atom, JSON feed) belonging to a Source.
// Its URL is the natural key.
type Feed struct {
	ID        uuid.UUID `json:"id"`
	SourceID  uuid.UUID `json:"source_id"`
	URL       string    `json:"url"`
	Title     *string   `json:"title,omitempty"`
	FeedType  *string   `json:"feed_type,omitempty"`
	TTL       *int32    `json:"ttl,omitempty"`
	CreatedAt time.Time `json:"create_timestamp"`
}

// NaturalKey returns the feed URL.
func (f *Feed) NaturalKey() string {
	return f.URL
}

// Validate checks the fields required before registration.
// Whether SourceID refers to an existing source is for the store to decide.
func (f *Feed) Validate() error {
	if f.SourceID == uuid.Nil {
		return &ValidationError{Field: "source_id", Message: "is required"}
	}
	return ValidateURL(f.URL)
}
