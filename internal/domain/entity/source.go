package entity

import (
	"time"

	"github.com/google/uuid"
)

// SourceType classifies a source (newspaper, blog, press wire, ...).
// Its name is the natural key.
type SourceType struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// Source is a publisher of content. Its URL is the natural key.
type Source struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	URL           string    `json:"url"`
	TypeID        int32     `json:"type_id"`
	Paywall       *bool     `json:"paywall,omitempty"`
	FeedAvailable *bool     `json:"feed_available,omitempty"`
	Description   *string   `json:"description,omitempty"`
	ShortName     *string   `json:"short_name,omitempty"`
	State         *string   `json:"state,omitempty"`
	City          *string   `json:"city,omitempty"`
	CreatedAt     time.Time `json:"create_timestamp"`
}

// NaturalKey returns the value that identifies the source independently of its ID.
func (s *Source) NaturalKey() string {
	return s.URL
}

// Validate checks the fields required before registration.
func (s *Source) Validate() error {
	if err := s.ValidateAttributes(); err != nil {
		return err
	}
	if s.TypeID <= 0 {
		return &ValidationError{Field: "type_id", Message: "must be positive"}
	}
	return nil
}

// ValidateAttributes checks every required field except the type reference, so a
// caller can reject the source before resolving its type by name.
func (s *Source) ValidateAttributes() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	return ValidateURL(s.URL)
}
