package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxGUIDLength bounds the GUID column, mirroring maxURLLength.
const maxGUIDLength = 2048

// NewsItem is a single entry read from a Feed. Its GUID is the natural key.
type NewsItem struct {
	ID              uuid.UUID `json:"id"`
	FeedID          uuid.UUID `json:"feed_id"`
	GUID            string    `json:"guid"`
	Title           string    `json:"title"`
	PublishedAt     time.Time `json:"published_timestamp"`
	URL             string    `json:"url"`
	CreatedAt       time.Time `json:"create_timestamp"`
	RawContentPath  *string   `json:"raw_content_path,omitempty"`
	TextContentPath *string   `json:"text_content_path,omitempty"`
}

// NaturalKey returns the item GUID.
func (n *NewsItem) NaturalKey() string {
	return n.GUID
}

// Validate checks the fields required before registration.
func (n *NewsItem) Validate() error {
	if n.FeedID == uuid.Nil {
		return &ValidationError{Field: "feed_id", Message: "is required"}
	}
	if strings.TrimSpace(n.GUID) == "" {
		return &ValidationError{Field: "guid", Message: "is required"}
	}
	if len(n.GUID) > maxGUIDLength {
		return &ValidationError{Field: "guid", Message: "is too long"}
	}
	if n.Title == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if n.PublishedAt.IsZero() {
		return &ValidationError{Field: "published_timestamp", Message: "is required"}
	}
	return ValidateURL(n.URL)
}
