package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Company is an organisation mentioned by the ingested content.
// The natural key is the pair (Name, URL); URL is stored as "" when unknown.
type Company struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	URL             string    `json:"url"`
	Ticker          *string   `json:"ticker"`
	IndeedRating    *string   `json:"indeed_rating"`
	GlassdoorRating *string   `json:"glassdoor_rating"`
	Sector          *string   `json:"sector"`
	Industry        *string   `json:"industry"`
	Address         *string   `json:"address"`
	Exchange        *string   `json:"exchange"`
	NumEmployeesMin *int32    `json:"num_employees_min"`
	NumEmployeesMax *int32    `json:"num_employees_max"`
	CreatedAt       time.Time `json:"create_timestamp"`
	UpdatedAt       time.Time `json:"update_timestamp"`
}

// NaturalKey renders the (name, url) pair for diagnostics.
func (c *Company) NaturalKey() string {
	if c.URL == "" {
		return c.Name
	}
	return c.Name + " <" + c.URL + ">"
}

// Validate checks the fields required before registration.
func (c *Company) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if c.URL != "" {
		if err := ValidateURL(c.URL); err != nil {
			return err
		}
	}
	if c.NumEmployeesMin != nil && c.NumEmployeesMax != nil && *c.NumEmployeesMin > *c.NumEmployeesMax {
		return &ValidationError{Field: "num_employees_min", Message: "must not exceed num_employees_max"}
	}
	return nil
}
