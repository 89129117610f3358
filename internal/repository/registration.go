// Package repository declares the storage ports the registration use cases depend on.
// Every Register method is get-or-create keyed on the entity's natural key.
package repository

import (
	"context"

	"github.com/google/uuid"

	"catchup-registry/internal/domain/entity"
)

// Registration is the outcome of a get-or-create call.
// Created is true only for the single caller whose insert won the natural-key race;
// ID is then the caller's provisional identifier. Otherwise ID is the pre-existing one.
type Registration struct {
	ID      uuid.UUID
	Created bool
}

type SourceTypeRepository interface {
	// Register returns the id of the source type called name, inserting it if needed.
	Register(ctx context.Context, name string) (int32, error)
}

type SourceRepository interface {
	Register(ctx context.Context, source *entity.Source) (Registration, error)
}

type FeedRepository interface {
	Register(ctx context.Context, feed *entity.Feed) (Registration, error)
}

type NewsItemRepository interface {
	Register(ctx context.Context, item *entity.NewsItem) (Registration, error)
}

type CompanyRepository interface {
	Register(ctx context.Context, company *entity.Company) (Registration, error)
}
