// Package postgres implements the registration repositories on PostgreSQL.
//
// Every Register call is one statement of the form
//
//	WITH ins AS (INSERT ... ON CONFLICT (<natural key>) DO NOTHING RETURNING id)
//	SELECT id, TRUE FROM ins
//	UNION ALL
//	SELECT id, FALSE FROM <table> WHERE <natural key> AND NOT EXISTS (SELECT 1 FROM ins)
//
// which collapses to exactly one row whenever the conflicting row was committed before the
// statement started. The registrar falls back to a plain lookup when a concurrent winner
// committed during the statement.
package postgres

import (
	"catchup-registry/internal/registrar"
	"catchup-registry/internal/repository"
)

// Repositories bundles the registration repositories sharing one connection pool.
type Repositories struct {
	SourceTypes repository.SourceTypeRepository
	Sources     repository.SourceRepository
	Feeds       repository.FeedRepository
	NewsItems   repository.NewsItemRepository
	Companies   repository.CompanyRepository
}

// NewRepositories wires every repository to db.
func NewRepositories(db registrar.Querier) Repositories {
	engine := registrar.New(db, NewClassifier())
	return Repositories{
		SourceTypes: &SourceTypeRepo{engine: engine},
		Sources:     &SourceRepo{engine: engine},
		Feeds:       &FeedRepo{engine: engine},
		NewsItems:   &NewsItemRepo{engine: engine},
		Companies:   &CompanyRepo{engine: engine},
	}
}
