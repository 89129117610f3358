// Package sqlite implements the registration repositories on an embedded SQLite database.
//
// SQLite cannot nest an INSERT in a WITH clause, so Register runs
// INSERT ... ON CONFLICT (<natural key>) DO NOTHING RETURNING id, 1 and resolves a
// suppressed insert with a lookup. SQLite serializes writers on the database lock, so the
// conflicting row is always committed when the insert is suppressed.
package sqlite

import (
	"context"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/registrar"
	"catchup-registry/internal/repository"
)

type Repositories struct {
	SourceTypes repository.SourceTypeRepository
	Sources     repository.SourceRepository
	Feeds       repository.FeedRepository
	NewsItems   repository.NewsItemRepository
	Companies   repository.CompanyRepository
}

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

// SourceTypeRepo registers source types keyed on name. Their ids are AUTOINCREMENT.
type SourceTypeRepo struct{ engine *registrar.Engine }

func (repo *SourceTypeRepo) Register(ctx context.Context, name string) (int32, error) {
	if name == "" {
		return 0, &entity.ValidationError{Field: "name", Message: "is required"}
	}
	return repo.engine.RegisterSerial(ctx, registrar.Statement{
		Kind:       entity.KindSourceType,
		NaturalKey: name,
		Insert:     registrar.Query{SQL: `INSERT INTO source_type (name) VALUES (?) ON CONFLICT (name) DO NOTHING RETURNING id, 1`, Args: []any{name}},
		Lookup:     registrar.Query{SQL: `SELECT id FROM source_type WHERE name = ?`, Args: []any{name}},
	})
}

type SourceRepo struct{ engine *registrar.Engine }

func (repo *SourceRepo) Register(ctx context.Context, s *entity.Source) (repository.Registration, error) {
	return repo.engine.Register(ctx, registrar.Statement{
		Kind:       entity.KindSource,
		NaturalKey: s.NaturalKey(),
		Insert: registrar.Query{SQL: `
INSERT INTO source (id, name, url, type_id, paywall, feed_available, description, short_name, state, city, create_timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url) DO NOTHING
RETURNING id, 1`, Args: []any{
			s.ID, s.Name, s.URL, s.TypeID, s.Paywall, s.FeedAvailable,
			s.Description, s.ShortName, s.State, s.City, s.CreatedAt,
		}},
		Lookup: registrar.Query{SQL: `SELECT id FROM source WHERE url = ?`, Args: []any{s.URL}},
	})
}

type FeedRepo struct{ engine *registrar.Engine }

func (repo *FeedRepo) Register(ctx context.Context, f *entity.Feed) (repository.Registration, error) {
	return repo.engine.Register(ctx, registrar.Statement{
		Kind:       entity.KindFeed,
		NaturalKey: f.NaturalKey(),
		Insert: registrar.Query{SQL: `
INSERT INTO feed (id, url, title, source_id, feed_type, ttl, create_timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url) DO NOTHING
RETURNING id, 1`, Args: []any{
			f.ID, f.URL, f.Title, f.SourceID, f.FeedType, f.TTL, f.CreatedAt,
		}},
		Lookup: registrar.Query{SQL: `SELECT id FROM feed WHERE url = ?`, Args: []any{f.URL}},
	})
}

type NewsItemRepo struct{ engine *registrar.Engine }

func (repo *NewsItemRepo) Register(ctx context.Context, n *entity.NewsItem) (repository.Registration, error) {
	return repo.engine.Register(ctx, registrar.Statement{
		Kind:       entity.KindNewsItem,
		NaturalKey: n.NaturalKey(),
		Insert: registrar.Query{SQL: `
INSERT INTO news (id, title, url, published_timestamp, guid, feed_id, create_timestamp, raw_content_path, text_content_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (guid) DO NOTHING
RETURNING id, 1`, Args: []any{
			n.ID, n.Title, n.URL, n.PublishedAt, n.GUID, n.FeedID,
			n.CreatedAt, n.RawContentPath, n.TextContentPath,
		}},
		Lookup: registrar.Query{SQL: `SELECT id FROM news WHERE guid = ?`, Args: []any{n.GUID}},
	})
}

type CompanyRepo struct{ engine *registrar.Engine }

func (repo *CompanyRepo) Register(ctx context.Context, c *entity.Company) (repository.Registration, error) {
	return repo.engine.Register(ctx, registrar.Statement{
		Kind:       entity.KindCompany,
		NaturalKey: c.NaturalKey(),
		Insert: registrar.Query{SQL: `
INSERT INTO company (id, name, url, ticker, indeed_rating, glassdoor_rating, sector, industry,
                     address, exchange, num_employees_min, num_employees_max, create_timestamp, update_timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (name, url) DO NOTHING
RETURNING id, 1`, Args: []any{
			c.ID, c.Name, c.URL, c.Ticker, c.IndeedRating, c.GlassdoorRating, c.Sector, c.Industry,
			c.Address, c.Exchange, c.NumEmployeesMin, c.NumEmployeesMax, c.CreatedAt, c.UpdatedAt,
		}},
		Lookup: registrar.Query{SQL: `SELECT id FROM company WHERE name = ? AND url = ?`, Args: []any{c.Name, c.URL}},
	})
}
