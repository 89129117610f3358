package postgres

import (
	"context"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/registrar"
	"catchup-registry/internal/repository"
)

// SourceTypeRepo registers source types keyed on name. Their ids are SERIAL.
type SourceTypeRepo struct{ engine *registrar.Engine }

func (repo *SourceTypeRepo) Register(ctx context.Context, name string) (int32, error) {
	if name == "" {
		return 0, &entity.ValidationError{Field: "name", Message: "is required"}
	}
	const query = `
WITH ins AS (
INSERT INTO source_type (name)
VALUES ($1)
ON CONFLICT (name) DO NOTHING
RETURNING id
)
SELECT id, TRUE FROM ins
UNION ALL
SELECT id, FALSE FROM source_type WHERE name = $1 AND NOT EXISTS (SELECT 1 FROM ins)`
	return repo.engine.RegisterSerial(ctx, registrar.Statement{
		Kind:       entity.KindSourceType,
		NaturalKey: name,
		Insert:     registrar.Query{SQL: query, Args: []any{name}},
		Lookup:     registrar.Query{SQL: `SELECT id FROM source_type WHERE name = $1`, Args: []any{name}},
	})
}

type SourceRepo struct{ engine *registrar.Engine }

func (repo *SourceRepo) Register(ctx context.Context, source *entity.Source) (repository.Registration, error) {
	const insert = `
WITH ins AS (
INSERT INTO source (id, name, url, type_id, paywall, feed_available, description, short_name, state, city, create_timestamp)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (url) DO NOTHING
RETURNING id
)
SELECT id, TRUE FROM ins
UNION ALL
SELECT id, FALSE FROM source WHERE url = $3 AND NOT EXISTS (SELECT 1 FROM ins)`
	const lookup = `SELECT id FROM source WHERE url = $1`

	return repo.engine.Register(ctx, registrar.Statement{
		Kind:       entity.KindSource,
		NaturalKey: source.NaturalKey(),
		Insert: registrar.Query{SQL: insert, Args: []any{
			source.ID, source.Name, source.URL, source.TypeID,
			source.Paywall, source.FeedAvailable, source.Description, source.ShortName,
			source.State, source.City, source.CreatedAt,
		}},
		Lookup: registrar.Query{SQL: lookup, Args: []any{source.URL}},
	})
}
