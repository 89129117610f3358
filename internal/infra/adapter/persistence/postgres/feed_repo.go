package postgres

import (
	"context"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/registrar"
	"catchup-registry/internal/repository"
)

type FeedRepo struct{ engine *registrar.Engine }

// Register inserts feed unless its URL is known. An unknown SourceID fails with a
// foreign-key violation, classified as validation.
func (repo *FeedRepo) Register(ctx context.Context, feed *entity.Feed) (repository.Registration, error) {
	const insert = `
WITH ins AS (
INSERT INTO feed (id, url, title, source_id, feed_type, ttl, create_timestamp)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (url) DO NOTHING
RETURNING id
)
SELECT id, TRUE FROM ins
UNION ALL
SELECT id, FALSE FROM feed WHERE url = $2 AND NOT EXISTS (SELECT 1 FROM ins)`
	const lookup = `SELECT id FROM feed WHERE url = $1`

	return repo.engine.Register(ctx, registrar.Statement{
		Kind:       entity.KindFeed,
		NaturalKey: feed.NaturalKey(),
		Insert: registrar.Query{SQL: insert, Args: []any{
			feed.ID, feed.URL, feed.Title, feed.SourceID, feed.FeedType, feed.TTL, feed.CreatedAt,
		}},
		Lookup: registrar.Query{SQL: lookup, Args: []any{feed.URL}},
	})
}
