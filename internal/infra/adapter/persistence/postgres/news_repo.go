package postgres

import (
	"context"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/registrar"
	"catchup-registry/internal/repository"
)

type NewsItemRepo struct{ engine *registrar.Engine }

func (repo *NewsItemRepo) Register(ctx context.Context, item *entity.NewsItem) (repository.Registration, error) {
	const insert = `
WITH ins AS (
INSERT INTO news (id, title, url, published_timestamp, guid, feed_id, create_timestamp, raw_content_path, text_content_path)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (guid) DO NOTHING
RETURNING id
)
SELECT id, TRUE FROM ins
UNION ALL
SELECT id, FALSE FROM news WHERE guid = $5 AND NOT EXISTS (SELECT 1 FROM ins)`
	const lookup = `SELECT id FROM news WHERE guid = $1`

	return repo.engine.Register(ctx, registrar.Statement{
		Kind:       entity.KindNewsItem,
		NaturalKey: item.NaturalKey(),
		Insert: registrar.Query{SQL: insert, Args: []any{
			item.ID, item.Title, item.URL, item.PublishedAt, item.GUID, item.FeedID,
			item.CreatedAt, item.RawContentPath, item.TextContentPath,
		}},
		Lookup: registrar.Query{SQL: lookup, Args: []any{item.GUID}},
	})
}
