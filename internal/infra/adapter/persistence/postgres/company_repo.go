package postgres

import (
	"context"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/registrar"
	"catchup-registry/internal/repository"
)

type CompanyRepo struct{ engine *registrar.Engine }

func (repo *CompanyRepo) Register(ctx context.Context, c *entity.Company) (repository.Registration, error) {
	const insert = `
WITH ins AS (
INSERT INTO company (id, name, url, ticker, indeed_rating, glassdoor_rating, sector, industry,
                     address, exchange, num_employees_min, num_employees_max, create_timestamp, update_timestamp)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (name, url) DO NOTHING
RETURNING id
)
SELECT id, TRUE FROM ins
UNION ALL
SELECT id, FALSE FROM company WHERE name = $2 AND url = $3 AND NOT EXISTS (SELECT 1 FROM ins)`
	const lookup = `SELECT id FROM company WHERE name = $1 AND url = $2`

	return repo.engine.Register(ctx, registrar.Statement{
		Kind:       entity.KindCompany,
		NaturalKey: c.NaturalKey(),
		Insert: registrar.Query{SQL: insert, Args: []any{
			c.ID, c.Name, c.URL, c.Ticker, c.IndeedRating, c.GlassdoorRating, c.Sector, c.Industry,
			c.Address, c.Exchange, c.NumEmployeesMin, c.NumEmployeesMax, c.CreatedAt, c.UpdatedAt,
		}},
		Lookup: registrar.Query{SQL: lookup, Args: []any{c.Name, c.URL}},
	})
}
