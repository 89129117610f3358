//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/sync/errgroup"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/infra/adapter/persistence/postgres"
	"catchup-registry/internal/infra/db"
	"catchup-registry/internal/infra/db/dbtest"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("registry"),
		tcpostgres.WithUsername("registry"),
		tcpostgres.WithPassword("registry"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := db.Open(ctx, db.Postgres, dsn, db.DefaultConnectionConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.MigrateUp(ctx, conn, db.Postgres))
	return conn
}

func TestPostgres_ConcurrentCompanyRegistrationCreatesOnce(t *testing.T) {
	conn := startPostgres(t)
	repos := postgres.NewRepositories(conn)

	const workers = 32
	var created atomic.Int32
	ids := make([]uuid.UUID, workers)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < workers; i++ {
		c := &entity.Company{ID: entity.NewID(), Name: "Acme", URL: "https://acme.example", CreatedAt: time.Now().UTC()}
		g.Go(func() error {
			reg, err := repos.Companies.Register(ctx, c)
			if err != nil {
				return err
			}
			if reg.Created {
				created.Add(1)
			}
			ids[i] = reg.ID
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), created.Load())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, dbtest.Count(t, conn, "company", "name = $1", "Acme"))
}

func TestPostgres_SourceFeedNewsChain(t *testing.T) {
	conn := startPostgres(t)
	repos := postgres.NewRepositories(conn)
	ctx := context.Background()

	typeID, err := repos.SourceTypes.Register(ctx, "blog")
	require.NoError(t, err)

	src := &entity.Source{ID: entity.NewID(), Name: "Acme Blog", URL: "https://blog.acme.example", TypeID: typeID, CreatedAt: time.Now().UTC()}
	reg, err := repos.Sources.Register(ctx, src)
	require.NoError(t, err)
	require.True(t, reg.Created)

	feed := &entity.Feed{ID: entity.NewID(), SourceID: reg.ID, URL: "https://blog.acme.example/rss", CreatedAt: time.Now().UTC()}
	freg, err := repos.Feeds.Register(ctx, feed)
	require.NoError(t, err)

	item := &entity.NewsItem{
		ID: entity.NewID(), FeedID: freg.ID, GUID: "acme-1", Title: "Launch",
		URL: "https://blog.acme.example/launch", PublishedAt: time.Now().UTC(), CreatedAt: time.Now().UTC(),
	}
	nreg, err := repos.NewsItems.Register(ctx, item)
	require.NoError(t, err)
	assert.True(t, nreg.Created)

	dup := *item
	dup.ID = entity.NewID()
	again, err := repos.NewsItems.Register(ctx, &dup)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, nreg.ID, again.ID)
}

func TestPostgres_NewsWithUnknownFeedLeavesNoRow(t *testing.T) {
	conn := startPostgres(t)
	repos := postgres.NewRepositories(conn)

	item := &entity.NewsItem{
		ID: entity.NewID(), FeedID: entity.NewID(), GUID: "orphan", Title: "Orphan",
		URL: "https://nowhere.example", PublishedAt: time.Now().UTC(), CreatedAt: time.Now().UTC(),
	}
	_, err := repos.NewsItems.Register(context.Background(), item)
	assert.ErrorIs(t, err, entity.ErrValidationFailed)
	assert.Equal(t, 0, dbtest.Count(t, conn, "news", ""))
}
