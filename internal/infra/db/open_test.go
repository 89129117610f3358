package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"", Postgres, false},
		{"pgx", Postgres, false},
		{"Postgres", Postgres, false},
		{"postgresql", Postgres, false},
		{"sqlite3", SQLite, false},
		{" sqlite ", SQLite, false},
		{"mysql", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()

	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 1*time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxIdleTime)
	assert.Zero(t, cfg.PingTimeout, "only the caller's deadline applies by default")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"file:/tmp/reg.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(wal)",
		sqliteDSN("/tmp/reg.db"))
	assert.Equal(t,
		"file:reg.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(wal)",
		sqliteDSN("file:reg.db?mode=rwc"))
	assert.Equal(t, "file:x.db?_pragma=foreign_keys(0)", sqliteDSN("file:x.db?_pragma=foreign_keys(0)"))
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), Postgres, "", DefaultConnectionConfig())
	assert.ErrorContains(t, err, "empty DSN")
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	db, err := Open(context.Background(), SQLite, path, DefaultConnectionConfig())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_Postgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := Open(context.Background(), Postgres, dsn, DefaultConnectionConfig())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.NoError(t, db.PingContext(context.Background()))
}

func TestOpen_PingTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	cfg := DefaultConnectionConfig()
	cfg.PingTimeout = time.Nanosecond
	_, err := Open(context.Background(), SQLite, path, cfg)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// no fixed bound: a slow first open only has to beat the caller's deadline
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	db, err := Open(ctx, SQLite, path, DefaultConnectionConfig())
	require.NoError(t, err)
	_ = db.Close()
}
