package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed seeds/source_types.sql
var seedSourceTypesSQL string

// column types that differ between the two stores
type ddlTypes struct {
	uuid      string
	serial    string
	timestamp string
	boolean   string
}

func typesFor(dialect Dialect) (ddlTypes, error) {
	switch dialect {
	case Postgres:
		return ddlTypes{uuid: "UUID", serial: "SERIAL PRIMARY KEY", timestamp: "TIMESTAMPTZ", boolean: "BOOLEAN"}, nil
	case SQLite:
		return ddlTypes{uuid: "TEXT", serial: "INTEGER PRIMARY KEY AUTOINCREMENT", timestamp: "TIMESTAMP", boolean: "BOOLEAN"}, nil
	}
	return ddlTypes{}, fmt.Errorf("migrate: unsupported dialect %q", dialect)
}

// schema returns the DDL in dependency order. The constraint names must
// match the ones the postgres classifier treats as natural keys.
func schema(t ddlTypes) []string {
	r := strings.NewReplacer("{uuid}", t.uuid, "{serial}", t.serial, "{ts}", t.timestamp, "{bool}", t.boolean)
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS source_type (
    id   {serial},
    name TEXT NOT NULL,
    CONSTRAINT source_type_name_key UNIQUE (name)
)`,
		`CREATE TABLE IF NOT EXISTS source (
    id               {uuid} PRIMARY KEY,
    name             TEXT NOT NULL,
    url              TEXT NOT NULL,
    type_id          INTEGER NOT NULL REFERENCES source_type (id),
    paywall          {bool},
    feed_available   {bool},
    description      TEXT,
    short_name       TEXT,
    state            TEXT,
    city             TEXT,
    create_timestamp {ts} NOT NULL,
    CONSTRAINT source_url_key UNIQUE (url)
)`,
		`CREATE TABLE IF NOT EXISTS feed (
    id               {uuid} PRIMARY KEY,
    url              TEXT NOT NULL,
    title            TEXT,
    source_id        {uuid} NOT NULL REFERENCES source (id),
    feed_type        TEXT,
    ttl              INTEGER,
    create_timestamp {ts} NOT NULL,
    CONSTRAINT feed_url_key UNIQUE (url)
)`,
		`CREATE TABLE IF NOT EXISTS news (
    id                  {uuid} PRIMARY KEY,
    title               TEXT NOT NULL,
    url                 TEXT NOT NULL,
    published_timestamp {ts} NOT NULL,
    guid                TEXT NOT NULL,
    feed_id             {uuid} NOT NULL REFERENCES feed (id),
    create_timestamp    {ts} NOT NULL,
    raw_content_path    TEXT,
    text_content_path   TEXT,
    CONSTRAINT news_guid_key UNIQUE (guid)
)`,
		`CREATE TABLE IF NOT EXISTS company (
    id                {uuid} PRIMARY KEY,
    name              TEXT NOT NULL,
    url               TEXT NOT NULL DEFAULT '',
    ticker            TEXT,
    indeed_rating     TEXT,
    glassdoor_rating  TEXT,
    sector            TEXT,
    industry          TEXT,
    address           TEXT,
    exchange          TEXT,
    num_employees_min INTEGER,
    num_employees_max INTEGER,
    create_timestamp  {ts} NOT NULL,
    update_timestamp  {ts} NOT NULL,
    CONSTRAINT company_name_url_key UNIQUE (name, url)
)`,
		`CREATE INDEX IF NOT EXISTS idx_source_type_id ON source (type_id)`,
		`CREATE INDEX IF NOT EXISTS idx_feed_source_id ON feed (source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_news_feed_id ON news (feed_id)`,
		`CREATE INDEX IF NOT EXISTS idx_news_published_timestamp ON news (published_timestamp DESC)`,
	}
	for i, s := range stmts {
		stmts[i] = r.Replace(s)
	}
	return stmts
}

// Execer runs a statement. *sql.DB and the database circuit breaker both
// satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// MigrateUp creates the registry tables if they do not exist and seeds the
// source types. It is safe to run on every start.
func MigrateUp(ctx context.Context, db Execer, dialect Dialect) error {
	t, err := typesFor(dialect)
	if err != nil {
		return err
	}
	for _, stmt := range schema(t) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	}
	// duplicates are skipped by ON CONFLICT
	if _, err := db.ExecContext(ctx, seedSourceTypesSQL); err != nil {
		return fmt.Errorf("seed source types: %w", err)
	}
	return nil
}

// MigrateDown drops the registry tables in reverse dependency order.
// All registered data is lost.
func MigrateDown(ctx context.Context, db Execer) error {
	for _, table := range []string{"news", "feed", "company", "source", "source_type"} {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("migrate down %s: %w", table, err)
		}
	}
	return nil
}
