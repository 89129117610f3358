package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/registrar"
)

// Natural-key constraint names created by db.MigrateUp.
const (
	SourceTypeNameKey = "source_type_name_key"
	SourceURLKey      = "source_url_key"
	FeedURLKey        = "feed_url_key"
	NewsGUIDKey       = "news_guid_key"
	CompanyNameURLKey = "company_name_url_key"
)

// Classifier classifies PostgreSQL write failures by SQLSTATE and constraint name.
type Classifier struct {
	naturalKeys map[entity.Kind]string
}

// NewClassifier returns a classifier that knows the natural-key constraint of every kind.
func NewClassifier() *Classifier {
	return &Classifier{naturalKeys: map[entity.Kind]string{
		entity.KindSourceType: SourceTypeNameKey,
		entity.KindSource:     SourceURLKey,
		entity.KindFeed:       FeedURLKey,
		entity.KindNewsItem:   NewsGUIDKey,
		entity.KindCompany:    CompanyNameURLKey,
	}}
}

// Classify implements registrar.Classifier.
// Only a unique violation on kind's own natural-key constraint is a collision; a unique
// violation on any other constraint (the primary key, for one) is a validation failure.
func (c *Classifier) Classify(kind entity.Kind, err error) registrar.Class {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := strings.TrimSpace(pgErr.Code)
		switch code {
		case "23505": // unique_violation
			if want, ok := c.naturalKeys[kind]; ok && pgErr.ConstraintName == want {
				return registrar.ClassCollision
			}
			return registrar.ClassValidation
		case "23503", "23502", "23514": // foreign_key, not_null, check
			return registrar.ClassValidation
		case "40001", "40P01", "55P03", "53300", "57P01", "57P02", "57P03":
			// serialization, deadlock, lock_not_available, too_many_connections, shutdown
			return registrar.ClassTransport
		}
		switch {
		case strings.HasPrefix(code, "22"): // data_exception
			return registrar.ClassValidation
		case strings.HasPrefix(code, "08"): // connection_exception
			return registrar.ClassTransport
		}
		return registrar.ClassFatal
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return registrar.ClassTransport
	}
	if class, ok := registrar.CommonClass(err); ok {
		return class
	}
	return registrar.ClassFatal
}
