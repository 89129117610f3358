package sqlite

import (
	"errors"
	"strings"

	"github.com/ncruces/go-sqlite3"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/registrar"
)

// Classifier classifies SQLite write failures by extended result code.
type Classifier struct {
	naturalKeys map[entity.Kind]string
}

// NewClassifier returns a classifier that knows the natural-key columns of every kind,
// in the "table.column, table.column" form SQLite reports for UNIQUE failures.
func NewClassifier() *Classifier {
	return &Classifier{naturalKeys: map[entity.Kind]string{
		entity.KindSourceType: "source_type.name",
		entity.KindSource:     "source.url",
		entity.KindFeed:       "feed.url",
		entity.KindNewsItem:   "news.guid",
		entity.KindCompany:    "company.name, company.url",
	}}
}

// Classify implements registrar.Classifier.
// SQLite does not expose the constraint name, so once the extended code says
// CONSTRAINT_UNIQUE the reported column list is compared to kind's natural key.
func (c *Classifier) Classify(kind entity.Kind, err error) registrar.Class {
	var sqlErr *sqlite3.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.ExtendedCode() {
		case sqlite3.CONSTRAINT_UNIQUE:
			if want, ok := c.naturalKeys[kind]; ok && failedOn(sqlErr.Error(), want) {
				return registrar.ClassCollision
			}
			return registrar.ClassValidation
		case sqlite3.CONSTRAINT_PRIMARYKEY, sqlite3.CONSTRAINT_FOREIGNKEY,
			sqlite3.CONSTRAINT_NOTNULL, sqlite3.CONSTRAINT_CHECK:
			return registrar.ClassValidation
		}
		switch sqlErr.Code() {
		case sqlite3.BUSY, sqlite3.LOCKED, sqlite3.IOERR:
			return registrar.ClassTransport
		case sqlite3.CONSTRAINT, sqlite3.MISMATCH, sqlite3.TOOBIG:
			return registrar.ClassValidation
		}
		return registrar.ClassFatal
	}
	if class, ok := registrar.CommonClass(err); ok {
		return class
	}
	return registrar.ClassFatal
}

// failedOn reports whether a UNIQUE failure message names exactly the columns in cols.
func failedOn(msg, cols string) bool {
	i := strings.Index(msg, "failed: "+cols)
	if i < 0 {
		return false
	}
	rest := msg[i+len("failed: ")+len(cols):]
	return !strings.HasPrefix(rest, ",")
}
