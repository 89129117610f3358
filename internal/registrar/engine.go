package registrar

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/observability/metrics"
	"catchup-registry/internal/repository"
)

// Querier is the statement-execution capability the engine needs.
// *sql.DB, *sql.Tx and circuitbreaker.DBCircuitBreaker satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Query is a SQL statement with its positional arguments.
type Query struct {
	SQL  string
	Args []any
}

// Statement describes one registration.
//
// Insert must be a single statement that inserts the candidate row unless the natural key
// already exists, and yields at most one (id uuid, created bool) row. Lookup yields the id
// of the row holding the natural key.
type Statement struct {
	Kind       entity.Kind
	NaturalKey string
	Insert     Query
	Lookup     Query
}

// Engine executes registrations against a shared connection pool.
type Engine struct {
	db         Querier
	classifier Classifier
}

// New returns an engine using db for all statements and c to classify failures.
func New(db Querier, c Classifier) *Engine {
	return &Engine{db: db, classifier: c}
}

// Register runs st and reports the authoritative identifier for its natural key.
// A natural-key collision is never an error; any other failure is returned as *Error.
func (e *Engine) Register(ctx context.Context, st Statement) (repository.Registration, error) {
	start := time.Now()
	var reg repository.Registration
	err := e.resolve(ctx, st, []any{&reg.ID, &reg.Created}, []any{&reg.ID})
	if err != nil {
		reg = repository.Registration{}
	}
	metrics.RecordRegistration(st.Kind.String(), outcome(reg.Created, err), time.Since(start))
	return reg, err
}

// RegisterSerial is Register for kinds keyed by a database-assigned integer, such as
// source types. Insert yields at most one (id integer, created bool) row and Lookup
// yields the id.
func (e *Engine) RegisterSerial(ctx context.Context, st Statement) (int32, error) {
	start := time.Now()
	var (
		id      int32
		created bool
	)
	err := e.resolve(ctx, st, []any{&id, &created}, []any{&id})
	if err != nil {
		id, created = 0, false
	}
	metrics.RecordRegistration(st.Kind.String(), outcome(created, err), time.Since(start))
	return id, err
}

// resolve scans the insert row into insertDest, or the lookup row into lookupDest
// when the insert was suppressed.
func (e *Engine) resolve(ctx context.Context, st Statement, insertDest, lookupDest []any) error {
	found, err := e.queryRow(ctx, st.Insert, insertDest...)
	if err != nil {
		class := e.classifier.Classify(st.Kind, err)
		if class != ClassCollision {
			return &Error{Kind: st.Kind, NaturalKey: st.NaturalKey, Class: class, Err: err}
		}
		found = false
	}
	if found {
		return nil
	}

	// The insert was suppressed. The conflicting row is committed by now: ON CONFLICT
	// waits for the competing transaction before deciding, so a fresh statement sees it.
	found, err = e.queryRow(ctx, st.Lookup, lookupDest...)
	if err == nil && !found {
		err = ErrUnresolved
	}
	if err != nil {
		class := e.classifier.Classify(st.Kind, err)
		if class == ClassCollision {
			class = ClassFatal
		}
		return &Error{Kind: st.Kind, NaturalKey: st.NaturalKey, Class: class, Err: err}
	}
	return nil
}

// queryRow scans the first row of q into dest. found is false when q yields no row.
func (e *Engine) queryRow(ctx context.Context, q Query, dest ...any) (found bool, err error) {
	rows, err := e.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()

	if rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return false, fmt.Errorf("scan: %w", err)
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	return found, nil
}

func outcome(created bool, err error) string {
	if err != nil {
		if re, ok := err.(*Error); ok {
			return re.Class.String()
		}
		return ClassFatal.String()
	}
	if created {
		return "created"
	}
	return "existing"
}
