/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists date range types, date ranges, the host entries searched by
  period and the autogeneration run log.

INTERFACES IMPLEMENTED:
  daterange.Store:    Types and ranges
  daterange.TxStore:  Rollback scopes (transaction, then savepoints)
  daterange.RunStore: Autogeneration run log
  entries.Store:      Host records
  search.Querier:     The batched containment query

CONSTRAINTS:
  The store owns the record invariants and reports them as
  *daterange.ConstraintError:
  - unique (name, company_id) on types   -> idx_date_range_types_name_company
  - date_start <= date_end on ranges     -> CHECK date_range_date_order
  - no overlap within a no-overlap type  -> checked in the create transaction,
                                            scoped by type and company

KEY TABLES:
  date_range_types:    Types with their generation defaults
  date_ranges:         Named inclusive intervals (dates as YYYY-MM-DD text)
  entries:             Host records (amount as decimal text)
  autogeneration_runs: One line per type per sweep

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. A WithTx scope holds the write lock
  until it commits.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/dateranges.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  gen := daterange.NewGenerator(store, logger)

MIGRATION:
  Versioned goose migrations embedded from migrations/ run on New().

SEE ALSO:
  - daterange/store.go: Interface definitions
  - daterange/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/warp/daterange-engine/daterange"
	"github.com/warp/daterange-engine/store/sqlite/migrations"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
	q  queries
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, q: queries{db: db}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var gooseMu sync.Mutex

// migrate applies the embedded migrations.
func (s *Store) migrate() error {
	// goose keeps its settings in package globals
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(s.db, ".")
}

// QueryContext runs a read query against the database. It lets the store
// serve as a search.Querier.
func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// =============================================================================
// TRANSACTIONAL STORE (daterange.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store daterange.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(ctx, func(q queries) error {
		return fn(&txStore{q: q})
	})
}

// inTx runs fn in a new transaction. Callers hold the write lock.
func (s *Store) inTx(ctx context.Context, fn func(q queries) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(queries{db: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore is the Store handed to a WithTx function. Its own WithTx opens a
// savepoint.
type txStore struct {
	q     queries
	depth int
}

func (ts *txStore) WithTx(ctx context.Context, fn func(store daterange.Store) error) error {
	name := fmt.Sprintf("sp_%d", ts.depth+1)
	if _, err := ts.q.db.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to open savepoint: %w", err)
	}

	if err := fn(&txStore{q: ts.q, depth: ts.depth + 1}); err != nil {
		if _, rbErr := ts.q.db.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back savepoint: %w", rbErr))
		}
		if _, relErr := ts.q.db.ExecContext(ctx, "RELEASE SAVEPOINT "+name); relErr != nil {
			return errors.Join(err, fmt.Errorf("failed to release savepoint: %w", relErr))
		}
		return err
	}

	if _, err := ts.q.db.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

func (ts *txStore) CreateType(ctx context.Context, t daterange.DateRangeType) (daterange.TypeID, error) {
	return ts.q.createType(ctx, t)
}

func (ts *txStore) GetType(ctx context.Context, id daterange.TypeID) (*daterange.DateRangeType, error) {
	return ts.q.getType(ctx, id)
}

func (ts *txStore) FindTypeByCode(ctx context.Context, code string, companyID daterange.CompanyID) (*daterange.DateRangeType, error) {
	return ts.q.findTypeByCode(ctx, code, companyID)
}

func (ts *txStore) ListTypes(ctx context.Context, filter daterange.TypeFilter) ([]daterange.DateRangeType, error) {
	return ts.q.listTypes(ctx, filter)
}

func (ts *txStore) CreateRange(ctx context.Context, r daterange.DateRange) (daterange.RangeID, error) {
	return ts.q.createRange(ctx, r)
}

func (ts *txStore) GetRange(ctx context.Context, id daterange.RangeID) (*daterange.DateRange, error) {
	return ts.q.getRange(ctx, id)
}

func (ts *txStore) ListRanges(ctx context.Context, filter daterange.RangeFilter) ([]daterange.DateRange, error) {
	return ts.q.listRanges(ctx, filter)
}

func (ts *txStore) LastRange(ctx context.Context, typeID daterange.TypeID) (*daterange.DateRange, error) {
	return ts.q.lastRange(ctx, typeID)
}

func (ts *txStore) DeleteRange(ctx context.Context, id daterange.RangeID) error {
	return ts.q.deleteRange(ctx, id)
}

// =============================================================================
// HELPERS
// =============================================================================

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries holds the SQL of every operation, run against a db or a tx.
type queries struct {
	db dbtx
}

func isConstraintError(err error, code sqlite3.ErrNoExtended) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == code
}

func formatDate(d daterange.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func parseDate(s string) (daterange.Date, error) {
	if s == "" {
		return daterange.Date{}, nil
	}
	return daterange.ParseDate(s)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
