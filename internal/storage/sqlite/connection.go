// Package sqlite implements storage.Storage on top of SQLite, using the
// pure-Go ncruces/go-sqlite3 driver the same way the teacher's
// internal/storage/sqlite package does: register the driver's side-effect
// imports, open with pragmas baked into the DSN, and keep a single *sql.DB
// for the process.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/kgraphdb/kgraph/internal/storage"
)

// Store is the concrete storage.Storage implementation.
type Store struct {
	db *sql.DB
}

var _ storage.Storage = (*Store)(nil)

// New opens (creating if necessary) the SQLite database at path, applies
// pragmas, and runs the schema and any pending migrations.
func New(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		url.PathEscape(path))

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; matches the WAL + busy_timeout pragma set above

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// UnderlyingDB exposes the raw *sql.DB for analyzer packages doing direct
// read-only SQL. Returned as interface{} to keep database/sql out of the
// storage package's public contract.
func (s *Store) UnderlyingDB() interface{} {
	return s.db
}

// querier is satisfied by both *sql.DB and *sql.Tx, letting the row-level
// helpers in documents.go/tags.go/etc. run identically inside or outside a
// transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txWrapper adapts a *sql.Tx to storage.Transaction by delegating to the
// same row-level helpers the non-transactional methods use.
type txWrapper struct {
	tx *sql.Tx
}

func (t *txWrapper) q() querier { return t.tx }

// RunInTransaction runs fn inside a single SQLite transaction, committing on
// a nil return and rolling back otherwise.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(&txWrapper{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
