package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxManager runs a unit of work atomically.  The transaction travels in the
// context handed to fn; repositories called with that context join it.
// Calling WithTx with a context that already carries a transaction reuses
// it instead of opening a nested one.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type sqlTxKey struct{}

// execer is the subset of *sql.DB and *sql.Tx the repositories need.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db *sql.DB) execer {
	if tx, ok := ctx.Value(sqlTxKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// SQLTxManager opens database/sql transactions.
type SQLTxManager struct {
	db *sql.DB
}

// NewSQLTxManager returns a TxManager bound to db.
func NewSQLTxManager(db *sql.DB) *SQLTxManager { return &SQLTxManager{db: db} }

// WithTx begins a transaction, runs fn and commits when fn returns nil.
// Any error from fn rolls the transaction back and is returned unchanged.
func (m *SQLTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(sqlTxKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(context.WithValue(ctx, sqlTxKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
