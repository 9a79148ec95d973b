package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxManager wraps a function in an atomic unit of work. Multi-entity
// operations (movement + adjustment, order placement + decrements,
// payment + installment generation) must run inside WithTransaction so
// they are never observed half-applied.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// executor is the subset of *sql.DB and *sql.Tx the repositories use
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlTxKey struct{}

// conn resolves the executor for the current context: the enclosing
// transaction if one is open, otherwise the pool itself.
func conn(ctx context.Context, db *sql.DB) executor {
	if tx, ok := ctx.Value(sqlTxKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

type sqlTxManager struct {
	db *sql.DB
}

// NewSQLTxManager creates a TxManager backed by database transactions
func NewSQLTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls join the enclosing transaction
	if _, ok := ctx.Value(sqlTxKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, sqlTxKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
