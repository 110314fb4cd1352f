package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx so repository writes
// can run inside or outside a transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Transactor runs fn with an executor whose writes commit together. The
// in-memory implementation used in tests runs fn with a nil executor; every
// repository treats nil as "use your own handle".
type Transactor interface {
	WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type sqlTransactor struct {
	db *sql.DB
}

func NewSQLTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func checkAffectedRows(result sql.Result, zeroRowsError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return zeroRowsError
	}
	return nil
}
