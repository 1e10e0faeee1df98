package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLExecutor is the query surface shared by *sql.DB and *sql.Tx. Repository
// methods that take part in cascading writes accept one so the service layer
// can run them inside a single transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Tx is a started transaction.
type Tx interface {
	SQLExecutor
	Commit() error
	Rollback() error
}

// TxBeginner starts transactions. Services depend on this interface rather
// than *sql.DB directly so cascade logic stays testable with fakes.
type TxBeginner interface {
	Begin(ctx context.Context) (Tx, error)
}

type sqlTxBeginner struct {
	db *sql.DB
}

func NewTxBeginner(db *sql.DB) TxBeginner {
	return sqlTxBeginner{db: db}
}

func (b sqlTxBeginner) Begin(ctx context.Context) (Tx, error) {
	return b.db.BeginTx(ctx, nil)
}

func checkAffectedRows(result sql.Result, notFoundErr error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundErr
	}
	return nil
}
