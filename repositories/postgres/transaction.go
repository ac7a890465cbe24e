package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upb/agri-advisory-gateway/repositories"
	"go.uber.org/zap"
)

type txKey struct{}

// TransactionManager opens transactions on the pool and hands them to
// repositories through the context.
type TransactionManager struct {
	db     *DB
	logger *zap.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(db *DB, logger *zap.Logger) repositories.TransactionManager {
	return &TransactionManager{
		db:     db,
		logger: logger,
	}
}

// Begin starts a transaction. When ctx already carries one, the returned
// handle joins it: Commit and Rollback are left to the outermost owner.
func (tm *TransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	if outer, ok := txFromContext(ctx); ok {
		return &Transaction{tx: outer.tx, ctx: ctx, logger: tm.logger, joined: true}, nil
	}

	sqlTx, err := tm.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", translateError(err))
	}
	tm.logger.Debug("transaction started")

	tx := &Transaction{tx: sqlTx, logger: tm.logger}
	tx.ctx = context.WithValue(ctx, txKey{}, tx)
	return tx, nil
}

// Transaction is a *sql.Tx bound to the context that repositories receive
type Transaction struct {
	tx     *sql.Tx
	ctx    context.Context
	logger *zap.Logger
	joined bool
}

// Commit commits the transaction. A joined handle commits nothing.
func (t *Transaction) Commit() error {
	if t.joined {
		return nil
	}
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", translateError(err))
	}
	t.logger.Debug("transaction committed")
	return nil
}

// Rollback rolls back the transaction. Rolling back a finished transaction is
// not an error, so callers may defer it unconditionally.
func (t *Transaction) Rollback() error {
	if t.joined {
		return nil
	}
	if err := t.tx.Rollback(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return nil
		}
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	t.logger.Debug("transaction rolled back")
	return nil
}

// Context returns a context that routes repository calls through the transaction
func (t *Transaction) Context() context.Context {
	return t.ctx
}

func txFromContext(ctx context.Context) (*Transaction, bool) {
	tx, ok := ctx.Value(txKey{}).(*Transaction)
	return tx, ok
}

// Executor is satisfied by both *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// GetExecutor returns the transaction carried by ctx, or the pool
func GetExecutor(ctx context.Context, db *DB) Executor {
	if tx, ok := txFromContext(ctx); ok {
		return tx.tx
	}
	return db.DB
}
