package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx is the handle a unit of work passes to its callback. Reads and writes go
// through the embedded DBTX; AfterCommit defers side effects (change
// notifications) until the transaction has committed. Hooks are dropped on
// rollback.
type Tx interface {
	DBTX
	AfterCommit(fn func())
}

// UnitOfWork manages transactional boundaries. Callers create tx-scoped
// repositories from the Tx handed to fn.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// SQLiteUnitOfWork implements UnitOfWork using database/sql transactions.
type SQLiteUnitOfWork struct {
	db *sql.DB
}

// NewSQLiteUnitOfWork creates a UnitOfWork backed by the given *sql.DB.
func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{db: db}
}

// HookedTx wraps any DBTX with an after-commit hook list. Test units of work
// reuse it so hooks behave the same under fault injection.
type HookedTx struct {
	DBTX
	hooks []func()
}

func NewHookedTx(inner DBTX) *HookedTx {
	return &HookedTx{DBTX: inner}
}

func (t *HookedTx) AfterCommit(fn func()) {
	if fn != nil {
		t.hooks = append(t.hooks, fn)
	}
}

// RunHooks invokes the registered hooks in registration order.
func (t *HookedTx) RunHooks() {
	for _, fn := range t.hooks {
		fn()
	}
	t.hooks = nil
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	sqlTx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	tx := NewHookedTx(sqlTx)

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	tx.RunHooks()
	return nil
}
