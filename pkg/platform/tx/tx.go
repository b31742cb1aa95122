// Package tx carries a SQL transaction through context so stores can join an
// enclosing transaction without changing their signatures. Services that need
// multi-statement atomicity wrap the work in RunInTx; stores pick the
// transaction up via From and fall back to their own *sql.DB otherwise.
package tx

import (
	"context"
	"database/sql"
	"fmt"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Beginner abstracts *sql.DB for transaction start, letting tests substitute
// their own implementation.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// RunInTx executes fn inside a transaction injected into the context.
// Commit happens only when fn returns nil; any error rolls the whole
// transaction back, so partial writes never survive.
//
// When db is nil (memory-backed deployments) fn runs directly against the
// untouched context: memory stores provide their own atomicity.
func RunInTx(ctx context.Context, db Beginner, fn func(ctx context.Context) error) error {
	if db == nil {
		return fn(ctx)
	}

	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
