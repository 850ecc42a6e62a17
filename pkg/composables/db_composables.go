package composables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jjwprotozoa/dmoc-sub000/pkg/constants"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/repo"
)

var (
	ErrNoTx   = errors.New("no transaction found in context")
	ErrNoPool = errors.New("no database pool found in context")
)

func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, constants.TxKey, tx)
}

// UseTx returns the transaction in ctx, falling back to the pool.
func UseTx(ctx context.Context) (repo.Tx, error) {
	if tx, ok := ctx.Value(constants.TxKey).(pgx.Tx); ok && tx != nil {
		return tx, nil
	}
	return UsePool(ctx)
}

func WithPool(ctx context.Context, pool *pgxpool.Pool) context.Context {
	return context.WithValue(ctx, constants.PoolKey, pool)
}

func UsePool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, ok := ctx.Value(constants.PoolKey).(*pgxpool.Pool)
	if !ok || pool == nil {
		return nil, ErrNoPool
	}
	return pool, nil
}

// InTx runs fn in a new transaction with default options.
func InTx(ctx context.Context, fn func(context.Context) error) error {
	return InTxWithOptions(ctx, pgx.TxOptions{}, fn)
}

// InTxWithOptions always begins a new transaction from the pool in ctx.
func InTxWithOptions(ctx context.Context, opts pgx.TxOptions, fn func(context.Context) error) error {
	pool, err := UsePool(ctx)
	if err != nil {
		return err
	}

	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	txCtx := WithTx(ctx, tx)
	if err := ApplyTenantRLS(txCtx, tx); err != nil {
		if rErr := tx.Rollback(context.WithoutCancel(ctx)); rErr != nil {
			return errors.Join(err, rErr)
		}
		return err
	}

	if err := fn(txCtx); err != nil {
		if rErr := tx.Rollback(context.WithoutCancel(ctx)); rErr != nil {
			return errors.Join(err, rErr)
		}
		return err
	}
	return tx.Commit(ctx)
}
