package composables

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jjwprotozoa/dmoc-sub000/pkg/constants"
)

// InTenantTx reuses a transaction already in ctx (re-applying the tenant
// setting) or opens a new one.
func InTenantTx(ctx context.Context, fn func(context.Context) error) error {
	return InTenantTxWithOptions(ctx, pgx.TxOptions{}, fn)
}

// InTenantTxWithOptions is InTenantTx with explicit options for the new
// transaction, e.g. serializable isolation for batch writes. Options are
// ignored when joining an existing transaction.
func InTenantTxWithOptions(ctx context.Context, opts pgx.TxOptions, fn func(context.Context) error) error {
	if existing, ok := ctx.Value(constants.TxKey).(pgx.Tx); ok && existing != nil {
		if err := ApplyTenantRLS(ctx, existing); err != nil {
			return err
		}
		return fn(ctx)
	}
	return InTxWithOptions(ctx, opts, fn)
}

func InTenantTxResult[T any](ctx context.Context, opts pgx.TxOptions, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := InTenantTxWithOptions(ctx, opts, func(txCtx context.Context) error {
		var innerErr error
		out, innerErr = fn(txCtx)
		return innerErr
	})
	return out, err
}
