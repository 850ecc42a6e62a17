package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/jjwprotozoa/dmoc-sub000/migrations"
	"github.com/jjwprotozoa/dmoc-sub000/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate up|down|status",
		Short:     "Apply or roll back the manifest store schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), configuration.Use(), args[0])
		},
	}
	return cmd
}

func runMigrate(ctx context.Context, conf *configuration.Configuration, direction string) error {
	pool, err := connectDB(ctx, conf, 0)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	logger := conf.Logger()
	switch direction {
	case "up":
		err = migrations.Up(ctx, db, logger)
	case "down":
		err = migrations.Down(ctx, db, logger)
	case "status":
		err = migrations.Status(ctx, db, logger)
	default:
		return withCode(exitUsage, fmt.Errorf("unknown migrate direction %q", direction))
	}
	if err != nil {
		return withCode(exitDBWrite, fmt.Errorf("migrate %s: %w", direction, err))
	}
	return nil
}
