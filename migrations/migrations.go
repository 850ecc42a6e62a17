// Package migrations embeds the goose SQL migrations of the manifest store.
package migrations

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

func setup(logger goose.Logger) error {
	goose.SetBaseFS(FS)
	if logger != nil {
		goose.SetLogger(logger)
	}
	return goose.SetDialect("postgres")
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, logger goose.Logger) error {
	if err := setup(logger); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, logger goose.Logger) error {
	if err := setup(logger); err != nil {
		return err
	}
	return goose.DownContext(ctx, db, ".")
}

func Status(ctx context.Context, db *sql.DB, logger goose.Logger) error {
	if err := setup(logger); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, ".")
}
