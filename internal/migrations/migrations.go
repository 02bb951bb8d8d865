// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var files embed.FS

const dir = "sql"

// Command names accepted by Run.
const (
	CommandUp     = "up"
	CommandDown   = "down"
	CommandStatus = "status"
)

// Run executes a goose command against the database behind pool. Status output goes to out.
func Run(ctx context.Context, pool *pgxpool.Pool, command string, out io.Writer) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	return run(ctx, db, command, out)
}

func run(ctx context.Context, db *sql.DB, command string, out io.Writer) error {
	goose.SetBaseFS(files)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetLogger(goose.NopLogger())

	switch command {
	case CommandUp, "":
		if err := gooseUp(ctx, db, dir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		_, _ = fmt.Fprintln(out, "migrations applied")
		return nil
	case CommandDown:
		if err := gooseDown(ctx, db, dir); err != nil {
			return fmt.Errorf("roll back migration: %w", err)
		}
		_, _ = fmt.Fprintln(out, "rolled back latest migration")
		return nil
	case CommandStatus:
		version, err := gooseVersion(ctx, db)
		if err != nil {
			return fmt.Errorf("read migration version: %w", err)
		}
		_, _ = fmt.Fprintf(out, "schema version %d\n", version)
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

// Seams for tests.
var (
	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.UpContext(ctx, db, dir)
	}
	gooseDown = func(ctx context.Context, db *sql.DB, dir string) error {
		return goose.DownContext(ctx, db, dir)
	}
	gooseVersion = func(ctx context.Context, db *sql.DB) (int64, error) {
		return goose.GetDBVersionContext(ctx, db)
	}
)
