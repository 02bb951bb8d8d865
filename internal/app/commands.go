package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/vidcraft/backend/internal/catalog"
	"github.com/vidcraft/backend/internal/config"
	"github.com/vidcraft/backend/internal/migrations"
	"github.com/vidcraft/backend/internal/models"
	"github.com/vidcraft/backend/internal/repositories"
)

const (
	migrationMaxRetries  = 3
	migrationBaseBackoff = 100 * time.Millisecond
	migrationMaxBackoff  = 3 * time.Second

	minPasswordLength = 8
)

var retryablePgErrorCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

// Seams for tests.
var (
	applyMigrations = migrations.Run
	sleep           = func(ctx context.Context, d time.Duration) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
	readPassword = func() ([]byte, error) {
		if pw := os.Getenv("VIDCRAFT_USER_PASSWORD"); pw != "" {
			return []byte(pw), nil
		}
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return nil, errors.New("stdin is not a terminal; set VIDCRAFT_USER_PASSWORD")
		}
		_, _ = fmt.Fprint(os.Stderr, "Password: ")
		defer fmt.Fprintln(os.Stderr)
		return term.ReadPassword(fd)
	}
)

func runMigrate(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	command := migrations.CommandUp
	if len(args) > 0 {
		command = args[0]
	}

	pool, _, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	return migrateWithRetry(ctx, pool, command, stdout)
}

// migrateWithRetry retries transient failures of "up". goose records each
// applied version, so a retry resumes where the failed attempt stopped.
func migrateWithRetry(ctx context.Context, pool *pgxpool.Pool, command string, out io.Writer) error {
	if command != migrations.CommandUp && command != "" {
		return applyMigrations(ctx, pool, command, out)
	}

	var err error
	for attempt := 0; attempt < migrationMaxRetries; attempt++ {
		if attempt > 0 {
			backoff := migrationBaseBackoff << (attempt - 1)
			if backoff > migrationMaxBackoff {
				backoff = migrationMaxBackoff
			}
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
		}

		err = applyMigrations(ctx, pool, command, out)
		if err == nil || !shouldRetryMigration(err) {
			return err
		}
		_, _ = fmt.Fprintf(out, "transient error applying migrations (attempt %d/%d): %v\n", attempt+1, migrationMaxRetries, err)
	}

	return fmt.Errorf("apply migrations: exceeded max retries (%d): %w", migrationMaxRetries, err)
}

func shouldRetryMigration(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := retryablePgErrorCodes[pgErr.Code]; ok {
			return true
		}
	}

	return errors.Is(err, pgx.ErrTxClosed)
}

func runSeed(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "templates" {
		return errors.New("expected seed target: templates")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pool, store, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	return seedTemplates(ctx, store, stdout)
}

type templateSeeder interface {
	SeedTemplates(ctx context.Context, templates []models.NewTemplate) (int, error)
}

func seedTemplates(ctx context.Context, store templateSeeder, out io.Writer) error {
	inserted, err := store.SeedTemplates(ctx, catalog.Defaults())
	if err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	_, _ = fmt.Fprintf(out, "seeded %d of %d default templates\n", inserted, len(catalog.Defaults()))
	return nil
}

func runUser(ctx context.Context, args []string) error {
	if len(args) != 2 || args[0] != "create" {
		return errors.New("expected: user create <username>")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	password, err := readPassword()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	pool, store, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	return createUser(ctx, store, args[1], password, stdout)
}

func createUser(ctx context.Context, users repositories.UserRepository, username string, password []byte, out io.Writer) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username must not be empty")
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := users.CreateUser(ctx, models.NewUser{Username: username, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return fmt.Errorf("username %q is already taken", username)
		}
		return fmt.Errorf("create user: %w", err)
	}

	_, _ = fmt.Fprintf(out, "created user %s (id %d)\n", user.Username, user.ID)
	return nil
}
