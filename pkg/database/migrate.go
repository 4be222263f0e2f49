package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const migrationSuffix = ".up.sql"

const (
	createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	versionAppliedQuery = `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`
	recordVersionQuery  = `INSERT INTO schema_migrations (version) VALUES ($1)`
)

// MigrationDB is the subset of a connection pool used to apply migrations.
// Both *pgxpool.Pool and the pgxmock pool satisfy it.
type MigrationDB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

var transientMessages = []string{
	"connection refused",
	"connection reset",
	"connection timed out",
	"broken pipe",
	"no such host",
	"i/o timeout",
	"dial tcp",
	"eof",
	"server closed the connection",
	"could not connect",
}

// isConnectionError reports whether err is a network level failure worth
// retrying, as opposed to a SQL error.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var (
		connErr *pgconn.ConnectError
		netErr  net.Error
	)
	if errors.As(err, &connErr) || errors.As(err, &netErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return slices.ContainsFunc(transientMessages, func(p string) bool {
		return strings.Contains(msg, p)
	})
}

// RunMigrations applies every *.up.sql file at the root of migrations in
// lexical order, recording each version in schema_migrations. Files already
// recorded are skipped. Connection failures are retried with
// DefaultRetryPolicy; SQL errors are returned as is.
func RunMigrations(ctx context.Context, pool MigrationDB, migrations fs.FS, logger *slog.Logger) error {
	files, err := pendingFiles(migrations)
	if err != nil {
		return err
	}

	return DefaultRetryPolicy().Do(ctx, logger, "run migrations", func(ctx context.Context) error {
		err := applyMigrations(ctx, pool, migrations, files, logger)
		if err != nil && !isConnectionError(err) {
			return Permanent(err)
		}
		return err
	})
}

func pendingFiles(migrations fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), migrationSuffix) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func applyMigrations(ctx context.Context, pool MigrationDB, migrations fs.FS, files []string, logger *slog.Logger) error {
	if _, err := pool.Exec(ctx, createVersionTable); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, name := range files {
		var applied bool
		if err := pool.QueryRow(ctx, versionAppliedQuery, name).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied {
			logger.Debug("migration already applied", slog.String("version", name))
			continue
		}

		script, err := fs.ReadFile(migrations, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := applyOne(ctx, pool, name, string(script)); err != nil {
			return err
		}
		logger.Info("migration applied", slog.String("version", name))
	}
	return nil
}

// applyOne runs the script and records its version in one transaction.
func applyOne(ctx context.Context, pool MigrationDB, name, script string) (err error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx for migration %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, script); err != nil {
		return fmt.Errorf("execute migration %s: %w", name, err)
	}
	if _, err = tx.Exec(ctx, recordVersionQuery, name); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}
