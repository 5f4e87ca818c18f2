package client

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/flklr-dev/SecureMVPLab/internal/client/migrations"
	"github.com/flklr-dev/SecureMVPLab/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const memoryDSN = ":memory:"

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite database at path, creating its directory
// if needed, and applies migrations. ":memory:" opens a private in-memory
// database on a single connection.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	dsn := memoryDSN
	if path != memoryDSN {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, err
		}
		q := url.Values{}
		q.Add("_pragma", "busy_timeout(5000)")
		q.Add("_pragma", "journal_mode(WAL)")
		dsn = "file:" + path + "?" + q.Encode()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == memoryDSN {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
