package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite3/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

type DB struct {
	*sql.DB
	dialect goose.Dialect
}

// Open connects to the database named by url and applies pending migrations.
// postgres:// and postgresql:// URLs use pgx; sqlite://path, file: and bare
// paths use sqlite3.
func Open(ctx context.Context, url string) (*DB, error) {
	driver, dsn, dialect, err := parseURL(url)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d := &DB{DB: db, dialect: dialect}
	if err := d.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

// Wrap adopts an existing connection without migrating it.
func Wrap(db *sql.DB) *DB {
	return &DB{DB: db, dialect: goose.DialectSQLite3}
}

func parseURL(url string) (driver, dsn string, dialect goose.Dialect, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", url, goose.DialectPostgres, nil
	case url == "":
		return "", "", "", errors.New("database url is empty")
	}

	path := url
	for _, prefix := range []string{"sqlite3://", "sqlite://", "file:"} {
		path = strings.TrimPrefix(path, prefix)
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", "", "", fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return "sqlite3", path + "?_foreign_keys=on", goose.DialectSQLite3, nil
}

func (d *DB) migrate(ctx context.Context) error {
	dir := "migrations/sqlite3"
	if d.dialect == goose.DialectPostgres {
		dir = "migrations/postgres"
	}
	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(d.dialect, d.DB, fsys)
	if err != nil {
		return fmt.Errorf("migration setup failed: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err came from a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
