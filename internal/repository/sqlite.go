package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"

	"github.com/darkodi/link-shortener/internal/logger"
)

var sqliteQueries = sqlQueries{
	insert:    "INSERT INTO links (id, slug, url, created_at, clicks) VALUES (?, ?, ?, ?, ?)",
	getBySlug: "SELECT id, slug, url, created_at, clicks FROM links WHERE slug = ?",
	increment: "UPDATE links SET clicks = clicks + 1 WHERE slug = ?",
}

// NewSQLiteStore opens (creating if needed) the SQLite database at path.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string, log *logger.Logger) (*SQLStore, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps an
	// in-memory database alive and shared by every query.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := runMigrations(db, "sqlite3", log); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLStore{db: db, q: sqliteQueries, isDuplicate: isSQLiteUniqueViolation}, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
