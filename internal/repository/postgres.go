package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/darkodi/link-shortener/internal/logger"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

var postgresQueries = sqlQueries{
	insert:    "INSERT INTO links (id, slug, url, created_at, clicks) VALUES ($1, $2, $3, $4, $5)",
	getBySlug: "SELECT id, slug, url, created_at, clicks FROM links WHERE slug = $1",
	increment: "UPDATE links SET clicks = clicks + 1 WHERE slug = $1",
}

// NewPostgresStore connects to PostgreSQL and migrates the schema
func NewPostgresStore(ctx context.Context, databaseURL string, maxOpenConns int, log *logger.Logger) (*SQLStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := runMigrations(db, "postgres", log); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLStore{db: db, q: postgresQueries, isDuplicate: isPostgresUniqueViolation}, nil
}

func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return false
}
