package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/darkodi/link-shortener/internal/model"
)

// sqlQueries holds the dialect-specific statements of a SQLStore
type sqlQueries struct {
	insert    string
	getBySlug string
	increment string
}

// SQLStore is a LinkStore over database/sql. The unique index on
// links.slug is what rejects duplicates; isDuplicate recognises the
// driver's unique-violation error.
type SQLStore struct {
	db          *sql.DB
	q           sqlQueries
	isDuplicate func(error) bool
}

// DB exposes the underlying pool, mainly for tests and admin tooling
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Create(ctx context.Context, link *model.Link) error {
	_, err := s.db.ExecContext(ctx, s.q.insert,
		link.ID, link.Slug, link.URL, link.CreatedAt, link.Clicks,
	)
	if err != nil {
		if s.isDuplicate(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("insert link: %w", err)
	}
	return nil
}

func (s *SQLStore) GetBySlug(ctx context.Context, slug string) (*model.Link, error) {
	link := &model.Link{}
	err := s.db.QueryRowContext(ctx, s.q.getBySlug, slug).
		Scan(&link.ID, &link.Slug, &link.URL, &link.CreatedAt, &link.Clicks)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	link.CreatedAt = link.CreatedAt.UTC()
	return link, nil
}

func (s *SQLStore) IncrementClicks(ctx context.Context, slug string) error {
	result, err := s.db.ExecContext(ctx, s.q.increment, slug)
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
