package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/darkodi/link-shortener/internal/config"
	"github.com/darkodi/link-shortener/internal/logger"
	"github.com/darkodi/link-shortener/internal/model"
)

var (
	ErrNotFound      = errors.New("link not found")
	ErrDuplicateSlug = errors.New("slug already exists")
)

// LinkStore persists links. Implementations must be safe for concurrent use.
//
// Create must reject a second link with the same slug atomically, returning
// ErrDuplicateSlug; callers rely on this instead of checking beforehand.
// IncrementClicks must be a relative increment executed by the store so
// concurrent calls never lose updates.
type LinkStore interface {
	Create(ctx context.Context, link *model.Link) error
	GetBySlug(ctx context.Context, slug string) (*model.Link, error)
	IncrementClicks(ctx context.Context, slug string) error
	Ping(ctx context.Context) error
	Close() error
}

// New opens the store selected by cfg.Driver and brings its schema up to date
func New(ctx context.Context, cfg *config.DatabaseConfig, log *logger.Logger) (LinkStore, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return NewSQLiteStore(ctx, cfg.Path, log)
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg.URL, cfg.MaxOpenConns, log)
	case config.DriverRedis:
		return NewRedisStore(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
