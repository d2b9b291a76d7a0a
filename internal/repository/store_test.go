package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkodi/link-shortener/internal/config"
	"github.com/darkodi/link-shortener/internal/logger"
	"github.com/darkodi/link-shortener/internal/model"
)

// uniqueSlug keeps runs against long-lived Postgres/Redis instances apart
func uniqueSlug(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// runStoreContract exercises the behaviour every LinkStore must provide
func runStoreContract(t *testing.T, store LinkStore) {
	ctx := context.Background()

	t.Run("create then get", func(t *testing.T) {
		link := model.NewLink(uniqueSlug("get"), "https://example.com/a?b=c&d=%20e")
		require.NoError(t, store.Create(ctx, link))

		got, err := store.GetBySlug(ctx, link.Slug)
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)
		assert.Equal(t, link.Slug, got.Slug)
		assert.Equal(t, link.URL, got.URL, "url must round-trip byte for byte")
		assert.Zero(t, got.Clicks)
		assert.WithinDuration(t, link.CreatedAt, got.CreatedAt, time.Millisecond)
	})

	t.Run("missing slug", func(t *testing.T) {
		_, err := store.GetBySlug(ctx, uniqueSlug("missing"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate slug is rejected", func(t *testing.T) {
		slug := uniqueSlug("dup")
		require.NoError(t, store.Create(ctx, model.NewLink(slug, "https://example.com/one")))

		err := store.Create(ctx, model.NewLink(slug, "https://example.com/two"))
		assert.ErrorIs(t, err, ErrDuplicateSlug)

		got, err := store.GetBySlug(ctx, slug)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/one", got.URL, "the losing insert must not overwrite")
	})

	t.Run("concurrent creates of one slug: exactly one wins", func(t *testing.T) {
		slug := uniqueSlug("race")
		const attempts = 8

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			dupes     int
		)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.Create(ctx, model.NewLink(slug, "https://example.com/race"))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, ErrDuplicateSlug):
					dupes++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, attempts-1, dupes)
	})

	t.Run("increment clicks", func(t *testing.T) {
		link := model.NewLink(uniqueSlug("inc"), "https://example.com/inc")
		link.Clicks = 5
		require.NoError(t, store.Create(ctx, link))

		require.NoError(t, store.IncrementClicks(ctx, link.Slug))

		got, err := store.GetBySlug(ctx, link.Slug)
		require.NoError(t, err)
		assert.EqualValues(t, 6, got.Clicks)
	})

	t.Run("increment missing slug", func(t *testing.T) {
		slug := uniqueSlug("ghost")
		err := store.IncrementClicks(ctx, slug)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.GetBySlug(ctx, slug)
		assert.ErrorIs(t, err, ErrNotFound, "increment must not create a link")
	})

	t.Run("concurrent increments lose nothing", func(t *testing.T) {
		link := model.NewLink(uniqueSlug("many"), "https://example.com/many")
		require.NoError(t, store.Create(ctx, link))

		const n = 50
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.IncrementClicks(ctx, link.Slug))
			}()
		}
		wg.Wait()

		got, err := store.GetBySlug(ctx, link.Slug)
		require.NoError(t, err)
		assert.EqualValues(t, n, got.Clicks)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "links.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	runStoreContract(t, store)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore(context.Background(), ":memory:", logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	runStoreContract(t, store)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "links.db")

	store, err := NewSQLiteStore(ctx, path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, model.NewLink("persist", "https://example.com/p")))
	require.NoError(t, store.Close())

	// migrations must be idempotent on an existing database
	store, err = NewSQLiteStore(ctx, path, logger.Nop())
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetBySlug(ctx, "persist")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/p", got.URL)
}

func TestSQLiteStore_UniqueIndexIsTheGuard(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(ctx, ":memory:", logger.Nop())
	require.NoError(t, err)
	defer store.Close()

	// Insert behind the store's back; the index alone must stop the second row.
	_, err = store.DB().ExecContext(ctx,
		"INSERT INTO links (id, slug, url, created_at) VALUES (?, ?, ?, ?)",
		uuid.NewString(), "raw", "https://example.com/raw", time.Now().UTC())
	require.NoError(t, err)

	err = store.Create(ctx, model.NewLink("raw", "https://example.com/other"))
	assert.ErrorIs(t, err, ErrDuplicateSlug)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	store, err := NewPostgresStore(context.Background(), dsn, 10, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	runStoreContract(t, store)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_URL")
	if addr == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	store, err := NewRedisStore(context.Background(), addr)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	runStoreContract(t, store)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), &config.DatabaseConfig{Driver: "mongo"}, logger.Nop())
	assert.Error(t, err)
}

func TestNew_SQLite(t *testing.T) {
	store, err := New(context.Background(), &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "links.db"),
	}, logger.Nop())
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &SQLStore{}, store)
}
