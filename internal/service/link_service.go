package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/darkodi/link-shortener/internal/logger"
	"github.com/darkodi/link-shortener/internal/model"
	"github.com/darkodi/link-shortener/internal/repository"
	"github.com/darkodi/link-shortener/internal/slug"
	"github.com/darkodi/link-shortener/internal/validator"
)

// Custom errors for the service layer
var (
	ErrDuplicateSlug = errors.New("slug already in use")
	ErrNotFound      = errors.New("link not found")
)

// CounterUpdateError is logged when a click increment fails. It never
// reaches the client.
type CounterUpdateError struct {
	Slug string
	Err  error
}

func (e *CounterUpdateError) Error() string {
	return fmt.Sprintf("update click counter for %q: %v", e.Slug, e.Err)
}

func (e *CounterUpdateError) Unwrap() error {
	return e.Err
}

const defaultClickTimeout = 5 * time.Second

// LinkService handles business logic for link operations
type LinkService struct {
	store        repository.LinkStore
	validator    *validator.URLValidator
	generate     slug.Generator
	baseURL      string // e.g., "http://localhost:3000"
	log          *logger.Logger
	clickTimeout time.Duration

	// pending tracks in-flight click increments so shutdown can drain them
	pending sync.WaitGroup
}

// Option customises a LinkService
type Option func(*LinkService)

// WithValidator replaces the default input validator
func WithValidator(v *validator.URLValidator) Option {
	return func(s *LinkService) { s.validator = v }
}

// WithSlugGenerator replaces the random slug source
func WithSlugGenerator(g slug.Generator) Option {
	return func(s *LinkService) { s.generate = g }
}

// WithClickTimeout bounds each background click increment
func WithClickTimeout(d time.Duration) Option {
	return func(s *LinkService) {
		if d > 0 {
			s.clickTimeout = d
		}
	}
}

// NewLinkService creates a new service instance
func NewLinkService(store repository.LinkStore, baseURL string, log *logger.Logger, opts ...Option) *LinkService {
	if log == nil {
		log = logger.Nop()
	}
	s := &LinkService{
		store:        store,
		validator:    validator.NewURLValidator(),
		generate:     slug.Generate,
		baseURL:      strings.TrimRight(baseURL, "/"),
		log:          log,
		clickTimeout: defaultClickTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShortURL builds the public URL for a slug
func (s *LinkService) ShortURL(code string) string {
	return s.baseURL + "/" + code
}

// CreateLink validates the request, picks a slug and stores the link.
// A taken slug yields ErrDuplicateSlug; nothing is retried.
func (s *LinkService) CreateLink(ctx context.Context, req model.CreateLinkRequest) (*model.CreateLinkResponse, error) {
	// ============ STEP 1: Validation ============
	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, err
	}

	// ============ STEP 2: Determine Slug ============
	var code string
	if req.Slug != nil {
		code = *req.Slug
	} else {
		generated, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		code = generated
	}

	// ============ STEP 3: Create the record ============
	// No existence check first: the store's unique constraint decides.
	link := model.NewLink(code, req.URL)
	if err := s.store.Create(ctx, link); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create link: %w", err)
	}

	logger.FromContext(ctx, s.log).Info("link created", "slug", link.Slug, "generated", req.Slug == nil)

	// ============ STEP 4: Build response ============
	return &model.CreateLinkResponse{
		Slug:     link.Slug,
		ShortURL: s.ShortURL(link.Slug),
		URL:      link.URL,
	}, nil
}

// Resolve finds the link for a redirect and schedules the click increment
// in the background. The increment never delays or fails the lookup.
func (s *LinkService) Resolve(ctx context.Context, code string) (*model.Link, error) {
	link, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	s.recordClick(ctx, link.Slug)
	return link, nil
}

// GetStats returns the current counters for a link
func (s *LinkService) GetStats(ctx context.Context, code string) (*model.LinkStats, error) {
	link, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	return &model.LinkStats{
		Slug:      link.Slug,
		URL:       link.URL,
		Clicks:    link.Clicks,
		CreatedAt: link.CreatedAt,
	}, nil
}

// Ping reports whether the link store is reachable
func (s *LinkService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Wait blocks until every scheduled click increment has finished or ctx ends.
// Call it after the HTTP server has stopped accepting requests.
func (s *LinkService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *LinkService) lookup(ctx context.Context, code string) (*model.Link, error) {
	link, err := s.store.GetBySlug(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

// recordClick increments the counter on a detached goroutine. The request
// context's values are kept for logging but its cancellation is not, since
// the response is usually written before the increment lands.
func (s *LinkService) recordClick(ctx context.Context, code string) {
	log := logger.FromContext(ctx, s.log)
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error("click counter panicked", "slug", code, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, s.clickTimeout)
		defer cancel()

		if err := s.store.IncrementClicks(ctx, code); err != nil {
			cerr := &CounterUpdateError{Slug: code, Err: err}
			log.Warn("click count update failed", "slug", code, "error", cerr.Error())
		}
	}()
}
