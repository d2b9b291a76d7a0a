package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/darkodi/link-shortener/internal/errors"
	"github.com/darkodi/link-shortener/internal/logger"
	"github.com/darkodi/link-shortener/internal/model"
	"github.com/darkodi/link-shortener/internal/service"
	"github.com/darkodi/link-shortener/internal/validator"
)

// maxBodyBytes caps POST /links payloads
const maxBodyBytes = 64 << 10

// LinkHandler handles HTTP requests for link operations
type LinkHandler struct {
	service *service.LinkService
	log     *logger.Logger
}

// NewLinkHandler creates a new handler instance
func NewLinkHandler(svc *service.LinkService, log *logger.Logger) *LinkHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &LinkHandler{
		service: svc,
		log:     log,
	}
}

// ============ HANDLERS ============

// HandleCreate creates a new short link
// POST /links
func (h *LinkHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req model.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.InvalidJSON(err.Error()).WriteJSON(w)
		return
	}

	resp, err := h.service.CreateLink(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleRedirect redirects to the original URL
// GET /{slug}
func (h *LinkHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.Resolve(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Set Location directly: http.Redirect would rewrite non-ASCII bytes
	// and the stored URL must come back unchanged.
	w.Header().Set("Location", link.URL)
	w.WriteHeader(http.StatusFound)
}

// HandleStats returns statistics for a short link
// GET /links/{slug}
func (h *LinkHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HandleHealth returns service health status
// GET /_/health
func (h *LinkHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		h.writeError(w, r, errors.Unavailable(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ============ ROUTER SETUP ============

// SetupRoutes configures all HTTP routes.
// /{slug} matches a single path segment, so it never shadows /links/{slug},
// and the health check sits on two segments to keep every slug reachable.
func (h *LinkHandler) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /links", h.HandleCreate)
	mux.HandleFunc("GET /links/{slug}", h.HandleStats)
	mux.HandleFunc("GET /_/health", h.HandleHealth)
	mux.HandleFunc("GET /{slug}", h.HandleRedirect)

	return mux
}

// ============ HELPERS ============

// writeError maps service errors onto client responses
func (h *LinkHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		appErr *errors.AppError
		verr   *validator.ValidationError
	)

	switch {
	case stderrors.As(err, &appErr):
	case stderrors.As(err, &verr):
		appErr = errors.Validation(verr.Error())
	case stderrors.Is(err, service.ErrDuplicateSlug):
		appErr = errors.SlugTaken()
	case stderrors.Is(err, service.ErrNotFound):
		appErr = errors.NotFound()
	default:
		appErr = errors.Internal(err.Error())
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), h.log).Error("request failed",
			"code", appErr.Code,
			"error", err.Error(),
		)
	}

	appErr.WriteJSON(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
