package model

import (
	"time"

	"github.com/google/uuid"
)

// Link represents a shortened URL mapping
type Link struct {
	ID        string    `json:"id"`        // opaque UUID, assigned at creation
	Slug      string    `json:"slug"`      // short code used in the public URL
	URL       string    `json:"url"`       // original long URL
	CreatedAt time.Time `json:"createdAt"` // timestamp of creation
	Clicks    int64     `json:"clicks"`    // successful redirect lookups
}

// NewLink builds a fresh Link with a new ID, zero clicks and the current time
func NewLink(slug, url string) *Link {
	return &Link{
		ID:        uuid.NewString(),
		Slug:      slug,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
}

// CreateLinkRequest is the API request body.
// Slug is a pointer so an omitted slug can be told apart from an empty one.
type CreateLinkRequest struct {
	URL  string  `json:"url"`
	Slug *string `json:"slug,omitempty"`
}

// CreateLinkResponse is the API response for a created link
type CreateLinkResponse struct {
	Slug     string `json:"slug"`
	ShortURL string `json:"shortUrl"`
	URL      string `json:"url"`
}

// LinkStats is the API response for GET /links/{slug}
type LinkStats struct {
	Slug      string    `json:"slug"`
	URL       string    `json:"url"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"createdAt"`
}
