package validator

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/darkodi/link-shortener/internal/model"
)

// SlugPattern is the accepted shape of a custom slug
var SlugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,30}$`)

// FieldError describes one invalid field
type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Message
}

// ValidationError lists every invalid field of a request
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, "; ")
}

// Has reports whether field is among the offending fields
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// URLValidator validates link creation input
type URLValidator struct {
	maxLength       int
	allowedSchemes  []string // empty means any scheme
	blockedDomains  []string
	blockPrivateIPs bool
}

// NewURLValidator creates a validator with default settings
func NewURLValidator() *URLValidator {
	return &URLValidator{
		maxLength: 2048,
	}
}

// ValidateCreate checks a creation payload and returns a *ValidationError
// naming every offending field, or nil.
func (v *URLValidator) ValidateCreate(req model.CreateLinkRequest) error {
	var fields []FieldError

	if fe := v.ValidateURL(req.URL); fe != nil {
		fields = append(fields, *fe)
	}
	if req.Slug != nil {
		if fe := v.ValidateSlug(*req.Slug); fe != nil {
			fields = append(fields, *fe)
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateURL validates a URL string
func (v *URLValidator) ValidateURL(rawURL string) *FieldError {
	// Check if empty
	if strings.TrimSpace(rawURL) == "" {
		return &FieldError{Field: "url", Message: "is required"}
	}

	// Check length
	if len(rawURL) > v.maxLength {
		return &FieldError{Field: "url", Message: fmt.Sprintf("exceeds maximum length of %d characters", v.maxLength)}
	}

	// Parse URL
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &FieldError{Field: "url", Message: "could not be parsed"}
	}

	if !parsedURL.IsAbs() || (parsedURL.Host == "" && parsedURL.Opaque == "") {
		return &FieldError{Field: "url", Message: "must be an absolute URL"}
	}

	// Check scheme
	if !v.isAllowedScheme(parsedURL.Scheme) {
		return &FieldError{Field: "url", Message: fmt.Sprintf("scheme must be one of %s", strings.Join(v.allowedSchemes, ", "))}
	}

	// Check for blocked domains
	if v.isBlockedDomain(parsedURL.Hostname()) {
		return &FieldError{Field: "url", Message: "domain is not allowed"}
	}

	// Check for private/local IPs
	if v.blockPrivateIPs && isPrivateHost(parsedURL.Hostname()) {
		return &FieldError{Field: "url", Message: "private or local addresses are not allowed"}
	}

	return nil
}

// ValidateSlug validates a custom slug
func (v *URLValidator) ValidateSlug(slug string) *FieldError {
	if !SlugPattern.MatchString(slug) {
		return &FieldError{Field: "slug", Message: "must be 3-30 characters of letters, digits, '_' or '-'"}
	}
	return nil
}

// ============================================================
// HELPER METHODS
// ============================================================

func (v *URLValidator) isAllowedScheme(scheme string) bool {
	if len(v.allowedSchemes) == 0 {
		return true
	}
	scheme = strings.ToLower(scheme)
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

func (v *URLValidator) isBlockedDomain(host string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	for _, blocked := range v.blockedDomains {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return true
		}
	}
	return false
}

func isPrivateHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsUnspecified() || ip.IsLinkLocalUnicast()
}

// ============================================================
// CONFIGURATION METHODS
// ============================================================

// WithMaxLength sets maximum URL length
func (v *URLValidator) WithMaxLength(length int) *URLValidator {
	v.maxLength = length
	return v
}

// WithAllowedSchemes restricts URLs to the given schemes
func (v *URLValidator) WithAllowedSchemes(schemes ...string) *URLValidator {
	for _, s := range schemes {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			v.allowedSchemes = append(v.allowedSchemes, s)
		}
	}
	return v
}

// WithBlockedDomains adds domains to block list
func (v *URLValidator) WithBlockedDomains(domains ...string) *URLValidator {
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			v.blockedDomains = append(v.blockedDomains, d)
		}
	}
	return v
}

// WithBlockPrivateIPs rejects URLs pointing at private or loopback hosts
func (v *URLValidator) WithBlockPrivateIPs(block bool) *URLValidator {
	v.blockPrivateIPs = block
	return v
}
