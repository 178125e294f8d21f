// Package enrich augments parsed references with metadata from external
// bibliographic services: doi.org CSL resolution and CrossRef search.
package enrich

import (
	"errors"
	"fmt"
)

// Common errors returned by the enrichment client. All of them are
// non-fatal for the pipeline: a failed enrichment leaves the record as
// it was parsed.
var (
	// ErrNotFound indicates the service has no metadata for the query.
	ErrNotFound = errors.New("not found by enrichment service")

	// ErrRateLimited indicates the service rejected the call for rate.
	ErrRateLimited = errors.New("enrichment service rate limit exceeded")

	// ErrNetworkError indicates a connectivity failure.
	ErrNetworkError = errors.New("network error reaching enrichment service")

	// ErrInvalidResponse indicates an unparseable service response.
	ErrInvalidResponse = errors.New("invalid response from enrichment service")

	// ErrNoMatch indicates the best search hit fell below the title
	// similarity threshold.
	ErrNoMatch = errors.New("no sufficiently similar match")
)

// APIError carries the HTTP detail of a failed service call.
type APIError struct {
	Service    string // "doi.org" or "crossref"
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Service, e.StatusCode, e.Message)
}

// IsNotFound reports whether err means the work is unknown to the
// service, as opposed to the service being unreachable.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited reports whether err was caused by service throttling.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
