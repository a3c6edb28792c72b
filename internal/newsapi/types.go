// Package newsapi provides a client for the NewsAPI.org v2 REST API.
package newsapi

import (
	"fmt"
	"time"
)

const (
	// MinPageSize and MaxPageSize bound the pageSize parameter accepted by the API.
	MinPageSize = 1
	MaxPageSize = 100
)

// QueryOption represents an optional parameter for API queries.
type QueryOption func(*queryParams)

// queryParams holds optional query parameters.
type queryParams struct {
	Language string
	SortBy   string // publishedAt, relevancy, popularity
	PageSize int
}

// WithLanguage restricts results to a two-letter ISO-639-1 language code.
func WithLanguage(language string) QueryOption {
	return func(p *queryParams) {
		p.Language = language
	}
}

// WithSortBy sets the result order (publishedAt, relevancy, popularity).
func WithSortBy(sortBy string) QueryOption {
	return func(p *queryParams) {
		p.SortBy = sortBy
	}
}

// WithPageSize sets the number of results. Values are clamped to 1..100.
func WithPageSize(pageSize int) QueryOption {
	return func(p *queryParams) {
		p.PageSize = pageSize
	}
}

// ClampPageSize bounds n to the range the API accepts.
func ClampPageSize(n int) int {
	if n < MinPageSize {
		return MinPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// APIError represents an error from the NewsAPI.
// Code is the NewsAPI error code (e.g. "apiKeyInvalid") when the body carried one.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("NewsAPI error: %s: %s (status: %d, endpoint: %s)", e.Code, e.Message, e.StatusCode, e.Endpoint)
	}
	return fmt.Sprintf("NewsAPI error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError represents a rate limit error.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("NewsAPI rate limit exceeded: %s, retry after %v", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("NewsAPI rate limit exceeded, retry after %v", e.RetryAfter)
}
