package provider

import (
	"net/http"
	"time"

	"github.com/okian/specious/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the API root, e.g. "https://api.inaturalist.org/v1".
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxPage sets the highest random page requested for observations.
func WithMaxPage(maxPage int) Option {
	return func(c *Client) {
		if maxPage > 0 {
			c.maxPage = maxPage
		}
	}
}

// WithAutocompleteLimit caps the number of suggestions requested.
func WithAutocompleteLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.autocompleteLimit = limit
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithPageFunc replaces the random page picker. It receives the highest
// allowed page and returns a page in [1, maxPage].
func WithPageFunc(fn func(maxPage int) int) Option {
	return func(c *Client) {
		if fn != nil {
			c.pickPage = fn
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
