package provider

import "errors"

// Sentinel kinds for provider errors.
var (
	// ErrNoResultsFound means the provider had nothing for the filter. It is
	// retryable with a different filter.
	ErrNoResultsFound = errors.New("no results found")
	ErrTaxonNotFound  = errors.New("taxon not found")
	ErrUpstream       = errors.New("upstream provider error")
	ErrDecode         = errors.New("decode provider response")
)
