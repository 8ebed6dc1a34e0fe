package round

import "errors"

// Sentinel kinds for round errors. All are recoverable: callers re-prompt.
var (
	ErrMissingClassification = errors.New("no classification loaded")
	ErrEmptyGuess            = errors.New("guess is empty")
	ErrInvalidTransition     = errors.New("invalid round transition")
	// ErrStaleResponse marks a provider response for a superseded request.
	// Callers drop it silently.
	ErrStaleResponse = errors.New("stale provider response")
)
