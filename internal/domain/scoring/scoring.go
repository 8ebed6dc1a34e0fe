// Package scoring tracks a session's running score across rounds.
package scoring

import (
	"fmt"

	"github.com/okian/specious/internal/domain/rank"
)

// Default scoring configuration constants.
const (
	defaultResetOnMiss = true
)

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithResetOnMiss selects the miss policy. When true (the default) any wrong
// guess resets the score to zero; when false a miss leaves the total as is.
func WithResetOnMiss(reset bool) Option {
	return func(t *Tracker) {
		t.resetOnMiss = reset
	}
}

// WithInitialScore seeds the running total. Negative values are ignored.
func WithInitialScore(score int) Option {
	return func(t *Tracker) {
		if score >= 0 {
			t.score = score
		}
	}
}

// Result is what one applied verdict did to the score.
type Result struct {
	Points int
	Score  int
}

// Tracker owns a session score. It is the only writer of that value.
type Tracker struct {
	score       int
	resetOnMiss bool
}

// NewTracker creates a tracker starting at zero.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		resetOnMiss: defaultResetOnMiss,
	}

	// Apply all options
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Apply folds a guess verdict at rankKey into the score and returns the
// points awarded and the new total. An unknown rank leaves the score as is.
func (t *Tracker) Apply(matched bool, rankKey string) (Result, error) {
	level, err := rank.Lookup(rankKey)
	if err != nil {
		return Result{Score: t.score}, fmt.Errorf("apply verdict: %w", err)
	}

	if matched {
		t.score += level.Points
		return Result{Points: level.Points, Score: t.score}, nil
	}
	if t.resetOnMiss {
		t.score = 0
	}
	return Result{Score: t.score}, nil
}

// Score returns the current total.
func (t *Tracker) Score() int {
	return t.score
}

// ResetOnMiss reports the configured miss policy.
func (t *Tracker) ResetOnMiss() bool {
	return t.resetOnMiss
}
