// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRankConflict reports a classification whose own rank also appears in
// its ancestor chain under a different name.
var ErrRankConflict = errors.New("classification rank conflicts with ancestor")

// NoDataPlaceholder is what a presentation layer shows when a lineage has no
// entry at the guessed rank.
const NoDataPlaceholder = "(no data)"

// Ancestor is one node in a classification's lineage.
type Ancestor struct {
	Rank string `json:"rank"`
	Name string `json:"name"`
}

// Classification is a taxon with its ancestor chain in root-to-leaf order.
// It is owned by the round that fetched it and never modified after that.
type Classification struct {
	ID        int64      `json:"id"`
	Rank      string     `json:"rank"`
	Name      string     `json:"name"`
	Ancestors []Ancestor `json:"ancestors"`
}

// Validate checks that the subject's rank is not repeated in the lineage
// under another name.
func (c *Classification) Validate() error {
	self := strings.ToLower(strings.TrimSpace(c.Name))
	for _, a := range c.Ancestors {
		if a.Rank != c.Rank {
			continue
		}
		if strings.ToLower(strings.TrimSpace(a.Name)) != self {
			return fmt.Errorf("%w: %s %q vs %q", ErrRankConflict, c.Rank, c.Name, a.Name)
		}
	}
	return nil
}

// Observation is a photographed sighting supplied by the taxonomy provider.
type Observation struct {
	ID               int64  `json:"id"`
	PhotoURL         string `json:"photo_url"`
	ClassificationID int64  `json:"classification_id"`
	Permalink        string `json:"permalink"`
}

// Suggestion is an autocomplete candidate. Advisory only.
type Suggestion struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Rank string `json:"rank"`
}

// Outcome is the result of one submitted guess.
type Outcome struct {
	// CorrectAnswer is nil when the lineage has nothing at RankGuessed.
	CorrectAnswer   *string `json:"correct_answer"`
	Guess           string  `json:"guess"`
	Matched         bool    `json:"matched"`
	RankGuessed     string  `json:"rank_guessed"`
	PointsAwarded   int     `json:"points_awarded"`
	ScoreAfter      int     `json:"score_after"`
	ObservationLink string  `json:"observation_link,omitempty"`
}

// AnswerOrPlaceholder returns the correct answer or NoDataPlaceholder.
func (o Outcome) AnswerOrPlaceholder() string {
	if o.CorrectAnswer == nil {
		return NoDataPlaceholder
	}
	return *o.CorrectAnswer
}
