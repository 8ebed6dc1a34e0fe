// Package types contains the views the service hands to the API layer.
package types

import (
	"github.com/okian/specious/internal/domain/model"
	"github.com/okian/specious/internal/domain/round"
)

// SessionView is the client-facing state of one play session.
//
// Until the round is resolved the classification, the observation's taxon
// id, and its permalink are withheld so the answer cannot be read off the
// response.
type SessionView struct {
	ID             string                `json:"id"`
	State          string                `json:"state"`
	Round          int                   `json:"round"`
	Rank           string                `json:"rank"`
	Score          int                   `json:"score"`
	FilterTaxonID  int64                 `json:"filter_taxon_id,omitempty"`
	GuessText      string                `json:"guess_text,omitempty"`
	Observation    *model.Observation    `json:"observation,omitempty"`
	Classification *model.Classification `json:"classification,omitempty"`
	Suggestions    []model.Suggestion    `json:"suggestions,omitempty"`
	Outcome        *OutcomeView          `json:"outcome,omitempty"`
}

// OutcomeView is a resolved guess with the display answer filled in.
type OutcomeView struct {
	model.Outcome
	AnswerDisplay string `json:"answer_display"`
}

// NewSessionView builds the view from a machine snapshot.
func NewSessionView(id string, filterTaxonID int64, snap round.Snapshot) SessionView {
	v := SessionView{
		ID:            id,
		State:         string(snap.State),
		Round:         snap.Round,
		Rank:          snap.Rank,
		Score:         snap.Score,
		FilterTaxonID: filterTaxonID,
		GuessText:     snap.GuessText,
		Suggestions:   snap.Suggestions,
	}

	resolved := snap.State == round.StateResolved
	if snap.Observation != nil {
		obs := *snap.Observation
		if !resolved {
			obs.ClassificationID = 0
			obs.Permalink = ""
		}
		v.Observation = &obs
	}
	if resolved {
		v.Classification = snap.Classification
	}
	if snap.Outcome != nil {
		v.Outcome = &OutcomeView{
			Outcome:       *snap.Outcome,
			AnswerDisplay: snap.Outcome.AnswerOrPlaceholder(),
		}
	}
	return v
}
