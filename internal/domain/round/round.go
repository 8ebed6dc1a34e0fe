// Package round drives one quiz round: load a classification, take a guess,
// resolve it, and advance to the next round.
//
// A Machine is not safe for concurrent use. Provider fetches happen outside
// it; every fetch is tagged with a Ticket so that a slow response cannot
// overwrite a newer round.
package round

import (
	"fmt"

	"github.com/okian/specious/internal/domain/guess"
	"github.com/okian/specious/internal/domain/model"
	"github.com/okian/specious/internal/domain/rank"
	"github.com/okian/specious/internal/domain/scoring"
	"github.com/okian/specious/internal/domain/taxon"
)

// State is the lifecycle position of the current round.
type State string

const (
	// StateAwaitingClassification waits for the provider to supply a round.
	StateAwaitingClassification State = "awaiting_classification"
	// StateAwaitingGuess has a round loaded and accepts rank and guess input.
	StateAwaitingGuess State = "awaiting_guess"
	// StateResolved holds the outcome of the last guess.
	StateResolved State = "resolved"
)

// Snapshot is a read-only view of the machine for the presentation layer.
type Snapshot struct {
	State          State
	Round          int
	Rank           string
	GuessText      string
	Observation    *model.Observation
	Classification *model.Classification
	Suggestions    []model.Suggestion
	Outcome        *model.Outcome
	Score          int
}

// Machine is the round state machine for one play session.
type Machine struct {
	state   State
	round   int
	tracker *scoring.Tracker

	loads    sequencer
	suggests sequencer

	observation    *model.Observation
	classification *model.Classification
	rank           string
	guessText      string
	suggestions    []model.Suggestion
	outcome        *model.Outcome
}

// New creates a machine waiting for its first round. A nil tracker gets the
// default scoring policy.
func New(tracker *scoring.Tracker) *Machine {
	if tracker == nil {
		tracker = scoring.NewTracker()
	}
	return &Machine{
		state:   StateAwaitingClassification,
		tracker: tracker,
		rank:    rank.Default().Key,
	}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Score returns the session score.
func (m *Machine) Score() int { return m.tracker.Score() }

// Begin issues a ticket for fetching a round while the machine waits for a
// classification. Any earlier outstanding load ticket becomes stale.
func (m *Machine) Begin() (Ticket, error) {
	if m.state != StateAwaitingClassification {
		return 0, fmt.Errorf("%w: begin from %s", ErrInvalidTransition, m.state)
	}
	return m.loads.issue(), nil
}

// Advance ends a resolved round and issues the ticket for the next fetch.
func (m *Machine) Advance() (Ticket, error) {
	if m.state != StateResolved {
		return 0, fmt.Errorf("%w: advance from %s", ErrInvalidTransition, m.state)
	}
	m.state = StateAwaitingClassification
	return m.loads.issue(), nil
}

// Prefetch issues a ticket for the next round while keeping the resolved
// round on display. If the fetch fails the machine is still Resolved and the
// caller may simply retry.
func (m *Machine) Prefetch() (Ticket, error) {
	if m.state != StateResolved {
		return 0, fmt.Errorf("%w: prefetch from %s", ErrInvalidTransition, m.state)
	}
	return m.loads.issue(), nil
}

// LoadRound installs a fetched observation and classification. The ticket
// must be the latest one issued by Begin, Advance or Prefetch, otherwise the
// response is stale and nothing changes.
func (m *Machine) LoadRound(t Ticket, obs model.Observation, record *model.Classification) error {
	if !m.loads.current(t) {
		return fmt.Errorf("%w: load ticket %d, latest %d", ErrStaleResponse, t, m.loads.latest)
	}
	if m.state == StateAwaitingGuess {
		return fmt.Errorf("%w: load during %s", ErrInvalidTransition, m.state)
	}
	if record == nil {
		return ErrMissingClassification
	}
	m.loads.consume()
	m.suggests.invalidate()

	m.observation = &obs
	m.classification = record
	m.rank = rank.Default().Key
	m.guessText = ""
	m.suggestions = nil
	m.outcome = nil
	m.round++
	m.state = StateAwaitingGuess
	return nil
}

// SelectRank picks the rank the next guess is scored at.
func (m *Machine) SelectRank(key string) error {
	if m.state != StateAwaitingGuess {
		return fmt.Errorf("%w: select rank during %s", ErrInvalidTransition, m.state)
	}
	level, err := rank.Lookup(key)
	if err != nil {
		return err
	}
	m.rank = level.Key
	return nil
}

// SetGuessText records the in-progress guess input.
func (m *Machine) SetGuessText(text string) error {
	if m.state != StateAwaitingGuess {
		return fmt.Errorf("%w: edit guess during %s", ErrInvalidTransition, m.state)
	}
	m.guessText = text
	return nil
}

// BeginSuggest issues a ticket for an autocomplete fetch. Earlier
// outstanding suggestion tickets become stale.
func (m *Machine) BeginSuggest() (Ticket, error) {
	if m.state != StateAwaitingGuess {
		return 0, fmt.Errorf("%w: suggest during %s", ErrInvalidTransition, m.state)
	}
	return m.suggests.issue(), nil
}

// SetSuggestions installs autocomplete candidates fetched under t.
func (m *Machine) SetSuggestions(t Ticket, list []model.Suggestion) error {
	if !m.suggests.current(t) {
		return fmt.Errorf("%w: suggest ticket %d, latest %d", ErrStaleResponse, t, m.suggests.latest)
	}
	if m.state != StateAwaitingGuess {
		return fmt.Errorf("%w: suggestions during %s", ErrInvalidTransition, m.state)
	}
	m.suggests.consume()
	m.suggestions = append([]model.Suggestion(nil), list...)
	return nil
}

// SubmitGuess scores text against the loaded classification at the selected
// rank and resolves the round.
func (m *Machine) SubmitGuess(text string) (model.Outcome, error) {
	switch m.state {
	case StateAwaitingClassification:
		return model.Outcome{}, ErrMissingClassification
	case StateResolved:
		return model.Outcome{}, fmt.Errorf("%w: round already resolved", ErrInvalidTransition)
	}
	if guess.IsBlank(text) {
		return model.Outcome{}, ErrEmptyGuess
	}

	name, ok := taxon.Resolve(m.classification, m.rank)
	verdict := guess.Evaluate(text, name, ok)
	res, err := m.tracker.Apply(verdict.Matched, m.rank)
	if err != nil {
		return model.Outcome{}, err
	}

	out := model.Outcome{
		Guess:         verdict.NormalizedGuess,
		Matched:       verdict.Matched,
		RankGuessed:   m.rank,
		PointsAwarded: res.Points,
		ScoreAfter:    res.Score,
	}
	if ok {
		out.CorrectAnswer = &name
	}
	if m.observation != nil {
		out.ObservationLink = m.observation.Permalink
	}

	m.guessText = text
	m.suggestions = nil
	m.suggests.invalidate()
	m.outcome = &out
	m.state = StateResolved
	return out, nil
}

// Snapshot returns the current view. Slices are copied; the classification
// and observation are shared and must not be modified.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		State:          m.state,
		Round:          m.round,
		Rank:           m.rank,
		GuessText:      m.guessText,
		Observation:    m.observation,
		Classification: m.classification,
		Score:          m.tracker.Score(),
	}
	if len(m.suggestions) > 0 {
		s.Suggestions = append([]model.Suggestion(nil), m.suggestions...)
	}
	if m.outcome != nil {
		o := *m.outcome
		s.Outcome = &o
	}
	return s
}
