// Package service runs quiz sessions: it owns the session store, fetches
// rounds from the taxonomy provider, and drives each session's round machine.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/specious/internal/adapters/provider"
	"github.com/okian/specious/internal/adapters/repository"
	"github.com/okian/specious/internal/domain/model"
	"github.com/okian/specious/internal/domain/rank"
	"github.com/okian/specious/internal/domain/round"
	"github.com/okian/specious/internal/domain/scoring"
	"github.com/okian/specious/internal/domain/types"
	"github.com/okian/specious/pkg/logger"
	"github.com/okian/specious/pkg/metrics"
)

// Stale response kinds used as metric labels.
const (
	staleRound       = "round"
	staleSuggestions = "suggestions"
)

// Service implements the API dependencies for the quiz.
type Service struct {
	mu sync.RWMutex

	// Core components
	provider provider.Provider
	store    repository.Store

	// Configuration
	resetOnMiss bool
	maxSessions int
	idleTTL     time.Duration

	// State
	started   bool
	ownsStore bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithProvider sets the taxonomy provider.
func WithProvider(p provider.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithStore sets the session store. Without it Start builds a MemoryStore.
// An injected store is not closed by Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithResetOnMiss selects the scoring policy for new sessions.
func WithResetOnMiss(reset bool) Option {
	return func(s *Service) {
		s.resetOnMiss = reset
	}
}

// WithMaxSessions caps live sessions in the default store.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		s.maxSessions = n
	}
}

// WithIdleTTL expires idle sessions in the default store.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.idleTTL = ttl
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		resetOnMiss: true,
		maxSessions: 10_000,
		idleTTL:     30 * time.Minute,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components that were not injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.provider == nil {
		s.provider = provider.NewClient(provider.WithLogger(s.logger.Named("provider")))
	}
	if s.store == nil {
		s.ownsStore = true
		s.store = repository.NewMemoryStore(ctx,
			repository.WithMaxSessions(s.maxSessions),
			repository.WithIdleTTL(s.idleTTL),
		)
	}

	s.started = true
	s.logger.Info(ctx, "quiz service started",
		logger.Bool("resetOnMiss", s.resetOnMiss),
		logger.Int("maxSessions", s.maxSessions),
		logger.String("idleTTL", s.idleTTL.String()),
	)
	return nil
}

// Stop closes the store the service built. A later Start builds a new one.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if s.ownsStore {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "quiz service stopped")
}

func (s *Service) deps() (provider.Provider, repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.provider, s.store, nil
}

func (s *Service) session(ctx context.Context, id string) (*repository.Session, error) {
	_, store, err := s.deps()
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, id)
}

func view(sess *repository.Session) types.SessionView {
	return types.NewSessionView(sess.ID, sess.FilterTaxonID, sess.Machine.Snapshot())
}

// StartSession creates a session and loads its first round. When the first
// round cannot be loaded the session is discarded and the error returned.
func (s *Service) StartSession(ctx context.Context, filterTaxonID int64) (types.SessionView, error) {
	if filterTaxonID < 0 {
		return types.SessionView{}, fmt.Errorf("%w: %d", ErrInvalidFilter, filterTaxonID)
	}
	_, store, err := s.deps()
	if err != nil {
		return types.SessionView{}, err
	}

	tracker := scoring.NewTracker(scoring.WithResetOnMiss(s.resetOnMiss))
	sess, err := store.Create(ctx, round.New(tracker), filterTaxonID)
	if err != nil {
		return types.SessionView{}, err
	}

	v, err := s.NextRound(ctx, sess.ID)
	if err != nil {
		_ = store.Delete(ctx, sess.ID)
		return types.SessionView{}, err
	}

	s.logger.Info(ctx, "session started",
		logger.String("session", sess.ID),
		logger.Int64("filterTaxonID", filterTaxonID),
	)
	return v, nil
}

// Session returns the current view of a session.
func (s *Service) Session(ctx context.Context, id string) (types.SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.SessionView{}, err
	}
	sess.Lock()
	defer sess.Unlock()
	return view(sess), nil
}

// EndSession deletes a session.
func (s *Service) EndSession(ctx context.Context, id string) error {
	_, store, err := s.deps()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "session ended", logger.String("session", id))
	return nil
}

// NextRound fetches an observation and its classification and installs them
// as the session's next round. A resolved round stays on display until the
// new one arrives, so a failed fetch leaves the session as it was. The
// provider is called without holding the session lock; if a newer request
// was issued meanwhile the result is dropped and the current view returned.
func (s *Service) NextRound(ctx context.Context, id string) (types.SessionView, error) {
	p, store, err := s.deps()
	if err != nil {
		return types.SessionView{}, err
	}
	sess, err := store.Get(ctx, id)
	if err != nil {
		return types.SessionView{}, err
	}

	sess.Lock()
	var ticket round.Ticket
	if sess.Machine.State() == round.StateResolved {
		ticket, err = sess.Machine.Prefetch()
	} else {
		ticket, err = sess.Machine.Begin()
	}
	filter := sess.FilterTaxonID
	sess.Unlock()
	if err != nil {
		return types.SessionView{}, err
	}

	obs, record, err := s.fetchRound(ctx, p, filter)
	if err != nil {
		if errors.Is(err, provider.ErrNoResultsFound) {
			metrics.RecordNoResults()
		}
		s.logger.Warn(ctx, "round fetch failed",
			logger.String("session", id),
			logger.Int64("filterTaxonID", filter),
			logger.Error(err),
		)
		return types.SessionView{}, err
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Machine.LoadRound(ticket, obs, record); err != nil {
		if errors.Is(err, round.ErrStaleResponse) {
			metrics.RecordStaleResponse(staleRound)
			s.logger.Debug(ctx, "dropped stale round",
				logger.String("session", id),
				logger.Uint64("ticket", uint64(ticket)),
			)
			return view(sess), nil
		}
		return view(sess), err
	}
	metrics.RecordRoundLoaded()

	return view(sess), nil
}

func (s *Service) fetchRound(ctx context.Context, p provider.Provider, filter int64) (model.Observation, *model.Classification, error) {
	obs, err := p.FetchRandomObservation(ctx, filter)
	if err != nil {
		return model.Observation{}, nil, err
	}
	if obs.ClassificationID == 0 {
		return model.Observation{}, nil, fmt.Errorf("%w: observation %d has no taxon", provider.ErrUpstream, obs.ID)
	}

	record, err := p.FetchClassification(ctx, obs.ClassificationID)
	if err != nil {
		return model.Observation{}, nil, err
	}
	if err := record.Validate(); err != nil {
		s.logger.Warn(ctx, "inconsistent classification",
			logger.Int64("taxon", record.ID),
			logger.Error(err),
		)
	}
	return obs, record, nil
}

// SelectRank sets the rank the session's next guess is scored at.
func (s *Service) SelectRank(ctx context.Context, id, rankKey string) (types.SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.SessionView{}, err
	}
	sess.Lock()
	defer sess.Unlock()

	if err := sess.Machine.SelectRank(rankKey); err != nil {
		return view(sess), err
	}
	return view(sess), nil
}

// SubmitGuess resolves the current round with guess.
func (s *Service) SubmitGuess(ctx context.Context, id, guess string) (types.SessionView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.SessionView{}, err
	}
	sess.Lock()
	defer sess.Unlock()

	before := sess.Machine.Score()
	out, err := sess.Machine.SubmitGuess(guess)
	if err != nil {
		return view(sess), err
	}

	label := metrics.OutcomeMiss
	switch {
	case out.CorrectAnswer == nil:
		label = metrics.OutcomeNoData
	case out.Matched:
		label = metrics.OutcomeHit
	}
	metrics.RecordGuess(out.RankGuessed, label)
	metrics.RecordPointsAwarded(out.PointsAwarded)
	if before > 0 && out.ScoreAfter == 0 {
		metrics.RecordScoreReset()
	}

	s.logger.Debug(ctx, "guess resolved",
		logger.String("session", id),
		logger.String("rank", out.RankGuessed),
		logger.Bool("matched", out.Matched),
		logger.Int("points", out.PointsAwarded),
		logger.Int("score", out.ScoreAfter),
	)
	return view(sess), nil
}

// Suggest records query as the session's guess text and replaces its
// suggestions with the provider's autocomplete candidates. A result that
// arrives after a newer query is dropped and the current view returned.
func (s *Service) Suggest(ctx context.Context, id, query string) (types.SessionView, error) {
	p, store, err := s.deps()
	if err != nil {
		return types.SessionView{}, err
	}
	sess, err := store.Get(ctx, id)
	if err != nil {
		return types.SessionView{}, err
	}

	sess.Lock()
	var ticket round.Ticket
	err = sess.Machine.SetGuessText(query)
	if err == nil {
		ticket, err = sess.Machine.BeginSuggest()
	}
	current := view(sess)
	sess.Unlock()
	if err != nil {
		return current, err
	}

	list, err := p.FetchAutocomplete(ctx, query)
	if err != nil {
		s.logger.Warn(ctx, "autocomplete failed",
			logger.String("session", id),
			logger.Error(err),
		)
		return types.SessionView{}, err
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Machine.SetSuggestions(ticket, list); err != nil {
		if errors.Is(err, round.ErrStaleResponse) {
			metrics.RecordStaleResponse(staleSuggestions)
			s.logger.Debug(ctx, "dropped stale suggestions",
				logger.String("session", id),
				logger.Uint64("ticket", uint64(ticket)),
			)
			return view(sess), nil
		}
		return view(sess), err
	}
	return view(sess), nil
}

// SetFilter restricts the session's future rounds to descendants of
// taxonID. Zero clears the filter. The current round is unaffected.
func (s *Service) SetFilter(ctx context.Context, id string, taxonID int64) (types.SessionView, error) {
	if taxonID < 0 {
		return types.SessionView{}, fmt.Errorf("%w: %d", ErrInvalidFilter, taxonID)
	}
	sess, err := s.session(ctx, id)
	if err != nil {
		return types.SessionView{}, err
	}
	sess.Lock()
	defer sess.Unlock()

	sess.FilterTaxonID = taxonID
	return view(sess), nil
}

// Autocomplete looks up taxa by name, for picking a filter.
func (s *Service) Autocomplete(ctx context.Context, query string) ([]model.Suggestion, error) {
	p, _, err := s.deps()
	if err != nil {
		return nil, err
	}
	return p.FetchAutocomplete(ctx, query)
}

// Ranks returns the rank catalog.
func (s *Service) Ranks() []rank.Level {
	return rank.Levels()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"resetOnMiss": s.resetOnMiss,
		"maxSessions": s.maxSessions,
		"idleTTL":     s.idleTTL.String(),
	}

	if s.started {
		active := s.store.Count(context.Background())
		stats["activeSessions"] = active
		metrics.UpdateActiveSessions(active)
	}

	return stats
}
