// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/specious/internal/domain/model"
	"github.com/okian/specious/internal/domain/rank"
	"github.com/okian/specious/internal/domain/types"
)

// SessionDependencies drive play sessions.
type SessionDependencies interface {
	StartSession(ctx context.Context, filterTaxonID int64) (types.SessionView, error)
	Session(ctx context.Context, id string) (types.SessionView, error)
	EndSession(ctx context.Context, id string) error
	NextRound(ctx context.Context, id string) (types.SessionView, error)
	SelectRank(ctx context.Context, id, rankKey string) (types.SessionView, error)
	SubmitGuess(ctx context.Context, id, guess string) (types.SessionView, error)
	Suggest(ctx context.Context, id, query string) (types.SessionView, error)
	SetFilter(ctx context.Context, id string, taxonID int64) (types.SessionView, error)
}

// CatalogDependencies expose the rank catalog and taxon lookup.
type CatalogDependencies interface {
	Ranks() []rank.Level
	Autocomplete(ctx context.Context, query string) ([]model.Suggestion, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	CatalogDependencies
}

// Server wires HTTP routes for the quiz API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler
	catalogHandler  *CatalogHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionsHandler: NewSessionsHandler(deps),
		catalogHandler:  NewCatalogHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /ranks", MetricsMiddleware(s.catalogHandler.HandleRanks, "ranks"))
	mux.HandleFunc("GET /taxa/autocomplete", MetricsMiddleware(s.catalogHandler.HandleAutocomplete, "autocomplete"))

	sh := s.sessionsHandler
	mux.HandleFunc("POST /sessions", MetricsMiddleware(sh.HandleCreate, "sessions_create"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(sh.HandleGet, "sessions_get"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(sh.HandleDelete, "sessions_delete"))
	mux.HandleFunc("POST /sessions/{id}/rounds", MetricsMiddleware(sh.HandleNextRound, "rounds"))
	mux.HandleFunc("PUT /sessions/{id}/rank", MetricsMiddleware(sh.HandleSelectRank, "rank"))
	mux.HandleFunc("POST /sessions/{id}/guess", MetricsMiddleware(sh.HandleGuess, "guess"))
	mux.HandleFunc("POST /sessions/{id}/suggestions", MetricsMiddleware(sh.HandleSuggestions, "suggestions"))
	mux.HandleFunc("PUT /sessions/{id}/filter", MetricsMiddleware(sh.HandleSetFilter, "filter"))
}
