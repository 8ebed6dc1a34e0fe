package api

import (
	"net/http"
	"strings"
)

type createSessionRequest struct {
	FilterTaxonID int64 `json:"filter_taxon_id"`
}

type rankRequest struct {
	Rank string `json:"rank"`
}

type guessRequest struct {
	Guess string `json:"guess"`
}

type suggestRequest struct {
	Query string `json:"query"`
}

type filterRequest struct {
	TaxonID int64 `json:"taxon_id"`
}

// SessionsHandler handles the /sessions routes.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// sessionID extracts the {id} path value.
func sessionID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	return id, id != ""
}

// HandleCreate handles POST /sessions. The body is optional.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req createSessionRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	v, err := h.deps.StartSession(r.Context(), req.FilterTaxonID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/sessions/"+v.ID)
	writeJSON(w, http.StatusCreated, v)
}

// HandleGet handles GET /sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	id, ok := sessionID(r)
	if !ok {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	v, err := h.deps.Session(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleDelete handles DELETE /sessions/{id}.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_session"
	id, ok := sessionID(r)
	if !ok {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.EndSession(r.Context(), id); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleNextRound handles POST /sessions/{id}/rounds.
func (h *SessionsHandler) HandleNextRound(w http.ResponseWriter, r *http.Request) {
	const op = "api.next_round"
	id, ok := sessionID(r)
	if !ok {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	v, err := h.deps.NextRound(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleSelectRank handles PUT /sessions/{id}/rank.
func (h *SessionsHandler) HandleSelectRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.select_rank"
	id, ok := sessionID(r)
	if !ok {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	var req rankRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	v, err := h.deps.SelectRank(r.Context(), id, req.Rank)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleGuess handles POST /sessions/{id}/guess.
func (h *SessionsHandler) HandleGuess(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_guess"
	id, ok := sessionID(r)
	if !ok {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	var req guessRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	v, err := h.deps.SubmitGuess(r.Context(), id, req.Guess)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleSuggestions handles POST /sessions/{id}/suggestions. It stores the
// query as the session's guess text.
func (h *SessionsHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.suggestions"
	id, ok := sessionID(r)
	if !ok {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	var req suggestRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	v, err := h.deps.Suggest(r.Context(), id, req.Query)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleSetFilter handles PUT /sessions/{id}/filter.
func (h *SessionsHandler) HandleSetFilter(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_filter"
	id, ok := sessionID(r)
	if !ok {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	var req filterRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	v, err := h.deps.SetFilter(r.Context(), id, req.TaxonID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}
