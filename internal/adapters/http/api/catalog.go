package api

import (
	"net/http"

	"github.com/okian/specious/internal/domain/model"
	"github.com/okian/specious/internal/domain/rank"
)

type ranksResponse struct {
	Ranks   []rank.Level `json:"ranks"`
	Default string       `json:"default"`
}

type autocompleteResponse struct {
	Results []model.Suggestion `json:"results"`
}

// CatalogHandler handles rank catalog and taxon lookup requests.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleRanks handles GET /ranks.
func (h *CatalogHandler) HandleRanks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ranksResponse{
		Ranks:   h.deps.Ranks(),
		Default: rank.Default().Key,
	})
}

// HandleAutocomplete handles GET /taxa/autocomplete?q=, used to pick a filter.
func (h *CatalogHandler) HandleAutocomplete(w http.ResponseWriter, r *http.Request) {
	const op = "api.autocomplete"
	list, err := h.deps.Autocomplete(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if list == nil {
		list = []model.Suggestion{}
	}
	writeJSON(w, http.StatusOK, autocompleteResponse{Results: list})
}
