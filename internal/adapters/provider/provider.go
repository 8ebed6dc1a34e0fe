// Package provider fetches observations, classifications, and autocomplete
// candidates from the taxonomy data provider.
package provider

import (
	"context"

	"github.com/okian/specious/internal/domain/model"
)

// Provider is the taxonomy data source a quiz session draws rounds from.
type Provider interface {
	// FetchRandomObservation returns a random research-grade observation,
	// optionally restricted to descendants of filterTaxonID (0 = no filter).
	// Returns ErrNoResultsFound when nothing matches.
	FetchRandomObservation(ctx context.Context, filterTaxonID int64) (model.Observation, error)

	// FetchClassification returns the taxon with its ancestors in
	// root-to-leaf order.
	FetchClassification(ctx context.Context, taxonID int64) (*model.Classification, error)

	// FetchAutocomplete returns ranked name candidates for query.
	FetchAutocomplete(ctx context.Context, query string) ([]model.Suggestion, error)
}
