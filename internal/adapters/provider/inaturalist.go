package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okian/specious/internal/domain/model"
	"github.com/okian/specious/pkg/logger"
	"github.com/okian/specious/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultBaseURL           = "https://api.inaturalist.org/v1"
	defaultTimeout           = 10 * time.Second
	defaultMaxPage           = 500
	defaultAutocompleteLimit = 10
	maxBodyBytes             = 4 << 20
	userAgent                = "specious/1.0"
	observationURLPrefix     = "https://www.inaturalist.org/observations/"
)

// Endpoint labels for logs and metrics.
const (
	endpointObservations = "observations"
	endpointTaxa         = "taxa"
	endpointAutocomplete = "autocomplete"
)

var _ Provider = (*Client)(nil)

// Client is an iNaturalist v1 API client.
type Client struct {
	baseURL           string
	timeout           time.Duration
	maxPage           int
	autocompleteLimit int
	http              *http.Client
	pickPage          func(maxPage int) int
	logger            logger.Logger
}

// NewClient creates a client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:           defaultBaseURL,
		timeout:           defaultTimeout,
		maxPage:           defaultMaxPage,
		autocompleteLimit: defaultAutocompleteLimit,
		http:              &http.Client{},
		pickPage:          func(maxPage int) int { return rand.IntN(maxPage) + 1 }, //nolint:gosec // page choice is not security sensitive
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Named("provider")
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")

	return c
}

type observationsResponse struct {
	TotalResults int                 `json:"total_results"`
	Results      []observationResult `json:"results"`
}

type observationResult struct {
	ID     int64  `json:"id"`
	URI    string `json:"uri"`
	Taxon  *taxon `json:"taxon"`
	Photos []struct {
		URL string `json:"url"`
	} `json:"photos"`
}

type taxaResponse struct {
	Results []taxon `json:"results"`
}

type taxon struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Rank      string  `json:"rank"`
	Ancestors []taxon `json:"ancestors"`
}

// FetchRandomObservation picks a random page of research-grade, openly
// licensed observations with photos.
func (c *Client) FetchRandomObservation(ctx context.Context, filterTaxonID int64) (model.Observation, error) {
	page := c.pickPage(c.maxPage)
	resp, err := c.observations(ctx, filterTaxonID, page)
	if err != nil {
		return model.Observation{}, err
	}

	// A narrow filter can have fewer pages than the random pick; retry once
	// inside the known result set.
	if len(resp.Results) == 0 && resp.TotalResults > 0 && page > 1 {
		page = c.pickPage(min(resp.TotalResults, c.maxPage))
		c.logger.Debug(ctx, "observation page out of range, retrying",
			logger.Int("totalResults", resp.TotalResults),
			logger.Int("page", page),
		)
		if resp, err = c.observations(ctx, filterTaxonID, page); err != nil {
			return model.Observation{}, err
		}
	}

	if len(resp.Results) == 0 {
		return model.Observation{}, fmt.Errorf("%w: taxon filter %d", ErrNoResultsFound, filterTaxonID)
	}
	return toObservation(resp.Results[0]), nil
}

func (c *Client) observations(ctx context.Context, filterTaxonID int64, page int) (observationsResponse, error) {
	q := url.Values{}
	q.Set("quality_grade", "research")
	q.Set("has[]", "photos")
	q.Set("photo_license", "CC0,CC-BY")
	q.Set("per_page", "1")
	q.Set("page", strconv.Itoa(page))
	if filterTaxonID > 0 {
		q.Set("taxon_id", strconv.FormatInt(filterTaxonID, 10))
	}

	var out observationsResponse
	err := c.getJSON(ctx, endpointObservations, "/observations", q, &out)
	return out, err
}

func toObservation(r observationResult) model.Observation {
	obs := model.Observation{
		ID:        r.ID,
		Permalink: r.URI,
	}
	if obs.Permalink == "" && r.ID != 0 {
		obs.Permalink = observationURLPrefix + strconv.FormatInt(r.ID, 10)
	}
	if r.Taxon != nil {
		obs.ClassificationID = r.Taxon.ID
	}
	if len(r.Photos) > 0 {
		obs.PhotoURL = strings.Replace(r.Photos[0].URL, "square", "medium", 1)
	}
	return obs
}

// FetchClassification loads a taxon and its ancestor chain.
func (c *Client) FetchClassification(ctx context.Context, taxonID int64) (*model.Classification, error) {
	var out taxaResponse
	path := "/taxa/" + strconv.FormatInt(taxonID, 10)
	if err := c.getJSON(ctx, endpointTaxa, path, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrTaxonNotFound, taxonID)
	}

	t := out.Results[0]
	record := &model.Classification{
		ID:        t.ID,
		Rank:      t.Rank,
		Name:      t.Name,
		Ancestors: make([]model.Ancestor, 0, len(t.Ancestors)),
	}
	for _, a := range t.Ancestors {
		record.Ancestors = append(record.Ancestors, model.Ancestor{Rank: a.Rank, Name: a.Name})
	}
	return record, nil
}

// FetchAutocomplete returns name candidates for query. A blank query
// returns nothing without contacting the provider.
func (c *Client) FetchAutocomplete(ctx context.Context, query string) ([]model.Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("per_page", strconv.Itoa(c.autocompleteLimit))

	var out taxaResponse
	if err := c.getJSON(ctx, endpointAutocomplete, "/taxa/autocomplete", q, &out); err != nil {
		return nil, err
	}

	list := make([]model.Suggestion, 0, len(out.Results))
	for _, t := range out.Results {
		list = append(list, model.Suggestion{ID: t.ID, Name: t.Name, Rank: t.Rank})
	}
	return list, nil
}

// getJSON performs a GET against the API and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RecordProviderLatency(endpoint, float64(time.Since(start).Milliseconds()))
	if err != nil {
		kind := "transport"
		if errors.Is(err, context.DeadlineExceeded) {
			kind = "timeout"
		}
		metrics.RecordProviderError(endpoint, kind)
		c.logger.Warn(ctx, "provider request failed", logger.String("endpoint", endpoint), logger.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrUpstream, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordProviderRequest(endpoint, strconv.Itoa(resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordProviderError(endpoint, "read")
		return fmt.Errorf("%w: reading %s response: %w", ErrUpstream, endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound && endpoint == endpointTaxa:
		metrics.RecordProviderError(endpoint, "not_found")
		return fmt.Errorf("%w: %s", ErrTaxonNotFound, path)
	case resp.StatusCode != http.StatusOK:
		metrics.RecordProviderError(endpoint, "status")
		c.logger.Warn(ctx, "provider returned error status",
			logger.String("endpoint", endpoint),
			logger.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("%w: %s returned %d: %s", ErrUpstream, endpoint, resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.RecordProviderError(endpoint, "decode")
		return fmt.Errorf("%w: %s: %w", ErrDecode, endpoint, err)
	}
	return nil
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
