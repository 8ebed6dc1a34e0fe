package api

import (
	"errors"
	"net/http"

	"github.com/okian/specious/internal/adapters/provider"
	"github.com/okian/specious/internal/adapters/repository"
	service "github.com/okian/specious/internal/app"
	"github.com/okian/specious/internal/domain/rank"
	"github.com/okian/specious/internal/domain/round"
)

// Sentinel kinds for API errors.
var (
	ErrServe      = errors.New("http serve failed")
	ErrBadRequest = errors.New("bad request")
)

// Error tags an error with the operation that produced it and its kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewKind returns an error of kind for op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind returns err tagged with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap tags err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// errorStatus maps an error to its HTTP status and response code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, rank.ErrUnknownRank):
		return http.StatusBadRequest, "unknown_rank"
	case errors.Is(err, round.ErrEmptyGuess):
		return http.StatusBadRequest, "empty_guess"
	case errors.Is(err, service.ErrInvalidFilter):
		return http.StatusBadRequest, "invalid_filter"
	case errors.Is(err, round.ErrMissingClassification):
		return http.StatusConflict, "missing_classification"
	case errors.Is(err, round.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, provider.ErrNoResultsFound):
		return http.StatusNotFound, "no_results"
	case errors.Is(err, provider.ErrUpstream),
		errors.Is(err, provider.ErrDecode),
		errors.Is(err, provider.ErrTaxonNotFound):
		return http.StatusBadGateway, "upstream"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
