package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrQueryNotFound = fmt.Errorf("%w: query", ErrNotFound)
	ErrPairNotFound  = fmt.Errorf("%w: drug-event pair", ErrNotFound)

	// Validation errors
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTable      = errors.New("invalid contingency table")
	ErrNegativeCount     = errors.New("negative case count")
	ErrEmptyTable        = errors.New("contingency table has no observations")
	ErrSeriesMismatch    = errors.New("time series dates and counts differ in length")
	ErrSeriesUnordered   = errors.New("time series dates are not ascending")
	ErrInvalidTotalCases = errors.New("total cases must be positive")
	ErrMissingTable      = errors.New("contingency table is required")
	ErrEmptyQuery        = errors.New("query has no drug or reaction terms")

	// Evidence errors
	ErrEvidenceUnavailable = errors.New("no evidence available for candidate")
)

// Error constructors with context
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrValidation, field, reason)
}

func NewNegativeCountError(cell string, value int) error {
	return fmt.Errorf("%w: cell %s = %d", ErrNegativeCount, cell, value)
}

func NewSeriesMismatchError(dates, counts int) error {
	return fmt.Errorf("%w: %d dates vs %d counts", ErrSeriesMismatch, dates, counts)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidTable) ||
		errors.Is(err, ErrNegativeCount) ||
		errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrSeriesMismatch) ||
		errors.Is(err, ErrSeriesUnordered) ||
		errors.Is(err, ErrInvalidTotalCases) ||
		errors.Is(err, ErrMissingTable) ||
		errors.Is(err, ErrEmptyQuery)
}

func IsEvidenceUnavailable(err error) bool {
	return errors.Is(err, ErrEvidenceUnavailable)
}
