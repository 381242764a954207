package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Column resolution errors
	ErrMissingColumn = errors.New("required column not found")

	// Input state errors
	ErrEmptyInput     = errors.New("no rows to analyze")
	ErrNotComputed    = errors.New("stage has not been computed")
	ErrMalformedValue = errors.New("malformed value")

	// Parameter errors
	ErrInvalidThreshold = errors.New("invalid analysis parameter")

	// Loader errors
	ErrUnsupportedFormat = errors.New("unsupported table format")
)

// NewMissingColumnError reports which role could not be resolved and what columns were available.
func NewMissingColumnError(role string, available []string) error {
	return fmt.Errorf("%w: no %s column among [%s]", ErrMissingColumn, role, strings.Join(available, ", "))
}

func NewInvalidThresholdError(name string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidThreshold, name, reason)
}

func NewMalformedValueError(column string, row int, raw string) error {
	return fmt.Errorf("%w: column %q row %d: %q", ErrMalformedValue, column, row, raw)
}

// Error checking helpers
func IsMissingColumnError(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidThreshold) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrMalformedValue)
}
