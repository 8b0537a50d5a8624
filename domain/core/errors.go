package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Load errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrParse             = errors.New("failed to parse file")

	// Aggregation errors
	ErrColumnNotFound  = errors.New("column not found")
	ErrUnknownFunction = errors.New("unsupported aggregation function")
	ErrColumnType      = errors.New("incompatible column type")

	// Table construction errors
	ErrInvalidTable = errors.New("invalid table")

	// Session errors
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
	ErrChartNotFound   = fmt.Errorf("%w: chart", ErrNotFound)
)

// Error constructors with context
func NewUnsupportedFormatError(ext string) error {
	if ext == "" {
		return fmt.Errorf("%w: file has no extension", ErrUnsupportedFormat)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

func NewParseError(format string, cause error) error {
	return fmt.Errorf("%w as %s: %v", ErrParse, format, cause)
}

func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

func NewUnknownFunctionError(fn string) error {
	return fmt.Errorf("%w: %q (expected sum, mean, count, min or max)", ErrUnknownFunction, fn)
}

func NewColumnTypeError(column, want, got string) error {
	return fmt.Errorf("%w: column %q is %s, %s required", ErrColumnType, column, got, want)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsLoadError reports errors that reject an upload as a whole.
func IsLoadError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrParse)
}

// IsAggregationError reports errors that reject a single aggregation call.
func IsAggregationError(err error) bool {
	return errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrUnknownFunction) ||
		errors.Is(err, ErrColumnType)
}
