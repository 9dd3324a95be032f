package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across modules. FetchError-style failures are
// wrapped with %w so callers can test with errors.Is.
var (
	// ErrNotFound is returned when a snapshot or result does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when persisting would overwrite an existing
	// snapshot or validation result. Stores are append-only.
	ErrConflict = errors.New("already exists")

	// ErrNotEligible is returned when a snapshot is younger than the
	// validation horizon. This is a normal outcome, not a failure.
	ErrNotEligible = errors.New("snapshot not yet eligible for validation")

	// ErrNotAvailable is returned by return fetchers for delisted or
	// unknown tickers. It is recorded as a missing data point, never
	// escalated to a run failure.
	ErrNotAvailable = errors.New("return data not available")
)

// ConfigError signals invalid scoring configuration: a malformed weight
// profile, an unknown metric key, or duplicate tickers in a run. It is
// fatal and surfaced immediately, never silently corrected.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Reason)
	}
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

// NewConfigError creates a ConfigError for a specific field.
func NewConfigError(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
