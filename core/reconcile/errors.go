package reconcile

import (
	"errors"
	"fmt"

	"inventory-sync/core/inventory"
)

var (
	// ErrSourceUnavailable is returned when the source system cannot be reached.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrTargetUnavailable is returned when the target system cannot be reached.
	ErrTargetUnavailable = errors.New("target unavailable")
	// ErrConfiguration marks missing or invalid run configuration.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrCancelled is recorded for work that was not started because the run was cancelled.
	ErrCancelled = errors.New("run cancelled")
)

// SourceDataError reports a source row that could not be mapped to a canonical entity.
type SourceDataError struct {
	Kind   inventory.Kind `json:"kind"`
	Row    int            `json:"row"`
	Key    inventory.Key  `json:"key"`
	Reason string         `json:"reason"`
}

func (e *SourceDataError) Error() string {
	if e.Key.IsZero() {
		return fmt.Sprintf("%s row %d: %s", e.Kind, e.Row, e.Reason)
	}
	return fmt.Sprintf("%s row %d (%s): %s", e.Kind, e.Row, e.Key, e.Reason)
}

// ApplyError reports a failed create or update against the target.
type ApplyError struct {
	Kind   inventory.Kind
	Key    inventory.Key
	Op     Change
	Reason string
	Err    error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s %s %s: %s", e.Op, e.Kind, e.Key, e.Reason)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports an invalid configuration value. It matches ErrConfiguration.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// reasonOf extracts the user facing reason of an apply failure.
func reasonOf(err error) string {
	var applyErr *ApplyError
	if errors.As(err, &applyErr) && applyErr.Reason != "" {
		return applyErr.Reason
	}
	return err.Error()
}
