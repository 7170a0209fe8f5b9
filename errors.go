package palette

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is the root of every configuration failure.
	// Test for it with errors.Is to tell a bad cluster setup from a bad image.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidClusterCount is returned when the cluster count is not positive.
	ErrInvalidClusterCount = errors.New("cluster count must be positive")

	// ErrTooManyClusters is returned when more clusters than samples are requested.
	ErrTooManyClusters = errors.New("cluster count exceeds number of samples")

	// ErrEmptySamples is returned when Fit is called without samples.
	ErrEmptySamples = errors.New("no samples to quantize")
)

// ConfigError names the violated configuration constraint.
//
// It matches ErrInvalidConfig and the specific cause via errors.Is.
type ConfigError struct {
	Param string
	Value any
	cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %v", e.Param, e.Value, e.cause)
}

func (e *ConfigError) Unwrap() []error { return []error{ErrInvalidConfig, e.cause} }

func configError(param string, value any, cause error) error {
	return &ConfigError{Param: param, Value: value, cause: cause}
}
