package scan

import (
	"errors"
	"fmt"
)

// Scan contract errors.
// Callers check them with errors.Is; each indicates a programming or
// configuration mistake rather than a property of the scanned data.
var (
	// ErrInvalidWindow is returned when a cursor is built with a negative
	// begin line or window length.
	ErrInvalidWindow = errors.New("invalid window: begin line and length must be non-negative")

	// ErrUnknownHost is returned when a path is inserted for a host that has
	// no inventory entry. The engine creates an entry for every configured
	// host before scanning, so this means a classifier returned a host it
	// was never asked about.
	ErrUnknownHost = errors.New("host is not part of the inventory")

	// ErrNoHosts is returned when an engine is built without any host.
	ErrNoHosts = errors.New("at least one host is required")

	// ErrNilClassifier is returned when an engine is built without a classifier.
	ErrNilClassifier = errors.New("classifier must not be nil")
)

// ClassifierError wraps a failure raised by a Classifier on a specific line.
// The engine never retries or skips such a line; the error ends the run.
type ClassifierError struct {
	// Line is the zero-based line index that failed to classify.
	Line int

	// Err is the error returned by the classifier.
	Err error
}

// Error implements error.
func (e *ClassifierError) Error() string {
	return fmt.Sprintf("classify line %d: %v", e.Line, e.Err)
}

// Unwrap returns the classifier's error.
func (e *ClassifierError) Unwrap() error {
	return e.Err
}
