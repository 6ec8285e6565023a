package model

import "fmt"

// Status is the outcome of a run.
type Status int

const (
	// StatusCompleted means every host's window was read in full.
	StatusCompleted Status = iota

	// StatusPartial means the log ended before every window was read.
	// The collected paths are still valid.
	StatusPartial

	// StatusFailed means the scan stopped on an error and its paths must
	// not be used.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler, so statuses appear by
// name in JSON reports and the history database.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus parses the name returned by String.
func ParseStatus(name string) (Status, error) {
	switch name {
	case "completed":
		return StatusCompleted, nil
	case "partial":
		return StatusPartial, nil
	case "failed":
		return StatusFailed, nil
	default:
		return 0, fmt.Errorf("unknown run status %q", name)
	}
}
