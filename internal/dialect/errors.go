package dialect

import "errors"

var (
	// ErrUnknownFormat is returned by Lookup for an unregistered dialect name.
	ErrUnknownFormat = errors.New("unknown log format")

	// ErrMalformedLine is returned in strict mode for a line that does not
	// follow the dialect's grammar.
	ErrMalformedLine = errors.New("malformed log line")
)
