package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate and Options.Validate and
// let callers tell configuration mistakes apart with errors.Is.
var (
	// ErrNoHosts is returned when the configuration lists no host.
	// A scan without hosts would read lines without ever matching one.
	ErrNoHosts = errors.New("no hosts configured: add at least one entry to hosts")

	// ErrInvalidNumberOfLine is returned when numberOfLine is negative.
	// Zero is allowed and produces an empty run.
	ErrInvalidNumberOfLine = errors.New("invalid numberOfLine: must be non-negative")

	// ErrInvalidBeginLine is returned when beginLine is negative.
	ErrInvalidBeginLine = errors.New("invalid beginLine: must be non-negative")

	// ErrInvalidPause is returned when pauseBetweenTests is negative.
	ErrInvalidPause = errors.New("invalid pauseBetweenTests: must be non-negative")

	// ErrUnknownTestStack is returned when testStack names a stack the
	// generator does not support.
	ErrUnknownTestStack = errors.New("unknown testStack: must be selenium or curl")

	// ErrNoLogFile is returned when neither the command line nor the
	// configuration file names a log file.
	ErrNoLogFile = errors.New("no log file specified: pass it as an argument or set logFile")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)

// Store errors.
var (
	// ErrConfigurationMissing is returned by Store.Get for a key that is not
	// present. A required key that is missing is fatal: no scan is attempted.
	ErrConfigurationMissing = errors.New("configuration key missing")

	// ErrInvalidValue is returned when a key holds a value of the wrong type.
	ErrInvalidValue = errors.New("invalid configuration value")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidConfigFile is returned when the file is not a key/value mapping.
	ErrInvalidConfigFile = errors.New("configuration file must contain a key/value mapping")
)
