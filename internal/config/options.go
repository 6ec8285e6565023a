package config

// DefaultBatchSize is the number of jobs run concurrently in batch mode.
const DefaultBatchSize = 4

// Options holds the command-line settings of one invocation. Unlike
// Config, they are never read from or written to a job file.
type Options struct {
	// ConfigPaths are the job configuration files to run. More than one
	// path runs the jobs as a batch.
	ConfigPaths []string

	// LogFile overrides the logFile key of every job.
	LogFile string

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport and MarkdownReport select the report format. The default
	// is a plain text summary. They are mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// BatchSize bounds how many jobs run at once.
	BatchSize int

	// DBDir is the directory of the history database.
	DBDir string

	// SaveToDB records each run in the history database.
	SaveToDB bool

	// DryRun scans without persisting the next begin line.
	DryRun bool
}

// NewOptions returns Options with default values.
func NewOptions() *Options {
	return &Options{
		BatchSize: DefaultBatchSize,
		DBDir:     XDGDataDir(),
		SaveToDB:  true,
	}
}

// Validate checks the options and returns the first problem found.
func (o *Options) Validate() error {
	if o.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if o.JSONReport && o.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
