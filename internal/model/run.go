package model

import (
	"time"
)

// Counters are the line and match counts of a scan.
type Counters struct {
	LinesRead  int `json:"lines_read"`
	BlankLines int `json:"blank_lines"`
	Matched    int `json:"matched"`
	Appended   int `json:"appended"`
	Duplicates int `json:"duplicates"`
	Dropped    int `json:"dropped"`
}

// Run is the result of one log2test invocation for one job.
//
// BeginLine and EndLine bound the window as configured, while Position is
// where the scan actually stopped. NextBeginLine is what was persisted for
// the next run; it equals BeginLine for dry runs and failed scans.
type Run struct {
	// ID is the history database id. Zero until the run is saved.
	ID int64 `json:"id,omitempty"`

	LogFile    string `json:"log_file"`
	ConfigFile string `json:"config_file,omitempty"`
	TestStack  string `json:"test_stack"`
	LogFormat  string `json:"log_format"`

	BeginLine     int `json:"begin_line"`
	EndLine       int `json:"end_line"`
	NextBeginLine int `json:"next_begin_line"`
	MaxLine       int `json:"max_line"`
	Position      int `json:"position"`

	Status   Status   `json:"status"`
	Counters Counters `json:"counters"`

	// Error holds the failure message of a failed run.
	Error string `json:"error,omitempty"`

	// Generator settings carried through from the configuration.
	Browsers          []string `json:"browsers"`
	PauseBetweenTests int      `json:"pause_between_tests"`
	EnabledScreenshot bool     `json:"enabled_screenshot"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Hosts has one fixture per configured host, in configured order.
	Hosts []HostFixture `json:"hosts"`
}

// Completed reports whether every host's window was read in full.
func (r *Run) Completed() bool {
	return r.Status == StatusCompleted
}

// Duration returns how long the scan took.
func (r *Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// TotalPaths returns the number of collected paths across all hosts.
func (r *Run) TotalPaths() int {
	n := 0
	for _, h := range r.Hosts {
		n += len(h.Paths)
	}
	return n
}

// Fixtures returns the fixtures the generator renders, skipping empty ones.
func (r *Run) Fixtures() []HostFixture {
	out := make([]HostFixture, 0, len(r.Hosts))
	for _, h := range r.Hosts {
		if !h.Empty() {
			out = append(out, h)
		}
	}
	return out
}
