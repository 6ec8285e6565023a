package scan

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Result summarizes one call to Engine.Scan.
type Result struct {
	// Completed is true when every host's window was read in full. It is
	// false when the stream ran out first; that is a normal outcome, not an
	// error.
	Completed bool

	// Position is the cursor position when the scan returned.
	Position int

	// LinesRead counts lines consumed from the window, blank ones included.
	LinesRead int

	// BlankLines counts lines skipped because they were empty after trimming.
	BlankLines int

	// Matched counts lines the classifier attributed to a host.
	Matched int

	// Appended, Duplicates and Dropped break Matched down by Outcome.
	Appended   int
	Duplicates int
	Dropped    int
}

func (r *Result) record(o Outcome) {
	r.Matched++
	switch o {
	case OutcomeAppended:
		r.Appended++
	case OutcomeDuplicate:
		r.Duplicates++
	case OutcomeDroppedScreenshotDisabled:
		r.Dropped++
	}
}

// Engine drives a windowed scan: for each configured host it reads one
// window of lines from a shared cursor, classifies every non-blank line and
// feeds matches into an Inventory.
//
// All hosts share one cursor, so the second host's window starts where the
// first host's window ended. The host loop only defines the line budget;
// the classifier decides which host a matching line belongs to.
type Engine struct {
	classifier   Classifier
	hosts        []string
	windowLength int
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output during scans.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine returns an engine scanning windowLength lines per host.
// A window length of zero is allowed and scans nothing.
func NewEngine(classifier Classifier, hosts []string, windowLength int, opts ...Option) (*Engine, error) {
	if classifier == nil {
		return nil, ErrNilClassifier
	}
	if len(hosts) == 0 {
		return nil, ErrNoHosts
	}
	if windowLength < 0 {
		return nil, fmt.Errorf("%w: length=%d", ErrInvalidWindow, windowLength)
	}

	e := &Engine{
		classifier:   classifier,
		hosts:        slices.Clone(hosts),
		windowLength: windowLength,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Hosts returns the configured hosts in scan order.
func (e *Engine) Hosts() []string {
	return slices.Clone(e.hosts)
}

// WindowLength returns the number of lines scanned per host.
func (e *Engine) WindowLength() int {
	return e.windowLength
}

// Scan runs one pass over the cursor and populates inv.
//
// Every configured host gets an inventory entry before any line is read, so
// the entries exist even when the stream is already exhausted. The scan
// returns as soon as the cursor reaches the end of the stream, for all
// hosts, with Result.Completed set to false.
//
// Classifier failures and insertions for unknown hosts are returned as
// errors; lines are never retried.
func (e *Engine) Scan(inv *Inventory, cur *Cursor) (Result, error) {
	for _, host := range e.hosts {
		inv.Ensure(host)
	}

	var res Result
	for _, host := range e.hosts {
		for i := 0; i < e.windowLength; i++ {
			if cur.AtEnd() {
				res.Position = cur.Position()
				e.logger.Debug("end of stream reached before window completed",
					"host", host,
					"position", res.Position,
					"maxLine", cur.MaxLine(),
				)
				return res, nil
			}

			line := cur.Current()
			res.LinesRead++
			if strings.TrimSpace(line) == "" {
				res.BlankLines++
			} else if err := e.classify(inv, line, cur.Position(), &res); err != nil {
				res.Position = cur.Position()
				return res, err
			}

			if err := cur.Advance(); err != nil {
				res.Position = cur.Position()
				return res, fmt.Errorf("advance cursor: %w", err)
			}
		}

		e.logger.Debug("host window scanned",
			"host", host,
			"position", cur.Position(),
		)
	}

	res.Completed = true
	res.Position = cur.Position()
	return res, nil
}

func (e *Engine) classify(inv *Inventory, line string, position int, res *Result) error {
	m, ok, err := e.classifier.Classify(line, e.hosts)
	if err != nil {
		return &ClassifierError{Line: position, Err: err}
	}
	if !ok {
		return nil
	}

	outcome, err := inv.Add(m.Host, m.Path)
	if err != nil {
		return fmt.Errorf("line %d: %w", position, err)
	}
	res.record(outcome)

	e.logger.Debug("path classified",
		"line", position,
		"host", m.Host,
		"path", m.Path,
		"outcome", outcome.String(),
	)
	return nil
}
