package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/log2test/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty lists hosts that collected no path.
	showEmpty bool

	// verbose lists every collected path.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show hosts without paths.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables listing every collected path.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run in human-readable format.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	return w.WriteAll([]*model.Run{run})
}

// WriteAll outputs every run, one block each.
func (w *SimpleWriter) WriteAll(runs []*model.Run) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb)
	if len(runs) == 0 {
		sb.WriteString("No runs recorded.\n\n")
	}
	for _, run := range runs {
		w.writeRun(&sb, run)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         LOG2TEST REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeRun(sb *strings.Builder, run *model.Run) {
	if run.ID != 0 {
		fmt.Fprintf(sb, "Run:            #%d\n", run.ID)
	}
	fmt.Fprintf(sb, "Log File:       %s\n", run.LogFile)
	fmt.Fprintf(sb, "Format:         %s\n", run.LogFormat)
	fmt.Fprintf(sb, "Window:         %d - %d (log has %d lines)\n", run.BeginLine, run.EndLine, run.MaxLine)
	fmt.Fprintf(sb, "Next Begin:     %d\n", run.NextBeginLine)

	switch run.Status {
	case model.StatusPartial:
		fmt.Fprintf(sb, "Status:         PARTIAL (end of log at line %d)\n", run.Position)
	case model.StatusFailed:
		fmt.Fprintf(sb, "Status:         FAILED - %s\n", run.Error)
	default:
		sb.WriteString("Status:         Completed\n")
	}
	if run.Error != "" && run.Status != model.StatusFailed {
		fmt.Fprintf(sb, "Error:          %s\n", run.Error)
	}
	sb.WriteString("\n")

	c := run.Counters
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  lines read: %d  blank: %d  matched: %d\n", c.LinesRead, c.BlankLines, c.Matched)
	fmt.Fprintf(sb, "  appended: %d  duplicates: %d  dropped: %d\n", c.Appended, c.Duplicates, c.Dropped)
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, h := range run.Hosts {
		if h.Empty() && !w.showEmpty {
			continue
		}
		fmt.Fprintf(sb, "[+] %s (%d paths) -> %s\n", h.Host, len(h.Paths), h.FixtureName)
		if w.verbose {
			for _, p := range h.Paths {
				fmt.Fprintf(sb, "    %s\n", p)
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by log2test\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
