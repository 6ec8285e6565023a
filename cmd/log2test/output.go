package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/log2test/internal/model"
	"github.com/nao1215/log2test/internal/report"
)

// reportSettings selects how runs are printed.
type reportSettings struct {
	JSON      bool
	Markdown  bool
	File      string
	Verbose   bool
	ShowEmpty bool
	Versioned bool
}

// newReportWriter returns the writer for the selected format on out.
func newReportWriter(out io.Writer, s reportSettings) report.Writer {
	switch {
	case s.JSON && s.Versioned:
		return report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case s.JSON:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case s.Markdown:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out,
			report.WithVerbose(s.Verbose),
			report.WithShowEmpty(s.ShowEmpty),
		)
	}
}

// writeRuns prints runs to stdout, or to s.File when set. A JSON or
// Markdown report written to a file is accompanied by a text summary on
// stdout.
func writeRuns(stdout io.Writer, runs []*model.Run, s reportSettings) error {
	out := stdout
	if s.File != "" {
		dir := filepath.Dir(s.File)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		// Reports list request paths, which may include private query strings.
		f, err := os.OpenFile(s.File, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := newReportWriter(out, s)
	if s.File != "" && (s.JSON || s.Markdown) {
		w = report.NewMultiWriter(w, report.NewSimpleWriter(stdout))
	}

	var err error
	if len(runs) == 1 && !s.Versioned {
		_, err = w.Write(runs[0])
	} else {
		_, err = w.WriteAll(runs)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
