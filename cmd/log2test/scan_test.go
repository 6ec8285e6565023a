package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/log2test/internal/config"
	"github.com/nao1215/log2test/internal/database"
	"github.com/nao1215/log2test/internal/dialect"
	"github.com/nao1215/log2test/internal/model"
	"github.com/nao1215/log2test/internal/pipeline"
)

// fourLines fills one window of two lines for each of two hosts.
var fourLines = []string{
	vhostLine("a.example", "/one"),
	vhostLine("b.example", "/two"),
	vhostLine("a.example", "/three"),
	vhostLine("b.example", "/four"),
}

func beginLineOf(t *testing.T, job string) int {
	t.Helper()

	cfg, _, err := config.LoadFile(job)
	if err != nil {
		t.Fatalf("failed to load %s: %v", job, err)
	}
	return cfg.BeginLine
}

// TestNewScanCmd tests the scan command creation.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "scan [log-file]" {
			t.Errorf("expected use 'scan [log-file]', got %q", cmd.Use)
		}
	})

	flags := []struct {
		name      string
		shorthand string
	}{
		{name: "config", shorthand: "c"},
		{name: "batch", shorthand: "b"},
		{name: "json", shorthand: "j"},
		{name: "markdown", shorthand: "m"},
		{name: "output", shorthand: "o"},
		{name: "dry-run"},
		{name: "strict"},
		{name: "no-history"},
		{name: "db-dir"},
	}
	for _, f := range flags {
		t.Run("has "+f.name+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(f.name)
			if flag == nil {
				t.Fatalf("expected %s flag", f.name)
			}
			if flag.Shorthand != f.shorthand {
				t.Errorf("expected shorthand %q, got %q", f.shorthand, flag.Shorthand)
			}
		})
	}

	t.Run("batch defaults to the batch size", func(t *testing.T) {
		t.Parallel()
		if got := cmd.Flags().Lookup("batch").DefValue; got != "4" {
			t.Errorf("expected default 4, got %q", got)
		}
	})
}

// TestRunScanCmd tests the scan command end to end.
func TestRunScanCmd(t *testing.T) {
	t.Parallel()

	t.Run("completed scan advances and records history", func(t *testing.T) {
		t.Parallel()
		dir, job := setupScan(t, fourLines, 0, 2, "a.example", "b.example")
		dbDir := filepath.Join(dir, "db")

		stdout, _, err := execute(t, "scan", "-c", job, "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Status:         Completed", "[+] a.example (2 paths)", "[+] b.example (2 paths)"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, stdout)
			}
		}
		if got := beginLineOf(t, job); got != 2 {
			t.Errorf("expected beginLine 2, got %d", got)
		}
		if _, err := os.Stat(filepath.Join(dbDir, database.FileName)); err != nil {
			t.Errorf("expected history database: %v", err)
		}
	})

	t.Run("partial scan still advances by the window length", func(t *testing.T) {
		t.Parallel()
		_, job := setupScan(t, fourLines[:3], 0, 2, "a.example", "b.example")

		stdout, _, err := execute(t, "scan", "-c", job, "--no-history")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "PARTIAL") {
			t.Errorf("expected a partial run, got:\n%s", stdout)
		}
		if got := beginLineOf(t, job); got != 2 {
			t.Errorf("expected beginLine 2, got %d", got)
		}
	})

	t.Run("dry run keeps beginLine and history", func(t *testing.T) {
		t.Parallel()
		dir, job := setupScan(t, fourLines, 0, 2, "a.example", "b.example")
		dbDir := filepath.Join(dir, "db")

		if _, _, err := execute(t, "scan", "-c", job, "--dry-run", "--db-dir", dbDir); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := beginLineOf(t, job); got != 0 {
			t.Errorf("expected beginLine 0, got %d", got)
		}
		if _, err := os.Stat(filepath.Join(dbDir, database.FileName)); !os.IsNotExist(err) {
			t.Errorf("expected no history database, stat error = %v", err)
		}
	})

	t.Run("writes a json report to a file", func(t *testing.T) {
		t.Parallel()
		dir, job := setupScan(t, fourLines, 0, 2, "a.example", "b.example")
		reportPath := filepath.Join(dir, "reports", "run.json")

		stdout, _, err := execute(t, "scan", "-c", job, "--no-history", "--json", "-o", reportPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "LOG2TEST REPORT") {
			t.Errorf("expected a summary on stdout, got:\n%s", stdout)
		}

		info, err := os.Stat(reportPath)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("expected mode 0600, got %o", perm)
		}

		data, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		var run model.Run
		if err := json.Unmarshal(data, &run); err != nil {
			t.Fatalf("invalid JSON report: %v\n%s", err, data)
		}
		if run.Status != model.StatusCompleted {
			t.Errorf("expected completed, got %s", run.Status)
		}
		if len(run.Hosts) != 2 {
			t.Fatalf("expected 2 hosts, got %d", len(run.Hosts))
		}
		if want := []string{"/one", "/three"}; !slices.Equal(run.Hosts[0].Paths, want) {
			t.Errorf("expected paths %v, got %v", want, run.Hosts[0].Paths)
		}
		if run.Hosts[0].FixtureName == "" {
			t.Error("expected a fixture name")
		}
	})

	t.Run("log file argument overrides the job file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		logFile := writeFile(t, dir, "other.log", strings.Join(fourLines, "\n")+"\n")
		job := writeFile(t, dir, "job.yaml", jobYAML("", 0, 2, "a.example", "b.example"))

		stdout, _, err := execute(t, "scan", "-c", job, "--no-history", logFile)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Log File:       "+logFile) {
			t.Errorf("expected the argument log file in the report, got:\n%s", stdout)
		}
	})

	t.Run("runs several jobs in order", func(t *testing.T) {
		t.Parallel()
		_, jobA := setupScan(t, fourLines, 0, 2, "a.example", "b.example")
		_, jobB := setupScan(t, fourLines, 2, 1, "a.example", "b.example")

		stdout, _, err := execute(t, "scan", "-c", jobA, "-c", jobB, "--no-history", "--json", "-b", "2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var runs []model.Run
		if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
			t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].ConfigFile != jobA || runs[1].ConfigFile != jobB {
			t.Errorf("runs out of order: %s, %s", runs[0].ConfigFile, runs[1].ConfigFile)
		}
		if got := beginLineOf(t, jobB); got != 3 {
			t.Errorf("expected beginLine 3, got %d", got)
		}
	})

	t.Run("rejects the same job twice", func(t *testing.T) {
		t.Parallel()
		_, job := setupScan(t, fourLines, 0, 2, "a.example", "b.example")

		_, _, err := execute(t, "scan", "-c", job, "-c", job, "--no-history")
		if !errors.Is(err, pipeline.ErrDuplicateJob) {
			t.Fatalf("expected ErrDuplicateJob, got %v", err)
		}
		if got := beginLineOf(t, job); got != 0 {
			t.Errorf("expected beginLine 0, got %d", got)
		}
	})

	t.Run("missing job file", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "scan", "-c", filepath.Join(t.TempDir(), "missing.yaml"), "--no-history")
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("conflicting report formats", func(t *testing.T) {
		t.Parallel()
		_, job := setupScan(t, fourLines, 0, 2, "a.example")

		_, _, err := execute(t, "scan", "-c", job, "--no-history", "--json", "--markdown")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Fatalf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("strict mode fails without advancing", func(t *testing.T) {
		t.Parallel()
		lines := []string{vhostLine("a.example", "/one"), "not an access log line"}
		_, job := setupScan(t, lines, 0, 2, "a.example")

		stdout, _, err := execute(t, "scan", "-c", job, "--no-history", "--strict")
		if !errors.Is(err, dialect.ErrMalformedLine) {
			t.Fatalf("expected ErrMalformedLine, got %v", err)
		}
		if !strings.Contains(stdout, "FAILED") {
			t.Errorf("expected the failed run in the report, got:\n%s", stdout)
		}
		if got := beginLineOf(t, job); got != 0 {
			t.Errorf("expected beginLine 0, got %d", got)
		}
	})
}
