package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func appendLines(t *testing.T, path string, lines ...string) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
}

func TestWindowReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		lines        int
		beginLine    int
		numberOfLine int
		wantReady    bool
		wantNeed     int
	}{
		{name: "exactly enough lines", lines: 4, beginLine: 0, numberOfLine: 2, wantReady: true, wantNeed: 4},
		{name: "one line short", lines: 3, beginLine: 0, numberOfLine: 2, wantReady: false, wantNeed: 4},
		{name: "counts from beginLine", lines: 4, beginLine: 2, numberOfLine: 1, wantReady: true, wantNeed: 4},
		{name: "empty window never ready", lines: 4, beginLine: 0, numberOfLine: 0, wantReady: false, wantNeed: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir, job := setupScan(t, fourLines[:tt.lines], tt.beginLine, tt.numberOfLine, "a.example", "b.example")

			ready, have, need, err := windowReady(job, filepath.Join(dir, "access.log"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ready != tt.wantReady {
				t.Errorf("ready = %t, want %t", ready, tt.wantReady)
			}
			if have != tt.lines {
				t.Errorf("have = %d, want %d", have, tt.lines)
			}
			if need != tt.wantNeed {
				t.Errorf("need = %d, want %d", need, tt.wantNeed)
			}
		})
	}

	t.Run("missing log file is not ready", func(t *testing.T) {
		t.Parallel()
		dir, job := setupScan(t, fourLines, 0, 2, "a.example")

		ready, have, _, err := windowReady(job, filepath.Join(dir, "rotated.log"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ready || have != 0 {
			t.Errorf("expected not ready with no lines, got ready=%t have=%d", ready, have)
		}
	})
}

func TestWindowRunnerCatchUp(t *testing.T) {
	t.Parallel()

	t.Run("runs every full window", func(t *testing.T) {
		t.Parallel()
		dir, job := setupScan(t, fourLines, 0, 1, "a.example", "b.example")

		var out bytes.Buffer
		r := &windowRunner{
			configPath: job,
			logFile:    filepath.Join(dir, "access.log"),
			logger:     discardLogger(),
			out:        &out,
		}
		if err := r.catchUp(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Windows start at 0, 1 and 2; the one at 3 would need a fifth line.
		if got := beginLineOf(t, job); got != 3 {
			t.Errorf("expected beginLine 3, got %d", got)
		}
		if got := strings.Count(out.String(), "LOG2TEST REPORT"); got != 3 {
			t.Errorf("expected 3 reports, got %d", got)
		}
		if strings.Contains(out.String(), "PARTIAL") {
			t.Errorf("expected only full windows, got:\n%s", out.String())
		}
	})

	t.Run("does nothing while the log is short", func(t *testing.T) {
		t.Parallel()
		dir, job := setupScan(t, fourLines[:1], 0, 1, "a.example", "b.example")

		var out bytes.Buffer
		r := &windowRunner{
			configPath: job,
			logFile:    filepath.Join(dir, "access.log"),
			logger:     discardLogger(),
			out:        &out,
		}
		if err := r.catchUp(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := beginLineOf(t, job); got != 0 {
			t.Errorf("expected beginLine 0, got %d", got)
		}
		if out.Len() != 0 {
			t.Errorf("expected no report, got:\n%s", out.String())
		}
	})

	t.Run("stops on a cancelled context", func(t *testing.T) {
		t.Parallel()
		dir, job := setupScan(t, fourLines, 0, 1, "a.example", "b.example")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r := &windowRunner{
			configPath: job,
			logFile:    filepath.Join(dir, "access.log"),
			logger:     discardLogger(),
			out:        io.Discard,
		}
		if err := r.catchUp(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := beginLineOf(t, job); got != 0 {
			t.Errorf("expected beginLine 0, got %d", got)
		}
	})
}

func TestRunWatchCmd(t *testing.T) {
	t.Parallel()

	dir, job := setupScan(t, fourLines[:2], 0, 1, "a.example", "b.example")
	logFile := filepath.Join(dir, "access.log")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"watch", "-c", job, "--no-history", "--debounce", "50ms"})

	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	waitForBeginLine := func(want int) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if beginLineOf(t, job) == want {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
		t.Fatalf("beginLine did not reach %d", want)
	}

	// The first window is already in the log.
	waitForBeginLine(1)

	appendLines(t, logFile, fourLines[2])
	waitForBeginLine(2)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
