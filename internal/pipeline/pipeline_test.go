package pipeline

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/nao1215/log2test/internal/database"
)

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.continueOnError {
			t.Error("continueOnError should default to false")
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))
		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

func TestNewDefault(t *testing.T) {
	t.Parallel()

	t.Run("without history", func(t *testing.T) {
		t.Parallel()

		got := NewDefault(nil).StepNames()
		want := []string{"load", "open", "scan", "persist"}
		if !slices.Equal(got, want) {
			t.Errorf("StepNames() = %v, want %v", got, want)
		}
	})

	t.Run("with history", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })

		got := NewDefault(db).StepNames()
		want := []string{"load", "open", "scan", "persist", "history"}
		if !slices.Equal(got, want) {
			t.Errorf("StepNames() = %v, want %v", got, want)
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New()
		for _, name := range []string{"first", "second", "third"} {
			p.AddStep(&mockStep{
				name: name,
				doFunc: func(context.Context, *Job) error {
					order = append(order, name)
					return nil
				},
			})
		}

		job := NewJob("job.yaml")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"first", "second", "third"}
		if !slices.Equal(order, want) {
			t.Errorf("order = %v, want %v", order, want)
		}
		if !slices.Equal(job.PerformedSteps, want) {
			t.Errorf("PerformedSteps = %v, want %v", job.PerformedSteps, want)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		failing := &mockStep{name: "failing", doFunc: func(context.Context, *Job) error { return errBoom }}
		after := &mockStep{name: "after"}

		p := New()
		p.AddSteps(failing, after)

		job := NewJob("job.yaml")
		err := p.Execute(context.Background(), job)
		if !errors.Is(err, errBoom) {
			t.Fatalf("error = %v, want %v", err, errBoom)
		}
		if after.callCount != 0 {
			t.Error("step after the failure should not run")
		}
		if !job.Failed() || !errors.Is(job.Err, errBoom) {
			t.Errorf("job.Err = %v", job.Err)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		errFirst := errors.New("first")
		p := New(WithContinueOnError(true))
		after := &mockStep{name: "after"}
		p.AddSteps(
			&mockStep{name: "failing", doFunc: func(context.Context, *Job) error { return errFirst }},
			&mockStep{name: "failing-too", doFunc: func(context.Context, *Job) error { return errors.New("second") }},
			after,
		)

		job := NewJob("job.yaml")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if after.callCount != 1 {
			t.Errorf("after.callCount = %d, want 1", after.callCount)
		}
		if !errors.Is(job.Err, errFirst) {
			t.Errorf("job.Err = %v, want the first error", job.Err)
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New()
		p.AddStep(step)

		job := NewJob("job.yaml")
		if err := p.Execute(ctx, job); !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
		if step.callCount != 0 {
			t.Error("step should not run after cancellation")
		}
		if !errors.Is(job.Err, context.Canceled) {
			t.Errorf("job.Err = %v", job.Err)
		}
	})
}
