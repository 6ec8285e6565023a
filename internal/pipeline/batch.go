package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of jobs a BatchProcessor runs at once
// unless configured otherwise.
const DefaultConcurrency = 4

// BatchProcessor runs independent jobs concurrently.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for every job.
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent jobs.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch executes every job, at most concurrency at a time.
//
// A failing job does not stop the others; its error is recorded in
// Job.Err. Jobs keep their input order, so callers read results straight
// from the slice they passed in. ProcessBatch returns ErrDuplicateJob
// without running anything when two jobs share a configuration file, and
// the context error when the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []*Job) error {
	if err := checkDuplicates(jobs); err != nil {
		return err
	}

	bp.logger.Info("starting batch processing",
		"total_jobs", len(jobs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				job.fail(ctx.Err())
				return ctx.Err()
			default:
			}

			bp.logger.Info("running job",
				"job", job.Name(),
				"index", i+1,
				"total", len(jobs),
			)

			if err := bp.pipelineFactory().Execute(ctx, job); err != nil {
				bp.logger.Warn("job failed",
					"job", job.Name(),
					"error", err,
				)
				// Recorded in the job; the other jobs keep running.
				return nil
			}

			bp.logger.Info("job completed", "job", job.Name())
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_jobs", len(jobs),
		"elapsed", time.Since(startTime),
	)
	return err
}

func checkDuplicates(jobs []*Job) error {
	seen := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		if job.ConfigPath == "" {
			continue
		}
		key := filepath.Clean(job.ConfigPath)
		if abs, err := filepath.Abs(key); err == nil {
			key = abs
		}
		if seen[key] {
			return fmt.Errorf("%w: %s", ErrDuplicateJob, job.ConfigPath)
		}
		seen[key] = true
	}
	return nil
}
