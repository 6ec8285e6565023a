package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/log2test/internal/database"
)

// Step is one stage of a job.
type Step interface {
	// Do executes the step. A returned error marks the job failed.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order for one job.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps executing steps after one fails. The first
// error is still recorded in the job, and the persist step refuses to
// advance a failed job, so this is mostly useful to record failed runs
// in the history database.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// NewDefault returns the standard job pipeline: load, open, scan, persist
// and, when db is not nil, history.
func NewDefault(db *database.RunDB, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewLoadStep(),
		NewOpenStep(),
		NewScanStep(WithScanLogger(p.logger)),
		NewPersistStep(WithPersistLogger(p.logger)),
	)
	if db != nil {
		p.AddStep(NewHistoryStep(db))
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps for job. Cancellation is checked between steps.
//
// It returns the first step error unless the pipeline continues on error,
// in which case the error is only recorded in job.Err. The log file
// opened for the job is always closed before Execute returns.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	defer func() { _ = job.closeStream() }()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"job", job.Name(),
				"reason", ctx.Err(),
			)
			job.fail(ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"job", job.Name(),
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"job", job.Name(),
				"error", err,
			)
			job.fail(err)
			job.PerformedSteps = append(job.PerformedSteps, step.Name())
			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"job", job.Name(),
		)
		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
