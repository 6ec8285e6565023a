package pipeline

import (
	"fmt"
	"time"

	"github.com/nao1215/log2test/internal/config"
	"github.com/nao1215/log2test/internal/model"
	"github.com/nao1215/log2test/internal/scan"
	"github.com/nao1215/log2test/internal/stream"
)

// Job carries the state of one invocation through the pipeline steps.
//
// The caller fills in the configuration fields; steps fill in the rest. Setting Config and Store in advance skips loading from
// ConfigPath, which is how tests and embedders supply configuration.
type Job struct {
	// ConfigPath is the configuration file of the job.
	ConfigPath string

	// LogFile overrides the logFile key of the configuration.
	LogFile string

	// DryRun skips progress persistence.
	DryRun bool

	// Strict makes the dialect reject malformed lines.
	Strict bool

	Config   *config.Config
	Store    config.Store
	Progress config.ProgressStore

	// Set by the steps.
	Classifier scan.Classifier
	Cursor     *scan.Cursor
	Inventory  *scan.Inventory
	Result     scan.Result

	// Run is the handoff document, created by the load step.
	Run *model.Run

	// Err is the first step error.
	Err error

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string

	lines *stream.Lines

	// persisted is set once the next begin line has been written.
	persisted bool
}

// NewJob returns a job for the configuration file at path.
func NewJob(configPath string) *Job {
	return &Job{ConfigPath: configPath}
}

// Failed reports whether a step has failed.
func (j *Job) Failed() bool {
	return j.Err != nil
}

// Name identifies the job in log output.
func (j *Job) Name() string {
	if j.ConfigPath != "" {
		return j.ConfigPath
	}
	if j.Run != nil {
		return j.Run.LogFile
	}
	return "job"
}

// Persisted reports whether the job wrote its next begin line.
func (j *Job) Persisted() bool {
	return j.persisted
}

// fail records err. Once progress has been written the window is consumed,
// so the run keeps its scan status and next begin line and only carries
// the error.
func (j *Job) fail(err error) {
	if j.Err == nil {
		j.Err = err
	}
	if j.Run != nil {
		j.Run.Error = j.Err.Error()
		if !j.persisted {
			j.Run.Status = model.StatusFailed
			j.Run.NextBeginLine = j.Run.BeginLine
		}
		if j.Run.FinishedAt.IsZero() {
			j.Run.FinishedAt = time.Now().UTC()
		}
	}
}

// closeStream releases the log file. It is safe to call more than once.
func (j *Job) closeStream() error {
	if j.lines == nil {
		return nil
	}
	err := j.lines.Close()
	j.lines = nil
	if err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}
