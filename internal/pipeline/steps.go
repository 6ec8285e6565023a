package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/log2test/internal/config"
	"github.com/nao1215/log2test/internal/database"
	"github.com/nao1215/log2test/internal/dialect"
	"github.com/nao1215/log2test/internal/model"
	"github.com/nao1215/log2test/internal/scan"
	"github.com/nao1215/log2test/internal/stream"
)

// LoadStep reads and validates the job configuration, builds the
// classifier and starts the run record.
type LoadStep struct{}

// NewLoadStep creates a LoadStep.
func NewLoadStep() *LoadStep {
	return &LoadStep{}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(_ context.Context, job *Job) error {
	if job.Config == nil {
		cfg, store, err := config.LoadFile(job.ConfigPath)
		if err != nil {
			return err
		}
		job.Config, job.Store = cfg, store
	}
	if job.Progress == nil && job.Store != nil {
		job.Progress = config.NewStoreProgress(job.Store)
	}

	cfg := job.Config
	if job.LogFile != "" {
		logFile, err := config.ExpandPath(job.LogFile)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		cfg.LogFile = logFile
	}
	if cfg.LogFile == "" {
		return config.ErrNoLogFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", job.Name(), err)
	}

	classifier, err := dialect.Lookup(cfg.LogFormat, dialect.Options{
		ExtensionsAllowed: cfg.ExtensionsAllowed,
		Strict:            job.Strict,
	})
	if err != nil {
		return err
	}
	job.Classifier = classifier

	job.Run = &model.Run{
		LogFile:           cfg.LogFile,
		ConfigFile:        job.ConfigPath,
		TestStack:         cfg.TestStack,
		LogFormat:         cfg.LogFormat,
		BeginLine:         cfg.BeginLine,
		EndLine:           cfg.EndLine(),
		NextBeginLine:     cfg.BeginLine,
		Position:          cfg.BeginLine,
		Browsers:          cfg.Browsers,
		PauseBetweenTests: cfg.PauseBetweenTests,
		EnabledScreenshot: cfg.EnabledScreenshot,
		StartedAt:         time.Now().UTC(),
	}
	return nil
}

// OpenStep opens the log file and positions a cursor at the begin line.
type OpenStep struct{}

// NewOpenStep creates an OpenStep.
func NewOpenStep() *OpenStep {
	return &OpenStep{}
}

// Name returns the step name.
func (s *OpenStep) Name() string {
	return "open"
}

// Do executes the open step.
func (s *OpenStep) Do(_ context.Context, job *Job) error {
	if job.Run == nil {
		return fmt.Errorf("%w: open before load", ErrStepOrder)
	}

	lines, err := stream.Open(job.Config.LogFile)
	if err != nil {
		return err
	}
	cur, err := scan.NewCursor(lines, job.Config.BeginLine, job.Config.NumberOfLine)
	if err != nil {
		_ = lines.Close()
		return err
	}

	job.lines = lines
	job.Cursor = cur
	job.Run.MaxLine = cur.MaxLine()
	return nil
}

// ScanStep runs the scan engine over the job's window.
type ScanStep struct {
	logger *slog.Logger
}

// ScanStepOption configures a ScanStep.
type ScanStepOption func(*ScanStep)

// WithScanLogger sets the logger handed to the scan engine.
func WithScanLogger(logger *slog.Logger) ScanStepOption {
	return func(s *ScanStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanStep creates a ScanStep.
func NewScanStep(opts ...ScanStepOption) *ScanStep {
	s := &ScanStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ScanStep) Name() string {
	return "scan"
}

// Do executes the scan step. The log file is closed when it returns.
func (s *ScanStep) Do(_ context.Context, job *Job) error {
	if job.Cursor == nil {
		return fmt.Errorf("%w: scan before open", ErrStepOrder)
	}
	defer func() { _ = job.closeStream() }()

	cfg := job.Config
	engine, err := scan.NewEngine(job.Classifier, cfg.Hosts, cfg.NumberOfLine, scan.WithLogger(s.logger))
	if err != nil {
		return err
	}
	inv := scan.NewInventory(scan.Policy{
		RemoveDuplicateURL: cfg.RemoveDuplicateURL,
		EncodedURLs:        cfg.EncodedURLs,
		EnabledScreenshot:  cfg.EnabledScreenshot,
	})

	res, err := engine.Scan(inv, job.Cursor)
	job.Inventory = inv
	job.Result = res

	run := job.Run
	run.Position = res.Position
	run.Counters = model.Counters{
		LinesRead:  res.LinesRead,
		BlankLines: res.BlankLines,
		Matched:    res.Matched,
		Appended:   res.Appended,
		Duplicates: res.Duplicates,
		Dropped:    res.Dropped,
	}
	run.FinishedAt = time.Now().UTC()
	if err != nil {
		return err
	}

	run.Status = model.StatusPartial
	if res.Completed {
		run.Status = model.StatusCompleted
	}
	run.Hosts = make([]model.HostFixture, 0, len(cfg.Hosts))
	for _, hp := range inv.Snapshot() {
		run.Hosts = append(run.Hosts, model.NewHostFixture(hp.Host, hp.Paths, run.BeginLine, run.EndLine))
	}
	return nil
}

// PersistStep writes the next begin line through the job's ProgressStore.
type PersistStep struct {
	policy func(windowLength int) config.AdvancePolicy
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithAdvancePolicy replaces the policy used to compute the next begin
// line. The default is config.AlwaysAdvanceBy.
func WithAdvancePolicy(policy func(windowLength int) config.AdvancePolicy) PersistStepOption {
	return func(s *PersistStep) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithPersistLogger sets the logger of the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewPersistStep creates a PersistStep.
func NewPersistStep(opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		policy: config.AlwaysAdvanceBy,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persist step. It never advances a failed job, even when
// the pipeline continues on error.
func (s *PersistStep) Do(ctx context.Context, job *Job) error {
	if job.Failed() {
		s.logger.Warn("progress not saved after failed scan", "job", job.Name())
		return nil
	}
	if job.Run == nil || job.Cursor == nil {
		return fmt.Errorf("%w: persist before scan", ErrStepOrder)
	}

	next := s.policy(job.Config.NumberOfLine)(job.Run.BeginLine, job.Result.Completed)
	if job.DryRun {
		s.logger.Info("dry run, progress not saved", "job", job.Name(), "nextBeginLine", next)
		return nil
	}
	if job.Progress == nil {
		return fmt.Errorf("%s: no progress store", job.Name())
	}
	if err := job.Progress.SaveBeginLine(ctx, next); err != nil {
		return err
	}
	job.persisted = true
	job.Config.BeginLine = next
	job.Run.NextBeginLine = next
	return nil
}

// HistoryStep records the run in the history database.
type HistoryStep struct {
	db *database.RunDB
}

// NewHistoryStep creates a HistoryStep writing to db.
func NewHistoryStep(db *database.RunDB) *HistoryStep {
	return &HistoryStep{db: db}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

// Do executes the history step. Jobs that failed before a run record
// existed are skipped.
func (s *HistoryStep) Do(ctx context.Context, job *Job) error {
	if job.Run == nil {
		return nil
	}
	if _, err := s.db.SaveRun(ctx, job.Run); err != nil {
		return fmt.Errorf("save run history: %w", err)
	}
	return nil
}
