package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/log2test/internal/config"
	"github.com/nao1215/log2test/internal/database"
	"github.com/nao1215/log2test/internal/model"
	"github.com/nao1215/log2test/internal/pipeline"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [log-file]",
		Short: "Scan the next window of an access log",
		Long: `Scan reads the configured window of the access log, collects the request
paths per virtual host and prints them for the test generator.

After the scan, beginLine in the job file is moved forward by numberOfLine,
even when the log ended before the window was full. Use --dry-run to scan
without moving it.

The job file is taken from -c, or else .log2test.yaml in the current
directory, or else config.yaml in the XDG config directory. Several -c
flags run several jobs concurrently.

Examples:
  # Scan using ./.log2test.yaml
  log2test scan

  # Scan a specific log with a specific job
  log2test scan -c nightly.yaml /var/log/apache2/other_vhosts_access.log

  # Hand the result to a generator as JSON
  log2test scan --json -o fixtures/run.json

  # Preview the next window without advancing
  log2test scan --dry-run

  # Run three jobs, two at a time
  log2test scan -c a.yaml -c b.yaml -c c.yaml --batch 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScanCmd,
	}

	cmd.Flags().StringArrayP("config", "c", nil,
		"Job configuration file (repeatable; default: .log2test.yaml or XDG config)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of jobs run concurrently")
	cmd.Flags().Bool("dry-run", false,
		"Scan without saving the next beginLine")
	cmd.Flags().Bool("strict", false,
		"Fail on lines that do not match the log format")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	opts, strict, err := buildOptions(cmd, args)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs := make([]*pipeline.Job, 0, len(opts.ConfigPaths))
	for _, path := range opts.ConfigPaths {
		job := pipeline.NewJob(path)
		job.LogFile = opts.LogFile
		job.DryRun = opts.DryRun
		job.Strict = strict
		jobs = append(jobs, job)
	}

	if err := runJobs(ctx, opts, jobs, logger); err != nil {
		return err
	}

	runs := make([]*model.Run, 0, len(jobs))
	var failed []error
	for _, job := range jobs {
		if job.Run != nil {
			runs = append(runs, job.Run)
		}
		if job.Failed() {
			failed = append(failed, fmt.Errorf("%s: %w", job.Name(), job.Err))
		}
	}

	if len(runs) > 0 {
		if err := writeRuns(cmd.OutOrStdout(), runs, reportSettings{
			JSON:     opts.JSONReport,
			Markdown: opts.MarkdownReport,
			File:     opts.ReportFile,
			Verbose:  opts.Verbose,
		}); err != nil {
			return err
		}
	}

	if len(failed) > 0 {
		return errors.Join(failed...)
	}
	return nil
}

// buildOptions reads the scan flags.
func buildOptions(cmd *cobra.Command, args []string) (*config.Options, bool, error) {
	opts := config.NewOptions()

	configPaths, err := cmd.Flags().GetStringArray("config")
	if err != nil {
		return nil, false, err
	}
	if opts.ConfigPaths, err = resolveConfigPaths(configPaths); err != nil {
		return nil, false, err
	}

	if len(args) > 0 {
		opts.LogFile = args[0]
	}
	opts.Verbose = getVerboseFlag(cmd)

	if opts.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, false, err
	}
	if opts.DryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
		return nil, false, err
	}
	if opts.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, false, err
	}
	if opts.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, false, err
	}
	if opts.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, false, err
	}
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, false, err
	}
	opts.SaveToDB = !noHistory && !opts.DryRun
	if opts.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return nil, false, err
	}

	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return nil, false, err
	}
	return opts, strict, nil
}

// resolveConfigPaths checks explicit job files, or finds the default one
// when none is given.
func resolveConfigPaths(paths []string) ([]string, error) {
	if len(paths) == 0 {
		found := config.FindConfigFile("")
		if found == "" {
			return nil, fmt.Errorf("%w: no %s in the current directory or %s (run 'log2test init')",
				config.ErrConfigNotFound, config.DefaultConfigFile, config.XDGConfigDir())
		}
		return []string{found}, nil
	}

	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		found := config.FindConfigFile(p)
		if found == "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, p)
		}
		resolved = append(resolved, found)
	}
	return resolved, nil
}

// runJobs executes the jobs, one directly or several through a batch.
// Job failures are recorded in the jobs; only setup errors are returned.
func runJobs(ctx context.Context, opts *config.Options, jobs []*pipeline.Job, logger *slog.Logger) error {
	var db *database.RunDB
	if opts.SaveToDB {
		var err error
		db, err = database.Open(opts.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", opts.DBDir)
	}

	newPipeline := func() *pipeline.Pipeline {
		return pipeline.NewDefault(db, pipeline.WithLogger(logger))
	}

	if len(jobs) == 1 {
		_ = newPipeline().Execute(ctx, jobs[0]) //nolint:errcheck // recorded in the job
		return nil
	}

	bp := pipeline.NewBatchProcessor(newPipeline,
		pipeline.WithConcurrency(opts.BatchSize),
		pipeline.WithBatchLogger(logger),
	)
	if err := bp.ProcessBatch(ctx, jobs); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
