package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/log2test/internal/config"
	"github.com/nao1215/log2test/internal/database"
	"github.com/nao1215/log2test/internal/model"
	"github.com/nao1215/log2test/internal/pipeline"
	"github.com/nao1215/log2test/internal/stream"
	"github.com/nao1215/log2test/internal/watch"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [log-file]",
		Short: "Scan each window as soon as the log holds it",
		Long: `Watch follows an access log and runs the job whenever the log has grown
enough to fill the next window completely, that is when it holds
beginLine + numberOfLine * (number of hosts) complete lines.

Because a run always moves beginLine forward by numberOfLine, scanning a
log that is still too short would skip lines written later. Watch only
runs full windows, and catches up on several windows at once when the log
already holds them.

Examples:
  # Follow the log named in ./.log2test.yaml
  log2test watch

  # Follow a specific log with a specific job
  log2test watch -c nightly.yaml /var/log/apache2/other_vhosts_access.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatchCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Job configuration file (default: .log2test.yaml or XDG config)")
	cmd.Flags().Duration("debounce", watch.DefaultDebounce,
		"Quiet period after a write before the line count is checked")
	cmd.Flags().Bool("strict", false,
		"Fail on lines that do not match the log format")
	cmd.Flags().Bool("no-history", false,
		"Do not record runs in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return err
	}
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	var explicit []string
	if configPath != "" {
		explicit = []string{configPath}
	}
	paths, err := resolveConfigPaths(explicit)
	if err != nil {
		return err
	}

	cfg, _, err := config.LoadFile(paths[0])
	if err != nil {
		return err
	}
	logFile := cfg.LogFile
	if len(args) > 0 {
		logFile = args[0]
	}
	if logFile == "" {
		return config.ErrNoLogFile
	}
	if logFile, err = config.ExpandPath(logFile); err != nil {
		return fmt.Errorf("invalid log file: %w", err)
	}

	logger := setupLogger(cmd)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *database.RunDB
	if !noHistory {
		db, err = database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	runner := &windowRunner{
		configPath: paths[0],
		logFile:    logFile,
		strict:     strict,
		db:         db,
		logger:     logger,
		out:        cmd.OutOrStdout(),
	}

	w, err := watch.New(logFile, func(ctx context.Context, _ watch.Event) {
		if err := runner.catchUp(ctx); err != nil {
			logger.Error("scan failed", "log", logFile, "error", err)
		}
	}, watch.WithDebounce(debounce), watch.WithLogger(logger))
	if err != nil {
		return err
	}

	if err := runner.catchUp(ctx); err != nil {
		_ = w.Close()
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", logFile)
	return w.Run(ctx)
}

// windowRunner runs a job once for every full window the log holds.
type windowRunner struct {
	configPath string
	logFile    string
	strict     bool
	db         *database.RunDB
	logger     *slog.Logger
	out        io.Writer
}

// catchUp runs the job until the log no longer holds a full window.
// It returns the error of the first failed run.
func (r *windowRunner) catchUp(ctx context.Context) error {
	for ctx.Err() == nil {
		ready, have, need, err := windowReady(r.configPath, r.logFile)
		if err != nil {
			return err
		}
		if !ready {
			r.logger.Info("waiting for the log to grow",
				"log", r.logFile,
				"lines", have,
				"needed", need,
			)
			return nil
		}

		job := pipeline.NewJob(r.configPath)
		job.LogFile = r.logFile
		job.Strict = r.strict
		_ = pipeline.NewDefault(r.db, pipeline.WithLogger(r.logger)).Execute(ctx, job) //nolint:errcheck // recorded in the job

		if job.Run != nil {
			if err := writeRuns(r.out, []*model.Run{job.Run}, reportSettings{}); err != nil {
				return err
			}
		}
		if job.Failed() {
			return job.Err
		}
		if job.Run.NextBeginLine == job.Run.BeginLine {
			return nil
		}
	}
	return nil
}

// windowReady reports whether the log holds every line the job's next run
// reads. A missing log file is not ready rather than an error.
func windowReady(configPath, logFile string) (ready bool, have, need int, err error) {
	cfg, _, err := config.LoadFile(configPath)
	if err != nil {
		return false, 0, 0, err
	}
	need = cfg.LinesNeeded()

	lines, err := stream.Open(logFile)
	if errors.Is(err, fs.ErrNotExist) {
		return false, 0, need, nil
	}
	if err != nil {
		return false, 0, need, err
	}
	defer lines.Close()

	have, err = lines.Count()
	if err != nil {
		return false, 0, need, err
	}
	return cfg.NumberOfLine > 0 && have >= need, have, need, nil
}
