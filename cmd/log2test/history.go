package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/log2test/internal/config"
	"github.com/nao1215/log2test/internal/database"
	"github.com/nao1215/log2test/internal/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [log-file]",
		Short: "Show previous runs from the history database",
		Long: `History lists the runs recorded by 'log2test scan'.

Each run stores its window, status, counters and the collected paths, so a
past run can be printed again in any report format.

Examples:
  # List all runs, newest first
  log2test history

  # List the runs of one log file
  log2test history /var/log/apache2/other_vhosts_access.log

  # Print run 12 as JSON
  log2test history --id 12 --json

  # List every log file with recorded runs
  log2test history --list-logs

  # Show how often each path of a host was collected
  log2test history --host www.example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("id", "i", 0,
		"Print the run with this id")
	cmd.Flags().BoolP("list-logs", "L", false,
		"List all log files in the database")
	cmd.Flags().String("host", "",
		"Show path statistics for a host")
	cmd.Flags().BoolP("json", "j", false,
		"Output runs in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output runs in Markdown format")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	listLogs, err := cmd.Flags().GetBool("list-logs")
	if err != nil {
		return err
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	var logFile string
	if len(args) > 0 {
		if logFile, err = config.ExpandPath(args[0]); err != nil {
			return fmt.Errorf("invalid log file: %w", err)
		}
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no history yet: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	settings := reportSettings{
		JSON:      jsonOutput,
		Markdown:  markdownOutput,
		Verbose:   getVerboseFlag(cmd),
		ShowEmpty: true,
	}

	switch {
	case listLogs:
		return listLogFiles(ctx, out, db)
	case host != "":
		return listHostPaths(ctx, out, db, host)
	case id != 0:
		run, err := db.GetRun(ctx, id)
		if err != nil {
			return err
		}
		return writeRuns(out, []*model.Run{run}, settings)
	}

	runs, err := db.ListRuns(ctx, logFile)
	if err != nil {
		return err
	}
	if jsonOutput || markdownOutput {
		settings.Versioned = true
		return writeRuns(out, runs, settings)
	}
	return listRuns(out, runs, logFile)
}

func listLogFiles(ctx context.Context, out io.Writer, db *database.RunDB) error {
	files, err := db.ListLogFiles(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	for _, f := range files {
		fmt.Fprintln(out, f)
	}
	return nil
}

func listHostPaths(ctx context.Context, out io.Writer, db *database.RunDB, host string) error {
	stats, err := db.DistinctPaths(ctx, host)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Fprintf(out, "No paths recorded for %s.\n", host)
		return nil
	}
	fmt.Fprintf(out, "%-6s %-20s %s\n", "RUNS", "FIRST SEEN", "PATH")
	for _, s := range stats {
		firstSeen := "-"
		if !s.FirstSeen.IsZero() {
			firstSeen = s.FirstSeen.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "%-6d %-20s %s\n", s.Runs, firstSeen, s.Path)
	}
	return nil
}

func listRuns(out io.Writer, runs []*model.Run, logFile string) error {
	if len(runs) == 0 {
		if logFile != "" {
			return fmt.Errorf("%w: log file %s", database.ErrRunNotFound, logFile)
		}
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-5s %-20s %-10s %-15s %-8s %s\n", "ID", "STARTED", "STATUS", "WINDOW", "PATHS", "LOG FILE")
	for _, r := range runs {
		window := fmt.Sprintf("%d-%d", r.BeginLine, r.EndLine)
		fmt.Fprintf(out, "%-5d %-20s %-10s %-15s %-8d %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status,
			window,
			r.TotalPaths(),
			r.LogFile,
		)
	}
	return nil
}
