package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/log2test/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "log2test.db"

// ErrRunNotFound is returned when no run matches the query.
var ErrRunNotFound = errors.New("run not found")

// RunDB stores the history of scan runs.
// It is safe for concurrent use; writes are serialized on one connection.
type RunDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

func (rdb *RunDB) createTables() error {
	schema := `
	-- One row per scan run; run_json holds the full handoff document
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		log_file TEXT NOT NULL,
		config_file TEXT,
		status TEXT NOT NULL,
		begin_line INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		next_begin_line INTEGER NOT NULL,
		max_line INTEGER NOT NULL,
		position INTEGER NOT NULL,
		lines_read INTEGER NOT NULL DEFAULT 0,
		matched INTEGER NOT NULL DEFAULT 0,
		appended INTEGER NOT NULL DEFAULT 0,
		run_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_log_file ON runs(log_file);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

	-- Paths collected per host and run, in collection order
	CREATE TABLE IF NOT EXISTS observed_paths (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		host TEXT NOT NULL,
		path TEXT NOT NULL,
		path_hash TEXT NOT NULL,
		ordinal INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_paths_run ON observed_paths(run_id);
	CREATE INDEX IF NOT EXISTS idx_paths_host_hash ON observed_paths(host, path_hash);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores run and its paths in one transaction and sets run.ID.
func (rdb *RunDB) SaveRun(ctx context.Context, run *model.Run) (int64, error) {
	runJSON, err := json.Marshal(run)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize run: %w", err)
	}
	status, _ := run.Status.MarshalText() //nolint:errcheck // MarshalText never fails

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (log_file, config_file, status, begin_line, end_line, next_begin_line,
		max_line, position, lines_read, matched, appended, run_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.LogFile, run.ConfigFile, string(status), run.BeginLine, run.EndLine, run.NextBeginLine,
		run.MaxLine, run.Position, run.Counters.LinesRead, run.Counters.Matched, run.Counters.Appended,
		string(runJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO observed_paths (run_id, host, path, path_hash, ordinal) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare path insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range run.Hosts {
		for i, p := range h.Paths {
			hash := model.HashPath(p)
			if i < len(h.PathsHashed) {
				hash = h.PathsHashed[i]
			}
			if _, err := stmt.ExecContext(ctx, id, h.Host, p, hash, i); err != nil {
				return 0, fmt.Errorf("failed to insert path: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	run.ID = id
	return id, nil
}

// GetRun returns the run with the given id, or ErrRunNotFound.
func (rdb *RunDB) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	var runJSON string
	err := rdb.db.QueryRowContext(ctx, `SELECT run_json FROM runs WHERE id = ?`, id).Scan(&runJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return decodeRun(id, runJSON)
}

// LatestRun returns the most recent run for logFile, or ErrRunNotFound.
func (rdb *RunDB) LatestRun(ctx context.Context, logFile string) (*model.Run, error) {
	var id int64
	var runJSON string
	err := rdb.db.QueryRowContext(ctx,
		`SELECT id, run_json FROM runs WHERE log_file = ? ORDER BY id DESC LIMIT 1`, logFile,
	).Scan(&id, &runJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: log file %s", ErrRunNotFound, logFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return decodeRun(id, runJSON)
}

// ListRuns returns the runs for logFile, newest first.
// An empty logFile lists the runs of every log file.
func (rdb *RunDB) ListRuns(ctx context.Context, logFile string) ([]*model.Run, error) {
	query := `SELECT id, run_json FROM runs ORDER BY id DESC`
	args := []any{}
	if logFile != "" {
		query = `SELECT id, run_json FROM runs WHERE log_file = ? ORDER BY id DESC`
		args = append(args, logFile)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		var id int64
		var runJSON string
		if err := rows.Scan(&id, &runJSON); err != nil {
			return nil, err
		}
		run, err := decodeRun(id, runJSON)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListLogFiles returns every log file with at least one run, sorted.
func (rdb *RunDB) ListLogFiles(ctx context.Context) ([]string, error) {
	rows, err := rdb.db.QueryContext(ctx, `SELECT DISTINCT log_file FROM runs ORDER BY log_file`)
	if err != nil {
		return nil, fmt.Errorf("failed to query log files: %w", err)
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// PathStat summarizes how often a path was collected for a host.
type PathStat struct {
	Path      string
	Runs      int
	FirstSeen time.Time
}

// DistinctPaths returns every path collected for host across all runs,
// most frequently seen first.
func (rdb *RunDB) DistinctPaths(ctx context.Context, host string) ([]PathStat, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT p.path, COUNT(DISTINCT p.run_id), MIN(r.created_at)
	FROM observed_paths p JOIN runs r ON r.id = p.run_id
	WHERE p.host = ?
	GROUP BY p.path_hash, p.path
	ORDER BY COUNT(DISTINCT p.run_id) DESC, p.path`, host)
	if err != nil {
		return nil, fmt.Errorf("failed to query paths: %w", err)
	}
	defer rows.Close()

	var stats []PathStat
	for rows.Next() {
		var s PathStat
		var firstSeen string
		if err := rows.Scan(&s.Path, &s.Runs, &firstSeen); err != nil {
			return nil, err
		}
		s.FirstSeen = parseTimestamp(firstSeen)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func decodeRun(id int64, runJSON string) (*model.Run, error) {
	var run model.Run
	if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run %d: %w", id, err)
	}
	run.ID = id
	return &run, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
