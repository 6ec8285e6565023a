// Package watch notifies when a log file changes.
//
// log2test reads a fixed window per run and always advances by the window
// length, so it must not run before the window has been written. The
// watch command uses a Watcher to wait for writes to the log and re-checks
// the line count after every quiet period.
//
// The parent directory is watched rather than the file itself, so a file
// that is rotated away and recreated keeps being followed.
package watch
