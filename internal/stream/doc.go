// Package stream provides line-addressable access to append-only log files.
//
// A Stream behaves like a cursor over numbered lines: it can jump to the
// end to learn how many complete lines exist, seek to an arbitrary line,
// read the current line and advance. The Lines implementation works over
// any io.ReadSeeker and keeps only one line in memory at a time.
//
// Design decision: line counts are measured once and frozen. A scan that
// starts against a log file which keeps growing sees a stable snapshot, and
// the new lines are picked up by the next invocation instead.
package stream
