// Package pipeline runs log2test jobs.
//
// A Job is one invocation against one configuration file: load the
// configuration, open the log, scan the window, persist the next begin
// line and record the run in the history database. Each stage is a Step,
// and a Pipeline executes the steps of one job in order, stopping at the
// first failure unless configured otherwise.
//
// Progress is only persisted after a scan that did not fail. A classifier
// fault or an insertion for an unknown host stops the job before the
// persist step runs, so the next invocation rescans the same window.
// A later failure, such as a history write, does not undo a saved begin
// line; the run keeps its next begin line and only records the error.
//
// Several jobs can run at once with a BatchProcessor. Every job owns its
// stream, cursor and inventory; nothing is shared between jobs except the
// history database, which serializes its own writes.
package pipeline
