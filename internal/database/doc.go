// Package database provides SQLite-based run history for log2test.
//
// This package implements the RunDB, which stores:
//   - One record per run, with its window, status and counters
//   - Every observed path per host, for cross-run queries
//
// SQLite is used through modernc.org/sqlite, a CGO-free driver, so the
// history is a single file and the binary cross-compiles without a C
// toolchain. WAL mode keeps readers unblocked while a batch writes.
package database
