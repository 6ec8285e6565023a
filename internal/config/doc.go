// Package config provides the configuration of a log2test job and the
// store it is read from and written back to.
//
// A job is described by one configuration file (YAML or TOML). The file is
// read through the Store interface, turned into a typed Config by Load, and
// updated after each run with the next begin line through a ProgressStore.
// Command-line options that are not part of the file live in Options.
package config
