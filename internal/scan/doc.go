// Package scan implements the windowed scan over an access log.
//
// A Cursor bounds the lines to read, a Classifier recognizes requests for
// the hosts of interest, and an Inventory collects the matching paths per
// host. The Engine ties them together: every configured host consumes one
// window of lines from the same cursor, in configured order.
//
// Reaching the end of the log before all windows are read is a normal
// outcome and is reported through Result.Completed, not as an error.
// Progress across invocations is persisted by the caller; this package
// holds no state between scans other than what the caller passes in.
package scan
