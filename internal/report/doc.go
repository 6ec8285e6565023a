// Package report writes scan runs in the formats log2test supports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter: the document handed to the test generator
//   - MarkdownWriter: a summary suitable for sharing in reviews
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
