// Package dialect provides the concrete access-log grammars used to
// classify log lines.
//
// Each dialect implements scan.Classifier. All of them share the same host
// and path normalization: hosts are compared case-insensitively after IDNA
// conversion with default ports removed, and paths must be origin-form
// (starting with "/") with any fragment dropped.
//
// Dialects are selected by name with Lookup:
//
//	vhost_combined  Apache/nginx "vhost combined" lines
//	combined_url    lines whose request target is an absolute URL
//	json            one JSON object per line
package dialect
