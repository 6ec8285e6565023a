// Package main provides the entry point for the log2test CLI.
//
// log2test scans a window of a web server access log, collects the request
// paths seen per virtual host and hands them to a test generator. Every
// run resumes where the previous one stopped.
//
// Usage:
//
//	log2test init
//	log2test scan [log-file] [-c job.yaml]...
//	log2test watch [log-file] -c job.yaml
//	log2test history [log-file]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
