package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func vhostLine(vhost, target string) string {
	return vhost + ` 10.0.0.1 - - [10/Oct/2024:13:55:36 +0000] "GET ` + target + ` HTTP/1.1" 200 512 "-" "curl/8.0"`
}

// jobYAML returns a complete job file reading logFile.
func jobYAML(logFile string, beginLine, numberOfLine int, hosts ...string) string {
	var b strings.Builder
	b.WriteString("testStack: selenium\n")
	b.WriteString("hosts:\n")
	for _, h := range hosts {
		fmt.Fprintf(&b, "  - %s\n", h)
	}
	fmt.Fprintf(&b, "numberOfLine: %d\n", numberOfLine)
	fmt.Fprintf(&b, "beginLine: %d\n", beginLine)
	b.WriteString("browsers: [firefox]\n")
	b.WriteString("extensions_allowed: []\n")
	b.WriteString("removeDuplicateUrl: false\n")
	b.WriteString("pauseBetweenTests: 0\n")
	b.WriteString("encodedUrls: false\n")
	b.WriteString("enabledScreenshot: true\n")
	if logFile != "" {
		fmt.Fprintf(&b, "logFile: %s\n", logFile)
	}
	return b.String()
}

// setupScan writes a log with the given lines and a job file reading it
// into a fresh directory. It returns the directory and the job file path.
func setupScan(t *testing.T, lines []string, beginLine, numberOfLine int, hosts ...string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	logFile := writeFile(t, dir, "access.log", strings.Join(lines, "\n")+"\n")
	job := writeFile(t, dir, "job.yaml", jobYAML(logFile, beginLine, numberOfLine, hosts...))
	return dir, job
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	return executeCmd(cmd, args...)
}

func executeCmd(cmd *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
