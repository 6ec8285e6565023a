package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, job *Job) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, job *Job) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, job)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

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

type jobFile struct {
	logFile      string
	beginLine    int
	numberOfLine int
	hosts        []string
	dedup        bool
	screenshot   bool
}

func (j jobFile) yaml() string {
	var b strings.Builder
	b.WriteString("testStack: selenium\n")
	b.WriteString("hosts:\n")
	for _, h := range j.hosts {
		fmt.Fprintf(&b, "  - %s\n", h)
	}
	fmt.Fprintf(&b, "numberOfLine: %d\n", j.numberOfLine)
	fmt.Fprintf(&b, "beginLine: %d\n", j.beginLine)
	b.WriteString("browsers: [firefox]\n")
	b.WriteString("extensions_allowed: []\n")
	fmt.Fprintf(&b, "removeDuplicateUrl: %t\n", j.dedup)
	b.WriteString("pauseBetweenTests: 0\n")
	b.WriteString("encodedUrls: false\n")
	fmt.Fprintf(&b, "enabledScreenshot: %t\n", j.screenshot)
	if j.logFile != "" {
		fmt.Fprintf(&b, "logFile: %s\n", j.logFile)
	}
	return b.String()
}

// setupJob writes a log and a job file into a fresh directory and
// returns the job file path.
func setupJob(t *testing.T, logLines []string, jf jobFile) string {
	t.Helper()

	dir := t.TempDir()
	jf.logFile = writeFile(t, dir, "access.log", strings.Join(logLines, "\n")+"\n")
	return writeFile(t, dir, "job.yaml", jf.yaml())
}
