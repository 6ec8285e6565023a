package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		path := writeFile(t, "job.yaml", yamlJob)
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
			t.Errorf("expected empty string, got %s", got)
		}
	})

	t.Run("finds the file in the current directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(yamlJob), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		t.Chdir(dir)

		got := FindConfigFile("")
		if filepath.Base(got) != DefaultConfigFile {
			t.Errorf("expected %s, got %q", DefaultConfigFile, got)
		}
	})
}

func TestExpandPath(t *testing.T) {
	t.Parallel()

	t.Run("expands home directory", func(t *testing.T) {
		t.Parallel()

		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory")
		}
		got, err := ExpandPath("~/logs/access.log")
		if err != nil {
			t.Fatalf("ExpandPath() error = %v", err)
		}
		if !strings.HasPrefix(got, home) || !strings.HasSuffix(got, filepath.Join("logs", "access.log")) {
			t.Errorf("ExpandPath() = %q", got)
		}
	})

	t.Run("makes relative paths absolute", func(t *testing.T) {
		t.Parallel()

		got, err := ExpandPath("access.log")
		if err != nil {
			t.Fatalf("ExpandPath() error = %v", err)
		}
		if !filepath.IsAbs(got) {
			t.Errorf("ExpandPath() = %q, want absolute path", got)
		}
	})

	t.Run("rejects empty path", func(t *testing.T) {
		t.Parallel()

		if _, err := ExpandPath("  "); err == nil {
			t.Error("expected error for empty path")
		}
	})
}
