package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const yamlJob = `# nightly replay job
testStack: selenium
hosts:
  - www.example.com
numberOfLine: 100
beginLine: 0 # advanced after every run
browsers: [firefox]
extensions_allowed: []
removeDuplicateUrl: true
pauseBetweenTests: 1
encodedUrls: false
enabledScreenshot: true
`

const tomlJob = `testStack = "curl"
hosts = ["api.example.com"]
numberOfLine = 50
beginLine = 10
browsers = []
extensions_allowed = ["json"]
removeDuplicateUrl = false
pauseBetweenTests = 0
encodedUrls = true
enabledScreenshot = false
logFormat = "json"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Format
	}{
		{path: "job.yaml", want: FormatYAML},
		{path: "job.yml", want: FormatYAML},
		{path: ".log2test", want: FormatYAML},
		{path: "job.toml", want: FormatTOML},
		{path: "JOB.TOML", want: FormatTOML},
	}
	for _, tt := range tests {
		if got := FormatFromPath(tt.path); got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestOpenFileStore(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		_, err := OpenFileStore(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "bad.yaml", "hosts: [unterminated\n")
		if _, err := OpenFileStore(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("rejects a YAML list document", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "list.yaml", "- a\n- b\n")
		if _, err := OpenFileStore(path); !errors.Is(err, ErrInvalidConfigFile) {
			t.Errorf("expected ErrInvalidConfigFile, got %v", err)
		}
	})

	t.Run("empty file is an empty mapping", func(t *testing.T) {
		t.Parallel()

		store, err := OpenFileStore(writeFile(t, "empty.yaml", ""))
		if err != nil {
			t.Fatalf("OpenFileStore() error = %v", err)
		}
		if _, err := store.Get(KeyHosts); !errors.Is(err, ErrConfigurationMissing) {
			t.Errorf("expected ErrConfigurationMissing, got %v", err)
		}
	})
}

func TestFileStoreYAML(t *testing.T) {
	t.Parallel()

	t.Run("loads a complete job", func(t *testing.T) {
		t.Parallel()

		cfg, store, err := LoadFile(writeFile(t, "job.yaml", yamlJob))
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		if store.Format() != FormatYAML {
			t.Errorf("Format() = %q, want yaml", store.Format())
		}
		if !slices.Equal(cfg.Hosts, []string{"www.example.com"}) || cfg.NumberOfLine != 100 {
			t.Errorf("cfg = %+v", cfg)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("set rewrites the file and keeps comments", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "job.yaml", yamlJob)
		store, err := OpenFileStore(path)
		if err != nil {
			t.Fatalf("OpenFileStore() error = %v", err)
		}
		if err := store.Set(KeyBeginLine, 100); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read config: %v", err)
		}
		content := string(data)
		for _, want := range []string{"# nightly replay job", "beginLine: 100", "# advanced after every run", "- www.example.com"} {
			if !strings.Contains(content, want) {
				t.Errorf("rewritten file missing %q:\n%s", want, content)
			}
		}

		reopened, err := OpenFileStore(path)
		if err != nil {
			t.Fatalf("OpenFileStore() error = %v", err)
		}
		got, err := reopened.Get(KeyBeginLine)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if n, err := toInt(KeyBeginLine, got); err != nil || n != 100 {
			t.Errorf("beginLine = %v, want 100", got)
		}
	})

	t.Run("set appends a new key", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "job.yaml", "hosts: [a]\n")
		store, err := OpenFileStore(path)
		if err != nil {
			t.Fatalf("OpenFileStore() error = %v", err)
		}
		if err := store.Set(KeyBeginLine, 5); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := store.Get(KeyBeginLine)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != 5 {
			t.Errorf("Get() = %v (%T), want 5", got, got)
		}
	})

	t.Run("set leaves no temporary files behind", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "job.yaml", yamlJob)
		store, err := OpenFileStore(path)
		if err != nil {
			t.Fatalf("OpenFileStore() error = %v", err)
		}
		if err := store.Set(KeyBeginLine, 1); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		entries, err := os.ReadDir(filepath.Dir(path))
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want only the config file", len(entries))
		}
	})
}

func TestFileStoreTOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "job.toml", tomlJob)
	cfg, store, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if store.Format() != FormatTOML {
		t.Errorf("Format() = %q, want toml", store.Format())
	}
	if cfg.TestStack != "curl" || cfg.BeginLine != 10 || cfg.LogFormat != "json" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.EncodedURLs || cfg.RemoveDuplicateURL {
		t.Errorf("flags = encoded %v dedup %v", cfg.EncodedURLs, cfg.RemoveDuplicateURL)
	}
	if len(cfg.Browsers) != 0 {
		t.Errorf("Browsers = %v, want empty", cfg.Browsers)
	}

	if err := store.Set(KeyBeginLine, cfg.EndLine()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	reloaded, _, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() after Set error = %v", err)
	}
	if reloaded.BeginLine != 60 {
		t.Errorf("BeginLine = %d, want 60", reloaded.BeginLine)
	}
	if !slices.Equal(reloaded.Hosts, cfg.Hosts) {
		t.Errorf("Hosts = %v, want %v", reloaded.Hosts, cfg.Hosts)
	}
}
