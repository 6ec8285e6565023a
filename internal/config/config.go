package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// AppName is the application name used for XDG directory paths.
const AppName = "log2test"

// Configuration keys as they appear in the file.
const (
	KeyTestStack          = "testStack"
	KeyHosts              = "hosts"
	KeyNumberOfLine       = "numberOfLine"
	KeyBeginLine          = "beginLine"
	KeyBrowsers           = "browsers"
	KeyExtensionsAllowed  = "extensions_allowed"
	KeyRemoveDuplicateURL = "removeDuplicateUrl"
	KeyPauseBetweenTests  = "pauseBetweenTests"
	KeyEncodedURLs        = "encodedUrls"
	KeyEnabledScreenshot  = "enabledScreenshot"
	KeyLogFile            = "logFile"
	KeyLogFormat          = "logFormat"
)

// RequiredKeys lists the keys every configuration file must define.
var RequiredKeys = []string{
	KeyTestStack,
	KeyHosts,
	KeyNumberOfLine,
	KeyBeginLine,
	KeyBrowsers,
	KeyExtensionsAllowed,
	KeyRemoveDuplicateURL,
	KeyPauseBetweenTests,
	KeyEncodedURLs,
	KeyEnabledScreenshot,
}

// Test stacks the generator can target.
const (
	TestStackSelenium = "selenium"
	TestStackCurl     = "curl"
)

// TestStacks lists the supported test stacks.
var TestStacks = []string{TestStackSelenium, TestStackCurl}

// Default values for keys that the starter configuration fills in.
const (
	// DefaultNumberOfLine is the window length of a freshly initialized job.
	DefaultNumberOfLine = 1000

	// DefaultLogFormat is used when the file has no logFormat key.
	DefaultLogFormat = "vhost_combined"

	// DefaultTestStack is the stack of a freshly initialized job.
	DefaultTestStack = TestStackSelenium
)

// Config is the typed configuration of one job.
//
// It mirrors the keys of the configuration file. The file is the source of
// truth: Config is rebuilt from the Store for every run, and only BeginLine
// is ever written back.
type Config struct {
	// TestStack selects the generator templates, selenium or curl.
	TestStack string

	// Hosts are the virtual hosts whose requests are collected, in the
	// order their windows are scanned.
	Hosts []string

	// NumberOfLine is the window length: the number of lines read for each
	// host in one run.
	NumberOfLine int

	// BeginLine is the zero-based line the next run starts at.
	BeginLine int

	// Browsers are handed to the generator for selenium tests.
	Browsers []string

	// ExtensionsAllowed restricts collected paths by file extension.
	// An empty list allows every path.
	ExtensionsAllowed []string

	// RemoveDuplicateURL enables duplicate removal per host.
	RemoveDuplicateURL bool

	// PauseBetweenTests is the pause the generated tests wait between
	// requests, in seconds.
	PauseBetweenTests int

	// EncodedURLs stores paths form-urlencoded.
	EncodedURLs bool

	// EnabledScreenshot asks generated tests to capture screenshots.
	EnabledScreenshot bool

	// LogFile is the access log to scan. Optional; the command line may
	// name the file instead.
	LogFile string

	// LogFormat is the dialect of LogFile. Defaults to DefaultLogFormat.
	LogFormat string
}

// NewConfig creates a Config with the values written by `log2test init`.
func NewConfig() *Config {
	return &Config{
		TestStack:         DefaultTestStack,
		Hosts:             []string{},
		NumberOfLine:      DefaultNumberOfLine,
		Browsers:          []string{"firefox"},
		ExtensionsAllowed: []string{},
		LogFormat:         DefaultLogFormat,
	}
}

// EndLine returns the exclusive upper bound of the run's window,
// BeginLine + NumberOfLine.
func (c *Config) EndLine() int {
	return c.BeginLine + c.NumberOfLine
}

// LinesNeeded returns how many complete lines the log must hold, counted
// from line zero, for every host's window to be read in full.
func (c *Config) LinesNeeded() int {
	return c.BeginLine + c.NumberOfLine*len(c.Hosts)
}

// Pause returns PauseBetweenTests as a duration.
func (c *Config) Pause() time.Duration {
	return time.Duration(c.PauseBetweenTests) * time.Second
}

// Load reads every recognized key from store and returns the typed
// configuration. A missing required key fails with an error wrapping
// ErrConfigurationMissing before anything else is read.
//
// Load does not call Validate.
func Load(store Store) (*Config, error) {
	values := make(map[string]any, len(RequiredKeys))
	for _, key := range RequiredKeys {
		v, err := store.Get(key)
		if err != nil {
			return nil, err
		}
		values[key] = v
	}

	cfg := NewConfig()
	var err error
	if cfg.TestStack, err = toString(KeyTestStack, values[KeyTestStack]); err != nil {
		return nil, err
	}
	if cfg.Hosts, err = toStrings(KeyHosts, values[KeyHosts]); err != nil {
		return nil, err
	}
	if cfg.NumberOfLine, err = toInt(KeyNumberOfLine, values[KeyNumberOfLine]); err != nil {
		return nil, err
	}
	if cfg.BeginLine, err = toInt(KeyBeginLine, values[KeyBeginLine]); err != nil {
		return nil, err
	}
	if cfg.Browsers, err = toStrings(KeyBrowsers, values[KeyBrowsers]); err != nil {
		return nil, err
	}
	if cfg.ExtensionsAllowed, err = toStrings(KeyExtensionsAllowed, values[KeyExtensionsAllowed]); err != nil {
		return nil, err
	}
	if cfg.RemoveDuplicateURL, err = toBool(KeyRemoveDuplicateURL, values[KeyRemoveDuplicateURL]); err != nil {
		return nil, err
	}
	if cfg.PauseBetweenTests, err = toInt(KeyPauseBetweenTests, values[KeyPauseBetweenTests]); err != nil {
		return nil, err
	}
	if cfg.EncodedURLs, err = toBool(KeyEncodedURLs, values[KeyEncodedURLs]); err != nil {
		return nil, err
	}
	if cfg.EnabledScreenshot, err = toBool(KeyEnabledScreenshot, values[KeyEnabledScreenshot]); err != nil {
		return nil, err
	}

	if cfg.LogFile, err = optionalString(store, KeyLogFile, ""); err != nil {
		return nil, err
	}
	if cfg.LogFormat, err = optionalString(store, KeyLogFormat, DefaultLogFormat); err != nil {
		return nil, err
	}
	if cfg.LogFile != "" {
		if cfg.LogFile, err = ExpandPath(cfg.LogFile); err != nil {
			return nil, fmt.Errorf("%s: %w", KeyLogFile, err)
		}
	}

	return cfg, nil
}

func optionalString(store Store, key, def string) (string, error) {
	v, err := store.Get(key)
	if errors.Is(err, ErrConfigurationMissing) {
		return def, nil
	}
	if err != nil {
		return "", err
	}
	s, err := toString(key, v)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return s, nil
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Hosts) == 0 {
		return ErrNoHosts
	}
	if c.NumberOfLine < 0 {
		return ErrInvalidNumberOfLine
	}
	if c.BeginLine < 0 {
		return ErrInvalidBeginLine
	}
	if c.PauseBetweenTests < 0 {
		return ErrInvalidPause
	}
	if !slices.Contains(TestStacks, strings.ToLower(c.TestStack)) {
		return ErrUnknownTestStack
	}
	return nil
}

// XDGDataDir returns the XDG data directory for log2test.
// On Linux: ~/.local/share/log2test
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for log2test.
// On Linux: ~/.config/log2test
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
