package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Store is a key/value view of a job configuration.
//
// Get returns an error wrapping ErrConfigurationMissing for an absent key.
// Set is used once per run, to persist the next begin line.
type Store interface {
	Get(key string) (any, error)
	Set(key string, value any) error
}

// Format is the on-disk syntax of a configuration file.
type Format string

const (
	// FormatYAML is the default format.
	FormatYAML Format = "yaml"

	// FormatTOML is selected by a .toml file extension.
	FormatTOML Format = "toml"
)

// FormatFromPath infers the format from the file extension.
// Anything other than .toml is treated as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// document is the parsed content of a configuration file.
type document interface {
	get(key string) (any, bool, error)
	set(key string, value any) error
	encode() ([]byte, error)
}

// FileStore is a Store backed by a YAML or TOML file.
//
// The file is read once by OpenFileStore. Set updates the in-memory
// document and rewrites the file atomically (temporary file and rename),
// so an interrupted write never leaves a truncated configuration. YAML
// comments and key order survive a rewrite; TOML files are re-encoded.
//
// FileStore is safe for concurrent use.
type FileStore struct {
	path   string
	format Format

	mu  sync.Mutex
	doc document
}

// OpenFileStore reads the configuration file at path.
// It returns ErrConfigNotFound if the file does not exist.
func OpenFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	format := FormatFromPath(path)
	var doc document
	switch format {
	case FormatTOML:
		doc, err = parseTOML(data)
	default:
		doc, err = parseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s config %s: %w", format, path, err)
	}

	return &FileStore{path: path, format: format, doc: doc}, nil
}

// Path returns the file the store reads from and writes to.
func (s *FileStore) Path() string {
	return s.path
}

// Format returns the syntax of the underlying file.
func (s *FileStore) Format() Format {
	return s.format
}

// Get implements Store.
func (s *FileStore) Get(key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok, err := s.doc.get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidValue, key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConfigurationMissing, key)
	}
	return v, nil
}

// Set implements Store.
func (s *FileStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	data, err := s.doc.encode()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// writeFileAtomic replaces path with data, keeping the file mode of an
// existing file.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o600)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// yamlDocument keeps the node tree so comments and ordering are preserved.
type yamlDocument struct {
	root yaml.Node
}

func parseYAML(data []byte) (*yamlDocument, error) {
	d := &yamlDocument{}
	if err := yaml.Unmarshal(data, &d.root); err != nil {
		return nil, err
	}
	if d.root.Kind == 0 {
		d.root = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if d.root.Kind != yaml.DocumentNode || len(d.root.Content) != 1 || d.root.Content[0].Kind != yaml.MappingNode {
		return nil, ErrInvalidConfigFile
	}
	return d, nil
}

func (d *yamlDocument) mapping() *yaml.Node {
	return d.root.Content[0]
}

func (d *yamlDocument) find(key string) int {
	m := d.mapping()
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i + 1
		}
	}
	return -1
}

func (d *yamlDocument) get(key string) (any, bool, error) {
	i := d.find(key)
	if i < 0 {
		return nil, false, nil
	}
	var v any
	if err := d.mapping().Content[i].Decode(&v); err != nil {
		return nil, true, err
	}
	return v, true, nil
}

func (d *yamlDocument) set(key string, value any) error {
	var node yaml.Node
	if err := node.Encode(value); err != nil {
		return err
	}

	m := d.mapping()
	if i := d.find(key); i >= 0 {
		old := m.Content[i]
		node.HeadComment = old.HeadComment
		node.LineComment = old.LineComment
		node.FootComment = old.FootComment
		m.Content[i] = &node
		return nil
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&node,
	)
	return nil
}

func (d *yamlDocument) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&d.root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tomlDocument holds a decoded TOML table.
type tomlDocument struct {
	values map[string]any
}

func parseTOML(data []byte) (*tomlDocument, error) {
	d := &tomlDocument{values: make(map[string]any)}
	if err := toml.Unmarshal(data, &d.values); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *tomlDocument) get(key string) (any, bool, error) {
	v, ok := d.values[key]
	return v, ok, nil
}

func (d *tomlDocument) set(key string, value any) error {
	d.values[key] = value
	return nil
}

func (d *tomlDocument) encode() ([]byte, error) {
	return toml.Marshal(d.values)
}
