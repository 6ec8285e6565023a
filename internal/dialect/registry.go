package dialect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nao1215/log2test/internal/scan"
)

// Dialect names accepted by Lookup.
const (
	VhostCombinedName = "vhost_combined"
	CombinedURLName   = "combined_url"
	JSONName          = "json"
)

// DefaultName is the dialect used when a configuration does not name one.
const DefaultName = VhostCombinedName

var registry = map[string]func(Options) scan.Classifier{
	VhostCombinedName: func(o Options) scan.Classifier { return NewVhostCombined(o) },
	CombinedURLName:   func(o Options) scan.Classifier { return NewCombinedURL(o) },
	JSONName:          func(o Options) scan.Classifier { return NewJSONLines(o) },
}

// Lookup returns a new classifier for the named dialect. The name is
// case-insensitive; an empty name selects DefaultName.
//
// Every call returns a fresh classifier, so concurrent jobs never share one.
func Lookup(name string, opts Options) (scan.Classifier, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultName
	}
	newFn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownFormat, name, strings.Join(Names(), ", "))
	}
	return newFn(opts), nil
}

// Names returns the registered dialect names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
