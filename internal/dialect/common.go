package dialect

import (
	"net"
	"path"
	"slices"
	"strings"

	"golang.org/x/net/idna"

	"github.com/nao1215/log2test/internal/scan"
)

// Options tune the behavior shared by every dialect.
type Options struct {
	// ExtensionsAllowed restricts matches to paths whose last segment has
	// one of these extensions (case-insensitive, with or without a leading
	// dot). Paths without an extension always match. An empty list allows
	// every extension.
	ExtensionsAllowed []string

	// Strict turns lines that do not follow the grammar into errors
	// instead of silently ignoring them.
	Strict bool
}

// matcher resolves raw hosts and request targets against the configured
// host set. It caches the normalized host table for the last hosts slice
// it saw and is therefore not safe for concurrent use.
type matcher struct {
	extensions map[string]struct{}

	hosts []string
	table map[string]string
}

func newMatcher(opts Options) *matcher {
	m := &matcher{}
	for _, ext := range opts.ExtensionsAllowed {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if m.extensions == nil {
			m.extensions = make(map[string]struct{})
		}
		m.extensions[ext] = struct{}{}
	}
	return m
}

// lookupHost returns the configured spelling of rawHost, if it is one of hosts.
func (m *matcher) lookupHost(rawHost string, hosts []string) (string, bool) {
	if !slices.Equal(m.hosts, hosts) {
		m.hosts = slices.Clone(hosts)
		m.table = make(map[string]string, len(hosts))
		for _, h := range hosts {
			if _, dup := m.table[normalizeHost(h)]; !dup {
				m.table[normalizeHost(h)] = h
			}
		}
	}
	h, ok := m.table[normalizeHost(rawHost)]
	return h, ok
}

// match builds a scan.Match for a request against rawHost, or reports false
// when the host is not configured or the target is filtered out.
func (m *matcher) match(rawHost, target string, hosts []string) (scan.Match, bool) {
	host, ok := m.lookupHost(rawHost, hosts)
	if !ok {
		return scan.Match{}, false
	}
	p, ok := normalizePath(target)
	if !ok || !m.allowed(p) {
		return scan.Match{}, false
	}
	return scan.Match{Host: host, Path: p}, true
}

// allowed applies the extension allow-list to the path component of p.
func (m *matcher) allowed(p string) bool {
	if len(m.extensions) == 0 {
		return true
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	ext := path.Ext(path.Base(p))
	if ext == "" || strings.HasSuffix(p, "/") {
		return true
	}
	_, ok := m.extensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

// normalizeHost lowercases h, removes a scheme, a trailing dot and a
// default port, and converts internationalized names to their ASCII form.
func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if i := strings.Index(h, "://"); i >= 0 {
		h = h[i+3:]
	}
	if i := strings.IndexAny(h, "/?#"); i >= 0 {
		h = h[:i]
	}

	name, port := h, ""
	if host, p, err := net.SplitHostPort(h); err == nil {
		name, port = host, p
	}
	name = strings.TrimSuffix(name, ".")
	if ascii, err := idna.Lookup.ToASCII(name); err == nil {
		name = ascii
	}

	switch port {
	case "", "80", "443":
		return name
	default:
		return net.JoinHostPort(name, port)
	}
}

// normalizePath accepts origin-form request targets and drops the fragment.
func normalizePath(target string) (string, bool) {
	if !strings.HasPrefix(target, "/") {
		return "", false
	}
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = target[:i]
	}
	return target, true
}

// replayable reports whether a request with this method can be replayed by
// a generated test.
func replayable(method string) bool {
	switch strings.ToUpper(method) {
	case "GET", "HEAD":
		return true
	default:
		return false
	}
}
