package dialect

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/log2test/internal/scan"
)

// jsonEntry holds the fields read from a JSON access log line. Reverse
// proxies disagree on naming, so several spellings are accepted.
type jsonEntry struct {
	Host    string `json:"host"`
	Vhost   string `json:"vhost"`
	Path    string `json:"path"`
	URI     string `json:"uri"`
	URL     string `json:"url"`
	Method  string `json:"method"`
	Request string `json:"request"`
}

// JSONLines classifies logs written as one JSON object per line.
//
// The host comes from "host" or "vhost", falling back to the host of an
// absolute "url". The target comes from "path", "uri", "url" or the target
// of a "request" line, in that order. When a method is present, only GET
// and HEAD match.
type JSONLines struct {
	m      *matcher
	strict bool
}

// NewJSONLines returns a classifier for JSON access logs.
func NewJSONLines(opts Options) *JSONLines {
	return &JSONLines{m: newMatcher(opts), strict: opts.Strict}
}

// Classify implements scan.Classifier.
func (j *JSONLines) Classify(line string, hosts []string) (scan.Match, bool, error) {
	var e jsonEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err != nil {
		if j.strict {
			return scan.Match{}, false, fmt.Errorf("%w: %w", ErrMalformedLine, err)
		}
		return scan.Match{}, false, nil
	}

	host := firstNonEmpty(e.Host, e.Vhost)
	method := e.Method
	target := firstNonEmpty(e.Path, e.URI)
	if target == "" && e.Request != "" {
		if m, t, ok := splitRequest(e.Request); ok {
			method = firstNonEmpty(method, m)
			target = t
		}
	}
	if e.URL != "" {
		if u, err := url.Parse(e.URL); err == nil {
			if host == "" {
				host = u.Host
			}
			if target == "" {
				target = requestTarget(u)
			}
		}
	}
	if isAbsolute(target) {
		if u, err := url.Parse(target); err == nil {
			host = firstNonEmpty(host, u.Host)
			target = requestTarget(u)
		}
	}

	if host == "" || target == "" {
		if j.strict {
			return scan.Match{}, false, fmt.Errorf("%w: missing host or path", ErrMalformedLine)
		}
		return scan.Match{}, false, nil
	}
	if method != "" && !replayable(method) {
		return scan.Match{}, false, nil
	}

	m, ok := j.m.match(host, target, hosts)
	return m, ok, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
