package dialect

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/log2test/internal/scan"
)

// vhostLine matches the "vhost_combined" layout:
//
//	host[:port] client ident user [time] "METHOD target PROTO" status size ...
var vhostLine = regexp.MustCompile(`^(\S+) \S+ \S+ \S+ \[[^\]]*\] "([^"]*)"`)

// VhostCombined classifies Apache and nginx "vhost combined" access logs.
// The virtual host is the first field; only GET and HEAD requests match.
type VhostCombined struct {
	m      *matcher
	strict bool
}

// NewVhostCombined returns a classifier for vhost combined logs.
func NewVhostCombined(opts Options) *VhostCombined {
	return &VhostCombined{m: newMatcher(opts), strict: opts.Strict}
}

// Classify implements scan.Classifier.
func (v *VhostCombined) Classify(line string, hosts []string) (scan.Match, bool, error) {
	sub := vhostLine.FindStringSubmatch(line)
	if sub == nil {
		if v.strict {
			return scan.Match{}, false, fmt.Errorf("%w: not a vhost combined line", ErrMalformedLine)
		}
		return scan.Match{}, false, nil
	}

	method, target, ok := splitRequest(sub[2])
	if !ok || !replayable(method) {
		return scan.Match{}, false, nil
	}
	// Forward proxies log the absolute form; keep only its origin form.
	if isAbsolute(target) {
		u, err := url.Parse(target)
		if err != nil {
			return scan.Match{}, false, nil
		}
		target = requestTarget(u)
	}

	m, ok := v.m.match(sub[1], target, hosts)
	return m, ok, nil
}

// splitRequest splits a request line such as "GET /a HTTP/1.1".
// A request of "-" (no request received) is reported as not ok.
func splitRequest(request string) (method, target string, ok bool) {
	fields := strings.Fields(request)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}
