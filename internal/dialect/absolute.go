package dialect

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/log2test/internal/scan"
)

var (
	quotedRequest = regexp.MustCompile(`"([^"]*)"`)
	absoluteURL   = regexp.MustCompile(`https?://[^\s"']+`)
)

// CombinedURL classifies lines that carry an absolute request URL, such as
// combined logs written by a forward proxy or logs where the format puts
// the full URL in the request field.
//
// The request target of the first quoted request is preferred. When it is
// not an absolute URL, the first http(s) URL anywhere on the line is used.
// The host always comes from the URL.
type CombinedURL struct {
	m      *matcher
	strict bool
}

// NewCombinedURL returns a classifier for logs carrying absolute URLs.
func NewCombinedURL(opts Options) *CombinedURL {
	return &CombinedURL{m: newMatcher(opts), strict: opts.Strict}
}

// Classify implements scan.Classifier.
func (c *CombinedURL) Classify(line string, hosts []string) (scan.Match, bool, error) {
	raw, method := "", ""
	if sub := quotedRequest.FindStringSubmatch(line); sub != nil {
		if m, target, ok := splitRequest(sub[1]); ok && isAbsolute(target) {
			raw, method = target, m
		}
	}
	if raw == "" {
		raw = absoluteURL.FindString(line)
	}
	if raw == "" {
		if c.strict {
			return scan.Match{}, false, fmt.Errorf("%w: no absolute URL", ErrMalformedLine)
		}
		return scan.Match{}, false, nil
	}
	if method != "" && !replayable(method) {
		return scan.Match{}, false, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		if c.strict {
			return scan.Match{}, false, fmt.Errorf("%w: parse URL %q", ErrMalformedLine, raw)
		}
		return scan.Match{}, false, nil
	}

	m, ok := c.m.match(u.Host, requestTarget(u), hosts)
	return m, ok, nil
}

func isAbsolute(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// requestTarget returns the origin form of u, keeping the query as logged.
func requestTarget(u *url.URL) string {
	target := u.EscapedPath()
	if target == "" {
		target = "/"
	}
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return target
}
