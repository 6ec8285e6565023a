package model

import (
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HostFixture is the generator input for one host.
type HostFixture struct {
	// Host is the configured host name.
	Host string `json:"host"`

	// HostCleaned is Host turned into an identifier, e.g. "WwwExampleCom".
	HostCleaned string `json:"host_cleaned"`

	// FixtureName names the generated test class,
	// HostCleaned + "From" + begin + "To" + end + "Test".
	FixtureName string `json:"fixture_name"`

	// Paths are the collected request paths in observation order.
	Paths []string `json:"paths"`

	// PathsHashed holds one stable id per entry of Paths.
	PathsHashed []string `json:"paths_hashed"`
}

// NewHostFixture builds the fixture of host for the window [begin, end).
func NewHostFixture(host string, paths []string, begin, end int) HostFixture {
	cleaned := CleanHost(host)
	if paths == nil {
		paths = []string{}
	}
	hashed := make([]string, len(paths))
	for i, p := range paths {
		hashed[i] = HashPath(p)
	}
	return HostFixture{
		Host:        host,
		HostCleaned: cleaned,
		FixtureName: FixtureName(cleaned, begin, end),
		Paths:       paths,
		PathsHashed: hashed,
	}
}

// Empty reports whether no path was collected for the host. The generator
// writes no test for an empty fixture.
func (f HostFixture) Empty() bool {
	return len(f.Paths) == 0
}

// FixtureName returns the test class name for a cleaned host and window.
func FixtureName(hostCleaned string, begin, end int) string {
	return hostCleaned + "From" + strconv.Itoa(begin) + "To" + strconv.Itoa(end) + "Test"
}

// CleanHost turns a host into an identifier: the scheme is dropped, every
// run of characters other than letters and digits separates words, and
// the words are title-cased and joined. A result starting with a digit is
// prefixed with "Host".
func CleanHost(host string) string {
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	words := strings.FieldsFunc(host, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	caser := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	cleaned := b.String()
	if cleaned == "" {
		return "Host"
	}
	if unicode.IsDigit([]rune(cleaned)[0]) {
		return "Host" + cleaned
	}
	return cleaned
}

// HashPath returns the hex BLAKE2b-128 digest of path. Fixture and
// screenshot ids built from it differ from MD5-based ids of older
// generators for the same path.
func HashPath(path string) string {
	// blake2b.New only fails for sizes above 64 or keys above 64 bytes.
	h, _ := blake2b.New(16, nil)
	_, _ = h.Write([]byte(path))
	return hex.EncodeToString(h.Sum(nil))
}
