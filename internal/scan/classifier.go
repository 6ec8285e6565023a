package scan

// Match is a request found on a log line: the configured host it targets and
// the normalized request path.
type Match struct {
	Host string
	Path string
}

// Classifier decides whether a raw log line is a request against one of the
// hosts of interest.
//
// Implementations are specific to a log dialect; the engine knows nothing
// about their grammar. A line that names no host of interest returns
// ok == false and a nil error. A non-nil error aborts the scan.
//
// The returned Match.Host must be one of the strings in hosts, spelled
// exactly as given.
type Classifier interface {
	Classify(line string, hosts []string) (m Match, ok bool, err error)
}

// ClassifierFunc adapts an ordinary function to the Classifier interface.
type ClassifierFunc func(line string, hosts []string) (Match, bool, error)

// Classify calls f(line, hosts).
func (f ClassifierFunc) Classify(line string, hosts []string) (Match, bool, error) {
	return f(line, hosts)
}
