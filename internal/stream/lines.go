package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// readBufferSize is the bufio buffer used for both measuring and reading.
// Access log lines are short, but long query strings are common enough that
// a generous buffer avoids repeated refills.
const readBufferSize = 64 * 1024

// ErrNegativeLine is returned when Seek is called with a negative line index.
var ErrNegativeLine = errors.New("line index must be non-negative")

// Stream is a seekable, line-addressable sequence of text lines.
//
// Line indexes are zero-based. Key reports the current line index, and
// Current returns the text of that line without its line terminator.
type Stream interface {
	// SeekEnd moves to the end of the stream and returns the line index
	// found there, which equals the number of complete lines.
	SeekEnd() (int, error)

	// Seek moves to the given line index. Indexes past the end clamp to
	// the end of the stream.
	Seek(line int) error

	// Current returns the line at the current index, or "" at the end.
	Current() string

	// Next advances to the following line. It is a no-op at the end.
	Next() error

	// EOF reports whether the current index is at the end of the stream.
	EOF() bool

	// Key returns the current line index.
	Key() int
}

// Lines implements Stream over an io.ReadSeeker.
//
// The number of lines is measured once, on the first call that needs it,
// and frozen afterwards. Bytes appended to the underlying source after
// that point are never read through this value, so a growing log file
// looks exactly as large as it was when the scan started.
//
// Only newline-terminated lines are counted. A trailing run of bytes with
// no newline is treated as a line that is still being written.
//
// Lines is not safe for concurrent use.
type Lines struct {
	rs     io.ReadSeeker
	closer io.Closer
	reader *bufio.Reader

	// count is the frozen number of complete lines, -1 until measured.
	count int

	key     int
	current string
}

// New returns a Lines reading from rs.
func New(rs io.ReadSeeker) *Lines {
	return &Lines{
		rs:     rs,
		reader: bufio.NewReaderSize(rs, readBufferSize),
		count:  -1,
	}
}

// Open opens the file at path as a Lines stream.
// The caller must call Close when done.
func Open(path string) (*Lines, error) {
	f, err := os.Open(path) //nolint:gosec // log file path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := New(f)
	l.closer = f
	return l, nil
}

// Close closes the underlying file when the stream was created by Open.
func (l *Lines) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Count returns the frozen number of complete lines, measuring it first
// if necessary. It does not move the current position.
func (l *Lines) Count() (int, error) {
	if err := l.measure(); err != nil {
		return 0, err
	}
	return l.count, nil
}

// SeekEnd implements Stream.
func (l *Lines) SeekEnd() (int, error) {
	if err := l.measure(); err != nil {
		return 0, err
	}
	l.key = l.count
	l.current = ""
	return l.key, nil
}

// Seek implements Stream.
func (l *Lines) Seek(line int) error {
	if line < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeLine, line)
	}
	if err := l.measure(); err != nil {
		return err
	}
	if line > l.count {
		line = l.count
	}

	if err := l.rewind(); err != nil {
		return err
	}
	for i := 0; i < line; i++ {
		if err := l.skipLine(); err != nil {
			return fmt.Errorf("seek to line %d: %w", line, err)
		}
	}

	l.key = line
	return l.load()
}

// Current implements Stream.
func (l *Lines) Current() string {
	return l.current
}

// Next implements Stream.
func (l *Lines) Next() error {
	if err := l.measure(); err != nil {
		return err
	}
	if l.EOF() {
		return nil
	}
	l.key++
	return l.load()
}

// EOF implements Stream.
func (l *Lines) EOF() bool {
	return l.count >= 0 && l.key >= l.count
}

// Key implements Stream.
func (l *Lines) Key() int {
	return l.key
}

// measure counts the complete lines once and leaves the stream on line 0.
func (l *Lines) measure() error {
	if l.count >= 0 {
		return nil
	}
	if err := l.rewind(); err != nil {
		return err
	}

	buf := make([]byte, readBufferSize)
	count := 0
	for {
		n, err := l.reader.Read(buf)
		count += bytes.Count(buf[:n], []byte{'\n'})
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("measure log file: %w", err)
		}
	}

	l.count = count
	l.key = 0
	if err := l.rewind(); err != nil {
		return err
	}
	return l.load()
}

func (l *Lines) rewind() error {
	if _, err := l.rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind log file: %w", err)
	}
	l.reader.Reset(l.rs)
	return nil
}

// skipLine discards bytes up to and including the next newline.
func (l *Lines) skipLine() error {
	for {
		_, err := l.reader.ReadSlice('\n')
		if err == nil {
			return nil
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
}

// load reads the line at the current key into current.
func (l *Lines) load() error {
	if l.key >= l.count {
		l.current = ""
		return nil
	}

	line, err := l.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			// The source shrank below the measured size.
			return fmt.Errorf("read line %d: %w", l.key, io.ErrUnexpectedEOF)
		}
		return fmt.Errorf("read line %d: %w", l.key, err)
	}

	line = strings.TrimSuffix(line, "\n")
	l.current = strings.TrimSuffix(line, "\r")
	return nil
}
