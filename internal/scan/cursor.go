package scan

import (
	"fmt"

	"github.com/nao1215/log2test/internal/stream"
)

// Cursor is the window cursor over a log stream.
//
// Its shape (begin line and window length) is fixed at construction. Only
// the live read position moves while a scan runs. The line ceiling is a
// snapshot taken once when the cursor is built; lines appended later are
// not visible through this cursor.
type Cursor struct {
	stream  stream.Stream
	begin   int
	length  int
	maxLine int
}

// NewCursor measures the stream, then positions it at begin.
//
// A begin line at or past the end of the stream is not an error. The
// cursor simply starts at the end, and a scan stops immediately.
func NewCursor(s stream.Stream, begin, length int) (*Cursor, error) {
	if begin < 0 || length < 0 {
		return nil, fmt.Errorf("%w: begin=%d length=%d", ErrInvalidWindow, begin, length)
	}

	maxLine, err := s.SeekEnd()
	if err != nil {
		return nil, fmt.Errorf("measure stream: %w", err)
	}
	if err := s.Seek(begin); err != nil {
		return nil, fmt.Errorf("seek to begin line %d: %w", begin, err)
	}

	return &Cursor{
		stream:  s,
		begin:   begin,
		length:  length,
		maxLine: maxLine,
	}, nil
}

// MaxLine returns the number of complete lines measured at construction.
func (c *Cursor) MaxLine() int {
	return c.maxLine
}

// Begin returns the first line of the window.
func (c *Cursor) Begin() int {
	return c.begin
}

// End returns the exclusive upper bound of the window, begin + length.
func (c *Cursor) End() int {
	return c.begin + c.length
}

// Length returns the configured window length.
func (c *Cursor) Length() int {
	return c.length
}

// Position returns the current line index.
func (c *Cursor) Position() int {
	return c.stream.Key()
}

// Current returns the line at the current position.
func (c *Cursor) Current() string {
	return c.stream.Current()
}

// Advance moves to the next line.
func (c *Cursor) Advance() error {
	return c.stream.Next()
}

// AtEnd reports whether the cursor has reached the measured end.
func (c *Cursor) AtEnd() bool {
	return c.stream.EOF() || c.stream.Key() >= c.maxLine
}

// Remaining returns how many lines are left before the measured end.
func (c *Cursor) Remaining() int {
	if n := c.maxLine - c.stream.Key(); n > 0 {
		return n
	}
	return 0
}

// Reset moves the cursor back to its begin line.
func (c *Cursor) Reset() error {
	if err := c.stream.Seek(c.begin); err != nil {
		return fmt.Errorf("seek to begin line %d: %w", c.begin, err)
	}
	return nil
}
