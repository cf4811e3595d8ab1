package source

import (
	"context"
	"io"
)

// EOF is returned by Cursor reading methods at the end of input.
const EOF = -1

// Cursor is a line-buffered byte reader over a LineSource.
// Pushback never crosses a line boundary.
// Heredoc bodies are read with NextLine after saving the current line with Mark,
// Restore resumes the saved line and makes the line after the body the next one read.
type Cursor struct {
	name  string
	lines LineSource
	ctx   context.Context
	buf   []byte
	pos   int
	line  int
	phys  int
	eof   bool
	err   error
}

// Mark is a saved cursor line position.
type Mark struct {
	buf  []byte
	pos  int
	line int
}

// NewCursor creates a cursor. firstLine is the number assigned to the first line read.
// ctx is checked before each physical line read; a cancelled context ends the input and is reported by Err.
func NewCursor(ctx context.Context, name string, lines LineSource, firstLine int) *Cursor {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Cursor{
		name:  name,
		lines: lines,
		ctx:   ctx,
		line:  firstLine - 1,
		phys:  firstLine - 1,
	}
}

func (c *Cursor) SourceName() string {
	return c.name
}

// Line returns the number of the current line.
func (c *Cursor) Line() int {
	if c.line < 1 {
		return 1
	}
	return c.line
}

// Col returns 1-based byte column of the next byte to read.
func (c *Cursor) Col() int {
	return c.pos + 1
}

// Err returns the error that ended the input, if it was not a regular end of input.
func (c *Cursor) Err() error {
	return c.err
}

func (c *Cursor) readLine() ([]byte, bool) {
	if c.eof {
		return nil, false
	}

	if e := c.ctx.Err(); e != nil {
		c.err = e
		c.eof = true
		return nil, false
	}

	line, e := c.lines.ReadLine()
	if e != nil {
		if e != io.EOF {
			c.err = e
		}
		c.eof = true
		return nil, false
	}

	c.phys++
	return line, true
}

func (c *Cursor) fetch() bool {
	line, ok := c.readLine()
	if !ok {
		c.buf = nil
		c.pos = 0
		return false
	}

	c.buf = line
	c.pos = 0
	c.line = c.phys
	return true
}

// Read returns the next byte or EOF.
func (c *Cursor) Read() int {
	if c.pos >= len(c.buf) {
		if !c.fetch() {
			return EOF
		}
	}

	b := c.buf[c.pos]
	c.pos++
	return int(b)
}

// Unread pushes back the last byte read from the current line. Pushing back EOF does nothing.
func (c *Cursor) Unread(b int) {
	if b == EOF || c.pos == 0 {
		return
	}
	c.pos--
}

// Peek returns the next byte of the current line without consuming it, or EOF at the end of line buffer.
func (c *Cursor) Peek() int {
	return c.PeekAt(0)
}

// PeekAt returns the byte at offset n from the next byte of the current line or EOF.
func (c *Cursor) PeekAt(n int) int {
	if c.pos+n >= len(c.buf) || c.pos+n < 0 {
		return EOF
	}
	return int(c.buf[c.pos+n])
}

// WasBOL tells whether the last byte read was the first byte of the line.
func (c *Cursor) WasBOL() bool {
	return c.pos == 1
}

// Rest returns the unread part of the current line.
func (c *Cursor) Rest() []byte {
	if c.pos >= len(c.buf) {
		return nil
	}
	return c.buf[c.pos:]
}

// Skip advances the cursor by n bytes within the current line.
func (c *Cursor) Skip(n int) {
	c.pos += n
	if c.pos > len(c.buf) {
		c.pos = len(c.buf)
	}
}

// SkipLine discards the rest of the current line.
func (c *Cursor) SkipLine() {
	c.pos = len(c.buf)
}

// CurrentLine returns the whole current line buffer.
func (c *Cursor) CurrentLine() []byte {
	return c.buf
}

// Mark saves the current line and position.
func (c *Cursor) Mark() Mark {
	return Mark{c.buf, c.pos, c.line}
}

// NextLine reads the next physical line directly, bypassing the current line buffer.
// Returns false at the end of input.
func (c *Cursor) NextLine() ([]byte, int, bool) {
	line, ok := c.readLine()
	if !ok {
		return nil, c.phys, false
	}
	return line, c.phys, true
}

// Restore returns to a saved line position. Lines read with NextLine are not read again.
func (c *Cursor) Restore(m Mark) {
	c.buf = m.buf
	c.pos = m.pos
	c.line = m.line
}

// Close marks the cursor as exhausted.
func (c *Cursor) Close() {
	c.eof = true
	c.buf = nil
	c.pos = 0
}
