// Package source defines named source units, line sources and the line-buffered cursor used by lexer.
package source

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

// Source is a named source unit held in memory.
type Source struct {
	name          string
	content       []byte
	lineStarts    []int
	prevLineIndex int
}

func New(name string, content []byte) *Source {
	s := &Source{name: name, content: content, prevLineIndex: -1}
	lineCnt := bytes.Count(content, []byte("\n")) + 1
	s.lineStarts = make([]int, lineCnt)
	j := 1
	for i := 0; i < len(content) && j < lineCnt; i++ {
		if content[i] == '\n' {
			s.lineStarts[j] = i + 1
			j++
		}
	}

	return s
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Content() []byte {
	return s.content
}

func (s *Source) Len() int {
	return len(s.content)
}

// LineCount returns the number of physical lines, a trailing newline does not start a new line.
func (s *Source) LineCount() int {
	l := len(s.lineStarts)
	if l > 1 && s.lineStarts[l-1] == len(s.content) {
		l--
	}
	if len(s.content) == 0 {
		return 0
	}
	return l
}

// Line returns n-th line (1-based) including its line feed, or nil if there is no such line.
func (s *Source) Line(n int) []byte {
	if n <= 0 || n > s.LineCount() {
		return nil
	}

	start := s.lineStarts[n-1]
	end := len(s.content)
	if n < len(s.lineStarts) {
		end = s.lineStarts[n]
	}
	return s.content[start:end]
}

func (s *Source) LineCol(pos int) (line, col int) {
	var lineIndex int
	if pos < 0 {
		pos = 0
		lineIndex = 0
	} else if pos >= len(s.content) {
		pos = len(s.content)
		lineIndex = len(s.lineStarts) - 1
	} else {
		lineIndex = s.findLineIndex(pos)
	}

	lineStart := s.lineStarts[lineIndex]
	return lineIndex + 1, utf8.RuneCount(s.content[lineStart:pos]) + 1
}

func (s *Source) Pos(line, col int) int {
	if line <= 0 || col <= 0 {
		return 0
	}

	l := len(s.content)
	if line > len(s.lineStarts) {
		return l
	}

	res := s.lineStarts[line-1] + col - 1
	if res > l {
		return l
	} else {
		return res
	}
}

func (s *Source) findLineIndex(pos int) int {
	if s.prevLineIndex >= 0 && s.lineStarts[s.prevLineIndex] <= pos {
		lineIndex := s.prevLineIndex
		last := len(s.lineStarts) - 1
		for lineIndex <= last && s.lineStarts[lineIndex] <= pos {
			lineIndex++
		}
		lineIndex--
		s.prevLineIndex = lineIndex
		return lineIndex
	}

	leftIndex := 0
	rightIndex := len(s.lineStarts) - 1
	index := 0
	if s.prevLineIndex >= 0 {
		rightIndex = s.prevLineIndex
	}
	for leftIndex < rightIndex {
		index = (leftIndex + rightIndex + 1) >> 1
		lineStart := s.lineStarts[index]
		if lineStart == pos {
			return index
		}

		if lineStart < pos {
			leftIndex = index
		} else {
			rightIndex = index - 1
			index = rightIndex
		}
	}
	s.prevLineIndex = index
	return index
}

// Lines returns a line source reading this source line by line.
func (s *Source) Lines() LineSource {
	return &sourceLines{src: s}
}

// LineSource delivers physical lines one at a time.
// ReadLine returns a line including its trailing line feed (the last line may lack one)
// and io.EOF after the last line.
type LineSource interface {
	ReadLine() ([]byte, error)
}

type sourceLines struct {
	src  *Source
	next int
}

func (sl *sourceLines) ReadLine() ([]byte, error) {
	sl.next++
	line := sl.src.Line(sl.next)
	if line == nil {
		sl.next--
		return nil, io.EOF
	}
	return line, nil
}

// LineReader is a LineSource reading lines from io.Reader.
type LineReader struct {
	r   *bufio.Reader
	eof bool
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

func (lr *LineReader) ReadLine() ([]byte, error) {
	if lr.eof {
		return nil, io.EOF
	}

	line, e := lr.r.ReadBytes('\n')
	if e == io.EOF {
		lr.eof = true
		if len(line) == 0 {
			return nil, io.EOF
		}
		return line, nil
	}
	if e != nil {
		return nil, e
	}
	return line, nil
}

// BytesLines returns a line source over a byte slice.
func BytesLines(content []byte) LineSource {
	return New("", content).Lines()
}
