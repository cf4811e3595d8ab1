package source

import (
	"context"
	"strings"
	"testing"
)

type result struct {
	pos, line, col int
}

func TestSourceLineCol(t *testing.T) {
	samples := map[string][]result{
		"": {
			{0, 1, 1},
			{100, 1, 1},
			{100, 1, 1},
		},
		"\n": {
			{0, 1, 1},
			{1, 2, 1},
			{1, 2, 1},
			{1, 2, 1},
			{100, 2, 1},
			{100, 2, 1},
		},
		"0\n2\n4\n6789abcde\ng\ni\n": {
			{4, 3, 1},
			{5, 3, 2},
			{6, 4, 1},
			{7, 4, 2},
			{8, 4, 3},
			{9, 4, 4},
			{10, 4, 5},
			{11, 4, 6},
			{12, 4, 7},
			{13, 4, 8},
			{14, 4, 9},
			{19, 6, 2},
			{20, 7, 1},
			{9, 4, 4},
			{5, 3, 2},
		},
	}

	for text, results := range samples {
		source := New("", []byte(text))
		for _, res := range results {
			l, c := source.LineCol(res.pos)
			if l != res.line || c != res.col {
				t.Errorf("sample %q: expected %v, got line: %d, col: %d", text, res, l, c)
			}
		}
	}
}

func TestSourcePos(t *testing.T) {
	samples := map[string][]result{
		"": {
			{0, 0, 1},
			{0, 1, 0},
			{0, 1, 1},
			{0, 1, 2},
			{0, 2, 1},
		},
		" ": {
			{0, 0, 1},
			{0, 1, 0},
			{0, 1, 1},
			{1, 1, 2},
			{1, 2, 1},
		},
		"\n": {
			{0, 0, 1},
			{0, 1, 0},
			{0, 1, 1},
			{1, 1, 2},
			{1, 2, 1},
			{1, 2, 2},
			{1, 3, 1},
		},
		"hello\nworld\n": {
			{0, 0, 1},
			{0, 1, 0},
			{0, 1, 1},
			{1, 1, 2},
			{6, 2, 1},
			{7, 2, 2},
			{12, 2, 10},
			{12, 3, 1},
			{12, 3, 2},
			{12, 4, 1},
		},
	}

	for text, results := range samples {
		source := New("", []byte(text))
		for _, res := range results {
			p := source.Pos(res.line, res.col)
			if p != res.pos {
				t.Errorf("sample %q: expected %v, got pos: %d", text, res, p)
			}
		}
	}
}

func TestSourceLines(t *testing.T) {
	samples := map[string][]string{
		"":            {},
		"\n":          {"\n"},
		"a":           {"a"},
		"a\nb\n":      {"a\n", "b\n"},
		"a\n\nbc":     {"a\n", "\n", "bc"},
		"foo\r\nbar": {"foo\r\n", "bar"},
	}

	for text, expected := range samples {
		ls := New("", []byte(text)).Lines()
		var got []string
		for {
			line, e := ls.ReadLine()
			if e != nil {
				break
			}
			got = append(got, string(line))
		}
		if strings.Join(got, "|") != strings.Join(expected, "|") || len(got) != len(expected) {
			t.Errorf("sample %q: expected %q, got %q", text, expected, got)
		}
	}
}

func TestLineReader(t *testing.T) {
	lr := NewLineReader(strings.NewReader("foo\nbar"))
	expected := []string{"foo\n", "bar"}
	for i, exp := range expected {
		line, e := lr.ReadLine()
		if e != nil || string(line) != exp {
			t.Fatalf("line #%d: expected %q, got %q, %v", i, exp, line, e)
		}
	}
	if _, e := lr.ReadLine(); e == nil {
		t.Fatal("expecting EOF")
	}
}

func cursor(text string) *Cursor {
	return NewCursor(context.Background(), "test", New("test", []byte(text)).Lines(), 1)
}

func readAll(c *Cursor) string {
	var sb strings.Builder
	for {
		b := c.Read()
		if b == EOF {
			return sb.String()
		}
		sb.WriteByte(byte(b))
	}
}

func TestCursorRead(t *testing.T) {
	c := cursor("ab\ncd")
	assert(t, c.Read() == 'a', "expecting a")
	assert(t, c.WasBOL(), "expecting BOL")
	assert(t, c.Peek() == 'b', "expecting b peeked")
	c.Unread('a')
	assert(t, c.Read() == 'a', "expecting a again")
	assert(t, readAll(c) == "b\ncd", "unexpected rest")
	assert(t, c.Line() == 2, "expecting line 2")
	assert(t, c.Read() == EOF, "expecting EOF")
	c.Unread(EOF)
	assert(t, c.Read() == EOF, "expecting EOF again")
	assert(t, c.Err() == nil, "unexpected error")
}

func TestCursorStartLine(t *testing.T) {
	c := NewCursor(nil, "", BytesLines([]byte("x\ny\n")), 10)
	c.Read()
	assert(t, c.Line() == 10, "expecting line 10")
	c.Read()
	c.Read()
	assert(t, c.Line() == 11, "expecting line 11")
}

func TestCursorPeekStopsAtLineEnd(t *testing.T) {
	c := cursor("a\nb")
	c.Read()
	assert(t, c.Peek() == '\n', "expecting line feed")
	assert(t, c.PeekAt(1) == EOF, "peek must not cross line boundary")
}

func TestCursorHeredocSplice(t *testing.T) {
	c := cursor("x = <<EOS + y\nbody\nEOS\nz\n")
	for i := 0; i < len("x = <<EOS"); i++ {
		c.Read()
	}
	m := c.Mark()
	line, n, ok := c.NextLine()
	assert(t, ok && string(line) == "body\n" && n == 2, "expecting body line")
	line, n, ok = c.NextLine()
	assert(t, ok && string(line) == "EOS\n" && n == 3, "expecting terminator line")
	c.Restore(m)
	assert(t, string(c.Rest()) == " + y\n", "expecting rest of the heredoc line")
	assert(t, c.Line() == 1, "expecting line 1 after restore")
	c.SkipLine()
	assert(t, c.Read() == 'z', "expecting z")
	assert(t, c.Line() == 4, "expecting line 4 after heredoc")
}

func TestCursorCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCursor(ctx, "", BytesLines([]byte("a\nb\n")), 1)
	c.Read()
	cancel()
	c.Read()
	assert(t, c.Read() == EOF, "expecting EOF after cancellation")
	assert(t, c.Err() == context.Canceled, "expecting context.Canceled")
}

func assert(t *testing.T, flag bool, message string) {
	if !flag {
		t.Fatal(message)
	}
}
