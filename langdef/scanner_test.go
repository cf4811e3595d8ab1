package langdef

import (
	"testing"

	"github.com/ava12/rbparse/internal/test"
	"github.com/ava12/rbparse/source"
)

func TestScanner(t *testing.T) {
	samples := []struct {
		tokenType int
		text      string
		line      int
	}{
		{nameTok, "a", 1},
		{opTok, ":", 1},
		{charTok, "'x'", 1},
		{midTok, "@m", 1},
		{actionTok, "=>", 1},
		{nameTok, "b", 1},
		{opTok, "|", 1},
		{dirTok, "%prec", 2},
		{nameTok, "tPLUS", 2},
		{opTok, ";", 2},
		{eofTok, "", 3},
	}

	s := newScanner(source.New("g", []byte("a: 'x' @m => b | # comment\n%prec tPLUS;\n")))
	for i, sample := range samples {
		lx, e := s.next()
		if e != nil {
			t.Fatalf("sample #%d: unexpected error %v", i, e)
		}
		if lx.tokenType != sample.tokenType || lx.text != sample.text || lx.Line() != sample.line {
			t.Errorf("sample #%d: expecting %s %q at line %d, got %s %q at line %d",
				i, tokenTypeNames[sample.tokenType], sample.text, sample.line, lx.TypeName(), lx.text, lx.Line())
		}
	}
}

func TestScannerWrongChar(t *testing.T) {
	s := newScanner(source.New("g", []byte("a ~")))
	lx, e := s.next()
	test.Assert(t, e == nil && lx.text == "a", "expecting name, got %v, %v", lx, e)
	_, e = s.next()
	test.ExpectErrorCode(t, WrongCharError, e)
}
