package langdef

import (
	"regexp"

	"github.com/ava12/rbparse"
	"github.com/ava12/rbparse/source"
)

const (
	eofTok = iota
	charTok
	nameTok
	dirTok
	midTok
	actionTok
	opTok
	wrongTok
)

var tokenTypeNames = []string{"end of file", "char", "name", "directive", "mid-rule action", "action", "operator", "wrong"}

type lexeme struct {
	tokenType int
	text      string
	line, col int
	name      string
}

func (t *lexeme) SourceName() string {
	return t.name
}

func (t *lexeme) Line() int {
	return t.line
}

func (t *lexeme) Col() int {
	return t.col
}

func (t *lexeme) TypeName() string {
	return tokenTypeNames[t.tokenType]
}

var scannerRe = regexp.MustCompile(
	`^(?:\s+|#[^\n]*|` +
		`('(?:[^\\']|\\x[0-9a-fA-F]{2}|\\.)')|` +
		`([a-zA-Z_$][a-zA-Z_0-9]*)|` +
		`(%(?:left|right|nonassoc|prec|start)\b)|` +
		`(@[a-zA-Z_][a-zA-Z_0-9]*)|` +
		`(=>)|` +
		`([:|;])|` +
		`(.))`)

// scanner splits grammar description into tokens, insignificant lexemes are skipped.
type scanner struct {
	src *source.Source
	pos int
}

func newScanner(src *source.Source) *scanner {
	return &scanner{src: src}
}

func (s *scanner) next() (*lexeme, error) {
	content := s.src.Content()
	for {
		line, col := s.src.LineCol(s.pos)
		if s.pos >= len(content) {
			return &lexeme{tokenType: eofTok, line: line, col: col, name: s.src.Name()}, nil
		}

		match := scannerRe.FindSubmatchIndex(content[s.pos:])
		if len(match) == 0 || match[1] == 0 {
			return nil, rbparse.NewError(WrongCharError, "wrong char", s.src.Name(), line, col)
		}

		for i := 2; i < len(match); i += 2 {
			if match[i] < 0 {
				continue
			}

			tt := i >> 1
			t := &lexeme{tt, string(content[s.pos+match[i] : s.pos+match[i+1]]), line, col, s.src.Name()}
			s.pos += match[1]
			if tt == wrongTok {
				return nil, wrongCharError(t)
			}
			return t, nil
		}

		s.pos += match[1]
	}
}
