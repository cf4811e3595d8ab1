package lexer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ava12/rbparse/ast"
	"github.com/ava12/rbparse/lexstate"
	"github.com/ava12/rbparse/source"
	"github.com/ava12/rbparse/token"
)

// string scanning flags
const (
	strEscape = 1 << iota // keep escape sequences as written
	strExpand             // decode escapes, interpolate #{...}, #@var and #$var
	strRegexpFn
	strQWords

	strSquote = 0
	strDquote = strExpand
	strXquote = strExpand
	strRegexp = strRegexpFn | strEscape | strExpand
	strSword  = strQWords
	strDword  = strQWords | strExpand
	strSsym   = 0
	strDsym   = strExpand
)

type literal int

const (
	litString literal = iota
	litXString
	litRegexp
	litWords
	litQWords
	litSymbol
)

// strParts collects literal text and interpolated fragments of a string being scanned.
type strParts struct {
	l       *Lexer
	parts   []ast.Node
	dynamic bool
	line    int
}

func (p *strParts) flush() {
	if p.l.tok.len() == 0 {
		return
	}
	p.parts = append(p.parts, &ast.Str{Base: p.l.pos(p.line), Value: p.l.tok.String()})
	p.l.tok.reset()
}

func (p *strParts) add(n ast.Node) {
	p.flush()
	p.parts = append(p.parts, n)
	p.dynamic = true
}

func (p *strParts) empty() bool {
	return len(p.parts) == 0 && p.l.tok.len() == 0
}

func (p *strParts) text() string {
	p.flush()
	var b bytes.Buffer
	for _, n := range p.parts {
		b.WriteString(n.(*ast.Str).Value)
	}
	p.parts = nil
	return b.String()
}

func (p *strParts) take() []ast.Node {
	p.flush()
	parts := p.parts
	p.parts = nil
	p.dynamic = false
	return parts
}

// scanString scans the body of a string-like literal up to term, the opening delimiter is already read.
// term == eof scans to the end of input (heredoc bodies).
func (l *Lexer) scanString(lk literal, fn, term, paren int) token.Kind {
	line := l.line
	l.tok.reset()
	p := &strParts{l: l, line: line}
	var words []ast.Node
	nest := 0

	if fn&strQWords != 0 {
		l.skipSpaces()
	}

	for {
		c := l.nextc()
		if c == eof {
			if term == eof {
				break
			}
			return l.unterminated(line, lk)
		}

		if paren != 0 && c == paren {
			nest++
		} else if c == term {
			if nest == 0 {
				break
			}
			nest--
		} else if fn&strExpand != 0 && c == '#' {
			if ok, done := l.embedded(p); done {
				if l.err != nil {
					return token.EOF
				}
				if !ok {
					return l.unterminated(line, lk)
				}
				continue
			}
		} else if c == '\\' {
			c = l.nextc()
			if c == eof {
				return l.unterminated(line, lk)
			}
			switch {
			case c == '\n':
				if fn&strQWords == 0 {
					if fn&strExpand != 0 {
						continue
					}
					l.tok.add('\\')
				}
			case c == '\\':
				if fn&strEscape != 0 {
					l.tok.add(c)
				}
			case fn&strRegexpFn != 0:
				l.pushback(c)
				l.regexpEscape()
				continue
			case fn&strExpand != 0:
				l.pushback(c)
				c = l.readEscape()
			case fn&strQWords != 0 && isSpace(c):
			case c != term && !(paren != 0 && c == paren):
				l.tok.add('\\')
			}
		} else if fn&strQWords != 0 && isSpace(c) {
			words = append(words, l.word(p))
			l.skipSpaces()
			continue
		}

		l.tok.add(c)
	}

	l.st.State = lexstate.End
	switch lk {
	case litRegexp:
		opts, once := l.regexpOptions()
		if !p.dynamic {
			l.value = &ast.Lit{Base: l.pos(line), Value: ast.Regexp{Source: p.text(), Options: opts}}
			return token.Regexp
		}
		if once {
			l.value = &ast.DRegxOnce{Base: l.pos(line), Parts: p.take(), Options: opts &^ ast.RegexpOnce}
		} else {
			l.value = &ast.DRegx{Base: l.pos(line), Parts: p.take(), Options: opts}
		}
		return token.DRegexp

	case litWords, litQWords:
		if !p.empty() {
			words = append(words, l.word(p))
		}
		if len(words) == 0 {
			l.value = &ast.ZArray{Base: l.pos(line)}
		} else {
			l.value = &ast.Array{Base: l.pos(line), Elems: words}
		}
		if lk == litWords {
			return token.Words
		}
		return token.QWords

	case litSymbol:
		if p.dynamic {
			l.value = &ast.DSym{Base: l.pos(line), Parts: p.take()}
			return token.DSym
		}
		text := p.text()
		if text == "" {
			l.errorf("empty symbol literal")
		}
		l.value = &ast.Lit{Base: l.pos(line), Value: ast.Symbol(l.intern(text))}
		return token.DSym

	case litXString:
		if p.dynamic {
			l.value = &ast.DXStr{Base: l.pos(line), Parts: p.take()}
			return token.DXString
		}
		l.value = &ast.XStr{Base: l.pos(line), Value: p.text()}
		return token.XString

	default:
		if p.dynamic {
			l.value = &ast.DStr{Base: l.pos(line), Parts: p.take()}
			return token.DString
		}
		l.value = &ast.Str{Base: l.pos(line), Value: p.text()}
		return token.String
	}
}

func (l *Lexer) unterminated(line int, lk literal) token.Kind {
	if lk == litRegexp {
		return l.fail(line, UnterminatedStringError, "unterminated regexp meets end of file")
	}
	return l.fail(line, UnterminatedStringError, "unterminated string meets end of file")
}

func (l *Lexer) skipSpaces() {
	c := l.nextc()
	for isSpace(c) {
		c = l.nextc()
	}
	l.pushback(c)
}

// word returns the collected %w/%W element.
func (l *Lexer) word(p *strParts) ast.Node {
	if p.dynamic {
		return &ast.DStr{Base: l.pos(p.line), Parts: p.take()}
	}
	return &ast.Str{Base: l.pos(p.line), Value: p.text()}
}

// embedded handles '#' inside an interpolating literal.
// done is false if '#' starts no interpolation, ok is false if embedded code stopped the lexer.
func (l *Lexer) embedded(p *strParts) (ok, done bool) {
	line := l.cur.Line()
	switch c := l.cur.Peek(); {
	case c == '{':
		l.nextc()
		p.add(l.evStr(line))
		return l.err == nil, true

	case c == '@':
		n := 1
		if l.cur.PeekAt(1) == '@' {
			n = 2
		}
		if c2 := l.cur.PeekAt(n); !isIdentChar(c2) || isDigit(c2) {
			return true, false
		}
		name := l.embeddedName(n)
		id := l.intern(name)
		var v ast.Node = &ast.IVar{Base: l.pos(line), Name: id}
		if n == 2 {
			v = &ast.CVar{Base: l.pos(line), Name: id}
		}
		p.add(&ast.EvStr{Base: l.pos(line), Body: v})
		return true, true

	case c == '$':
		v := l.embeddedGlobal(line)
		if v == nil {
			return true, false
		}
		p.add(&ast.EvStr{Base: l.pos(line), Body: v})
		return true, true
	}
	return true, false
}

// embeddedName reads a variable name after n prefix characters that follow '#'.
func (l *Lexer) embeddedName(n int) string {
	name := make([]byte, 0, 16)
	for i := 0; i < n; i++ {
		name = append(name, byte(l.nextc()))
	}
	for isIdentChar(l.cur.Peek()) {
		name = append(name, byte(l.nextc()))
	}
	return string(name)
}

func (l *Lexer) embeddedGlobal(line int) ast.Node {
	c := l.cur.PeekAt(1)
	switch {
	case c == '&' || c == '`' || c == '\'' || c == '+':
		l.cur.Skip(2)
		return &ast.BackRef{Base: l.pos(line), Ref: byte(c)}

	case c >= '1' && c <= '9':
		l.nextc()
		n := 0
		for isDigit(l.cur.Peek()) {
			n = n*10 + l.nextc() - '0'
		}
		return &ast.NthRef{Base: l.pos(line), Nth: n}

	case c == '-':
		name := "$-"
		l.cur.Skip(2)
		if isIdentChar(l.cur.Peek()) {
			name += string(rune(l.nextc()))
		}
		return &ast.GVar{Base: l.pos(line), Name: l.intern(name)}

	case c == '_' || c == '0' || (isIdentChar(c) && !isDigit(c)):
		return &ast.GVar{Base: l.pos(line), Name: l.intern(l.embeddedName(1))}

	case bytes.IndexByte([]byte("~*$?!@/\\;,.=:<>\""), byte(c)) >= 0 && c != eof:
		l.cur.Skip(2)
		return &ast.GVar{Base: l.pos(line), Name: l.intern("$" + string(rune(c)))}
	}
	return nil
}

func (l *Lexer) evStr(line int) ast.Node {
	var body ast.Node
	var e error
	if l.interp == nil {
		e = l.skipEmbedded(line)
	} else {
		body, e = l.interp(l.cur, line)
	}
	if e != nil {
		l.err = e
	}
	return &ast.EvStr{Base: l.pos(line), Body: body}
}

// skipEmbedded reads embedded code through a nested lexer and drops it.
func (l *Lexer) skipEmbedded(line int) error {
	sub := NewEmbedded(l.cur, line, Config{Names: l.names, Scope: l.scope, Sink: l.sink})
	for sub.Advance() {
	}
	return sub.Err()
}

// nestedEnd turns the brace balancing #{ into the end of input.
func (l *Lexer) nestedEnd(k token.Kind) token.Kind {
	switch k {
	case token.LBrace, token.LCurly, token.LBraceArg:
		l.braces++

	case token.RCurly:
		if l.braces > 0 {
			l.braces--
			break
		}
		l.value = nil
		return token.EOF

	case token.EOF:
		if l.cur.Err() == nil {
			return l.fail(l.nestLine, UnterminatedStringError, "unterminated string meets end of file")
		}
	}
	return k
}

func (l *Lexer) invalidEscape() {
	l.warn("Invalid escape character syntax")
}

// readEscape decodes an escape sequence, the backslash is already read.
func (l *Lexer) readEscape() int {
	c := l.nextc()
	switch c {
	case '\\':
		return c
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'f':
		return '\f'
	case 'v':
		return '\v'
	case 'a':
		return 007
	case 'e':
		return 033
	case 'b':
		return 010
	case 's':
		return ' '

	case '0', '1', '2', '3', '4', '5', '6', '7':
		n := c - '0'
		for i := 0; i < 2 && isOctDigit(l.cur.Peek()); i++ {
			n = n*8 + l.nextc() - '0'
		}
		return n & 0xff

	case 'x':
		n, cnt := 0, 0
		for ; cnt < 2 && isHexDigit(l.cur.Peek()); cnt++ {
			n = n*16 + hexValue(l.nextc())
		}
		if cnt == 0 {
			l.invalidEscape()
		}
		return n

	case 'M':
		if c = l.nextc(); c != '-' {
			l.invalidEscape()
			l.pushback(c)
			return 0
		}
		if c = l.nextc(); c == '\\' {
			return l.readEscape() | 0x80
		}
		if c == eof {
			l.invalidEscape()
			return 0
		}
		return (c & 0xff) | 0x80

	case 'C', 'c':
		if c == 'C' {
			if c = l.nextc(); c != '-' {
				l.invalidEscape()
				l.pushback(c)
				return 0
			}
		}
		c = l.nextc()
		switch c {
		case '\\':
			c = l.readEscape()
		case '?':
			return 0177
		case eof:
			l.invalidEscape()
			return 0
		}
		return c & 0x9f

	case eof:
		l.invalidEscape()
		return 0

	default:
		return c
	}
}

func hexValue(c int) int {
	switch {
	case isDigit(c):
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// regexpEscape copies an escape sequence of regexp source as written.
func (l *Lexer) regexpEscape() {
	c := l.nextc()
	switch c {
	case '\n':
		return

	case '0', '1', '2', '3', '4', '5', '6', '7':
		l.tok.add('\\')
		l.tok.add(c)
		for i := 0; i < 2 && isOctDigit(l.cur.Peek()); i++ {
			l.tok.add(l.nextc())
		}

	case 'x':
		l.tok.add('\\')
		l.tok.add(c)
		cnt := 0
		for ; cnt < 2 && isHexDigit(l.cur.Peek()); cnt++ {
			l.tok.add(l.nextc())
		}
		if cnt == 0 {
			l.invalidEscape()
		}

	case 'M', 'C':
		if l.cur.Peek() != '-' {
			l.invalidEscape()
			return
		}
		l.nextc()
		l.tok.add('\\')
		l.tok.add(c)
		l.tok.add('-')
		l.regexpEscaped()

	case 'c':
		l.tok.add('\\')
		l.tok.add(c)
		l.regexpEscaped()

	case eof:
		l.invalidEscape()

	default:
		l.tok.add('\\')
		l.tok.add(c)
	}
}

func (l *Lexer) regexpEscaped() {
	c := l.nextc()
	switch c {
	case '\\':
		l.regexpEscape()
	case eof:
		l.invalidEscape()
	default:
		l.tok.add(c)
	}
}

func (l *Lexer) regexpOptions() (opts int, once bool) {
	var unknown []byte
	for {
		c := l.nextc()
		if !isAlpha(c) {
			l.pushback(c)
			break
		}

		switch c {
		case 'i':
			opts |= ast.RegexpIgnoreCase
		case 'x':
			opts |= ast.RegexpExtended
		case 'm':
			opts |= ast.RegexpMultiline
		case 'p':
			l.warn("/p option is obsolete; use /m\n\tnote: /m does not change ^, $ behavior")
			opts |= ast.RegexpMultiline
		case 'o':
			once = true
		case 'n':
			opts = opts&^ast.KCodeMask | ast.KCodeNone
		case 'e':
			opts = opts&^ast.KCodeMask | ast.KCodeEUC
		case 's':
			opts = opts&^ast.KCodeMask | ast.KCodeSJIS
		case 'u':
			opts = opts&^ast.KCodeMask | ast.KCodeUTF8
		default:
			unknown = append(unknown, byte(c))
		}
	}

	if len(unknown) > 0 {
		suffix := ""
		if len(unknown) > 1 {
			suffix = "s"
		}
		l.errorf("unknown regexp option%s - %s", suffix, unknown)
	}
	if once {
		opts |= ast.RegexpOnce
	}
	return opts, once
}

// heredoc scans a here document after "<<". It returns false if "<<" does not start one.
func (l *Lexer) heredoc() (token.Kind, bool) {
	line := l.cur.Line()
	c := l.nextc()
	indent := 0
	if c == '-' || c == '~' {
		indent = c
		c = l.nextc()
	}

	fn, lk := strDquote, litString
	var id []byte
	quote := byte(0)
	switch c {
	case '\'', '"', '`':
		quote = byte(c)
		switch c {
		case '\'':
			fn = strSquote
		case '`':
			fn, lk = strXquote, litXString
		}
		term := c
		for c = l.nextc(); c != term; c = l.nextc() {
			if c == eof || c == '\n' {
				return l.fail(line, UnterminatedHeredocError, "unterminated here document identifier"), true
			}
			id = append(id, byte(c))
		}

	default:
		if !isIdentChar(c) {
			l.pushback(c)
			if indent != 0 {
				l.pushback(indent)
			}
			return 0, false
		}
		for isIdentChar(c) {
			id = append(id, byte(c))
			c = l.nextc()
		}
		l.pushback(c)
	}

	mark := l.cur.Mark()
	var body [][]byte
	bodyLine := 0
	found := false
	for {
		text, n, ok := l.cur.NextLine()
		if !ok {
			break
		}
		if bodyLine == 0 {
			bodyLine = n
		}
		if isHeredocEnd(text, id, indent != 0) {
			found = true
			break
		}
		body = append(body, text)
	}
	if !found {
		return l.fail(line, UnterminatedHeredocError, fmt.Sprintf("can't find string \"%s\" anywhere before EOF", id)), true
	}
	l.cur.Restore(mark)

	if indent == '~' {
		dedent(body)
	}
	text := bytes.Join(body, nil)

	h := &ast.Heredoc{ID: string(id), Indent: byte(indent), Quote: quote}
	l.line = line
	if fn == strSquote {
		l.st.State = lexstate.End
		l.value = &ast.Str{Base: l.pos(line), Value: string(text), Heredoc: h}
		return token.String, true
	}

	saved := l.cur
	l.cur = source.NewCursor(context.Background(), l.name, source.BytesLines(text), bodyLine)
	k := l.scanString(lk, fn, eof, 0)
	l.cur = saved
	l.line = line
	if l.err != nil {
		return k, true
	}
	switch v := l.value.(type) {
	case *ast.Str:
		v.Heredoc = h
	case *ast.DStr:
		v.Heredoc = h
	case *ast.XStr:
		v.Heredoc = h
	case *ast.DXStr:
		v.Heredoc = h
	}
	return k, true
}

func isHeredocEnd(text, id []byte, indent bool) bool {
	text = bytes.TrimRight(text, "\r\n")
	if indent {
		text = bytes.TrimLeft(text, " \t")
	}
	return bytes.Equal(text, id)
}

// dedent removes the common leading whitespace of non-blank lines, tab stops are 8 columns wide.
func dedent(lines [][]byte) {
	width := -1
	for _, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		w := 0
		for _, c := range line {
			if c == ' ' {
				w++
			} else if c == '\t' {
				w = (w/8 + 1) * 8
			} else {
				break
			}
		}
		if width < 0 || w < width {
			width = w
		}
	}
	if width <= 0 {
		return
	}

	for i, line := range lines {
		w, j := 0, 0
		for j < len(line) && w < width {
			c := line[j]
			if c == ' ' {
				w++
			} else if c == '\t' {
				nw := (w/8 + 1) * 8
				if nw > width {
					break
				}
				w = nw
			} else {
				break
			}
			j++
		}
		lines[i] = line[j:]
	}
}
