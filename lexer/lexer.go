// Package lexer converts Ruby source text into grammar tokens.
//
// The lexer is context-sensitive: the meaning of many characters depends on lexstate.Context,
// which is shared with grammar actions and updated by them between tokens.
// String-like literals are returned as complete tokens. Code interpolated with #{...} is read
// by a nested lexer over the same cursor, the Interpolator supplied by the caller parses it.
package lexer

import (
	"bytes"
	"fmt"

	"github.com/ava12/rbparse"
	"github.com/ava12/rbparse/ast"
	"github.com/ava12/rbparse/diag"
	"github.com/ava12/rbparse/ident"
	"github.com/ava12/rbparse/keyword"
	"github.com/ava12/rbparse/lexstate"
	"github.com/ava12/rbparse/scope"
	"github.com/ava12/rbparse/source"
	"github.com/ava12/rbparse/token"
)

const eof = source.EOF

// Interpolator parses code embedded into a string literal with #{...}, the opening brace is already read.
// It must read cur with a lexer made by NewEmbedded until that lexer reports the end of input.
// line is the number of the line the code starts at. A returned error aborts lexing.
type Interpolator func(cur *source.Cursor, line int) (ast.Node, error)

// Config holds lexer collaborators. Zero fields get private defaults.
type Config struct {
	Names       *ident.Table
	Scope       *scope.Scope
	State       *lexstate.Context
	Sink        diag.Sink
	Interpolate Interpolator
}

// Lexer produces tokens one at a time.
// Advance, Token, Value, Err and Line make it usable as lalr.Lexer.
type Lexer struct {
	cur    *source.Cursor
	name   string
	names  *ident.Table
	scope  *scope.Scope
	st     *lexstate.Context
	sink   diag.Sink
	interp Interpolator

	tok      tokbuf
	kind     token.Kind
	value    any
	line     int
	err      error
	done     bool
	dataLine int

	nested   bool
	braces   int
	nestLine int
}

func New(cur *source.Cursor, cfg Config) *Lexer {
	l := &Lexer{
		cur:    cur,
		name:   cur.SourceName(),
		names:  cfg.Names,
		scope:  cfg.Scope,
		st:     cfg.State,
		sink:   cfg.Sink,
		interp: cfg.Interpolate,
	}
	if l.names == nil {
		l.names = ident.NewTable()
	}
	if l.st == nil {
		l.st = lexstate.New()
	}
	if l.sink == nil {
		l.sink = diag.Discard
	}
	return l
}

// NewEmbedded creates a lexer reading code embedded into a string literal.
// The lexer ends at the brace closing #{ and fails with UnterminatedStringError if the input ends first,
// line is the line of #{ used in the error.
func NewEmbedded(cur *source.Cursor, line int, cfg Config) *Lexer {
	l := New(cur, cfg)
	l.nested = true
	l.nestLine = line
	return l
}

// Advance scans the next token. It returns false at the end of input or after a fatal error.
func (l *Lexer) Advance() bool {
	if l.done {
		return false
	}

	k := l.scan()
	if l.nested && l.err == nil {
		k = l.nestedEnd(k)
	}
	if l.err == nil && k == token.EOF {
		l.err = l.cur.Err()
	}
	if l.err != nil || k == token.EOF {
		l.done = true
		l.kind = token.EOF
		l.value = nil
		return false
	}

	l.kind = k
	return true
}

// Kind returns the kind of the current token.
func (l *Lexer) Kind() token.Kind {
	return l.kind
}

func (l *Lexer) Token() int {
	return int(l.kind)
}

// Value returns the semantic value of the current token:
// ident.ID for names, keywords and operators, ast.Literal for numbers,
// ast.Node for string-like literals and regexp references, nil for punctuation.
func (l *Lexer) Value() any {
	return l.value
}

// Line returns the line the current token starts at.
func (l *Lexer) Line() int {
	return l.line
}

// Err returns the error that stopped the lexer, nil at the regular end of input.
func (l *Lexer) Err() error {
	return l.err
}

// DataLine returns the number of the line following __END__, 0 if there was none.
func (l *Lexer) DataLine() int {
	return l.dataLine
}

func (l *Lexer) State() *lexstate.Context {
	return l.st
}

func (l *Lexer) Names() *ident.Table {
	return l.names
}

func (l *Lexer) SourceName() string {
	return l.name
}

func (l *Lexer) nextc() int {
	c := l.cur.Read()
	if c == '\r' && l.cur.Peek() == '\n' {
		l.cur.Skip(1)
		c = '\n'
	}
	return c
}

func (l *Lexer) pushback(c int) {
	l.cur.Unread(c)
}

func (l *Lexer) peek(c int) bool {
	return l.cur.Peek() == c
}

func (l *Lexer) pos(line int) ast.Base {
	return ast.At(ast.Pos{File: l.name, Line: line})
}

func (l *Lexer) intern(name string) ident.ID {
	return l.names.Intern(name)
}

func (l *Lexer) report(sev diag.Severity, line int, msg string) {
	l.sink.Report(diag.Diagnostic{Severity: sev, File: l.name, Line: line, Message: msg})
}

func (l *Lexer) warn(format string, params ...any) {
	l.report(diag.Warning, l.cur.Line(), fmt.Sprintf(format, params...))
}

func (l *Lexer) warning(format string, params ...any) {
	l.report(diag.Verbose, l.cur.Line(), fmt.Sprintf(format, params...))
}

func (l *Lexer) errorf(format string, params ...any) {
	l.report(diag.Error, l.cur.Line(), fmt.Sprintf(format, params...))
}

// fail stops lexing with a compile-aborting error reported once to the sink.
func (l *Lexer) fail(line, code int, msg string) token.Kind {
	if e := l.cur.Err(); e != nil {
		l.err = e
		return token.EOF
	}

	l.report(diag.Error, line, msg)
	l.err = rbparse.NewError(code, msg, l.name, line, 0)
	return token.EOF
}

func isSpace(c int) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\v' || c == '\f' || c == '\r'
}

func isDigit(c int) bool {
	return c >= '0' && c <= '9'
}

func isUpper(c int) bool {
	return c >= 'A' && c <= 'Z'
}

func isAlpha(c int) bool {
	return (c >= 'a' && c <= 'z') || isUpper(c)
}

func isAlnum(c int) bool {
	return isAlpha(c) || isDigit(c)
}

func isIdentChar(c int) bool {
	return isAlnum(c) || c == '_' || c >= 0x80
}

// opState sets the state following an operator character.
func (l *Lexer) opState() {
	if l.st.Is(lexstate.FName, lexstate.Dot) {
		l.st.State = lexstate.Arg
	} else {
		l.st.State = lexstate.Beg
	}
}

func (l *Lexer) op(k token.Kind, name string) token.Kind {
	l.value = l.intern(name)
	return k
}

func (l *Lexer) opAsgn(name string) token.Kind {
	l.st.State = lexstate.Beg
	return l.op(token.OpAsgn, name)
}

func (l *Lexer) argAmbiguous() {
	l.warning("ambiguous first argument; put parentheses or even spaces")
}

func (l *Lexer) scan() token.Kind {
	st := l.st
	cmdState := st.CommandStart
	st.CommandStart = false
	spaceSeen := false
	l.value = nil

	for {
		c := l.nextc()
		l.line = l.cur.Line()

		switch c {
		case 0, 004, 032, eof:
			return token.EOF

		case ' ', '\t', '\f', '\r', '\v':
			spaceSeen = true
			continue

		case '#':
			for c != '\n' {
				c = l.nextc()
				if c == eof {
					return token.EOF
				}
			}
			fallthrough

		case '\n':
			if st.Is(lexstate.Beg, lexstate.FName, lexstate.Dot, lexstate.Class) {
				continue
			}
			st.CommandStart = true
			st.State = lexstate.Beg
			return '\n'

		case '*':
			if c = l.nextc(); c == '*' {
				if c = l.nextc(); c == '=' {
					return l.opAsgn("**")
				}
				l.pushback(c)
				l.opState()
				return l.op(token.Pow, "**")
			}
			if c == '=' {
				return l.opAsgn("*")
			}
			l.pushback(c)
			k := token.Star2
			if st.State.IsArg() && spaceSeen && !isSpace(c) {
				l.warning("`*' interpreted as argument prefix")
				k = token.Star
			} else if st.Is(lexstate.Beg, lexstate.Mid) {
				k = token.Star
			}
			l.opState()
			return l.op(k, "*")

		case '!':
			st.State = lexstate.Beg
			if c = l.nextc(); c == '=' {
				return l.op(token.Neq, "!=")
			}
			if c == '~' {
				return l.op(token.NMatch, "!~")
			}
			l.pushback(c)
			return l.op(token.Bang, "!")

		case '=':
			if l.cur.WasBOL() && l.embeddedDoc() {
				if l.err != nil {
					return token.EOF
				}
				continue
			}
			l.opState()
			if c = l.nextc(); c == '=' {
				if c = l.nextc(); c == '=' {
					return l.op(token.Eqq, "===")
				}
				l.pushback(c)
				return l.op(token.Eq, "==")
			}
			if c == '~' {
				return l.op(token.Match, "=~")
			}
			if c == '>' {
				return token.Assoc
			}
			l.pushback(c)
			return '='

		case '<':
			c = l.nextc()
			if c == '<' && !st.Is(lexstate.End, lexstate.Dot, lexstate.EndArg, lexstate.Class) &&
				(!st.State.IsArg() || spaceSeen) {
				if k, ok := l.heredoc(); ok {
					return k
				}
			}
			l.opState()
			if c == '=' {
				if c = l.nextc(); c == '>' {
					return l.op(token.Cmp, "<=>")
				}
				l.pushback(c)
				return l.op(token.Leq, "<=")
			}
			if c == '<' {
				if c = l.nextc(); c == '=' {
					return l.opAsgn("<<")
				}
				l.pushback(c)
				return l.op(token.LShift, "<<")
			}
			l.pushback(c)
			return l.op(token.Lt, "<")

		case '>':
			l.opState()
			if c = l.nextc(); c == '=' {
				return l.op(token.Geq, ">=")
			}
			if c == '>' {
				if c = l.nextc(); c == '=' {
					return l.opAsgn(">>")
				}
				l.pushback(c)
				return l.op(token.RShift, ">>")
			}
			l.pushback(c)
			return l.op(token.Gt, ">")

		case '"':
			return l.scanString(litString, strDquote, '"', 0)

		case '`':
			if st.Is(lexstate.FName) {
				st.State = lexstate.End
				return l.op(token.BackRef2, "`")
			}
			if st.Is(lexstate.Dot) {
				if cmdState {
					st.State = lexstate.CmdArg
				} else {
					st.State = lexstate.Arg
				}
				return l.op(token.BackRef2, "`")
			}
			return l.scanString(litXString, strXquote, '`', 0)

		case '\'':
			return l.scanString(litString, strSquote, '\'', 0)

		case '?':
			return l.charLiteral()

		case '&':
			if c = l.nextc(); c == '&' {
				st.State = lexstate.Beg
				if c = l.nextc(); c == '=' {
					return l.opAsgn("&&")
				}
				l.pushback(c)
				return l.op(token.AndOp, "&&")
			}
			if c == '=' {
				return l.opAsgn("&")
			}
			l.pushback(c)
			k := token.Amper2
			if st.State.IsArg() && spaceSeen && !isSpace(c) {
				l.warning("`&' interpreted as argument prefix")
				k = token.Amper
			} else if st.Is(lexstate.Beg, lexstate.Mid) {
				k = token.Amper
			}
			l.opState()
			return l.op(k, "&")

		case '|':
			if c = l.nextc(); c == '|' {
				st.State = lexstate.Beg
				if c = l.nextc(); c == '=' {
					return l.opAsgn("||")
				}
				l.pushback(c)
				return l.op(token.OrOp, "||")
			}
			if c == '=' {
				return l.opAsgn("|")
			}
			l.opState()
			l.pushback(c)
			return l.op(token.Pipe, "|")

		case '+', '-':
			return l.sign(c, spaceSeen)

		case '.':
			st.State = lexstate.Beg
			if c = l.nextc(); c == '.' {
				if c = l.nextc(); c == '.' {
					return l.op(token.Dot3, "...")
				}
				l.pushback(c)
				return l.op(token.Dot2, "..")
			}
			l.pushback(c)
			if isDigit(c) {
				l.errorf("no .<digit> floating literal anymore; put 0 before dot")
			}
			st.State = lexstate.Dot
			return token.Dot

		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return l.number(c)

		case ')', ']', '}':
			st.Cond.LexPop()
			st.CmdArg.LexPop()
			st.State = lexstate.End
			switch c {
			case ')':
				return token.RParen
			case ']':
				return token.RBrack
			default:
				return token.RCurly
			}

		case ':':
			c = l.nextc()
			if c == ':' {
				if st.Is(lexstate.Beg, lexstate.Mid, lexstate.Class) || (st.State.IsArg() && spaceSeen) {
					st.State = lexstate.Beg
					return token.Colon3
				}
				st.State = lexstate.Dot
				return token.Colon2
			}
			if st.Is(lexstate.End, lexstate.EndArg) || isSpace(c) {
				l.pushback(c)
				st.State = lexstate.Beg
				return ':'
			}
			switch c {
			case '\'':
				return l.scanString(litSymbol, strSsym, c, 0)
			case '"':
				return l.scanString(litSymbol, strDsym, c, 0)
			}
			l.pushback(c)
			st.State = lexstate.FName
			return token.SymBeg

		case '/':
			if st.Is(lexstate.Beg, lexstate.Mid) {
				return l.scanString(litRegexp, strRegexp, '/', 0)
			}
			if c = l.nextc(); c == '=' {
				return l.opAsgn("/")
			}
			l.pushback(c)
			if st.State.IsArg() && spaceSeen && !isSpace(c) {
				l.argAmbiguous()
				return l.scanString(litRegexp, strRegexp, '/', 0)
			}
			l.opState()
			return l.op(token.Divide, "/")

		case '^':
			if c = l.nextc(); c == '=' {
				return l.opAsgn("^")
			}
			l.opState()
			l.pushback(c)
			return l.op(token.Caret, "^")

		case ';':
			st.CommandStart = true
			st.State = lexstate.Beg
			return ';'

		case ',':
			st.State = lexstate.Beg
			return ','

		case '~':
			if st.Is(lexstate.FName, lexstate.Dot) {
				if c = l.nextc(); c != '@' {
					l.pushback(c)
				}
			}
			l.opState()
			return l.op(token.Tilde, "~")

		case '(':
			k := token.LParen2
			if st.Is(lexstate.Beg, lexstate.Mid) {
				k = token.LParen
			} else if spaceSeen {
				if st.Is(lexstate.CmdArg) {
					k = token.LParenArg
				} else if st.Is(lexstate.Arg) {
					l.warn("don't put space before argument parentheses")
				}
			}
			st.Cond.Push(false)
			st.CmdArg.Push(false)
			st.State = lexstate.Beg
			return k

		case '[':
			if st.Is(lexstate.FName, lexstate.Dot) {
				st.State = lexstate.Arg
				if c = l.nextc(); c == ']' {
					if c = l.nextc(); c == '=' {
						return l.op(token.ASet, "[]=")
					}
					l.pushback(c)
					return l.op(token.ARef, "[]")
				}
				l.pushback(c)
				return '['
			}
			k := token.Kind('[')
			if st.Is(lexstate.Beg, lexstate.Mid) || (st.State.IsArg() && spaceSeen) {
				k = token.LBrack
			}
			st.State = lexstate.Beg
			st.Cond.Push(false)
			st.CmdArg.Push(false)
			return k

		case '{':
			k := token.LBrace
			if st.State.IsArg() || st.Is(lexstate.End) {
				k = token.LCurly
			} else if st.Is(lexstate.EndArg) {
				k = token.LBraceArg
			}
			st.Cond.Push(false)
			st.CmdArg.Push(false)
			st.State = lexstate.Beg
			return k

		case '\\':
			if c = l.nextc(); c == '\n' {
				spaceSeen = true
				continue
			}
			l.pushback(c)
			return '\\'

		case '%':
			return l.percent(spaceSeen)

		case '$':
			return l.globalVar(cmdState)

		case '@':
			c = l.nextc()
			l.tok.reset()
			l.tok.add('@')
			if c == '@' {
				l.tok.add('@')
				c = l.nextc()
			}
			if isDigit(c) {
				if l.tok.len() == 1 {
					l.errorf("`@%c' is not allowed as an instance variable name", c)
				} else {
					l.errorf("`@@%c' is not allowed as a class variable name", c)
				}
			}
			if !isIdentChar(c) {
				l.pushback(c)
				return '@'
			}
			return l.identifier(c, cmdState)

		case '_':
			if l.cur.WasBOL() && isDataMarker(l.cur.CurrentLine()) {
				l.dataLine = l.cur.Line() + 1
				l.cur.Close()
				return token.EOF
			}
			l.tok.reset()
			return l.identifier(c, cmdState)

		default:
			if !isIdentChar(c) {
				l.errorf("Invalid char `\\%03o' in expression", c)
				continue
			}
			l.tok.reset()
			return l.identifier(c, cmdState)
		}
	}
}

func isDataMarker(line []byte) bool {
	return string(bytes.TrimRight(line, "\r\n")) == "__END__"
}

// embeddedDoc skips =begin ... =end block. The opening '=' is already read.
func (l *Lexer) embeddedDoc() bool {
	if !isDocMarker(l.cur.Rest(), "begin") {
		return false
	}

	line := l.cur.Line()
	for {
		l.cur.SkipLine()
		c := l.nextc()
		if c == eof {
			l.fail(line, EmbeddedDocError, "embedded document meets end of file")
			return true
		}
		if c == '=' && isDocMarker(l.cur.Rest(), "end") {
			break
		}
	}
	l.cur.SkipLine()
	return true
}

func isDocMarker(rest []byte, word string) bool {
	if !bytes.HasPrefix(rest, []byte(word)) {
		return false
	}
	return len(rest) == len(word) || isSpace(int(rest[len(word)]))
}

func (l *Lexer) sign(c int, spaceSeen bool) token.Kind {
	st := l.st
	sign := c
	uop, bop := token.UPlus, token.Plus
	if sign == '-' {
		uop, bop = token.UMinus, token.Minus
	}

	c = l.nextc()
	if st.Is(lexstate.FName, lexstate.Dot) {
		st.State = lexstate.Arg
		if c == '@' {
			return l.op(uop, string(rune(sign))+"@")
		}
		l.pushback(c)
		return l.op(bop, string(rune(sign)))
	}

	if c == '=' {
		return l.opAsgn(string(rune(sign)))
	}

	if st.Is(lexstate.Beg, lexstate.Mid) || (st.State.IsArg() && spaceSeen && !isSpace(c)) {
		if st.State.IsArg() {
			l.argAmbiguous()
		}
		st.State = lexstate.Beg
		l.pushback(c)
		if isDigit(c) {
			if sign == '+' {
				return l.number(sign)
			}
			return l.op(token.UMinusNum, "-@")
		}
		return l.op(uop, string(rune(sign))+"@")
	}

	st.State = lexstate.Beg
	l.pushback(c)
	return l.op(bop, string(rune(sign)))
}

func (l *Lexer) charLiteral() token.Kind {
	st := l.st
	if st.Is(lexstate.End, lexstate.EndArg) {
		st.State = lexstate.Beg
		return '?'
	}

	c := l.nextc()
	if c == eof {
		return l.fail(l.cur.Line(), IncompleteCharError, "incomplete character syntax")
	}

	ternary := false
	if isSpace(c) {
		if !st.State.IsArg() {
			c2 := 0
			switch c {
			case ' ':
				c2 = 's'
			case '\n':
				c2 = 'n'
			case '\t':
				c2 = 't'
			case '\v':
				c2 = 'v'
			case '\r':
				c2 = 'r'
			case '\f':
				c2 = 'f'
			}
			if c2 != 0 {
				l.warn("invalid character syntax; use ?\\%c", c2)
			}
		}
		ternary = true
	} else if (isAlnum(c) || c == '_') && isIdentChar(l.cur.Peek()) {
		ternary = true
	}

	if ternary {
		l.pushback(c)
		st.State = lexstate.Beg
		return '?'
	}

	if c == '\\' {
		c = l.readEscape()
	}
	st.State = lexstate.End
	l.value = ast.Fixnum(c & 0xff)
	return token.Integer
}

func (l *Lexer) percent(spaceSeen bool) token.Kind {
	st := l.st
	c := l.nextc()
	if !st.Is(lexstate.Beg, lexstate.Mid) {
		if c == '=' {
			return l.opAsgn("%")
		}
		if !(st.State.IsArg() && spaceSeen && !isSpace(c)) {
			l.opState()
			l.pushback(c)
			return l.op(token.Percent, "%")
		}
	}

	line := l.cur.Line()
	term := 0
	if !isAlnum(c) {
		term = c
		c = 'Q'
	} else {
		term = l.nextc()
		if isAlnum(term) || term >= 0x80 {
			return l.fail(line, UnknownStringTypeError, "unknown type of %string")
		}
	}
	if c == eof || term == eof {
		return l.fail(line, UnterminatedStringError, "unterminated quoted string meets end of file")
	}

	paren := term
	switch term {
	case '(':
		term = ')'
	case '[':
		term = ']'
	case '{':
		term = '}'
	case '<':
		term = '>'
	default:
		paren = 0
	}

	switch c {
	case 'Q':
		return l.scanString(litString, strDquote, term, paren)
	case 'q':
		return l.scanString(litString, strSquote, term, paren)
	case 'W':
		return l.scanString(litWords, strDword, term, paren)
	case 'w':
		return l.scanString(litQWords, strSword, term, paren)
	case 'x':
		return l.scanString(litXString, strXquote, term, paren)
	case 'r':
		return l.scanString(litRegexp, strRegexp, term, paren)
	case 's':
		return l.scanString(litSymbol, strSsym, term, paren)
	default:
		return l.fail(line, UnknownStringTypeError, "unknown type of %string")
	}
}

func (l *Lexer) globalVar(cmdState bool) token.Kind {
	st := l.st
	lastState := st.State
	st.State = lexstate.End
	l.tok.reset()

	c := l.nextc()
	switch c {
	case '_':
		if c = l.nextc(); isIdentChar(c) {
			l.tok.addString("$_")
			break
		}
		l.pushback(c)
		return l.gvar("$_")

	case '~', '*', '$', '?', '!', '@', '/', '\\', ';', ',', '.', '=', ':', '<', '>', '"':
		return l.gvar("$" + string(rune(c)))

	case '-':
		name := "$-"
		if c = l.nextc(); isIdentChar(c) {
			name += string(rune(c))
		} else {
			l.pushback(c)
		}
		return l.gvar(name)

	case '&', '`', '\'', '+':
		if lastState == lexstate.FName {
			return l.gvar("$" + string(rune(c)))
		}
		l.value = &ast.BackRef{Base: l.pos(l.line), Ref: byte(c)}
		return token.BackRef

	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		n := 0
		name := []byte{'$'}
		for isDigit(c) {
			name = append(name, byte(c))
			n = n*10 + c - '0'
			c = l.nextc()
		}
		l.pushback(c)
		if lastState == lexstate.FName {
			return l.gvar(string(name))
		}
		l.value = &ast.NthRef{Base: l.pos(l.line), Nth: n}
		return token.NthRef

	case '0':
		l.tok.add('$')

	default:
		if !isIdentChar(c) {
			l.pushback(c)
			return '$'
		}
		l.tok.add('$')
	}

	return l.identifier(c, cmdState)
}

func (l *Lexer) gvar(name string) token.Kind {
	l.value = l.intern(name)
	return token.GVar
}

// identifier scans a name starting with c, the token buffer may already hold a $ or @ prefix.
func (l *Lexer) identifier(c int, cmdState bool) token.Kind {
	st := l.st
	for {
		l.tok.add(c)
		c = l.nextc()
		if c == eof || !isIdentChar(c) {
			break
		}
	}
	if (c == '!' || c == '?') && isIdentChar(int(l.tok.bytes()[0])) && !l.peek('=') {
		l.tok.add(c)
	} else {
		l.pushback(c)
	}

	var result token.Kind
	lastState := st.State
	first := int(l.tok.bytes()[0])
	switch {
	case first == '$':
		st.State = lexstate.End
		result = token.GVar

	case first == '@':
		st.State = lexstate.End
		result = token.IVar
		if l.tok.len() > 1 && l.tok.bytes()[1] == '@' {
			result = token.CVar
		}

	default:
		if last := l.tok.last(); last == '!' || last == '?' {
			result = token.FID
		} else {
			if st.Is(lexstate.FName) {
				if c = l.nextc(); c == '=' && !l.peek('~') && !l.peek('>') &&
					(!l.peek('=') || l.cur.PeekAt(1) == '>') {
					result = token.Identifier
					l.tok.add(c)
				} else {
					l.pushback(c)
				}
			}
			if result == 0 {
				if isUpper(first) {
					result = token.Constant
				} else {
					result = token.Identifier
				}
			}
		}

		if !st.Is(lexstate.Dot) {
			if kw := keyword.Lookup(l.tok.bytes()); kw != nil {
				return l.keyword(kw)
			}
		}

		if st.Is(lexstate.Beg, lexstate.Mid, lexstate.Dot, lexstate.Arg, lexstate.CmdArg) {
			if cmdState {
				st.State = lexstate.CmdArg
			} else {
				st.State = lexstate.Arg
			}
		} else {
			st.State = lexstate.End
		}
	}

	id := l.names.InternBytes(l.tok.bytes())
	l.value = id
	if lastState != lexstate.Dot && l.isLocal(id) {
		st.State = lexstate.End
	}
	return result
}

func (l *Lexer) isLocal(id ident.ID) bool {
	if l.scope == nil || !l.names.IsLocal(id) {
		return false
	}
	return l.scope.Defined(id) || (l.scope.InBlock() && l.scope.DynaDefined(id))
}

func (l *Lexer) keyword(kw *keyword.Entry) token.Kind {
	st := l.st
	state := st.State
	st.State = kw.State
	l.value = l.intern(kw.Name)

	if state == lexstate.FName {
		return kw.ID[0]
	}
	if kw.ID[0] == token.KwDo {
		switch {
		case st.Cond.IsSet():
			return token.KwDoCond
		case st.CmdArg.IsSet() && state != lexstate.CmdArg:
			return token.KwDoBlock
		case state == lexstate.EndArg:
			return token.KwDoBlock
		default:
			return token.KwDo
		}
	}
	if state == lexstate.Beg {
		return kw.ID[0]
	}
	if kw.ID[0] != kw.ID[1] {
		st.State = lexstate.Beg
	}
	return kw.ID[1]
}
