package lexer

import (
	"errors"
	"math/big"
	"strconv"

	"github.com/ava12/rbparse/ast"
	"github.com/ava12/rbparse/lexstate"
	"github.com/ava12/rbparse/token"
)

func isOctDigit(c int) bool {
	return c >= '0' && c <= '7'
}

func isHexDigit(c int) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isBinDigit(c int) bool {
	return c == '0' || c == '1'
}

// number scans numeric literal starting with a digit or a sign.
func (l *Lexer) number(c int) token.Kind {
	l.st.State = lexstate.End
	l.tok.reset()
	if c == '+' || c == '-' {
		l.tok.add(c)
		c = l.nextc()
	}

	if c == '0' {
		start := l.tok.len()
		c = l.nextc()
		switch c {
		case 'x', 'X':
			return l.prefixedInteger(start, 16, isHexDigit)
		case 'b', 'B':
			return l.prefixedInteger(start, 2, isBinDigit)
		case 'd', 'D':
			return l.prefixedInteger(start, 10, isDigit)
		case '_':
			return l.octal(start, c)
		case 'o', 'O':
			c = l.nextc()
			if c == '_' {
				l.errorf("numeric literal without digits")
			}
		}

		if isOctDigit(c) || c == '_' {
			return l.octal(start, c)
		}
		if c > '7' && c <= '9' {
			l.errorf("Illegal octal digit")
		} else if c == '.' || c == 'e' || c == 'E' {
			l.tok.add('0')
		} else {
			l.pushback(c)
			l.value = ast.Fixnum(0)
			return token.Integer
		}
	}

	isFloat, seenPoint, seenE := false, false, false
	nondigit := 0
loop:
	for {
		switch {
		case isDigit(c):
			nondigit = 0
			l.tok.add(c)

		case c == '.':
			if nondigit != 0 {
				break loop
			}
			if seenPoint || seenE {
				break loop
			}
			c0 := l.nextc()
			if !isDigit(c0) {
				l.pushback(c0)
				break loop
			}
			l.tok.add('.')
			l.tok.add(c0)
			isFloat, seenPoint = true, true
			nondigit = 0

		case c == 'e' || c == 'E':
			if nondigit != 0 {
				l.pushback(c)
				c = nondigit
				break loop
			}
			if seenE {
				break loop
			}
			l.tok.add(c)
			seenE, isFloat = true, true
			nondigit = c
			c = l.nextc()
			if c != '-' && c != '+' {
				continue
			}
			l.tok.add(c)
			nondigit = c

		case c == '_':
			if nondigit != 0 {
				break loop
			}
			nondigit = c

		default:
			break loop
		}
		c = l.nextc()
	}

	l.pushback(c)
	if nondigit != 0 {
		l.errorf("trailing `%c' in number", nondigit)
	}

	text := l.tok.String()
	if isFloat {
		f, e := strconv.ParseFloat(text, 64)
		if e != nil && errors.Is(e, strconv.ErrRange) {
			l.warn("Float %s out of range", text)
		}
		l.value = ast.Float(f)
		return token.Float
	}

	l.value = l.integer(text, 10)
	return token.Integer
}

func (l *Lexer) prefixedInteger(start, base int, digit func(int) bool) token.Kind {
	nondigit := 0
	c := l.nextc()
	for ; c != eof; c = l.nextc() {
		if c == '_' {
			if nondigit != 0 {
				break
			}
			nondigit = c
			continue
		}
		if !digit(c) {
			break
		}
		nondigit = 0
		l.tok.add(c)
	}
	l.pushback(c)

	if l.tok.len() == start {
		l.errorf("numeric literal without digits")
		l.value = ast.Fixnum(0)
		return token.Integer
	}
	if nondigit != 0 {
		l.errorf("trailing `%c' in number", nondigit)
	}
	l.value = l.integer(l.tok.String(), base)
	return token.Integer
}

func (l *Lexer) octal(start, c int) token.Kind {
	nondigit := 0
	for ; c != eof; c = l.nextc() {
		if c == '_' {
			if nondigit != 0 {
				break
			}
			nondigit = c
			continue
		}
		if !isOctDigit(c) {
			break
		}
		nondigit = 0
		l.tok.add(c)
	}
	l.pushback(c)

	if nondigit != 0 {
		l.errorf("trailing `%c' in number", nondigit)
	}
	if l.tok.len() == start {
		l.value = ast.Fixnum(0)
		return token.Integer
	}
	if isDigit(c) {
		l.errorf("Illegal octal digit")
	}
	l.value = l.integer(l.tok.String(), 8)
	return token.Integer
}

// integer converts digits to Fixnum, promoting values out of int64 range to Bignum.
func (l *Lexer) integer(text string, base int) ast.Literal {
	if n, e := strconv.ParseInt(text, base, 64); e == nil {
		return ast.Fixnum(n)
	}

	b, ok := new(big.Int).SetString(text, base)
	if !ok {
		return ast.Fixnum(0)
	}
	return ast.Bignum{Value: b}
}
