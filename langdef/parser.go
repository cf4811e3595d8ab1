package langdef

import (
	"sort"
	"strconv"

	"github.com/ava12/rbparse/grammar"
	"github.com/ava12/rbparse/internal/ints"
	"github.com/ava12/rbparse/internal/queue"
	"github.com/ava12/rbparse/source"
)

// Registry resolves terminal names to token kinds.
type Registry interface {
	// Lookup returns token kind for terminal name.
	Lookup(name string) (int, bool)
	// Name returns terminal name for token kind.
	Name(kind int) string
	// MaxKind returns the largest token kind.
	MaxKind() int
}

const (
	colonTok     = ":"
	pipeTok      = "|"
	semicolonTok = ";"

	leftDir     = "%left"
	rightDir    = "%right"
	nonassocDir = "%nonassoc"
	precDir     = "%prec"
	startDir    = "%start"

	acceptName = "$accept"
)

// ParseString parses grammar description and returns a grammar on success.
// Returns nil and rbparse.Error on error.
func ParseString(name, content string, reg Registry) (*grammar.Grammar, error) {
	return Parse(source.New(name, []byte(content)), reg)
}

// ParseBytes parses grammar description and returns a grammar on success.
// Returns nil and rbparse.Error on error.
func ParseBytes(name string, content []byte, reg Registry) (*grammar.Grammar, error) {
	return Parse(source.New(name, content), reg)
}

// Parse parses grammar description and returns a grammar on success.
// Returns nil and rbparse.Error on error.
func Parse(s *source.Source, reg Registry) (*grammar.Grammar, error) {
	c := newParseContext(s, reg)
	e := c.parse()
	e = c.findUndefinedNonterms(e)
	e = c.findUnusedNonterms(e)
	if e != nil {
		return nil, e
	}

	return c.g, nil
}

type parseContext struct {
	name       string
	s          *scanner
	reg        Registry
	g          *grammar.Grammar
	tok        *lexeme
	ntIndex    map[string]int
	defined    []bool
	precLevel  int
	startName  string
	firstLhs   int
	midCounter int
}

func newParseContext(s *source.Source, reg Registry) *parseContext {
	c := &parseContext{
		name:    s.Name(),
		s:       newScanner(s),
		reg:     reg,
		g:       &grammar.Grammar{},
		ntIndex: make(map[string]int),
	}

	c.g.Terms = make([]grammar.Term, reg.MaxKind()+1)
	for i := range c.g.Terms {
		c.g.Terms[i].Name = reg.Name(i)
	}
	c.nonterm(acceptName)
	c.defined[0] = true
	c.g.Rules = append(c.g.Rules, grammar.Rule{Prec: grammar.NoSymbol})
	return c
}

func (c *parseContext) next() error {
	t, e := c.s.next()
	if e == nil {
		c.tok = t
	}
	return e
}

func (c *parseContext) expect(tt int, text string) (*lexeme, error) {
	t := c.tok
	if t.tokenType != tt || (text != "" && t.text != text) {
		return nil, unexpectedTokenError(t)
	}
	return t, c.next()
}

func (c *parseContext) nonterm(name string) int {
	i, found := c.ntIndex[name]
	if !found {
		i = len(c.g.Nonterms)
		c.ntIndex[name] = i
		c.g.Nonterms = append(c.g.Nonterms, grammar.Nonterm{Name: name})
		c.defined = append(c.defined, false)
	}
	return c.g.Symbol(i)
}

// symbol resolves name or quoted char to symbol number.
func (c *parseContext) symbol(t *lexeme) (int, error) {
	if kind, found := c.reg.Lookup(t.text); found {
		return kind, nil
	}
	if t.tokenType == charTok {
		return 0, unknownTerminalError(t)
	}
	return c.nonterm(t.text), nil
}

func (c *parseContext) terminal(t *lexeme) (int, error) {
	if t.tokenType != nameTok && t.tokenType != charTok {
		return 0, unexpectedTokenError(t)
	}
	kind, found := c.reg.Lookup(t.text)
	if !found {
		return 0, unknownTerminalError(t)
	}
	return kind, nil
}

func (c *parseContext) parse() error {
	e := c.next()
	for e == nil && c.tok.tokenType == dirTok && c.tok.text != precDir {
		e = c.parseDirective()
	}

	for e == nil && c.tok.tokenType != eofTok {
		e = c.parseRule()
	}

	if e == nil && len(c.g.Rules) < 2 {
		e = noRulesError(c.name)
	}
	if e != nil {
		return e
	}

	start := c.firstLhs
	if c.startName != "" {
		i, found := c.ntIndex[c.startName]
		if !found || !c.defined[i] {
			return wrongStartError(c.startName)
		}
		start = c.g.Symbol(i)
	}
	c.g.Rules[grammar.AcceptRule] = grammar.Rule{
		Lhs:     c.g.Symbol(0),
		Rhs:     []int{start},
		Prec:    grammar.NoSymbol,
		Context: 1,
	}
	return nil
}

func (c *parseContext) parseDirective() error {
	dir := c.tok.text
	e := c.next()
	if e != nil {
		return e
	}

	if dir == startDir {
		t, e := c.expect(nameTok, "")
		if e == nil {
			c.startName = t.text
			_, e = c.expect(opTok, semicolonTok)
		}
		return e
	}

	assoc := grammar.Left
	switch dir {
	case rightDir:
		assoc = grammar.Right
	case nonassocDir:
		assoc = grammar.NonAssoc
	}
	c.precLevel++
	for e == nil && !(c.tok.tokenType == opTok && c.tok.text == semicolonTok) {
		var kind int
		kind, e = c.terminal(c.tok)
		if e != nil {
			break
		}
		if c.g.Terms[kind].Prec != 0 {
			return precedenceDefinedError(c.tok)
		}
		c.g.Terms[kind].Prec = c.precLevel
		c.g.Terms[kind].Assoc = assoc
		e = c.next()
	}
	if e == nil {
		e = c.next()
	}
	return e
}

func (c *parseContext) parseRule() error {
	lhsTok, e := c.expect(nameTok, "")
	if e != nil {
		return e
	}
	if _, found := c.reg.Lookup(lhsTok.text); found {
		return terminalRuleError(lhsTok)
	}

	lhs := c.nonterm(lhsTok.text)
	if c.firstLhs == 0 {
		c.firstLhs = lhs
	}
	c.defined[c.g.Nonterm(lhs)] = true
	_, e = c.expect(opTok, colonTok)
	for e == nil {
		e = c.parseVariant(lhs)
		if e != nil {
			break
		}

		if c.tok.tokenType == opTok && c.tok.text == pipeTok {
			e = c.next()
			continue
		}

		_, e = c.expect(opTok, semicolonTok)
		break
	}
	return e
}

func (c *parseContext) parseVariant(lhs int) error {
	r := grammar.Rule{Lhs: lhs, Prec: grammar.NoSymbol, Line: c.tok.line}
	var e error
	for e == nil {
		t := c.tok
		switch t.tokenType {
		case nameTok, charTok:
			var sym int
			sym, e = c.symbol(t)
			r.Rhs = append(r.Rhs, sym)

		case midTok:
			c.midCounter++
			mid := c.nonterm(t.text + "." + strconv.Itoa(c.midCounter))
			c.defined[c.g.Nonterm(mid)] = true
			c.g.Rules = append(c.g.Rules, grammar.Rule{
				Lhs:     mid,
				Prec:    grammar.NoSymbol,
				Action:  t.text[1:],
				Context: len(r.Rhs),
				Line:    t.line,
			})
			r.Rhs = append(r.Rhs, mid)

		case dirTok:
			if t.text != precDir {
				return unexpectedTokenError(t)
			}
			e = c.next()
			if e == nil {
				r.Prec, e = c.terminal(c.tok)
			}

		case actionTok:
			e = c.next()
			if e == nil {
				var at *lexeme
				at, e = c.expect(nameTok, "")
				if e == nil {
					r.Action = at.text
				}
			}
			if e == nil && !(c.tok.tokenType == opTok && (c.tok.text == pipeTok || c.tok.text == semicolonTok)) {
				e = unexpectedTokenError(c.tok)
			}
			if e == nil {
				r.Context = len(r.Rhs)
				c.g.Rules = append(c.g.Rules, r)
			}
			return e

		case opTok:
			if t.text == colonTok {
				return unexpectedTokenError(t)
			}
			r.Context = len(r.Rhs)
			c.g.Rules = append(c.g.Rules, r)
			return nil

		default:
			return unexpectedTokenError(t)
		}

		if e == nil {
			e = c.next()
		}
	}
	return e
}

func (c *parseContext) findUndefinedNonterms(e error) error {
	if e != nil {
		return e
	}

	var names []string
	for i, d := range c.defined {
		if !d {
			names = append(names, c.g.Nonterms[i].Name)
		}
	}
	if len(names) > 0 {
		sort.Strings(names)
		return undefinedNonTermError(names)
	}
	return nil
}

func (c *parseContext) findUnusedNonterms(e error) error {
	if e != nil {
		return e
	}

	g := c.g
	rulesOf := make([][]int, len(g.Nonterms))
	for i, r := range g.Rules {
		nt := g.Nonterm(r.Lhs)
		rulesOf[nt] = append(rulesOf[nt], i)
	}

	used := ints.NewSet(0)
	q := queue.New(0)
	for nt, ok := q.First(); ok; nt, ok = q.First() {
		for _, ri := range rulesOf[nt] {
			for _, sym := range g.Rules[ri].Rhs {
				n := g.Nonterm(sym)
				if n >= 0 && !used.Contains(n) {
					used.Add(n)
					q.Append(n)
				}
			}
		}
	}

	var names []string
	for i, nt := range g.Nonterms {
		if !used.Contains(i) {
			names = append(names, nt.Name)
		}
	}
	if len(names) > 0 {
		return unusedNonTermError(names)
	}
	return nil
}
