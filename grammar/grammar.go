// Package grammar describes a context-free grammar consumed by the LALR table generator.
//
// Symbols are numbered: terminals occupy numbers below NumTerms (a terminal number is its token kind),
// nonterminal i has symbol number NumTerms+i. Rule 0 is the augmented rule "$accept: start".
package grammar

import "strings"

const (
	AcceptRule   = 0
	InitialState = 0
	NoSymbol     = -1
)

// Assoc is a precedence associativity.
type Assoc int

const (
	Undefined Assoc = iota
	Left
	Right
	NonAssoc
)

func (a Assoc) String() string {
	switch a {
	case Left:
		return "left"
	case Right:
		return "right"
	case NonAssoc:
		return "nonassoc"
	default:
		return ""
	}
}

// Term describes a terminal, Prec is 0 if terminal has no precedence, higher levels bind tighter.
type Term struct {
	Name  string `json:",omitempty" yaml:",omitempty"`
	Prec  int    `json:",omitempty" yaml:",omitempty"`
	Assoc Assoc  `json:",omitempty" yaml:",omitempty"`
}

type Nonterm struct {
	Name string
}

// Rule is a grammar production.
type Rule struct {
	// Lhs contains nonterminal symbol number.
	Lhs int

	// Rhs contains symbol numbers.
	Rhs []int

	// Prec contains terminal used for precedence resolution or NoSymbol.
	// Set only by explicit %prec directive, otherwise the last terminal of Rhs is used.
	Prec int

	// Action contains semantic action name or empty string for the default $$ = $1 action.
	Action string

	// Context is the number of stack values visible to the action.
	// Differs from len(Rhs) for rules created from mid-rule actions.
	Context int

	// Line is the grammar description line.
	Line int
}

type Grammar struct {
	Terms    []Term
	Nonterms []Nonterm
	Rules    []Rule
}

// NumTerms returns the number of terminal symbol numbers.
func (g *Grammar) NumTerms() int {
	return len(g.Terms)
}

// NumSymbols returns the total number of symbol numbers.
func (g *Grammar) NumSymbols() int {
	return len(g.Terms) + len(g.Nonterms)
}

func (g *Grammar) IsTerm(sym int) bool {
	return sym >= 0 && sym < len(g.Terms)
}

// Nonterm returns nonterminal index of symbol number or -1.
func (g *Grammar) Nonterm(sym int) int {
	if sym < len(g.Terms) || sym >= g.NumSymbols() {
		return -1
	}
	return sym - len(g.Terms)
}

// Symbol returns symbol number of nonterminal index.
func (g *Grammar) Symbol(nonterm int) int {
	return len(g.Terms) + nonterm
}

func (g *Grammar) SymbolName(sym int) string {
	switch {
	case g.IsTerm(sym):
		return g.Terms[sym].Name
	case sym < g.NumSymbols():
		return g.Nonterms[sym-len(g.Terms)].Name
	default:
		return ""
	}
}

// Start returns start nonterminal symbol number.
func (g *Grammar) Start() int {
	return g.Rules[AcceptRule].Rhs[0]
}

// RulePrec returns terminal symbol defining rule precedence or NoSymbol.
func (g *Grammar) RulePrec(rule int) int {
	r := &g.Rules[rule]
	if r.Prec != NoSymbol {
		return r.Prec
	}
	for i := len(r.Rhs) - 1; i >= 0; i-- {
		if g.IsTerm(r.Rhs[i]) {
			return r.Rhs[i]
		}
	}
	return NoSymbol
}

// RuleString returns rule in "lhs: sym sym" notation.
func (g *Grammar) RuleString(rule int) string {
	r := &g.Rules[rule]
	parts := make([]string, 0, len(r.Rhs)+1)
	parts = append(parts, g.SymbolName(r.Lhs)+":")
	for _, s := range r.Rhs {
		parts = append(parts, g.SymbolName(s))
	}
	return strings.Join(parts, " ")
}
