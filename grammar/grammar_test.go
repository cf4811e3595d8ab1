package grammar

import (
	"testing"

	"github.com/ava12/rbparse/internal/test"
)

// expr: expr '+' term | term; term: 'n'
func sample() *Grammar {
	g := &Grammar{Terms: make([]Term, 'n'+1)}
	g.Terms[0].Name = "$end"
	g.Terms['+'] = Term{Name: "'+'", Prec: 1, Assoc: Left}
	g.Terms['n'].Name = "'n'"
	g.Nonterms = []Nonterm{{"$accept"}, {"expr"}, {"term"}}
	nt := len(g.Terms)
	g.Rules = []Rule{
		{Lhs: nt, Rhs: []int{nt + 1}, Prec: NoSymbol},
		{Lhs: nt + 1, Rhs: []int{nt + 1, '+', nt + 2}, Prec: NoSymbol, Action: "add"},
		{Lhs: nt + 1, Rhs: []int{nt + 2}, Prec: NoSymbol},
		{Lhs: nt + 2, Rhs: []int{'n'}, Prec: '+'},
	}
	return g
}

func TestSymbols(t *testing.T) {
	g := sample()
	nt := len(g.Terms)
	test.ExpectInt(t, nt+3, g.NumSymbols())
	test.ExpectBool(t, true, g.IsTerm('+'))
	test.ExpectBool(t, false, g.IsTerm(nt))
	test.ExpectInt(t, 1, g.Nonterm(nt+1))
	test.ExpectInt(t, -1, g.Nonterm('+'))
	test.ExpectInt(t, -1, g.Nonterm(nt+3))
	test.ExpectInt(t, nt+2, g.Symbol(2))
	test.ExpectInt(t, nt+1, g.Start())
	test.ExpectString(t, "term", g.SymbolName(nt+2))
	test.ExpectString(t, "", g.SymbolName(nt+5))
}

func TestRules(t *testing.T) {
	g := sample()
	samples := []struct {
		rule, prec int
		text       string
	}{
		{0, NoSymbol, "$accept: expr"},
		{1, '+', "expr: expr '+' term"},
		{2, NoSymbol, "expr: term"},
		{3, '+', "term: 'n'"},
	}

	for i, s := range samples {
		if got := g.RulePrec(s.rule); got != s.prec {
			t.Errorf("sample #%d: expecting precedence %d, got %d", i, s.prec, got)
		}
		if got := g.RuleString(s.rule); got != s.text {
			t.Errorf("sample #%d: expecting %q, got %q", i, s.text, got)
		}
	}
}

func TestAssoc(t *testing.T) {
	test.ExpectString(t, "left", Left.String())
	test.ExpectString(t, "right", Right.String())
	test.ExpectString(t, "nonassoc", NonAssoc.String())
	test.ExpectString(t, "", Undefined.String())
}
