// Package lalr generates LALR(1) parsing tables from grammar.Grammar and runs
// a grammar-agnostic table-driven parser over them.
//
// Tables use comb-packed layout: for state s and token t the shift target is
// Table[SIndex[s]+t] if Check[SIndex[s]+t] == t, the reduction rule is looked up
// the same way through RIndex, zero index means "no entries". Gotos for nonterminal n
// from state s are Table[GIndex[n]+s] checked against s, falling back to DGoto[n].
// DefRed holds a rule reduced in the state regardless of lookahead or 0.
package lalr

import (
	"sort"

	"github.com/ava12/rbparse"
)

// Error codes used by generator and driver:
const (
	ConflictsError = rbparse.TableErrors + iota
	EmptyGrammarError
)

const (
	SyntaxError = rbparse.SyntaxErrors + iota
	IrrecoverableError
	IrrecoverableEofError
)

// ErrorToken is the token kind reserved for error recovery rules.
const ErrorToken = 256

type Tables struct {
	DefRed []int
	SIndex []int
	RIndex []int
	GIndex []int
	DGoto  []int
	Table  []int
	Check  []int

	// Len and Lhs are rule right side lengths and left side nonterminal indexes.
	Len []int
	Lhs []int

	// Context is the number of stack values visible to rule action.
	Context []int

	// Actions contains rule action names.
	Actions []string

	// Final is the state entered after reducing start nonterminal in initial state.
	Final int

	// Start is start nonterminal index.
	Start int

	// TermNames holds terminal names indexed by token kind, unused kinds have empty names.
	TermNames []string

	// RuleNames holds rules in "lhs: sym sym" notation.
	RuleNames []string
}

// Stats describes generated tables.
type Stats struct {
	States      int `yaml:"states"`
	Rules       int `yaml:"rules"`
	Terms       int `yaml:"terms"`
	Nonterms    int `yaml:"nonterms"`
	SRConflicts int `yaml:"shift_reduce_conflicts"`
	RRConflicts int `yaml:"reduce_reduce_conflicts"`
	TableSize   int `yaml:"table_size"`
}

func lookup(t *Tables, base, key int) (int, bool) {
	if base == 0 {
		return 0, false
	}
	i := base + key
	if i < 0 || i >= len(t.Table) || t.Check[i] != key {
		return 0, false
	}
	return t.Table[i], true
}

// Shift returns shift target for state and token.
func (t *Tables) Shift(state, token int) (int, bool) {
	return lookup(t, t.SIndex[state], token)
}

// Reduction returns rule reduced in state on token, default reduction included.
func (t *Tables) Reduction(state, token int) (int, bool) {
	if r := t.DefRed[state]; r != 0 {
		return r, true
	}
	return lookup(t, t.RIndex[state], token)
}

// Goto returns state entered after reducing nonterminal in state.
func (t *Tables) Goto(state, nonterm int) int {
	if s, found := lookup(t, t.GIndex[nonterm], state); found {
		return s
	}
	return t.DGoto[nonterm]
}

// Expected returns token kinds having explicit shift or reduce entries in state.
func (t *Tables) Expected(state int) []int {
	var res []int
	seen := make(map[int]bool)
	for _, base := range []int{t.SIndex[state], t.RIndex[state]} {
		if base == 0 {
			continue
		}
		tok := 0
		if base < 0 {
			tok = -base
		}
		for ; tok < len(t.TermNames) && base+tok < len(t.Table); tok++ {
			if t.Check[base+tok] == tok && !seen[tok] && t.TermNames[tok] != "" {
				seen[tok] = true
				res = append(res, tok)
			}
		}
	}
	sort.Ints(res)
	return res
}
