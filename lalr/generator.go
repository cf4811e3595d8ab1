package lalr

import (
	"context"
	"encoding/binary"
	"log/slog"
	"sort"

	"github.com/ava12/rbparse"
	"github.com/ava12/rbparse/grammar"
	"github.com/ava12/rbparse/internal/ints"
	"github.com/ava12/rbparse/internal/queue"
)

// Options control table generation.
type Options struct {
	// Logger receives a debug record with generation statistics, may be nil.
	Logger *slog.Logger

	// FailOnConflicts makes Generate fail if any conflict was not resolved by precedence.
	FailOnConflicts bool
}

type config struct {
	rule, dot int
	follow    *ints.Set
	links     []*config
}

type lrState struct {
	index   int
	configs []*config
	byItem  map[int]*config
	gotos   map[int]int
}

type generator struct {
	g          *grammar.Grammar
	rulesOf    [][]int
	itemBase   []int
	nullable   []bool
	first      []*ints.Set
	sufFirst   [][]*ints.Set
	sufNull    [][]bool
	states     []*lrState
	stateIndex map[string]*lrState
	stats      Stats
}

// Generate builds LALR(1) tables for g.
// Shift/reduce conflicts are resolved using terminal precedence and associativity,
// unresolved ones in favor of shift; reduce/reduce conflicts in favor of the earlier rule.
func Generate(g *grammar.Grammar, opts *Options) (*Tables, *Stats, error) {
	if opts == nil {
		opts = &Options{}
	}
	if len(g.Rules) < 2 || len(g.Nonterms) < 2 {
		return nil, nil, rbparse.FormatError(EmptyGrammarError, "grammar has no rules")
	}

	gen := &generator{g: g, stateIndex: make(map[string]*lrState)}
	gen.prepareRules()
	gen.computeFirst()
	gen.buildStates()
	gen.propagate()
	t := gen.buildTables()

	st := &gen.stats
	if opts.Logger != nil {
		opts.Logger.Log(context.Background(), slog.LevelDebug, "LALR tables generated",
			slog.Int("states", st.States), slog.Int("rules", st.Rules),
			slog.Int("sr_conflicts", st.SRConflicts), slog.Int("rr_conflicts", st.RRConflicts),
			slog.Int("table_size", st.TableSize))
	}
	if opts.FailOnConflicts && st.SRConflicts+st.RRConflicts > 0 {
		return t, st, rbparse.FormatError(ConflictsError, "grammar has %d shift/reduce and %d reduce/reduce conflicts",
			st.SRConflicts, st.RRConflicts)
	}
	return t, st, nil
}

func (gen *generator) prepareRules() {
	g := gen.g
	gen.rulesOf = make([][]int, len(g.Nonterms))
	gen.itemBase = make([]int, len(g.Rules))
	base := 0
	for i, r := range g.Rules {
		nt := g.Nonterm(r.Lhs)
		gen.rulesOf[nt] = append(gen.rulesOf[nt], i)
		gen.itemBase[i] = base
		base += len(r.Rhs) + 1
	}
}

func (gen *generator) computeFirst() {
	g := gen.g
	gen.nullable = make([]bool, len(g.Nonterms))
	gen.first = make([]*ints.Set, len(g.Nonterms))
	for i := range gen.first {
		gen.first[i] = ints.NewSet()
	}

	for changed := true; changed; {
		changed = false
		for _, r := range g.Rules {
			nt := g.Nonterm(r.Lhs)
			allNullable := true
			for _, sym := range r.Rhs {
				if g.IsTerm(sym) {
					if !gen.first[nt].Contains(sym) {
						gen.first[nt].Add(sym)
						changed = true
					}
					allNullable = false
					break
				}

				snt := g.Nonterm(sym)
				if gen.first[nt].AddSet(gen.first[snt]) {
					changed = true
				}
				if !gen.nullable[snt] {
					allNullable = false
					break
				}
			}
			if allNullable && !gen.nullable[nt] {
				gen.nullable[nt] = true
				changed = true
			}
		}
	}

	gen.sufFirst = make([][]*ints.Set, len(g.Rules))
	gen.sufNull = make([][]bool, len(g.Rules))
	for i, r := range g.Rules {
		n := len(r.Rhs)
		fs := make([]*ints.Set, n+1)
		ns := make([]bool, n+1)
		fs[n] = ints.NewSet()
		ns[n] = true
		for k := n - 1; k >= 0; k-- {
			sym := r.Rhs[k]
			if g.IsTerm(sym) {
				fs[k] = ints.NewSet(sym)
				continue
			}
			snt := g.Nonterm(sym)
			fs[k] = gen.first[snt].Copy()
			if gen.nullable[snt] {
				fs[k].AddSet(fs[k+1])
				ns[k] = ns[k+1]
			}
		}
		gen.sufFirst[i] = fs
		gen.sufNull[i] = ns
	}
}

func (gen *generator) item(rule, dot int) int {
	return gen.itemBase[rule] + dot
}

func (gen *generator) addConfig(s *lrState, rule, dot int) *config {
	it := gen.item(rule, dot)
	if c := s.byItem[it]; c != nil {
		return c
	}
	c := &config{rule: rule, dot: dot, follow: ints.NewSet()}
	s.configs = append(s.configs, c)
	s.byItem[it] = c
	return c
}

func kernelKey(items []int) string {
	buf := make([]byte, 0, len(items)*4)
	for _, it := range items {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(it))
	}
	return string(buf)
}

type kernelItem struct {
	rule, dot int
}

// state returns existing state with given kernel or creates new one.
func (gen *generator) state(kernel []kernelItem) *lrState {
	sort.Slice(kernel, func(i, j int) bool {
		return gen.item(kernel[i].rule, kernel[i].dot) < gen.item(kernel[j].rule, kernel[j].dot)
	})
	items := make([]int, len(kernel))
	for i, k := range kernel {
		items[i] = gen.item(k.rule, k.dot)
	}
	key := kernelKey(items)
	if s := gen.stateIndex[key]; s != nil {
		return s
	}

	s := &lrState{index: len(gen.states), byItem: make(map[int]*config), gotos: make(map[int]int)}
	for _, k := range kernel {
		gen.addConfig(s, k.rule, k.dot)
	}
	gen.states = append(gen.states, s)
	gen.stateIndex[key] = s
	return s
}

func (gen *generator) buildStates() {
	g := gen.g
	s0 := gen.state([]kernelItem{{grammar.AcceptRule, 0}})
	s0.configs[0].follow.Add(0)

	for i := 0; i < len(gen.states); i++ {
		s := gen.states[i]
		gen.closure(s)

		bySym := make(map[int][]*config)
		var syms []int
		for _, c := range s.configs {
			rhs := g.Rules[c.rule].Rhs
			if c.dot >= len(rhs) {
				continue
			}
			sym := rhs[c.dot]
			if _, found := bySym[sym]; !found {
				syms = append(syms, sym)
			}
			bySym[sym] = append(bySym[sym], c)
		}
		sort.Ints(syms)

		for _, sym := range syms {
			cs := bySym[sym]
			kernel := make([]kernelItem, len(cs))
			for j, c := range cs {
				kernel[j] = kernelItem{c.rule, c.dot + 1}
			}
			target := gen.state(kernel)
			s.gotos[sym] = target.index
			for _, c := range cs {
				c.links = append(c.links, target.byItem[gen.item(c.rule, c.dot+1)])
			}
		}
	}
	gen.stats.States = len(gen.states)
}

func (gen *generator) closure(s *lrState) {
	g := gen.g
	for i := 0; i < len(s.configs); i++ {
		c := s.configs[i]
		rhs := g.Rules[c.rule].Rhs
		if c.dot >= len(rhs) {
			continue
		}
		nt := g.Nonterm(rhs[c.dot])
		if nt < 0 {
			continue
		}

		first := gen.sufFirst[c.rule][c.dot+1]
		nullable := gen.sufNull[c.rule][c.dot+1]
		for _, r := range gen.rulesOf[nt] {
			nc := gen.addConfig(s, r, 0)
			nc.follow.AddSet(first)
			if nullable {
				c.links = append(c.links, nc)
			}
		}
	}
}

// propagate spreads lookaheads along config links until nothing changes.
func (gen *generator) propagate() {
	q := queue.New[*config]()
	queued := make(map[*config]bool)
	for _, s := range gen.states {
		for _, c := range s.configs {
			if len(c.links) > 0 && !c.follow.IsEmpty() {
				q.Append(c)
				queued[c] = true
			}
		}
	}

	for c, ok := q.First(); ok; c, ok = q.First() {
		delete(queued, c)
		for _, l := range c.links {
			if l.follow.AddSet(c.follow) && len(l.links) > 0 && !queued[l] {
				q.Append(l)
				queued[l] = true
			}
		}
	}
}

type action struct {
	shift  int
	reduce int
}

// resolve picks action for token having shift target (or -1) and reduce rules in ascending order.
// Returns -1, 0 for error action.
func (gen *generator) resolve(tok, shift int, reduces []int) (int, int) {
	g := gen.g
	if len(reduces) > 1 {
		gen.stats.RRConflicts += len(reduces) - 1
	}
	if len(reduces) == 0 {
		return shift, 0
	}
	reduce := reduces[0]
	if shift < 0 {
		return -1, reduce
	}

	tokPrec := g.Terms[tok].Prec
	rulePrec := 0
	assoc := grammar.Undefined
	if ps := g.RulePrec(reduce); ps != grammar.NoSymbol {
		rulePrec = g.Terms[ps].Prec
		assoc = g.Terms[ps].Assoc
	}
	if tokPrec == 0 || rulePrec == 0 {
		gen.stats.SRConflicts++
		return shift, 0
	}

	switch {
	case tokPrec > rulePrec:
		return shift, 0
	case tokPrec < rulePrec:
		return -1, reduce
	}
	switch assoc {
	case grammar.Left:
		return -1, reduce
	case grammar.Right:
		return shift, 0
	default:
		return -1, 0
	}
}

func (gen *generator) buildTables() *Tables {
	g := gen.g
	nstates := len(gen.states)
	nterms := g.NumTerms()
	t := &Tables{
		DefRed:    make([]int, nstates),
		Len:       make([]int, len(g.Rules)),
		Lhs:       make([]int, len(g.Rules)),
		Context:   make([]int, len(g.Rules)),
		Actions:   make([]string, len(g.Rules)),
		RuleNames: make([]string, len(g.Rules)),
		TermNames: make([]string, nterms),
		Start:     g.Nonterm(g.Start()),
	}
	for i, r := range g.Rules {
		t.Len[i] = len(r.Rhs)
		t.Lhs[i] = g.Nonterm(r.Lhs)
		t.Context[i] = r.Context
		t.Actions[i] = r.Action
		t.RuleNames[i] = g.RuleString(i)
	}
	for i, term := range g.Terms {
		t.TermNames[i] = term.Name
	}
	t.Final = gen.states[0].gotos[g.Start()]

	p := newPacker(2*nstates + len(g.Nonterms))
	for _, s := range gen.states {
		reduces := make(map[int][]int)
		for _, c := range s.configs {
			if c.rule == grammar.AcceptRule || c.dot < len(g.Rules[c.rule].Rhs) {
				continue
			}
			for _, tok := range c.follow.ToSlice() {
				reduces[tok] = append(reduces[tok], c.rule)
			}
		}

		actions := make(map[int]action)
		for sym, target := range s.gotos {
			if g.IsTerm(sym) {
				actions[sym] = action{target, 0}
			}
		}
		for tok, rs := range reduces {
			sort.Ints(rs)
			shift := -1
			if a, found := actions[tok]; found {
				shift = a.shift
			}
			sh, red := gen.resolve(tok, shift, rs)
			if sh < 0 && red == 0 {
				delete(actions, tok)
			} else {
				actions[tok] = action{sh, red}
			}
		}

		var shifts, reds []entry
		defRed, count := 0, 0
		sole := true
		for tok, a := range actions {
			if a.reduce == 0 {
				sole = false
				shifts = append(shifts, entry{tok, a.shift})
				continue
			}
			if defRed != 0 && defRed != a.reduce {
				sole = false
			}
			defRed = a.reduce
			if tok != ErrorToken {
				count++
			}
			reds = append(reds, entry{tok, a.reduce})
		}
		if sole && count > 0 {
			t.DefRed[s.index] = defRed
			reds = nil
		}

		p.setVector(s.index, shifts)
		p.setVector(nstates+s.index, reds)
	}

	t.DGoto = make([]int, len(g.Nonterms))
	gotos := make([][]entry, len(g.Nonterms))
	for _, s := range gen.states {
		for sym, target := range s.gotos {
			if nt := g.Nonterm(sym); nt >= 0 {
				gotos[nt] = append(gotos[nt], entry{s.index, target})
			}
		}
	}
	for nt, es := range gotos {
		t.DGoto[nt] = defaultGoto(es)
		var vec []entry
		for _, e := range es {
			if e.to != t.DGoto[nt] {
				vec = append(vec, e)
			}
		}
		p.setVector(2*nstates+nt, vec)
	}

	p.pack(2 * nstates)
	t.SIndex = p.base[:nstates]
	t.RIndex = p.base[nstates : 2*nstates]
	t.GIndex = p.base[2*nstates:]
	t.Table, t.Check = p.table, p.check

	gen.stats.Rules = len(g.Rules)
	gen.stats.Terms = nterms
	gen.stats.Nonterms = len(g.Nonterms)
	gen.stats.TableSize = len(t.Table)
	return t
}

func defaultGoto(es []entry) int {
	counts := make(map[int]int)
	for _, e := range es {
		counts[e.to]++
	}
	best, max := 0, 0
	for _, e := range es {
		c := counts[e.to]
		if c > max || (c == max && e.to < best) {
			best, max = e.to, c
		}
	}
	return best
}
