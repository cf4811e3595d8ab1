package lalr

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/ava12/rbparse/diag"
	"github.com/ava12/rbparse/internal/test"
	"github.com/ava12/rbparse/langdef"
	"github.com/ava12/rbparse/token"
)

const calcGrammar = `
%left tPLUS tMINUS;
%left tSTAR2;
%right tUMINUS;

stmts: => empty
     | stmts stmt => append
     ;
stmt: expr '\n'
    | error '\n' => recover
    ;
expr: expr tPLUS expr => add
    | expr tMINUS expr => sub
    | expr tSTAR2 expr => mul
    | tMINUS expr %prec tUMINUS => neg
    | '(' @open expr ')' => paren
    | tINTEGER
    ;
`

func buildTables(t *testing.T, src string) (*Tables, *Stats) {
	t.Helper()
	g, e := langdef.ParseString("calc.y", src, token.Registry{})
	test.Assert(t, e == nil, "grammar error: %v", e)
	tabs, stats, e := Generate(g, &Options{FailOnConflicts: true})
	test.Assert(t, e == nil, "tables error: %v", e)
	return tabs, stats
}

type testToken struct {
	kind  int
	value any
}

type testLexer struct {
	tokens []testToken
	pos    int
	cur    testToken
	line   int
}

func newTestLexer(src string) *testLexer {
	l := &testLexer{line: 1}
	for _, w := range strings.Fields(src) {
		var tt testToken
		switch w {
		case "+":
			tt.kind = int(token.Plus)
		case "-":
			tt.kind = int(token.Minus)
		case "*":
			tt.kind = int(token.Star2)
		case "(", ")":
			tt.kind = int(w[0])
		case "nl":
			tt.kind = '\n'
		default:
			n, _ := strconv.Atoi(w)
			tt = testToken{int(token.Integer), n}
		}
		l.tokens = append(l.tokens, tt)
	}
	return l
}

func (l *testLexer) Advance() bool {
	if l.cur.kind == '\n' {
		l.line++
	}
	if l.pos >= len(l.tokens) {
		l.cur = testToken{}
		return false
	}
	l.cur = l.tokens[l.pos]
	l.pos++
	return true
}

func (l *testLexer) Token() int { return l.cur.kind }
func (l *testLexer) Value() any { return l.cur.value }
func (l *testLexer) Err() error { return nil }
func (l *testLexer) Line() int  { return l.line }

type calc struct {
	t      *Tables
	d      *Driver
	opened int
}

func (c *calc) Reduce(rule int, vs []any) any {
	switch c.t.Actions[rule] {
	case "empty":
		return []int{}
	case "append":
		res := vs[0].([]int)
		if n, ok := vs[1].(int); ok {
			res = append(res, n)
		}
		return res
	case "recover":
		c.d.Recover()
		return nil
	case "add":
		return vs[0].(int) + vs[2].(int)
	case "sub":
		return vs[0].(int) - vs[2].(int)
	case "mul":
		return vs[0].(int) * vs[2].(int)
	case "neg":
		return -vs[1].(int)
	case "open":
		c.opened++
		return c.opened
	case "paren":
		return vs[2]
	}
	return nil
}

func run(t *testing.T, tabs *Tables, src string) ([]int, *diag.Collector, error) {
	t.Helper()
	sink := &diag.Collector{}
	d := NewDriver(tabs, sink, "calc")
	c := &calc{t: tabs, d: d}
	res, e := d.Parse(context.Background(), newTestLexer(src), c)
	if res == nil {
		return nil, sink, e
	}
	return res.([]int), sink, e
}

func TestGenerate(t *testing.T) {
	tabs, stats := buildTables(t, calcGrammar)
	test.ExpectInt(t, 0, stats.SRConflicts)
	test.ExpectInt(t, 0, stats.RRConflicts)
	test.ExpectInt(t, len(tabs.Table), len(tabs.Check))
	test.ExpectInt(t, stats.States, len(tabs.DefRed))

	test.Assert(t, tabs.DefRed[0] != 0, "expecting default reduction in initial state")
	test.ExpectString(t, "stmts:", tabs.RuleNames[tabs.DefRed[0]])

	expected := tabs.Expected(tabs.Final)
	names := make([]string, len(expected))
	for i, tok := range expected {
		names[i] = tabs.TermNames[tok]
	}
	test.ExpectString(t, "'(' error tINTEGER tMINUS", strings.Join(names, " "))
}

func TestCalculate(t *testing.T) {
	tabs, _ := buildTables(t, calcGrammar)
	samples := []struct {
		src      string
		expected string
	}{
		{"", ""},
		{"1 + 2 * 3 nl", "7"},
		{"( 1 + 2 ) * 3 nl", "9"},
		{"1 - 2 - 3 nl", "-4"},
		{"- 2 * 3 nl - ( 4 ) nl", "-6 -4"},
		{"2 * - 3 + 1 nl", "-5"},
	}

	for i, s := range samples {
		res, sink, e := run(t, tabs, s.src)
		if e != nil || sink.HasErrors() {
			t.Errorf("sample #%d: unexpected error %v %v", i, e, sink.All())
			continue
		}
		parts := make([]string, len(res))
		for j, n := range res {
			parts[j] = strconv.Itoa(n)
		}
		got := strings.Join(parts, " ")
		if got != s.expected {
			t.Errorf("sample #%d: expecting %q, got %q", i, s.expected, got)
		}
	}
}

func TestErrorRecovery(t *testing.T) {
	tabs, _ := buildTables(t, calcGrammar)
	res, sink, e := run(t, tabs, "1 + nl 2 nl 3 ) nl 4 nl")
	test.Assert(t, e == nil, "unexpected error: %v", e)
	test.Expect(t, len(res) == 2 && res[0] == 2 && res[1] == 4, []int{2, 4}, res)

	errs := sink.Filter(diag.Error)
	test.ExpectInt(t, 2, len(errs))
	test.ExpectString(t, "syntax error, unexpected '\\n', expecting '(' or tINTEGER or tMINUS", errs[0].Message)
	test.ExpectInt(t, 1, errs[0].Line)
	test.Assert(t, strings.HasPrefix(errs[1].Message, "syntax error, unexpected ')'"), "got %q", errs[1].Message)
	test.ExpectInt(t, 3, errs[1].Line)
}

func TestIrrecoverable(t *testing.T) {
	tabs, _ := buildTables(t, calcGrammar)
	_, sink, e := run(t, tabs, "1 +")
	var ie *diag.IrrecoverableError
	test.Assert(t, errors.As(e, &ie), "expecting IrrecoverableError, got %v", e)
	test.ExpectErrorCode(t, IrrecoverableEofError, e)
	test.ExpectString(t, "irrecoverable syntax error at end-of-file in calc at line 1", e.Error())
	test.ExpectInt(t, 1, len(sink.All()))

	tabs, _ = buildTables(t, "%left tPLUS;\nexpr: expr tPLUS expr => add | tINTEGER;")
	d := NewDriver(tabs, nil, "calc")
	_, e = d.Parse(context.Background(), newTestLexer("1 + +"), &calc{t: tabs, d: d})
	test.ExpectErrorCode(t, IrrecoverableError, e)
}

func TestCancel(t *testing.T) {
	tabs, _ := buildTables(t, calcGrammar)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDriver(tabs, nil, "calc")
	src := strings.Repeat("1 + 2 nl ", 200)
	_, e := d.Parse(ctx, newTestLexer(src), &calc{t: tabs, d: d})
	test.Assert(t, errors.Is(e, context.Canceled), "expecting cancellation, got %v", e)
}

func TestConflicts(t *testing.T) {
	g, e := langdef.ParseString("amb.y", "expr: expr tPLUS expr | tINTEGER;", token.Registry{})
	test.Assert(t, e == nil, "grammar error: %v", e)
	_, stats, e := Generate(g, nil)
	test.Assert(t, e == nil, "unexpected error: %v", e)
	test.ExpectInt(t, 1, stats.SRConflicts)

	_, _, e = Generate(g, &Options{FailOnConflicts: true})
	test.ExpectErrorCode(t, ConflictsError, e)

	g, _ = langdef.ParseString("nonassoc.y", "%nonassoc tEQ;\n%left tPLUS;\nexpr: expr tEQ expr => eq | expr tPLUS expr => add | tINTEGER;", token.Registry{})
	tabs, stats, e := Generate(g, &Options{FailOnConflicts: true})
	test.Assert(t, e == nil, "unexpected error: %v", e)
	test.ExpectInt(t, 0, stats.SRConflicts)

	sink := &diag.Collector{}
	d := NewDriver(tabs, sink, "eq")
	lex := &testLexer{line: 1, tokens: []testToken{
		{int(token.Integer), 1}, {int(token.Eq), nil}, {int(token.Integer), 2}, {int(token.Eq), nil}, {int(token.Integer), 3},
	}}
	_, e = d.Parse(context.Background(), lex, &calc{t: tabs, d: d})
	test.ExpectErrorCode(t, IrrecoverableError, e)
	test.ExpectString(t, "syntax error, unexpected tEQ, expecting $end or tPLUS", sink.All()[0].Message)
}
