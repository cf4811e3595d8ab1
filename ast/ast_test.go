package ast

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/ava12/rbparse/ident"
	"github.com/ava12/rbparse/internal/test"
)

func sampleDef(names *ident.Table) *Defn {
	p := Pos{"a.rb", 1}
	a, b, c := names.Intern("a"), names.Intern("b"), names.Intern("c")
	return &Defn{
		Base: At(p),
		Name: names.Intern("foo"),
		Args: &Args{
			Base:     At(p),
			Required: []ident.ID{a},
			Optional: []Node{&LAsgn{Base: At(p), Name: b, Value: &Lit{Base: At(p), Value: Fixnum(1)}}},
			Rest:     c,
			HasRest:  true,
		},
		Body: &Call{
			Base: At(p),
			Recv: &LVar{Base: At(p), Name: a},
			Name: names.Intern("+"),
			Args: &Array{Base: At(p), Elems: []Node{&LVar{Base: At(p), Name: b}}},
		},
		Locals: []ident.ID{a, b, c},
	}
}

func TestDump(t *testing.T) {
	names := ident.NewTable()
	d := sampleDef(names)
	expected := "(defn foo (args (a) ((lasgn b (lit 1))) c true -) " +
		"(call (lvar a) + (array ((lvar b)))) (a b c))"
	test.ExpectString(t, expected, Dump(d, names))
	test.ExpectString(t, "-", Dump(nil, names))
	test.ExpectInt(t, -2, d.Args.Arity())
}

func TestFormatLiteral(t *testing.T) {
	names := ident.NewTable()
	bn, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	samples := []struct {
		lit      Literal
		expected string
	}{
		{Fixnum(-5), "-5"},
		{Bignum{bn}, "123456789012345678901234567890"},
		{Float(2), "2.0"},
		{Float(1.5), "1.5"},
		{Symbol(names.Intern("foo")), ":foo"},
		{Regexp{"a+b", RegexpIgnoreCase | RegexpExtended | KCodeUTF8}, "/a+b/ixu"},
	}
	for i, s := range samples {
		got := FormatLiteral(s.lit, names)
		if got != s.expected {
			t.Errorf("sample #%d: expecting %q, got %q", i, s.expected, got)
		}
	}
}

func TestChildrenAndWalk(t *testing.T) {
	names := ident.NewTable()
	d := sampleDef(names)
	test.ExpectInt(t, 2, len(Children(d)))
	test.ExpectInt(t, 2, len(Children(d.Body)))

	var visited []string
	Walk(d, WalkLtr, func(n Node) (bool, bool) {
		visited = append(visited, TypeName(n))
		return TypeName(n) != "args", true
	})
	test.ExpectString(t, "defn args call lvar array lvar", strings.Join(visited, " "))

	visited = nil
	Walk(d.Body, WalkRtl, func(n Node) (bool, bool) {
		visited = append(visited, TypeName(n))
		return true, true
	})
	test.ExpectString(t, "call array lvar lvar", strings.Join(visited, " "))
}

func TestSelector(t *testing.T) {
	names := ident.NewTable()
	d := sampleDef(names)
	vars := NewSelector().Search(IsA("lvar"), false).Apply(d)
	test.ExpectInt(t, 2, len(vars))

	lits := NewSelector().Search(IsAny(IsA("lit"), IsA("str")), true).Apply(d, d)
	test.ExpectInt(t, 1, len(lits))

	second := NewSelector().Use(NthChildren(-1)).Filter(IsNot(IsA("args"))).Apply(d)
	test.Expect(t, len(second) == 1 && second[0] == d.Body, d.Body, second)
}

func TestParseSelector(t *testing.T) {
	names := ident.NewTable()
	d := sampleDef(names)
	samples := []struct {
		query, types string
	}{
		{"lvar", "lvar lvar"},
		{"defn > args", "args"},
		{"defn>call:0", "lvar"},
		{"call > !lvar", "array"},
		{"args lit,lvar", "lit"},
		{"*", "defn args lasgn lit call lvar array lvar"},
		{"defn > * > *", "lasgn lvar array"},
		{"call:-1 lvar", "lvar"},
		{"str", ""},
	}

	for i, s := range samples {
		sel, e := ParseSelector(s.query)
		if e != nil {
			t.Errorf("sample #%d: unexpected error %v", i, e)
			continue
		}
		var types []string
		for _, n := range sel.Apply(d) {
			types = append(types, TypeName(n))
		}
		if got := strings.Join(types, " "); got != s.types {
			t.Errorf("sample #%d: expecting %q, got %q", i, s.types, got)
		}
	}
}

func TestParseSelectorErrors(t *testing.T) {
	for i, query := range []string{"", "> lvar", "lvar >", "call > > lvar", "lvar:x", "!", "a,,b"} {
		_, e := ParseSelector(query)
		if e == nil {
			t.Errorf("sample #%d: expecting error for %q", i, query)
			continue
		}
		test.ExpectErrorCode(t, BadSelectorError, e)
	}
}

func TestUnpositioned(t *testing.T) {
	names := ident.NewTable()
	d := sampleDef(names)
	test.ExpectInt(t, 0, len(Unpositioned(d)))
	d.Body.(*Call).Args.(*Array).Elems[0].SetPosition(Pos{})
	test.ExpectInt(t, 1, len(Unpositioned(d)))
}

func TestYAML(t *testing.T) {
	names := ident.NewTable()
	buf := &bytes.Buffer{}
	e := WriteYAML(buf, sampleDef(names), names)
	test.Assert(t, e == nil, "unexpected error: %v", e)
	out := buf.String()
	for _, part := range []string{"type: defn", "name: foo", "line: 1", "hasrest: true", "rest: c", "- a"} {
		test.Assert(t, strings.Contains(out, part), "missing %q in\n%s", part, out)
	}
	test.Assert(t, !strings.Contains(out, "block:"), "absent block must be omitted:\n%s", out)
}

func TestPrint(t *testing.T) {
	names := ident.NewTable()
	p := Pos{"a.rb", 1}
	x := names.Intern("x")
	samples := []struct {
		node     Node
		expected string
	}{
		{sampleDef(names), "def foo(a, b = 1, *c)\n  a + b\nend"},
		{&LAsgn{Base: At(p), Name: x, Value: &Call{
			Base: At(p),
			Recv: &Str{Base: At(p), Value: "hello\n  world\n"},
			Name: names.Intern("+"),
			Args: &Array{Base: At(p), Elems: []Node{&Str{Base: At(p), Value: "!"}}},
		}}, `x = "hello\n  world\n" + "!"`},
		{&DStr{Base: At(p), Parts: []Node{
			&Str{Base: At(p), Value: "a\"#{"},
			&EvStr{Base: At(p), Body: &LVar{Base: At(p), Name: x}},
		}}, `"a\"\#{#{x}"`},
		{&LAsgn{Base: At(p), Name: x, Value: &Call{
			Base: At(p),
			Recv: &Str{Base: At(p), Value: "hello\n  world\n", Heredoc: &Heredoc{ID: "EOS", Indent: '~'}},
			Name: names.Intern("+"),
			Args: &Array{Base: At(p), Elems: []Node{&Str{Base: At(p), Value: "!"}}},
		}}, "x = <<~EOS + \"!\"\nhello\n  world\nEOS"},
		{&Block{Base: At(p), Stmts: []Node{
			&DStr{Base: At(p), Heredoc: &Heredoc{ID: "T"}, Parts: []Node{
				&Str{Base: At(p), Value: "a\t\"#{"},
				&EvStr{Base: At(p), Body: &LVar{Base: At(p), Name: x}},
				&Str{Base: At(p), Value: "\n"},
			}},
			&Str{Base: At(p), Value: `a\tb #{x}` + "\n", Heredoc: &Heredoc{ID: "EOS", Indent: '-', Quote: '\''}},
		}}, "<<T\na\\t\"\\#{#{x}\nT\n<<-'EOS'\na\\tb #{x}\nEOS"},
		{&Lit{Base: At(p), Value: Symbol(names.Intern("foo bar"))}, `:"foo bar"`},
		{&Lit{Base: At(p), Value: Symbol(names.Intern("<=>"))}, `:<=>`},
		{&While{Base: At(p), Cond: &True{}, Body: &Break{}, DoWhile: true}, "begin\n  break\nend while true"},
		{&Call{Base: At(p), Recv: &LVar{Name: x}, Name: names.Intern("-@")}, "-x"},
		{&AttrAsgn{Base: At(p), Recv: &LVar{Name: x}, Name: names.Intern("[]="), Args: &Array{Elems: []Node{
			&Lit{Value: Fixnum(1)}, &Lit{Value: Fixnum(2)},
		}}}, "x[1] = 2"},
	}
	for i, s := range samples {
		got := Print(s.node, names)
		if got != s.expected {
			t.Errorf("sample #%d: expecting\n%s\ngot\n%s", i, s.expected, got)
		}
	}
}
