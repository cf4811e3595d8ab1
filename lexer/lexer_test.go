package lexer

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ava12/rbparse/ast"
	"github.com/ava12/rbparse/diag"
	"github.com/ava12/rbparse/ident"
	"github.com/ava12/rbparse/internal/test"
	"github.com/ava12/rbparse/lexstate"
	"github.com/ava12/rbparse/scope"
	"github.com/ava12/rbparse/source"
	"github.com/ava12/rbparse/token"
)

func newLexer(src string, cfg Config) (*Lexer, *diag.Collector) {
	c := &diag.Collector{}
	if cfg.Sink == nil {
		cfg.Sink = c
	}
	cur := source.NewCursor(context.Background(), "test.rb", source.New("test.rb", []byte(src)).Lines(), 1)
	return New(cur, cfg), c
}

func kinds(l *Lexer) []token.Kind {
	var result []token.Kind
	for l.Advance() {
		result = append(result, l.Kind())
	}
	return result
}

// embeddedKinds reads embedded code and returns the names of its tokens as a string node.
func embeddedKinds(cur *source.Cursor, line int) (ast.Node, error) {
	l := NewEmbedded(cur, line, Config{})
	ks := kinds(l)
	return &ast.Str{Value: kindNames(ks)}, l.Err()
}

func kindNames(ks []token.Kind) string {
	names := make([]string, len(ks))
	for i, k := range ks {
		names[i] = token.Name(k)
	}
	return strings.Join(names, " ")
}

type kindSample struct {
	src     string
	kinds   string
	verbose []string
}

func testKindSamples(t *testing.T, samples []kindSample) {
	for i, s := range samples {
		l, c := newLexer(s.src, Config{})
		got := kindNames(kinds(l))
		if got != s.kinds {
			t.Errorf("sample #%d: expecting %q, got %q", i, s.kinds, got)
			continue
		}
		if l.Err() != nil {
			t.Errorf("sample #%d: unexpected error %v", i, l.Err())
		}

		v := c.Messages(diag.Verbose)
		if len(v) != len(s.verbose) {
			t.Errorf("sample #%d: expecting warnings %q, got %q", i, s.verbose, v)
			continue
		}
		for j, m := range s.verbose {
			if !strings.HasPrefix(v[j], m) {
				t.Errorf("sample #%d: expecting warning %q, got %q", i, m, v[j])
			}
		}
	}
}

func TestOperatorDisambiguation(t *testing.T) {
	testKindSamples(t, []kindSample{
		{"a * b", "tIDENTIFIER tSTAR2 tIDENTIFIER", nil},
		{"a *b", "tIDENTIFIER tSTAR tIDENTIFIER", []string{"`*' interpreted as argument prefix"}},
		{"a*b", "tIDENTIFIER tSTAR2 tIDENTIFIER", nil},
		{"*a = b", "tSTAR tIDENTIFIER '=' tIDENTIFIER", nil},
		{"a &b", "tIDENTIFIER tAMPER tIDENTIFIER", []string{"`&' interpreted as argument prefix"}},
		{"a & b", "tIDENTIFIER tAMPER2 tIDENTIFIER", nil},
		{"a -1", "tIDENTIFIER tUMINUS_NUM tINTEGER", []string{"ambiguous first argument"}},
		{"a - 1", "tIDENTIFIER tMINUS tINTEGER", nil},
		{"-x", "tUMINUS tIDENTIFIER", nil},
		{"a +b", "tIDENTIFIER tUPLUS tIDENTIFIER", []string{"ambiguous first argument"}},
		{"a /b/", "tIDENTIFIER tREGEXP", []string{"ambiguous first argument"}},
		{"a / b", "tIDENTIFIER tDIVIDE tIDENTIFIER", nil},
		{"a %w(x)", "tIDENTIFIER tQWORDS", nil},
		{"a % b", "tIDENTIFIER tPERCENT tIDENTIFIER", nil},
		{"a += 1", "tIDENTIFIER tOP_ASGN tINTEGER", nil},
		{"a ||= b", "tIDENTIFIER tOP_ASGN tIDENTIFIER", nil},
		{"a[1]", "tIDENTIFIER '[' tINTEGER tRBRACK", nil},
		{"a [1]", "tIDENTIFIER tLBRACK tINTEGER tRBRACK", nil},
		{"[1]", "tLBRACK tINTEGER tRBRACK", nil},
		{"a::B", "tIDENTIFIER tCOLON2 tCONSTANT", nil},
		{"::B", "tCOLON3 tCONSTANT", nil},
		{"a ? b : c", "tIDENTIFIER '?' tIDENTIFIER ':' tIDENTIFIER", nil},
		{"x = ?a", "tIDENTIFIER '=' tINTEGER", nil},
		{":foo", "tSYMBEG tIDENTIFIER", nil},
		{":foo=", "tSYMBEG tIDENTIFIER", nil},
		{":[]=", "tSYMBEG tASET", nil},
		{"a <=> b", "tIDENTIFIER tCMP tIDENTIFIER", nil},
		{"a << b", "tIDENTIFIER tLSHFT tIDENTIFIER", nil},
		{"a=>b", "tIDENTIFIER tASSOC tIDENTIFIER", nil},
		{"a..b", "tIDENTIFIER tDOT2 tIDENTIFIER", nil},
		{"a...b", "tIDENTIFIER tDOT3 tIDENTIFIER", nil},
		{"foo (1)", "tIDENTIFIER tLPAREN_ARG tINTEGER tRPAREN", nil},
		{"foo(1)", "tIDENTIFIER tLPAREN2 tINTEGER tRPAREN", nil},
		{"(1)", "tLPAREN tINTEGER tRPAREN", nil},
		{"foo {}", "tIDENTIFIER tLCURLY tRCURLY", nil},
		{"{}", "tLBRACE tRCURLY", nil},
		{"a.b!", "tIDENTIFIER tDOT tFID", nil},
		{"def foo=(v)", "kDEF tIDENTIFIER tLPAREN2 tIDENTIFIER tRPAREN", nil},
		{"def +@", "kDEF tUPLUS", nil},
		{"a.class", "tIDENTIFIER tDOT tIDENTIFIER", nil},
		{"foo if bar", "tIDENTIFIER kIF_MOD tIDENTIFIER", nil},
		{"if bar", "kIF tIDENTIFIER", nil},
		{"a rescue b", "tIDENTIFIER kRESCUE_MOD tIDENTIFIER", nil},
		{"a\nb", "tIDENTIFIER '\\n' tIDENTIFIER", nil},
		{"a +\nb", "tIDENTIFIER tPLUS tIDENTIFIER", nil},
		{"a \\\n+ b", "tIDENTIFIER tPLUS tIDENTIFIER", nil},
		{"a # comment\nb", "tIDENTIFIER '\\n' tIDENTIFIER", nil},
		{"$1 $& $foo $-w $_ @a @@b", "tNTH_REF tBACK_REF tGVAR tGVAR tGVAR tIVAR tCVAR", nil},
	})
}

func TestLocalVariableLookahead(t *testing.T) {
	names := ident.NewTable()
	sc := scope.New()
	sc.Push(true)
	sc.Append(names.Intern("a"))

	l, c := newLexer("a *b", Config{Names: names, Scope: sc})
	test.ExpectString(t, "tIDENTIFIER tSTAR2 tIDENTIFIER", kindNames(kinds(l)))
	test.ExpectInt(t, 0, len(c.All()))

	l, _ = newLexer("a -1", Config{Names: names, Scope: sc})
	test.ExpectString(t, "tIDENTIFIER tMINUS tINTEGER", kindNames(kinds(l)))
}

func TestDoDisambiguation(t *testing.T) {
	samples := []struct {
		prepare func(st *lexstate.Context)
		kind    token.Kind
	}{
		{func(st *lexstate.Context) { st.Cond.Push(true) }, token.KwDoCond},
		{func(st *lexstate.Context) { st.CmdArg.Push(true); st.State = lexstate.Arg }, token.KwDoBlock},
		{func(st *lexstate.Context) { st.CmdArg.Push(true); st.State = lexstate.CmdArg }, token.KwDo},
		{func(st *lexstate.Context) { st.State = lexstate.EndArg }, token.KwDoBlock},
		{func(st *lexstate.Context) { st.State = lexstate.End }, token.KwDo},
	}

	for i, s := range samples {
		st := lexstate.New()
		s.prepare(st)
		l, _ := newLexer("do", Config{State: st})
		if !l.Advance() || l.Kind() != s.kind {
			t.Errorf("sample #%d: expecting %s, got %s", i, s.kind, l.Kind())
		}
		if st.State != lexstate.Beg {
			t.Errorf("sample #%d: expecting BEG state, got %s", i, st.State)
		}
	}
}

func TestHeredoc(t *testing.T) {
	src := "x = <<~EOS + \"!\"\n  hello\n    world\nEOS\ny\n"
	l, c := newLexer(src, Config{})
	var values []any
	var lines []int
	var ks []token.Kind
	for l.Advance() {
		ks = append(ks, l.Kind())
		values = append(values, l.Value())
		lines = append(lines, l.Line())
	}
	test.Assert(t, l.Err() == nil, "unexpected error %v", l.Err())
	test.ExpectInt(t, 0, len(c.All()))
	test.ExpectString(t, "tIDENTIFIER '=' tSTRING tPLUS tSTRING '\\n' tIDENTIFIER '\\n'", kindNames(ks))

	s, ok := values[2].(*ast.Str)
	test.Assert(t, ok, "expecting *ast.Str, got %T", values[2])
	test.ExpectString(t, "hello\n  world\n", s.Value)
	test.ExpectString(t, "!", values[4].(*ast.Str).Value)
	test.ExpectInt(t, 1, lines[4])
	test.ExpectInt(t, 5, lines[6])
}

func TestHeredocForms(t *testing.T) {
	samples := []struct {
		src, value, opening string
	}{
		{"<<EOS\na\\tb\nEOS\n", "a\tb\n", "<<EOS"},
		{"<<-EOS\n  a\n  EOS\n", "  a\n", "<<-EOS"},
		{"<<'EOS'\na\\tb #{x}\nEOS\n", "a\\tb #{x}\n", "<<'EOS'"},
		{"<<\"EOS\"\nab\nEOS", "ab\n", "<<\"EOS\""},
		{"<<~EOS\n\t  a\n\t  b\nEOS\n", "a\nb\n", "<<~EOS"},
	}

	for i, s := range samples {
		l, _ := newLexer(s.src, Config{})
		if !l.Advance() || l.Kind() != token.String {
			t.Errorf("sample #%d: expecting string, got %s (%v)", i, l.Kind(), l.Err())
			continue
		}
		str := l.Value().(*ast.Str)
		if str.Value != s.value {
			t.Errorf("sample #%d: expecting %q, got %q", i, s.value, str.Value)
		}
		if str.Heredoc == nil || str.Heredoc.Opening() != s.opening {
			t.Errorf("sample #%d: expecting here document %s, got %v", i, s.opening, str.Heredoc)
		}
	}

	l, _ := newLexer("<<EOS\na#{1}\nEOS\n", Config{Interpolate: embeddedKinds})
	test.Assert(t, l.Advance() && l.Kind() == token.DString, "expecting tDSTRING, got %s (%v)", l.Kind(), l.Err())
	test.Assert(t, l.Value().(*ast.DStr).Heredoc != nil, "expecting here document origin")

	l, c := newLexer("<<EOS\nabc\n", Config{})
	test.ExpectBool(t, false, l.Advance())
	test.ExpectErrorCode(t, UnterminatedHeredocError, l.Err())
	test.ExpectString(t, "can't find string \"EOS\" anywhere before EOF", c.Messages(diag.Error)[0])
}

func TestUnterminated(t *testing.T) {
	samples := []struct {
		src, message string
	}{
		{"x = \"abc", "unterminated string meets end of file"},
		{"x = 'abc\n\n", "unterminated string meets end of file"},
		{"x = /abc", "unterminated regexp meets end of file"},
		{"x = %w(a b", "unterminated string meets end of file"},
		{"x = \"a#{b", "unterminated string meets end of file"},
		{"x = %", "unterminated quoted string meets end of file"},
		{"=begin\nabc\n", "embedded document meets end of file"},
	}

	for i, s := range samples {
		l, c := newLexer(s.src, Config{})
		for n := 0; l.Advance(); n++ {
			if n > 10 {
				t.Fatalf("sample #%d: lexer does not stop", i)
			}
		}
		if l.Err() == nil {
			t.Errorf("sample #%d: expecting error", i)
			continue
		}
		errs := c.Messages(diag.Error)
		if len(errs) != 1 || errs[0] != s.message {
			t.Errorf("sample #%d: expecting single %q, got %q", i, s.message, errs)
		}
		test.ExpectBool(t, false, l.Advance())
	}
}

func TestNumbers(t *testing.T) {
	big1, _ := new(big.Int).SetString("12345678901234567890", 10)
	samples := []struct {
		src   string
		value ast.Literal
	}{
		{"0", ast.Fixnum(0)},
		{"123", ast.Fixnum(123)},
		{"1_000", ast.Fixnum(1000)},
		{"0x1F", ast.Fixnum(31)},
		{"0b101", ast.Fixnum(5)},
		{"017", ast.Fixnum(15)},
		{"0o17", ast.Fixnum(15)},
		{"0d19", ast.Fixnum(19)},
		{"+5", ast.Fixnum(5)},
		{"3.25", ast.Float(3.25)},
		{"1e3", ast.Float(1000)},
		{"2.5e-1", ast.Float(0.25)},
		{"?a", ast.Fixnum('a')},
		{"?\\n", ast.Fixnum('\n')},
		{"?\\C-a", ast.Fixnum(1)},
		{"?\\M-a", ast.Fixnum(0xe1)},
	}

	for i, s := range samples {
		l, c := newLexer(s.src, Config{})
		if !l.Advance() {
			t.Errorf("sample #%d: no token, error %v", i, l.Err())
			continue
		}
		if l.Value() != s.value {
			t.Errorf("sample #%d: expecting %v, got %v", i, s.value, l.Value())
		}
		if len(c.All()) != 0 {
			t.Errorf("sample #%d: unexpected diagnostics %v", i, c.All())
		}
	}

	l, _ := newLexer("12345678901234567890", Config{})
	test.Assert(t, l.Advance(), "expecting token")
	b, ok := l.Value().(ast.Bignum)
	test.Assert(t, ok && b.Value.Cmp(big1) == 0, "expecting bignum, got %v", l.Value())
}

func TestNumberErrors(t *testing.T) {
	samples := []struct {
		src, message string
	}{
		{"0x", "numeric literal without digits"},
		{"1__2", "trailing `_' in number"},
		{"1_", "trailing `_' in number"},
		{"019", "Illegal octal digit"},
		{"a .5", "no .<digit> floating literal anymore; put 0 before dot"},
		{"@1", "`@1' is not allowed as an instance variable name"},
		{"@@1", "`@@1' is not allowed as a class variable name"},
		{"a \x01 b", "Invalid char `\\001' in expression"},
	}

	for i, s := range samples {
		l, c := newLexer(s.src, Config{})
		kinds(l)
		errs := c.Messages(diag.Error)
		if len(errs) == 0 || errs[0] != s.message {
			t.Errorf("sample #%d: expecting %q, got %q", i, s.message, errs)
		}
		if l.Err() != nil {
			t.Errorf("sample #%d: unexpected fatal error %v", i, l.Err())
		}
	}
}

func TestStrings(t *testing.T) {
	names := ident.NewTable()
	samples := []struct {
		src  string
		kind token.Kind
		dump string
	}{
		{`'a\'b\n'`, token.String, `(str "a'b\\n")`},
		{`"a\tb\x41\101"`, token.String, `(str "a\tbAA")`},
		{`"x#{1}y"`, token.DString, `(dstr ((str "x") (evstr (str "tINTEGER")) (str "y")))`},
		{`"#@a #$b #@@c"`, token.DString, `(dstr ((evstr (ivar @a)) (str " ") (evstr (gvar $b)) (str " ") (evstr (cvar @@c))))`},
		{`"a#b"`, token.String, `(str "a#b")`},
		{"`ls`", token.XString, `(xstr "ls")`},
		{"%q(a(b)c)", token.String, `(str "a(b)c")`},
		{"%Q[a#{1}]", token.DString, `(dstr ((str "a") (evstr (str "tINTEGER"))))`},
		{"%w(a b\\ c)", token.QWords, `(array ((str "a") (str "b c")))`},
		{"%W(a#{1} b)", token.Words, `(array ((dstr ((str "a") (evstr (str "tINTEGER")))) (str "b")))`},
		{"%w()", token.QWords, `(zarray)`},
		{`:"foo"`, token.DSym, `(lit :foo)`},
		{`:"a#{1}"`, token.DSym, `(dsym ((str "a") (evstr (str "tINTEGER"))))`},
		{"%s(bar)", token.DSym, `(lit :bar)`},
		{`/a\/b/ix`, token.Regexp, `(lit /a\/b/ix)`},
		{`/a#{1}/o`, token.DRegexp, `(dregxonce ((str "a") (evstr (str "tINTEGER"))) 0)`},
		{`%r{a{2}}`, token.Regexp, `(lit /a{2}/)`},
	}

	for i, s := range samples {
		l, c := newLexer(s.src, Config{Names: names, Interpolate: embeddedKinds})
		if !l.Advance() {
			t.Errorf("sample #%d: no token, error %v", i, l.Err())
			continue
		}
		if l.Kind() != s.kind {
			t.Errorf("sample #%d: expecting %s, got %s", i, s.kind, l.Kind())
			continue
		}
		if d := ast.Dump(l.Value().(ast.Node), names); d != s.dump {
			t.Errorf("sample #%d: expecting\n\t%s\ngot\n\t%s", i, s.dump, d)
		}
		if len(c.All()) != 0 {
			t.Errorf("sample #%d: unexpected diagnostics %v", i, c.All())
		}
	}
}

func TestInterpolator(t *testing.T) {
	samples := []struct {
		src, code, rest string
	}{
		{"\"a#{ {1 => \"}\"}[1] }b\"", "tLBRACE tINTEGER tASSOC tSTRING tRCURLY '[' tINTEGER tRBRACK", "b"},
		{"\"#{y =~ /}/}\"", "tIDENTIFIER tMATCH tREGEXP", ""},
		{"\"#{?}}\"", "tINTEGER", ""},
		{"\"#{y # }\n}x\"", "tIDENTIFIER '\\n'", "x"},
		{"\"#{[1].map { |v| \"#{v}\" }}\"", "tLBRACK tINTEGER tRBRACK tDOT tIDENTIFIER tLCURLY tPIPE tIDENTIFIER tPIPE tDSTRING tRCURLY", ""},
		{"\"#{}\"", "", ""},
	}

	for i, s := range samples {
		var codes []string
		interp := func(cur *source.Cursor, line int) (ast.Node, error) {
			n, e := embeddedKinds(cur, line)
			codes = append(codes, n.(*ast.Str).Value)
			return n, e
		}

		l, c := newLexer(s.src, Config{Interpolate: interp})
		if !l.Advance() || l.Kind() != token.DString {
			t.Errorf("sample #%d: expecting tDSTRING, got %s, error %v", i, l.Kind(), l.Err())
			continue
		}
		if len(codes) != 1 || codes[0] != s.code {
			t.Errorf("sample #%d: expecting code %q, got %q", i, s.code, codes)
		}
		parts := l.Value().(*ast.DStr).Parts
		rest := ""
		if str, is := parts[len(parts)-1].(*ast.Str); is {
			rest = str.Value
		}
		if rest != s.rest {
			t.Errorf("sample #%d: expecting trailing text %q, got %q", i, s.rest, rest)
		}
		if len(c.Messages(diag.Error)) != 0 {
			t.Errorf("sample #%d: unexpected errors %v", i, c.Messages(diag.Error))
		}
		test.ExpectBool(t, false, l.Advance())
	}
}

func TestInterpolatorLine(t *testing.T) {
	gotLine := 0
	interp := func(cur *source.Cursor, line int) (ast.Node, error) {
		gotLine = line
		return embeddedKinds(cur, line)
	}

	l, _ := newLexer("\n\"a#{\nb\n}\" c", Config{Interpolate: interp})
	test.Assert(t, l.Advance(), "expecting token, got error %v", l.Err())
	test.ExpectInt(t, 2, gotLine)
	test.ExpectInt(t, 2, l.Line())
	test.Assert(t, l.Advance(), "expecting token, got error %v", l.Err())
	test.Expect(t, l.Kind() == token.Identifier, token.Identifier, l.Kind())
	test.ExpectInt(t, 4, l.Line())
}

func TestEmbeddedDocAndData(t *testing.T) {
	l, _ := newLexer("=begin\nfoo\n=end\nx\n__END__\ndata\n", Config{})
	test.ExpectString(t, "tIDENTIFIER '\\n'", kindNames(kinds(l)))
	test.Assert(t, l.Err() == nil, "unexpected error %v", l.Err())
	test.ExpectInt(t, 6, l.DataLine())
}

func TestCharWarning(t *testing.T) {
	l, c := newLexer("x = ? ", Config{})
	kinds(l)
	test.ExpectString(t, "invalid character syntax; use ?\\s", c.Messages(diag.Warning)[0])
}

func TestDeterminism(t *testing.T) {
	src := "def foo(a, *b, &c)\n  a.each do |x| puts \"#{x}\" end if b[0] =~ /z/\nend\n"
	l1, _ := newLexer(src, Config{})
	l2, _ := newLexer(src, Config{})
	test.ExpectString(t, kindNames(kinds(l1)), kindNames(kinds(l2)))
}
