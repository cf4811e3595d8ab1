package diag

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ava12/rbparse"
	"github.com/ava12/rbparse/internal/test"
)

func TestCollector(t *testing.T) {
	c := &Collector{}
	c.Report(Diagnostic{Warning, "a.rb", 1, "w1"})
	c.Report(Diagnostic{Error, "a.rb", 2, "e1"})
	c.Report(Diagnostic{Verbose, "a.rb", 3, "v1"})

	test.ExpectInt(t, 3, len(c.All()))
	test.Assert(t, c.HasErrors(), "expecting errors")
	test.ExpectString(t, "e1", strings.Join(c.Messages(Error), ","))
	test.ExpectString(t, "w1", strings.Join(c.Messages(Warning), ","))
	c.Reset()
	test.Assert(t, !c.HasErrors() && len(c.All()) == 0, "collector not reset")
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Error, "a.rb", 7, "syntax error"}
	test.ExpectString(t, "a.rb:7: error: syntax error", d.String())
	test.ExpectString(t, "warning: oops", Diagnostic{Message: "oops"}.String())
}

func TestMulti(t *testing.T) {
	c1, c2 := &Collector{}, &Collector{}
	var n int
	s := Multi(c1, nil, c2, SinkFunc(func(Diagnostic) { n++ }), Discard)
	s.Report(Diagnostic{Message: "x"})
	test.ExpectInt(t, 1, len(c1.All()))
	test.ExpectInt(t, 1, len(c2.All()))
	test.ExpectInt(t, 1, n)
}

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	l.With("compile", "x1").Report(Diagnostic{Error, "a.rb", 3, "boom"})
	out := buf.String()
	for _, part := range []string{"level=ERROR", "msg=boom", "file=a.rb", "line=3", "compile=x1"} {
		test.Assert(t, strings.Contains(out, part), "missing %q in %q", part, out)
	}
}

func TestIrrecoverableError(t *testing.T) {
	var e error = &IrrecoverableError{Err: rbparse.FormatError(rbparse.SyntaxErrors, "irrecoverable syntax error")}
	var ie *IrrecoverableError
	test.Assert(t, errors.As(e, &ie), "expecting IrrecoverableError")
	test.ExpectErrorCode(t, rbparse.SyntaxErrors, e)
	test.ExpectString(t, "irrecoverable syntax error", e.Error())
}
