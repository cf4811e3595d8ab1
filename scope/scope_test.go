package scope

import (
	"testing"

	"github.com/ava12/rbparse/ident"
	"github.com/ava12/rbparse/internal/test"
)

func TestFrames(t *testing.T) {
	names := ident.NewTable()
	a, b := names.Intern("a"), names.Intern("b")
	s := New()
	s.Push(true)
	test.ExpectInt(t, 0, s.Cnt(a))
	test.ExpectInt(t, 0, s.Cnt(a))
	test.Assert(t, s.Defined(a) && !s.Defined(b), "expecting only a defined")

	s.Push(false)
	test.Assert(t, !s.Defined(a), "a must not leak into nested frame")
	s.Cnt(b)
	test.ExpectInt(t, 2, s.Depth())
	inner := s.Pop()
	test.Expect(t, len(inner) == 1 && inner[0] == b, []ident.ID{b}, inner)
	test.Assert(t, s.Defined(a), "a must be visible again")

	outer := s.Pop()
	test.ExpectInt(t, 1, len(outer))
	test.Assert(t, s.Pop() == nil, "extra pop must return nil")
	pushes, pops := s.Counts()
	test.ExpectInt(t, 2, pushes)
	test.ExpectInt(t, 2, pops)
}

func TestBlockVariables(t *testing.T) {
	names := ident.NewTable()
	x, y := names.Intern("x"), names.Intern("y")
	s := New()
	s.Push(true)
	test.Assert(t, !s.InBlock(), "must not be in block")

	m1 := s.DynaPush()
	s.DynaAdd(x)
	test.Assert(t, s.InBlock() && s.DynaCurrent(x), "x must be current")

	m2 := s.DynaPush()
	test.ExpectInt(t, 2, s.DLev())
	test.Assert(t, s.DynaDefined(x) && !s.DynaCurrent(x), "x must be visible, but not current")
	s.DynaAdd(y)
	test.Expect(t, len(s.DynaVars(m2)) == 1, 1, len(s.DynaVars(m2)))
	s.DynaPop(m2)
	test.Assert(t, !s.DynaDefined(y), "y must be gone")

	vars := s.DynaVars(m1)
	test.Expect(t, len(vars) == 1 && vars[0] == x, []ident.ID{x}, vars)
	s.DynaPop(m1)
	test.Assert(t, !s.InBlock() && !s.DynaDefined(x), "x must be gone")
}

func TestNestedFrameCutsBlockChain(t *testing.T) {
	names := ident.NewTable()
	x := names.Intern("x")
	s := New()
	s.Push(true)
	m := s.DynaPush()
	s.DynaAdd(x)
	s.Push(false)
	test.Assert(t, !s.DynaDefined(x), "block variable must not be visible in method body")
	test.Assert(t, !s.InBlock(), "new frame starts outside blocks")
	s.Pop()
	test.Assert(t, s.DynaDefined(x), "block variable must be visible again")
	s.DynaPop(m)
	s.Pop()
}

func TestReset(t *testing.T) {
	s := New()
	s.Push(true)
	s.DynaPush()
	s.Reset()
	pushes, pops := s.Counts()
	test.Assert(t, pushes == 0 && pops == 0 && s.Depth() == 0 && !s.InBlock(), "scope not reset")
}
