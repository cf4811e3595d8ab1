package lexstate

import (
	"testing"

	"github.com/ava12/rbparse/internal/test"
)

func TestStackPushPop(t *testing.T) {
	var s Stack
	test.Assert(t, !s.IsSet(), "empty stack must have clear top")
	s.Push(true)
	s.Push(false)
	test.Assert(t, !s.IsSet(), "expecting clear top")
	test.ExpectInt(t, 2, s.Nest())
	s.Pop()
	test.Assert(t, s.IsSet(), "expecting set top")
	s.Pop()
	s.Pop()
	test.ExpectInt(t, 0, s.Nest())
}

func TestStackLexPop(t *testing.T) {
	var s Stack
	s.Push(false)
	s.Push(true)
	s.LexPop()
	test.Assert(t, s.IsSet(), "lexpop must keep popped bit in new top")
	test.ExpectInt(t, 1, s.Nest())
}

func TestStackSaveRestore(t *testing.T) {
	var s Stack
	s.Push(true)
	saved := s.Save()
	s.Push(false)
	s.Push(false)
	s.Restore(saved)
	test.Assert(t, s.IsSet(), "expecting restored top")
	test.ExpectInt(t, 1, s.Nest())
}

func TestContextReset(t *testing.T) {
	c := New()
	c.State = FName
	c.Cond.Push(true)
	c.CommandStart = false
	c.Reset()
	test.Assert(t, c.State == Beg && c.CommandStart && c.Cond.Nest() == 0, "context not reset: %+v", c)
	test.Assert(t, c.Is(End, Beg), "expecting Beg in set")
	test.Assert(t, Arg.IsArg() && CmdArg.IsArg() && !End.IsArg(), "wrong arg states")
	test.Expect(t, FName.String() == "FNAME", "FNAME", FName.String())
}
