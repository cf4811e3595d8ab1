// Package lexstate holds the disambiguation context shared by lexer and grammar actions.
package lexstate

type State int

const (
	Beg    State = iota // ignore newline, +/- is a sign
	End                 // newline significant, +/- is an operator
	Arg                 // newline significant, +/- is an operator
	CmdArg              // newline significant, +/- is an operator
	EndArg              // newline significant, +/- is an operator
	Mid                 // newline significant, +/- is a sign
	FName               // ignore newline, no reserved words
	Dot                 // right after `.' or `::', no reserved words
	Class               // immediate after `class', no here document
)

var stateNames = [...]string{"BEG", "END", "ARG", "CMDARG", "ENDARG", "MID", "FNAME", "DOT", "CLASS"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "?"
	}
	return stateNames[s]
}

// IsArg tells whether the state is an argument position.
func (s State) IsArg() bool {
	return s == Arg || s == CmdArg
}

// Stack is a bit-stack with a nesting counter.
// Bits deeper than 64 levels are lost, the same way a machine word stack loses them.
type Stack struct {
	bits uint64
	nest int
}

func (s *Stack) Push(bit bool) {
	s.bits <<= 1
	if bit {
		s.bits |= 1
	}
	s.nest++
}

func (s *Stack) Pop() {
	s.bits >>= 1
	if s.nest > 0 {
		s.nest--
	}
}

// LexPop pops the top bit and or's it into the new top.
func (s *Stack) LexPop() {
	top := s.bits & 1
	s.bits = (s.bits >> 1) | top
	if s.nest > 0 {
		s.nest--
	}
}

// IsSet returns the top bit.
func (s *Stack) IsSet() bool {
	return s.bits&1 != 0
}

func (s *Stack) Nest() int {
	return s.nest
}

// Save returns the raw stack so it can be restored after a nested construct.
func (s *Stack) Save() Stack {
	return *s
}

func (s *Stack) Restore(saved Stack) {
	*s = saved
}

func (s *Stack) Reset() {
	*s = Stack{}
}

// Context is the mutable state shared by lexer and grammar actions of one compilation.
type Context struct {
	State        State
	Cond         Stack
	CmdArg       Stack
	CommandStart bool
}

func New() *Context {
	return &Context{State: Beg, CommandStart: true}
}

// Reset returns context to its initial state.
func (c *Context) Reset() {
	*c = Context{State: Beg, CommandStart: true}
}

// Set forces lexer state, grammar actions use it at fixed grammar points.
func (c *Context) Set(s State) {
	c.State = s
}

func (c *Context) Is(states ...State) bool {
	for _, s := range states {
		if c.State == s {
			return true
		}
	}
	return false
}
