// Package scope tracks local variables while parsing: a stack of frames
// (one per program, class, module, method or singleton method body)
// and a chain of block variables layered on top of the current frame.
package scope

import "github.com/ava12/rbparse/ident"

type frame struct {
	prev  *frame
	names []ident.ID
	index map[ident.ID]int
	dlev  int
	dvars *dvar
}

// dvar is a block variable chain link, zero id marks a block boundary.
type dvar struct {
	id   ident.ID
	next *dvar
}

// Mark is a saved block variable chain position returned by DynaPush.
type Mark struct {
	dvars *dvar
}

// Scope is the local variable state of one compilation.
type Scope struct {
	top    *frame
	dvars  *dvar
	pushes int
	pops   int
}

func New() *Scope {
	return &Scope{}
}

// Push opens a new frame. The block variable chain is cut unless top is set,
// so block variables of an enclosing method are not visible in a nested body.
func (s *Scope) Push(top bool) {
	f := &frame{prev: s.top, dvars: s.dvars, index: make(map[ident.ID]int)}
	s.top = f
	if !top {
		s.dvars = &dvar{}
	}
	s.pushes++
}

// Pop closes the current frame and returns its local table in declaration order.
func (s *Scope) Pop() []ident.ID {
	f := s.top
	if f == nil {
		return nil
	}

	s.top = f.prev
	s.dvars = f.dvars
	s.pops++
	return f.names
}

// Depth returns the number of open frames.
func (s *Scope) Depth() int {
	d := 0
	for f := s.top; f != nil; f = f.prev {
		d++
	}
	return d
}

// Counts returns the number of Push and Pop calls since the last Reset.
func (s *Scope) Counts() (pushes, pops int) {
	return s.pushes, s.pops
}

// Table returns current frame local table.
func (s *Scope) Table() []ident.ID {
	if s.top == nil {
		return nil
	}
	result := make([]ident.ID, len(s.top.names))
	copy(result, s.top.names)
	return result
}

// Cnt returns the index of local variable in current frame, appending it if needed.
func (s *Scope) Cnt(id ident.ID) int {
	if s.top == nil {
		return -1
	}
	if i, found := s.top.index[id]; found {
		return i
	}
	return s.Append(id)
}

// Append adds local variable to current frame and returns its index.
func (s *Scope) Append(id ident.ID) int {
	f := s.top
	if f == nil {
		return -1
	}
	i := len(f.names)
	f.names = append(f.names, id)
	f.index[id] = i
	return i
}

// Defined tells whether id is a local variable of current frame.
func (s *Scope) Defined(id ident.ID) bool {
	if s.top == nil {
		return false
	}
	_, found := s.top.index[id]
	return found
}

// DynaPush opens a block level.
func (s *Scope) DynaPush() Mark {
	m := Mark{s.dvars}
	s.dvars = &dvar{next: s.dvars}
	if s.top != nil {
		s.top.dlev++
	}
	return m
}

// DynaPop closes the block level opened by DynaPush.
func (s *Scope) DynaPop(m Mark) {
	if s.top != nil && s.top.dlev > 0 {
		s.top.dlev--
	}
	s.dvars = m.dvars
}

// InBlock tells whether current position is inside a block of current frame.
func (s *Scope) InBlock() bool {
	return s.top != nil && s.top.dlev > 0
}

// DLev returns block nesting level of current frame.
func (s *Scope) DLev() int {
	if s.top == nil {
		return 0
	}
	return s.top.dlev
}

// DynaAdd declares a block variable at current block level.
func (s *Scope) DynaAdd(id ident.ID) {
	s.dvars = &dvar{id: id, next: s.dvars}
}

// DynaDefined tells whether id is a block variable visible at current position.
func (s *Scope) DynaDefined(id ident.ID) bool {
	for v := s.dvars; v != nil; v = v.next {
		if v.id == id && id != ident.None {
			return true
		}
	}
	return false
}

// DynaCurrent tells whether id is declared at current block level.
func (s *Scope) DynaCurrent(id ident.ID) bool {
	for v := s.dvars; v != nil && v.id != ident.None; v = v.next {
		if v.id == id {
			return true
		}
	}
	return false
}

// DynaVars returns block variables declared since m, oldest first.
func (s *Scope) DynaVars(m Mark) []ident.ID {
	var result []ident.ID
	for v := s.dvars; v != nil && v != m.dvars; v = v.next {
		if v.id != ident.None {
			result = append(result, v.id)
		}
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// Reset drops all frames and block variables and zeroes push/pop counters.
func (s *Scope) Reset() {
	*s = Scope{}
}
