// Package ast defines syntax tree nodes built by the parser.
//
// Every node kind is a separate struct type embedding Base, the set of kinds is closed.
// Identifiers are stored as interned ident.ID values, Names resolves them for output.
// Optional child nodes are nil when absent.
package ast

import (
	"math/big"
	"strconv"

	"github.com/ava12/rbparse/ident"
)

// Pos is a node source position.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	return p.File + ":" + strconv.Itoa(p.Line)
}

// Node is implemented by all syntax tree node types of this package only.
type Node interface {
	Position() Pos
	SetPosition(Pos)
	node()
}

// Base is embedded into every node type.
type Base struct {
	Pos Pos
}

// At creates node Base for given position.
func At(p Pos) Base {
	return Base{p}
}

func (b *Base) Position() Pos {
	return b.Pos
}

func (b *Base) SetPosition(p Pos) {
	b.Pos = p
}

func (*Base) node() {}

// Names resolves interned identifiers, *ident.Table implements it.
type Names interface {
	Name(id ident.ID) string
}

// Literal is a value of Lit node.
type Literal interface {
	literal()
}

type Fixnum int64

type Bignum struct {
	Value *big.Int
}

type Float float64

type Symbol ident.ID

// Regexp options.
const (
	RegexpIgnoreCase = 1
	RegexpExtended   = 2
	RegexpMultiline  = 4
	RegexpOnce       = 8

	KCodeNone = 16
	KCodeEUC  = 32
	KCodeSJIS = 48
	KCodeUTF8 = 64
	KCodeMask = 112
)

type Regexp struct {
	Source  string
	Options int
}

func (Fixnum) literal() {}
func (Bignum) literal() {}
func (Float) literal()  {}
func (Symbol) literal() {}
func (Regexp) literal() {}

// statements and blocks

// Block is a statement sequence, it always contains at least two statements.
type Block struct {
	Base
	Stmts []Node
}

type Begin struct {
	Base
	Body Node
}

type Rescue struct {
	Base
	Body   Node
	Bodies []*ResBody
	Else   Node
}

// ResBody is a single rescue clause. Exceptions is nil or Array, Splat, ArgsCat.
type ResBody struct {
	Base
	Exceptions Node
	Body       Node
}

type Ensure struct {
	Base
	Body   Node
	Ensure Node
}

// PreExe is a BEGIN block, PostExe is an END block used as Iter call.
type PreExe struct {
	Base
	Body Node
}

type PostExe struct {
	Base
}

// control flow

type If struct {
	Base
	Cond Node
	Then Node
	Else Node
}

// Case has nil Subject when used without subject expression.
type Case struct {
	Base
	Subject Node
	Whens   []*When
	Else    Node
}

type When struct {
	Base
	Values Node
	Body   Node
}

// While and Until with DoWhile set evaluate body before checking condition.
type While struct {
	Base
	Cond    Node
	Body    Node
	DoWhile bool
}

type Until struct {
	Base
	Cond    Node
	Body    Node
	DoWhile bool
}

// Iter is a method call with a block, Vars is nil or assignment target.
type Iter struct {
	Base
	Vars   Node
	Body   Node
	Call   Node
	Locals []ident.ID
}

type For struct {
	Base
	Vars Node
	Body Node
	Iter Node
}

type Break struct {
	Base
	Value Node
}

type Next struct {
	Base
	Value Node
}

type Redo struct {
	Base
}

type Retry struct {
	Base
}

type Return struct {
	Base
	Value Node
}

type Yield struct {
	Base
	Args  Node
	Splat bool
}

type And struct {
	Base
	Left  Node
	Right Node
}

type Or struct {
	Base
	Left  Node
	Right Node
}

type Not struct {
	Base
	Expr Node
}

type Defined struct {
	Base
	Expr Node
}

// assignments, Value is nil when used as assignment target

// MAsgn is a multiple assignment, Rest is nil, Star or assignment target.
type MAsgn struct {
	Base
	Head  *Array
	Rest  Node
	Value Node
}

// BlockVar is a block parameter list with &block parameter, Vars is nil or assignment target.
type BlockVar struct {
	Base
	Block Node
	Vars  Node
}

// Star is an anonymous splat target.
type Star struct {
	Base
}

type LAsgn struct {
	Base
	Name  ident.ID
	Value Node
}

type DAsgn struct {
	Base
	Name  ident.ID
	Value Node
}

// DAsgnCurr assigns block variable declared at current block level.
type DAsgnCurr struct {
	Base
	Name  ident.ID
	Value Node
}

type GAsgn struct {
	Base
	Name  ident.ID
	Value Node
}

type IAsgn struct {
	Base
	Name  ident.ID
	Value Node
}

// CDecl assigns a constant, Path is Colon2 or Colon3 for scoped constants and nil otherwise.
type CDecl struct {
	Base
	Name  ident.ID
	Path  Node
	Value Node
}

// CVAsgn assigns class variable inside method body, CVDecl elsewhere.
type CVAsgn struct {
	Base
	Name  ident.ID
	Value Node
}

type CVDecl struct {
	Base
	Name  ident.ID
	Value Node
}

// OpAsgn1 is recv[args] op= value.
type OpAsgn1 struct {
	Base
	Recv  Node
	Op    ident.ID
	Args  Node
	Value Node
}

// OpAsgn2 is recv.attr op= value.
type OpAsgn2 struct {
	Base
	Recv  Node
	Attr  ident.ID
	Op    ident.ID
	Value Node
}

// OpAsgnAnd is var &&= value, Head reads the variable, Value assigns it.
type OpAsgnAnd struct {
	Base
	Head  Node
	Value Node
}

type OpAsgnOr struct {
	Base
	Head  Node
	Value Node
}

// AttrAsgn is a setter call used as assignment target.
type AttrAsgn struct {
	Base
	Recv Node
	Name ident.ID
	Args Node
}

// calls, Args is nil or Array, Splat, ArgsCat, ArgsPush, BlockPass

type Call struct {
	Base
	Recv Node
	Name ident.ID
	Args Node
}

type FCall struct {
	Base
	Name ident.ID
	Args Node
}

// VCall is an identifier that may be either local variable or method call.
type VCall struct {
	Base
	Name ident.ID
}

type Super struct {
	Base
	Args Node
}

// ZSuper is super without arguments passing current method arguments.
type ZSuper struct {
	Base
}

type BlockPass struct {
	Base
	Body Node
	Iter Node
}

type Splat struct {
	Base
	Value Node
}

type ToAry struct {
	Base
	Value Node
}

// SValue is a splat used as single value.
type SValue struct {
	Base
	Value Node
}

type ArgsCat struct {
	Base
	Head Node
	Body Node
}

type ArgsPush struct {
	Base
	Head  Node
	Value Node
}

// collections

type Array struct {
	Base
	Elems []Node
}

type ZArray struct {
	Base
}

// Hash keeps keys and values interleaved.
type Hash struct {
	Base
	Pairs []Node
}

type Dot2 struct {
	Base
	Begin Node
	End   Node
}

type Dot3 struct {
	Base
	Begin Node
	End   Node
}

// Flip2 and Flip3 are ranges used as conditions.
type Flip2 struct {
	Base
	Begin Node
	End   Node
}

type Flip3 struct {
	Base
	Begin Node
	End   Node
}

// variables

type LVar struct {
	Base
	Name ident.ID
}

type DVar struct {
	Base
	Name ident.ID
}

type GVar struct {
	Base
	Name ident.ID
}

type IVar struct {
	Base
	Name ident.ID
}

type Const struct {
	Base
	Name ident.ID
}

type CVar struct {
	Base
	Name ident.ID
}

type NthRef struct {
	Base
	Nth int
}

// BackRef is one of $& $` $' $+, Ref holds the character after $.
type BackRef struct {
	Base
	Ref byte
}

type Colon2 struct {
	Base
	Scope Node
	Name  ident.ID
}

type Colon3 struct {
	Base
	Name ident.ID
}

type Self struct {
	Base
}

type Nil struct {
	Base
}

type True struct {
	Base
}

type False struct {
	Base
}

// literals

type Lit struct {
	Base
	Value Literal
}

// Heredoc records the here document a string literal was written as, Print renders such literals back as here documents.
type Heredoc struct {
	// ID is the terminator.
	ID string

	// Indent is '-' or '~' for <<- and <<~ documents, 0 otherwise.
	Indent byte

	// Quote is the quote around the terminator in the opening, 0 if it is bare.
	Quote byte
}

// Opening returns the here document start as written in the source, e.g. <<~EOS or <<-'EOS'.
func (h *Heredoc) Opening() string {
	s := "<<"
	if h.Indent != 0 {
		s += string(h.Indent)
	}
	if h.Quote != 0 {
		return s + string(h.Quote) + h.ID + string(h.Quote)
	}
	return s + h.ID
}

type Str struct {
	Base
	Value   string
	Heredoc *Heredoc `ast:"-"`
}

// DStr parts are Str and EvStr nodes.
type DStr struct {
	Base
	Parts   []Node
	Heredoc *Heredoc `ast:"-"`
}

type XStr struct {
	Base
	Value   string
	Heredoc *Heredoc `ast:"-"`
}

type DXStr struct {
	Base
	Parts   []Node
	Heredoc *Heredoc `ast:"-"`
}

type DRegx struct {
	Base
	Parts   []Node
	Options int
}

// DRegxOnce is an interpolated regexp with /o option.
type DRegxOnce struct {
	Base
	Parts   []Node
	Options int
}

type DSym struct {
	Base
	Parts []Node
}

// EvStr is an interpolated fragment #{...} of a string.
type EvStr struct {
	Base
	Body Node
}

// Match is a regexp literal used as a condition, matched against $_.
type Match struct {
	Base
	Regexp Node
}

// Match2 is regexp-literal =~ value.
type Match2 struct {
	Base
	Regexp Node
	Value  Node
}

// Match3 is value =~ regexp-literal.
type Match3 struct {
	Base
	Regexp Node
	Value  Node
}

// definitions

// Args describes formal arguments. Optional contains assignments of default values.
type Args struct {
	Base
	Required []ident.ID
	Optional []Node
	Rest     ident.ID
	HasRest  bool
	Block    *BlockArg
}

// Arity returns number of required arguments or -(required+1) if there are optional or rest ones.
func (a *Args) Arity() int {
	n := len(a.Required)
	if len(a.Optional) > 0 || a.HasRest {
		return -n - 1
	}
	return n
}

type BlockArg struct {
	Base
	Name ident.ID
}

type Defn struct {
	Base
	Name   ident.ID
	Args   *Args
	Body   Node
	Locals []ident.ID
}

type Defs struct {
	Base
	Recv   Node
	Name   ident.ID
	Args   *Args
	Body   Node
	Locals []ident.ID
}

type Alias struct {
	Base
	New ident.ID
	Old ident.ID
}

// VAlias aliases global variables.
type VAlias struct {
	Base
	New ident.ID
	Old ident.ID
}

type Undef struct {
	Base
	Names []ident.ID
}

// Class Path is Colon2 or Colon3 node.
type Class struct {
	Base
	Path   Node
	Super  Node
	Body   Node
	Locals []ident.ID
}

type Module struct {
	Base
	Path   Node
	Body   Node
	Locals []ident.ID
}

type SClass struct {
	Base
	Recv   Node
	Body   Node
	Locals []ident.ID
}
