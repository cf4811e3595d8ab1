// Package parser turns Ruby source into syntax trees.
//
// The parser runs the grammar-agnostic lalr.Driver over tables generated from the embedded
// grammar description, grammar actions build ast nodes and keep the lexer context in sync.
package parser

import (
	"context"

	"github.com/google/uuid"

	"github.com/ava12/rbparse/ast"
	"github.com/ava12/rbparse/diag"
	"github.com/ava12/rbparse/ident"
	"github.com/ava12/rbparse/lalr"
	"github.com/ava12/rbparse/lexer"
	"github.com/ava12/rbparse/lexstate"
	"github.com/ava12/rbparse/scope"
	"github.com/ava12/rbparse/source"
)

const maxInterpolationDepth = 64

// Input is a named source unit.
type Input struct {
	// Name is the source name used in diagnostics and __FILE__.
	Name string

	// Source holds complete source text, it is ignored if Lines is set.
	Source []byte

	// Lines supplies source text line by line.
	Lines source.LineSource

	// Line is the number of the first line, 1 if not set.
	Line int

	// Eval relaxes context checks for code compiled by eval.
	Eval bool
}

// Result is a syntax tree with auxiliary data.
type Result struct {
	// ID identifies the compilation in log records.
	ID uuid.UUID

	// AST is the program body, nil for an empty program.
	AST ast.Node

	// Locals lists top level local variables in declaration order.
	Locals []string

	// Begin holds BEGIN blocks of the program, nil if there are none.
	Begin ast.Node

	// Names resolves identifiers of the tree.
	Names *ident.Table

	// DataLine is the line following __END__ or 0.
	DataLine int

	// FramesOpened and FramesClosed count local variable frames.
	FramesOpened, FramesClosed int
}

// Option configures Engine.
type Option func(e *Engine)

// WithSink sets diagnostics receiver. Diagnostics are dropped by default.
// A *diag.Logger sink gets the compilation ID attribute.
func WithSink(s diag.Sink) Option {
	return func(e *Engine) {
		e.out = s
	}
}

// WithVerbose makes diag.Verbose warnings reach the sink.
func WithVerbose(verbose bool) Option {
	return func(e *Engine) {
		e.verbose = verbose
	}
}

// countingSink counts errors passing through and filters verbose warnings.
type countingSink struct {
	sink    diag.Sink
	verbose bool
	errors  int
}

func (s *countingSink) Report(d diag.Diagnostic) {
	switch d.Severity {
	case diag.Error:
		s.errors++
	case diag.Verbose:
		if !s.verbose {
			return
		}
	}
	s.sink.Report(d)
}

type reduceFunc func(rule int, values []any) any

func (f reduceFunc) Reduce(rule int, values []any) any {
	return f(rule, values)
}

// Engine holds the state of one compilation: lexer context, local scopes and grammar action counters.
// Engine may be reused for sequential compilations, it is reset after each one.
type Engine struct {
	t       *lalr.Tables
	actions []action
	out     diag.Sink
	verbose bool

	ctx   context.Context
	name  string
	eval  bool
	sink  *countingSink
	names *ident.Table
	scope *scope.Scope
	st    *lexstate.Context
	lex   *lexer.Lexer
	drv   *lalr.Driver
	kw    keywordIDs

	nested    bool
	depth     int
	baseDepth int
	classNest int
	inDef     int
	inSingle  int
	curMid    ident.ID
	begin     ast.Node
	locals    []ident.ID
}

// NewEngine creates an engine, LALR tables are generated on first call.
func NewEngine(opts ...Option) (*Engine, error) {
	c := loadTables()
	if c.err != nil {
		return nil, c.err
	}

	e := &Engine{t: c.t, actions: c.actions, out: diag.Discard}
	for _, o := range opts {
		o(e)
	}
	if e.out == nil {
		e.out = diag.Discard
	}
	e.st = lexstate.New()
	e.scope = scope.New()
	return e, nil
}

// Compile parses a source unit using a fresh engine.
func Compile(ctx context.Context, in Input, opts ...Option) (*Result, error) {
	e, err := NewEngine(opts...)
	if err != nil {
		return nil, err
	}
	return e.Compile(ctx, in)
}

// Compile parses a source unit.
//
// Returned error is a context error, *rbparse.Error for a lexical error aborting the compilation,
// *diag.IrrecoverableError if the parser could not recover from a syntax error,
// or *rbparse.Error with ErrCompile code if any error was reported to the sink;
// in the last case the partial syntax tree is returned as well.
func (e *Engine) Compile(ctx context.Context, in Input) (*Result, error) {
	defer e.Reset()
	if ctx == nil {
		ctx = context.Background()
	}

	id := uuid.New()
	out := e.out
	if l, is := out.(*diag.Logger); is {
		out = l.With("compile", id.String())
	}
	e.ctx = ctx
	e.name = in.Name
	e.eval = in.Eval
	e.sink = &countingSink{sink: out, verbose: e.verbose}
	e.names = ident.NewTable()
	e.kw = internKeywords(e.names)

	lines := in.Lines
	if lines == nil {
		lines = source.BytesLines(in.Source)
	}
	first := in.Line
	if first <= 0 {
		first = 1
	}
	cur := source.NewCursor(ctx, in.Name, lines, first)
	e.lex = lexer.New(cur, e.lexerConfig())
	e.drv = lalr.NewDriver(e.t, e.sink, in.Name)

	v, err := e.drv.Parse(ctx, e.lex, reduceFunc(e.reduce))
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:       id,
		AST:      asNode(v),
		Locals:   e.names.Names(e.locals),
		Begin:    e.begin,
		Names:    e.names,
		DataLine: e.lex.DataLine(),
	}
	res.FramesOpened, res.FramesClosed = e.scope.Counts()
	if e.sink.errors > 0 {
		return res, compileError(in.Name, e.sink.errors)
	}
	return res, nil
}

// Reset drops the state of the last compilation.
func (e *Engine) Reset() {
	if e.drv != nil {
		e.drv.Reset()
	}
	e.drv = nil
	e.lex = nil
	e.st.Reset()
	e.scope.Reset()
	e.ctx = nil
	e.name = ""
	e.eval = false
	e.sink = nil
	e.names = nil
	e.kw = keywordIDs{}
	e.nested = false
	e.depth = 0
	e.baseDepth = 0
	e.classNest = 0
	e.inDef = 0
	e.inSingle = 0
	e.curMid = ident.None
	e.begin = nil
	e.locals = nil
}

func (e *Engine) lexerConfig() lexer.Config {
	return lexer.Config{
		Names:       e.names,
		Scope:       e.scope,
		State:       e.st,
		Sink:        e.sink,
		Interpolate: e.interpolate,
	}
}

func (e *Engine) reduce(rule int, values []any) any {
	return e.actions[rule](e, values)
}

// interpolate parses code embedded into a string literal, reading it from the cursor of the enclosing lexer.
// The nested parser has its own lexer context but shares names, scopes and counters.
func (e *Engine) interpolate(cur *source.Cursor, line int) (ast.Node, error) {
	if e.depth >= maxInterpolationDepth {
		return nil, nestingTooDeepError(e.name, line)
	}

	sub := &Engine{
		t:         e.t,
		actions:   e.actions,
		out:       e.out,
		verbose:   e.verbose,
		ctx:       e.ctx,
		name:      e.name,
		eval:      e.eval,
		sink:      e.sink,
		names:     e.names,
		scope:     e.scope,
		st:        lexstate.New(),
		kw:        e.kw,
		nested:    true,
		depth:     e.depth + 1,
		classNest: e.classNest,
		inDef:     e.inDef,
		inSingle:  e.inSingle,
		curMid:    e.curMid,
	}
	sub.lex = lexer.NewEmbedded(cur, line, sub.lexerConfig())
	sub.drv = lalr.NewDriver(e.t, e.sink, e.name)
	defer sub.drv.Reset()

	v, err := sub.drv.Parse(e.ctx, sub.lex, reduceFunc(sub.reduce))
	if sub.begin != nil {
		e.begin = e.blockAppend(e.begin, sub.begin)
	}
	if err != nil {
		return nil, err
	}
	return asNode(v), nil
}

// Token is a lexer token with its position and the lexer state after it.
type Token struct {
	Kind  int
	Value any
	Line  int
	State lexstate.State
}

// Tokens runs the lexer alone. Grammar actions adjusting lexer state are not run,
// so the token stream may differ from the one seen by the parser; interpolated code is not parsed.
func Tokens(ctx context.Context, in Input, sink diag.Sink) ([]Token, *ident.Table, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if sink == nil {
		sink = diag.Discard
	}

	lines := in.Lines
	if lines == nil {
		lines = source.BytesLines(in.Source)
	}
	first := in.Line
	if first <= 0 {
		first = 1
	}
	names := ident.NewTable()
	cur := source.NewCursor(ctx, in.Name, lines, first)
	l := lexer.New(cur, lexer.Config{Names: names, Scope: scope.New(), Sink: sink})

	var result []Token
	for l.Advance() {
		result = append(result, Token{l.Token(), l.Value(), l.Line(), l.State().State})
	}
	return result, names, l.Err()
}
