/*
Package rbparse is the syntactic front end of a Ruby 1.8 interpreter:
it turns Ruby source text into an abstract syntax tree.

Consists of subpackages:
  - ast: syntax tree node types, traversal, dumping and source re-rendering;
  - cmd/rbparse: console utility parsing files, dumping tokens and trees, interactive shell;
  - config: options shared by the console utility and embedding programs;
  - diag: diagnostics sink used by lexer and parser;
  - grammar: grammar description consumed by the table generator;
  - ident: identifier interning and classification;
  - keyword: reserved words table;
  - lalr: LALR(1) table generator and grammar-agnostic parser driver;
  - langdef: converts yacc-like grammar description to grammar.Grammar;
  - lexer: context-sensitive Ruby lexer;
  - lexstate: lexer state and condition/argument bit-stacks shared by lexer and grammar actions;
  - parser: Ruby grammar, grammar actions building syntax tree, Compile entry point;
  - scope: local variable frames and block variable chain;
  - source: source units and line-buffered cursor;
  - token: token kinds.

Typical usage is

	res, e := parser.Compile(ctx, parser.Input{Name: "foo.rb", Source: src})

Each call to Compile owns its own engine instance, so concurrent compiles are safe.
LALR tables are generated once per process from the embedded grammar and shared read-only.
*/
package rbparse

import (
	"fmt"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	GrammarErrors = 1   // used by langdef
	LexicalErrors = 101 // used by lexer
	SyntaxErrors  = 201 // used by lalr driver
	ParserErrors  = 301 // used by parser
	TableErrors   = 401 // used by lalr generator
	QueryErrors   = 501 // used by ast selectors
)

// Error is the error type used by rbparse subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source file or 0.
	Line int

	// Col contains column number in source file or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error.
type SourcePos interface {
	// SourceName returns source file name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name and line will be added to error message if provided (non-zero), col is added if non-zero.
func NewError(code int, msg, name string, line, col int) *Error {
	if name != "" && line != 0 {
		if col != 0 {
			msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
		} else {
			msg += fmt.Sprintf(" in %s at line %d", name, line)
		}
	}
	return &Error{code, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}
