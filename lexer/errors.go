package lexer

import "github.com/ava12/rbparse"

// Error codes of compile-aborting lexical errors.
const (
	UnterminatedStringError = rbparse.LexicalErrors + iota
	UnterminatedHeredocError
	EmbeddedDocError
	IncompleteCharError
	UnknownStringTypeError
	InterpolationError
)
