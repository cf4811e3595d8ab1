// Package keyword contains the reserved words table.
package keyword

import (
	"github.com/ava12/rbparse/internal/bmap"
	"github.com/ava12/rbparse/lexstate"
	"github.com/ava12/rbparse/token"
)

// Version names the language revision the table describes.
const Version = "1.8"

// Entry describes a reserved word.
// ID[0] is used at the beginning of an expression, ID[1] elsewhere (modifier forms).
// State is the lexer state forced after the word.
type Entry struct {
	Name  string
	ID    [2]token.Kind
	State lexstate.State
}

var entries = []Entry{
	{"__LINE__", [2]token.Kind{token.KwLine, token.KwLine}, lexstate.End},
	{"__FILE__", [2]token.Kind{token.KwFile, token.KwFile}, lexstate.End},
	{"BEGIN", [2]token.Kind{token.KwLBegin, token.KwLBegin}, lexstate.End},
	{"END", [2]token.Kind{token.KwLEnd, token.KwLEnd}, lexstate.End},
	{"alias", [2]token.Kind{token.KwAlias, token.KwAlias}, lexstate.FName},
	{"and", [2]token.Kind{token.KwAnd, token.KwAnd}, lexstate.Beg},
	{"begin", [2]token.Kind{token.KwBegin, token.KwBegin}, lexstate.Beg},
	{"break", [2]token.Kind{token.KwBreak, token.KwBreak}, lexstate.Mid},
	{"case", [2]token.Kind{token.KwCase, token.KwCase}, lexstate.Beg},
	{"class", [2]token.Kind{token.KwClass, token.KwClass}, lexstate.Class},
	{"def", [2]token.Kind{token.KwDef, token.KwDef}, lexstate.FName},
	{"defined?", [2]token.Kind{token.KwDefined, token.KwDefined}, lexstate.Arg},
	{"do", [2]token.Kind{token.KwDo, token.KwDo}, lexstate.Beg},
	{"else", [2]token.Kind{token.KwElse, token.KwElse}, lexstate.Beg},
	{"elsif", [2]token.Kind{token.KwElsif, token.KwElsif}, lexstate.Beg},
	{"end", [2]token.Kind{token.KwEnd, token.KwEnd}, lexstate.End},
	{"ensure", [2]token.Kind{token.KwEnsure, token.KwEnsure}, lexstate.Beg},
	{"false", [2]token.Kind{token.KwFalse, token.KwFalse}, lexstate.End},
	{"for", [2]token.Kind{token.KwFor, token.KwFor}, lexstate.Beg},
	{"if", [2]token.Kind{token.KwIf, token.KwIfMod}, lexstate.Beg},
	{"in", [2]token.Kind{token.KwIn, token.KwIn}, lexstate.Beg},
	{"module", [2]token.Kind{token.KwModule, token.KwModule}, lexstate.Beg},
	{"next", [2]token.Kind{token.KwNext, token.KwNext}, lexstate.Mid},
	{"nil", [2]token.Kind{token.KwNil, token.KwNil}, lexstate.End},
	{"not", [2]token.Kind{token.KwNot, token.KwNot}, lexstate.Beg},
	{"or", [2]token.Kind{token.KwOr, token.KwOr}, lexstate.Beg},
	{"redo", [2]token.Kind{token.KwRedo, token.KwRedo}, lexstate.End},
	{"rescue", [2]token.Kind{token.KwRescue, token.KwRescueMod}, lexstate.Mid},
	{"retry", [2]token.Kind{token.KwRetry, token.KwRetry}, lexstate.End},
	{"return", [2]token.Kind{token.KwReturn, token.KwReturn}, lexstate.Mid},
	{"self", [2]token.Kind{token.KwSelf, token.KwSelf}, lexstate.End},
	{"super", [2]token.Kind{token.KwSuper, token.KwSuper}, lexstate.Arg},
	{"then", [2]token.Kind{token.KwThen, token.KwThen}, lexstate.Beg},
	{"true", [2]token.Kind{token.KwTrue, token.KwTrue}, lexstate.End},
	{"undef", [2]token.Kind{token.KwUndef, token.KwUndef}, lexstate.FName},
	{"unless", [2]token.Kind{token.KwUnless, token.KwUnlessMod}, lexstate.Beg},
	{"until", [2]token.Kind{token.KwUntil, token.KwUntilMod}, lexstate.Beg},
	{"when", [2]token.Kind{token.KwWhen, token.KwWhen}, lexstate.Beg},
	{"while", [2]token.Kind{token.KwWhile, token.KwWhileMod}, lexstate.Beg},
	{"yield", [2]token.Kind{token.KwYield, token.KwYield}, lexstate.Arg},
}

var table *bmap.BMap[*Entry]

func init() {
	names := make([]string, len(entries))
	refs := make([]*Entry, len(entries))
	for i := range entries {
		names[i] = entries[i].Name
		refs[i] = &entries[i]
	}
	table = bmap.New(names, refs)
}

// Lookup returns reserved word entry for the text or nil.
func Lookup(text []byte) *Entry {
	e, _ := table.Get(text)
	return e
}

// All returns all entries in table order.
func All() []Entry {
	result := make([]Entry, len(entries))
	copy(result, entries)
	return result
}

// Len returns the number of reserved words.
func Len() int {
	return table.Len()
}
