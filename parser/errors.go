package parser

import (
	"strconv"

	"github.com/ava12/rbparse"
)

const (
	ErrCompile = rbparse.ParserErrors + iota
	ErrUnknownAction
	ErrNestingTooDeep
)

func compileError(name string, count int) *rbparse.Error {
	msg := "compile error"
	if count > 1 {
		msg = strconv.Itoa(count) + " compile errors"
	}
	return rbparse.NewError(ErrCompile, msg, name, 0, 0)
}

func unknownActionError(name, rule string) *rbparse.Error {
	return rbparse.FormatError(ErrUnknownAction, "unknown action %q for rule %s", name, rule)
}

func nestingTooDeepError(name string, line int) *rbparse.Error {
	return rbparse.NewError(ErrNestingTooDeep, "string interpolation nested too deeply", name, line, 0)
}
