package langdef

import (
	"strings"

	"github.com/ava12/rbparse"
)

const (
	UnexpectedTokenError = rbparse.GrammarErrors + iota
	WrongCharError
	UnknownTerminalError
	TerminalRuleError
	PrecedenceDefinedError
	UndefinedNonTerminalError
	UnusedNonTerminalError
	NoRulesError
	WrongStartError
)

func unexpectedTokenError(t *lexeme) *rbparse.Error {
	if t.tokenType == eofTok {
		return rbparse.FormatErrorPos(t, UnexpectedTokenError, "unexpected end of file")
	}
	return rbparse.FormatErrorPos(t, UnexpectedTokenError, "unexpected %s %q", t.TypeName(), t.text)
}

func wrongCharError(t *lexeme) *rbparse.Error {
	return rbparse.FormatErrorPos(t, WrongCharError, "wrong char %q", t.text)
}

func unknownTerminalError(t *lexeme) *rbparse.Error {
	return rbparse.FormatErrorPos(t, UnknownTerminalError, "unknown terminal %q", t.text)
}

func terminalRuleError(t *lexeme) *rbparse.Error {
	return rbparse.FormatErrorPos(t, TerminalRuleError, "terminal %q cannot have rules", t.text)
}

func precedenceDefinedError(t *lexeme) *rbparse.Error {
	return rbparse.FormatErrorPos(t, PrecedenceDefinedError, "precedence for %q already defined", t.text)
}

func undefinedNonTermError(names []string) *rbparse.Error {
	return rbparse.FormatError(UndefinedNonTerminalError, "undefined non-terminals: %s", strings.Join(names, ", "))
}

func unusedNonTermError(names []string) *rbparse.Error {
	return rbparse.FormatError(UnusedNonTerminalError, "unused non-terminals: %s", strings.Join(names, ", "))
}

func noRulesError(name string) *rbparse.Error {
	return rbparse.FormatError(NoRulesError, "no rules defined in %s", name)
}

func wrongStartError(name string) *rbparse.Error {
	return rbparse.FormatError(WrongStartError, "start symbol %q is not a defined non-terminal", name)
}
