package parser

import (
	_ "embed"
	"log/slog"
	"sync"

	"github.com/ava12/rbparse/grammar"
	"github.com/ava12/rbparse/lalr"
	"github.com/ava12/rbparse/langdef"
	"github.com/ava12/rbparse/token"
)

//go:embed ruby.y
var grammarSource string

// GrammarName is the source name of the embedded grammar description.
const GrammarName = "ruby.y"

type action func(e *Engine, v []any) any

type compiled struct {
	g       *grammar.Grammar
	t       *lalr.Tables
	stats   *lalr.Stats
	actions []action
	err     error
}

var (
	tablesOnce sync.Once
	tables     compiled
)

// GrammarSource returns the embedded grammar description.
func GrammarSource() string {
	return grammarSource
}

func loadTables() *compiled {
	tablesOnce.Do(func() {
		tables = buildTables(slog.Default())
	})
	return &tables
}

func buildTables(logger *slog.Logger) compiled {
	var c compiled
	c.g, c.err = langdef.ParseString(GrammarName, grammarSource, token.Registry{})
	if c.err != nil {
		return c
	}

	c.t, c.stats, c.err = lalr.Generate(c.g, &lalr.Options{Logger: logger})
	if c.err != nil {
		return c
	}

	c.actions = make([]action, len(c.t.Actions))
	for i, name := range c.t.Actions {
		if name == "" {
			continue
		}
		a, found := actionTable[name]
		if !found {
			c.err = unknownActionError(name, c.t.RuleNames[i])
			return c
		}
		c.actions[i] = a
	}
	return c
}

// Tables returns LALR tables of the Ruby grammar, generating them on first call.
// Tables are shared by all compilations and must not be modified.
func Tables() (*lalr.Tables, *lalr.Stats, error) {
	c := loadTables()
	return c.t, c.stats, c.err
}

// Grammar returns the Ruby grammar the tables are generated from.
func Grammar() (*grammar.Grammar, error) {
	c := loadTables()
	return c.g, c.err
}
