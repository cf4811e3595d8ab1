package lalr

import (
	"context"
	"strings"

	"github.com/ava12/rbparse"
	"github.com/ava12/rbparse/diag"
)

// Lexer supplies tokens to Driver.
type Lexer interface {
	// Advance fetches next token, returns false at the end of input or on fatal error.
	Advance() bool
	// Token returns current token kind.
	Token() int
	// Value returns current token value.
	Value() any
	// Err returns fatal lexical error or nil.
	Err() error
	// Line returns current line number.
	Line() int
}

// Actions performs semantic actions.
type Actions interface {
	// Reduce is called on reducing rule, values holds Tables.Context[rule] topmost stack values.
	// Returned value replaces reduced values on the stack.
	Reduce(rule int, values []any) any
}

const cancelCheckInterval = 256

// Driver runs LALR parser over Tables. Driver keeps parse state and must not be shared between goroutines.
//
// Error recovery follows yacc: on the first error a syntax error is reported and the parser pops
// states until one of them shifts the error token; three more tokens must be shifted before
// next error is reported, tokens causing errors meanwhile are discarded.
type Driver struct {
	t       *Tables
	sink    diag.Sink
	name    string
	lex     Lexer
	errFlag int
	states  []int
	values  []any
}

func NewDriver(t *Tables, sink diag.Sink, name string) *Driver {
	if sink == nil {
		sink = diag.Discard
	}
	return &Driver{t: t, sink: sink, name: name}
}

// Recover leaves error recovery mode, actions of error rules may call it.
func (d *Driver) Recover() {
	d.errFlag = 0
}

// Reset releases parse stacks.
func (d *Driver) Reset() {
	d.lex = nil
	d.errFlag = 0
	d.states = nil
	d.values = nil
}

func (d *Driver) fatal(code int, msg string) error {
	return &diag.IrrecoverableError{Err: rbparse.NewError(code, msg, d.name, d.lex.Line(), 0)}
}

func (d *Driver) nextToken() int {
	if d.lex.Advance() {
		return d.lex.Token()
	}
	return 0
}

func (d *Driver) syntaxError(state, token int) {
	msg := "syntax error"
	if token >= 0 && token < len(d.t.TermNames) {
		msg += ", unexpected " + d.t.TermNames[token]
	}
	expected := d.t.Expected(state)
	if len(expected) > 0 && len(expected) < 5 {
		names := make([]string, len(expected))
		for i, tok := range expected {
			names[i] = d.t.TermNames[tok]
		}
		msg += ", expecting " + strings.Join(names, " or ")
	}
	d.sink.Report(diag.Diagnostic{Severity: diag.Error, File: d.name, Line: d.lex.Line(), Message: msg})
}

// Parse runs the parser, it returns the value of start nonterminal.
// Returned error is context error, lexer fatal error, or *diag.IrrecoverableError.
func (d *Driver) Parse(ctx context.Context, lex Lexer, actions Actions) (any, error) {
	t := d.t
	d.lex = lex
	d.errFlag = 0
	d.states = d.states[:0]
	d.values = d.values[:0]

	var val any
	state := 0
	token := -1
	steps := 0

	for top := 0; ; top++ {
		d.states = append(d.states[:top], state)
		d.values = append(d.values[:top], val)

	discarded:
		for {
			steps++
			if steps%cancelCheckInterval == 0 {
				if e := ctx.Err(); e != nil {
					return nil, e
				}
			}

			rule := t.DefRed[state]
			if rule == 0 {
				if token < 0 {
					token = d.nextToken()
					if e := lex.Err(); e != nil {
						return nil, e
					}
				}

				if target, found := lookup(t, t.SIndex[state], token); found {
					state = target
					val = lex.Value()
					token = -1
					if d.errFlag > 0 {
						d.errFlag--
					}
					break discarded
				}

				if r, found := lookup(t, t.RIndex[state], token); found {
					rule = r
				} else {
					switch d.errFlag {
					case 0:
						d.syntaxError(state, token)
						fallthrough

					case 1, 2:
						d.errFlag = 3
						for ; top >= 0; top-- {
							if target, found := lookup(t, t.SIndex[d.states[top]], ErrorToken); found {
								state = target
								val = lex.Value()
								break
							}
						}
						if top < 0 {
							return nil, d.fatal(IrrecoverableError, "irrecoverable syntax error")
						}
						break discarded

					case 3:
						if token == 0 {
							return nil, d.fatal(IrrecoverableEofError, "irrecoverable syntax error at end-of-file")
						}
						token = -1
						continue discarded
					}
				}
			}

			n := t.Len[rule]
			ctxLen := t.Context[rule]
			values := d.values[top+1-ctxLen : top+1]
			if n > 0 {
				val = values[ctxLen-n]
			} else {
				val = nil
			}
			if t.Actions[rule] != "" {
				val = actions.Reduce(rule, values)
			}

			top -= n
			state = d.states[top]
			lhs := t.Lhs[rule]
			if state == 0 && lhs == t.Start {
				state = t.Final
				if token < 0 {
					token = d.nextToken()
					if e := lex.Err(); e != nil {
						return nil, e
					}
				}
				if token == 0 {
					return val, nil
				}
				break discarded
			}

			state = t.Goto(state, lhs)
			break discarded
		}
	}
}
