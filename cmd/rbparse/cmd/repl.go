package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/ava12/rbparse"
	"github.com/ava12/rbparse/ast"
	"github.com/ava12/rbparse/diag"
	"github.com/ava12/rbparse/lalr"
	"github.com/ava12/rbparse/lexer"
	"github.com/ava12/rbparse/parser"
)

const (
	promptMain = "rb> "
	promptCont = "rb* "
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive shell",
	Long: `Reads Ruby statements and prints their syntax trees.

Input lines are accumulated until they form a complete program.
Enter :quit or press Ctrl-D to exit, :format NAME switches output format,
:select QUERY prints only matching nodes and :select alone prints whole trees again.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	addCompileFlags(replCmd)
	replCmd.Flags().StringVarP(&format, "format", "f", "", "output format: sexp, yaml or ruby")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, _ []string) error {
	if err := applyFlags(cmd); err != nil {
		return err
	}
	selector = nil
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if opts.History != "" {
		if f, err := os.Open(opts.History); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(opts.History); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			} else {
				logger.Warn("failed to save history", "file", opts.History, "error", err)
			}
		}()
	}

	out := cmd.OutOrStdout()
	diags := newRenderer(cmd.ErrOrStderr(), opts)
	line := opts.StartLine
	for {
		code, ok := readUntilComplete(ctx, ln, line)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if replCommand(out, trimmed) {
				return nil
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if err := compileSource(ctx, "(repl)", []byte(code), out, diags); err != nil && !reported(err) {
			printError(cmd.ErrOrStderr(), err)
		}
		line += strings.Count(code, "\n") + 1
	}
}

// replCommand runs a colon command, returns true to quit.
func replCommand(w io.Writer, command string) bool {
	fields := strings.Fields(command)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true

	case ":format":
		if len(fields) != 2 {
			fmt.Fprintf(w, "current format is %s\n", opts.Format)
			return false
		}
		prev := opts.Format
		opts.Format = fields[1]
		if err := opts.Validate(); err != nil {
			opts.Format = prev
			fmt.Fprintln(w, err.Error())
		}

	case ":select":
		if len(fields) == 1 {
			selector = nil
			return false
		}
		sel, err := ast.ParseSelector(strings.Join(fields[1:], " "))
		if err != nil {
			fmt.Fprintln(w, err.Error())
			return false
		}
		selector = sel

	default:
		fmt.Fprintln(w, "unknown command, type :quit to exit")
	}
	return false
}

func readUntilComplete(ctx context.Context, ln *liner.State, line int) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		text, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C drops accumulated input
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !needsMore(ctx, src, line) {
			return src, true
		}
	}
}

// needsMore tells whether src is an incomplete program that may become valid with more lines.
func needsMore(ctx context.Context, src string, line int) bool {
	c := &diag.Collector{}
	_, err := parser.Compile(ctx, parser.Input{Name: "(repl)", Source: []byte(src), Line: line, Eval: opts.Eval}, parser.WithSink(c))
	return incomplete(err, c.Filter(diag.Error))
}

func incomplete(err error, errs []diag.Diagnostic) bool {
	if err == nil {
		return false
	}

	var re *rbparse.Error
	if errors.As(err, &re) {
		switch re.Code {
		case lexer.UnterminatedStringError, lexer.UnterminatedHeredocError, lexer.EmbeddedDocError, lalr.IrrecoverableEofError:
			return true
		}
	}
	for _, d := range errs {
		if strings.Contains(d.Message, "unexpected $end") {
			return true
		}
	}
	return false
}
