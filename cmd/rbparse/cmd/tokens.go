package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava12/rbparse/ast"
	"github.com/ava12/rbparse/ident"
	"github.com/ava12/rbparse/parser"
	"github.com/ava12/rbparse/token"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print lexer tokens",
	Long: `Prints the token stream of a file (or stdin) one token per line:
line number, token name, token value and lexer state after the token.

Only the lexer runs, so tokens depending on parser feedback may differ from what the parser sees.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	addCompileFlags(tokensCmd)
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd); err != nil {
		return err
	}

	name := "-"
	var src []byte
	var err error
	if len(args) == 0 {
		src, err = io.ReadAll(cmd.InOrStdin())
	} else {
		name = args[0]
		src, err = os.ReadFile(name)
	}
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout.Duration)
		defer cancel()
	}
	toks, names, err := parser.Tokens(ctx, parser.Input{Name: name, Source: src, Line: opts.StartLine}, newRenderer(cmd.ErrOrStderr(), opts))
	writeTokens(cmd.OutOrStdout(), toks, names)
	return err
}

func writeTokens(w io.Writer, toks []parser.Token, names *ident.Table) {
	for _, t := range toks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.Line, token.Name(token.Kind(t.Kind)), tokenValue(t.Value, names), t.State)
	}
}

func tokenValue(v any, names *ident.Table) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case ident.ID:
		return names.Name(v)
	case ast.Literal:
		return ast.FormatLiteral(v, names)
	case ast.Node:
		return ast.Dump(v, names)
	default:
		return fmt.Sprint(v)
	}
}
