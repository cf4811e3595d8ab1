/*
rbparse is a console utility for the Ruby 1.8 front end.
Usage is

	rbparse [--config <file>] [-v] [--no-color] <command> [flags] [args]

Commands:

	parse    parse files (or stdin) and print syntax trees
	tokens   print the lexer token stream
	grammar  print grammar rules, table statistics or generated tables
	repl     interactive shell printing a syntax tree for each statement
	version  print version information

Options are read from <file> or from the file named by RBPARSE_CONFIG,
command line flags override them.
*/
package main

import (
	"os"

	"github.com/ava12/rbparse/cmd/rbparse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
