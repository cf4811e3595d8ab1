package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ava12/rbparse"
	"github.com/ava12/rbparse/ast"
	"github.com/ava12/rbparse/config"
	"github.com/ava12/rbparse/diag"
	"github.com/ava12/rbparse/parser"
)

const debounceDelay = 200 * time.Millisecond

var (
	watch     bool
	format    string
	eval      bool
	startLine int
	timeout   time.Duration
	query     string

	// selector picks the nodes to print, the whole tree is printed if it is nil.
	selector *ast.Selector
)

var parseCmd = &cobra.Command{
	Use:   "parse [file...]",
	Short: "Parse files and print syntax trees",
	Long: `Parses Ruby files and prints their syntax trees, standard input is parsed if no files are given.

With --watch the files are parsed again each time they are written.
With --select only the nodes matching the query are printed, e.g. --select "defn > args"
prints method parameter lists and --select "call:0" prints call receivers.`,
	RunE: runParse,
}

func init() {
	addCompileFlags(parseCmd)
	parseCmd.Flags().BoolVarP(&watch, "watch", "w", false, "parse files again on change")
	parseCmd.Flags().StringVarP(&format, "format", "f", "", "output format: sexp, yaml or ruby")
	parseCmd.Flags().StringVarP(&query, "select", "s", "", "print only nodes matching the query")
	rootCmd.AddCommand(parseCmd)
}

func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&eval, "eval", "e", false, "compile as eval'ed code")
	cmd.Flags().IntVarP(&startLine, "line", "l", 1, "number of the first source line")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "compilation time limit")
}

// applyFlags copies explicitly set flags over configured options.
func applyFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("eval") {
		opts.Eval = eval
	}
	if f.Changed("line") {
		opts.StartLine = startLine
	}
	if f.Changed("timeout") {
		opts.Timeout.Duration = timeout
	}
	if f.Changed("format") {
		opts.Format = format
	}
	return opts.Validate()
}

func runParse(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd); err != nil {
		return err
	}
	selector = nil
	if query != "" {
		var err error
		if selector, err = ast.ParseSelector(query); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	diags := newRenderer(cmd.ErrOrStderr(), opts)

	if len(args) == 0 {
		if watch {
			return errors.New("--watch needs file names")
		}
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		return compileSource(ctx, "-", src, out, diags)
	}

	var failed error
	for _, name := range args {
		if err := compileFile(ctx, name, out, diags); err != nil {
			if !reported(err) {
				printError(cmd.ErrOrStderr(), err)
			}
			failed = shownError{err}
		}
	}
	if !watch {
		return failed
	}
	return watchFiles(ctx, args, func(name string) {
		if err := compileFile(ctx, name, out, diags); err != nil && !reported(err) {
			printError(cmd.ErrOrStderr(), err)
		}
	})
}

// reported tells whether err has already reached the renderer as a diagnostic:
// lexical errors are reported by the lexer and an irrecoverable syntax error follows a reported one.
func reported(err error) bool {
	var ie *diag.IrrecoverableError
	if errors.As(err, &ie) {
		return true
	}
	var re *rbparse.Error
	return errors.As(err, &re) && re.Code >= rbparse.LexicalErrors && re.Code < rbparse.SyntaxErrors
}

func compileFile(ctx context.Context, name string, out io.Writer, diags *renderer) error {
	src, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}
	return compileSource(ctx, name, src, out, diags)
}

func compileSource(ctx context.Context, name string, src []byte, out io.Writer, diags *renderer) error {
	if opts.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout.Duration)
		defer cancel()
	}

	start := time.Now()
	res, err := parser.Compile(ctx, parser.Input{
		Name:   name,
		Source: src,
		Line:   opts.StartLine,
		Eval:   opts.Eval,
	}, parser.WithSink(diags), parser.WithVerbose(opts.Verbose))
	if res == nil {
		return err
	}

	logger.Debug("compiled", "file", name, "compile", res.ID.String(), "locals", len(res.Locals), "duration", time.Since(start))
	if werr := writeResult(out, res, opts.Format); werr != nil {
		return werr
	}
	return err
}

func writeResult(w io.Writer, res *parser.Result, format string) error {
	if selector != nil {
		return writeSelected(w, res, selector.Apply(res.Begin, res.AST), format)
	}

	switch format {
	case config.FormatYAML:
		return writeYAML(w, res)

	case config.FormatRuby:
		if res.Begin != nil {
			fmt.Fprintf(w, "BEGIN {\n%s\n}\n", ast.Print(res.Begin, res.Names))
		}
		if res.AST != nil {
			fmt.Fprintln(w, ast.Print(res.AST, res.Names))
		}

	default:
		if res.Begin != nil {
			fmt.Fprintln(w, "(begin-blocks", ast.Dump(res.Begin, res.Names)+")")
		}
		fmt.Fprintln(w, ast.Dump(res.AST, res.Names))
	}
	return nil
}

// writeSelected prints selected nodes one per line, YAML output is a sequence of nodes.
func writeSelected(w io.Writer, res *parser.Result, nodes []ast.Node, format string) error {
	switch format {
	case config.FormatYAML:
		doc := &yaml.Node{Kind: yaml.SequenceNode}
		for _, n := range nodes {
			doc.Content = append(doc.Content, ast.YAML(n, res.Names))
		}
		return encodeYAML(w, doc)

	case config.FormatRuby:
		for _, n := range nodes {
			fmt.Fprintf(w, "%s:%d: %s\n", n.Position().File, n.Position().Line, ast.Print(n, res.Names))
		}

	default:
		for _, n := range nodes {
			fmt.Fprintf(w, "%s:%d: %s\n", n.Position().File, n.Position().Line, ast.Dump(n, res.Names))
		}
	}
	return nil
}

func writeYAML(w io.Writer, res *parser.Result) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}
	str := func(s string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	}

	add("id", str(res.ID.String()))
	locals := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, l := range res.Locals {
		locals.Content = append(locals.Content, str(l))
	}
	add("locals", locals)
	if res.DataLine > 0 {
		add("data_line", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(res.DataLine)})
	}
	if res.Begin != nil {
		add("begin", ast.YAML(res.Begin, res.Names))
	}
	add("ast", ast.YAML(res.AST, res.Names))
	return encodeYAML(w, doc)
}

func encodeYAML(w io.Writer, doc *yaml.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return enc.Close()
}

// watchFiles calls handler for each written file until ctx is done.
// Events arriving within debounceDelay after the previous one for the same file are skipped.
func watchFiles(ctx context.Context, names []string, handler func(name string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]string, len(names))
	for _, name := range names {
		abs, err := filepath.Abs(name)
		if err != nil {
			return err
		}
		watched[abs] = name
		// editors replace files on save, so the directory is watched
		if err = watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", name, err)
		}
	}
	logger.Info("watching files", "count", len(names))

	debounce := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name, found := watched[event.Name]
			if !found {
				continue
			}
			if last, exists := debounce[name]; exists && time.Since(last) < debounceDelay {
				continue
			}
			debounce[name] = time.Now()
			logger.Debug("file changed", "file", name, "op", event.Op.String())
			handler(name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
