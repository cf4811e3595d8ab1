package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ava12/rbparse/keyword"
	"github.com/ava12/rbparse/lalr"
	"github.com/ava12/rbparse/parser"
)

var (
	grammarFormat, outFileName, packageName, varName string
)

var grammarCmd = &cobra.Command{
	Use:   "grammar",
	Short: "Print grammar and parsing tables",
	Long: `Prints information about the Ruby grammar and LALR tables generated from it.

Formats:
  summary  table statistics (default)
  yaml     statistics, rules and action names as YAML
  rules    numbered grammar rules
  source   grammar description
  json     packed tables as JSON
  go       packed tables as Go source, see -p and --var`,
	Args: cobra.NoArgs,
	RunE: runGrammar,
}

func init() {
	grammarCmd.Flags().StringVarP(&grammarFormat, "format", "f", "summary", "output format")
	grammarCmd.Flags().StringVarP(&outFileName, "output", "o", "", "output file name, default is stdout")
	grammarCmd.Flags().StringVarP(&packageName, "package", "p", "tables", "Go package name")
	grammarCmd.Flags().StringVar(&varName, "var", "RubyTables", "Go variable name of type *lalr.Tables")
	rootCmd.AddCommand(grammarCmd)
}

func runGrammar(cmd *cobra.Command, _ []string) error {
	t, stats, err := parser.Tables()
	if err != nil {
		return err
	}

	var content []byte
	switch grammarFormat {
	case "summary":
		content = []byte(summary(stats))
	case "yaml":
		content, err = makeYAML(t, stats)
	case "rules":
		content = []byte(rules(t))
	case "source":
		content = []byte(parser.GrammarSource())
	case "json":
		content, err = json.MarshalIndent(t, "", "  ")
	case "go":
		content, err = makeGo(t, packageName, varName)
	default:
		err = fmt.Errorf("unknown grammar format %q", grammarFormat)
	}
	if err != nil {
		return err
	}

	if outFileName == "" {
		_, err = cmd.OutOrStdout().Write(content)
		return err
	}
	if err = os.WriteFile(outFileName, content, 0o666); err != nil {
		return fmt.Errorf("failed to write tables: %w", err)
	}
	return nil
}

func summary(s *lalr.Stats) string {
	return fmt.Sprintf("Ruby %s grammar (%s)\n"+
		"terminals:      %d\nnonterminals:   %d\nrules:          %d\nstates:         %d\n"+
		"table size:     %d\nconflicts:      %d shift/reduce, %d reduce/reduce\n",
		keyword.Version, parser.GrammarName, s.Terms, s.Nonterms, s.Rules, s.States,
		s.TableSize, s.SRConflicts, s.RRConflicts)
}

func rules(t *lalr.Tables) string {
	sb := &strings.Builder{}
	for i, r := range t.RuleNames {
		fmt.Fprintf(sb, "%4d  %s", i, r)
		if t.Actions[i] != "" {
			fmt.Fprintf(sb, "  {%s}", t.Actions[i])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

type yamlRule struct {
	Index  int    `yaml:"index"`
	Rule   string `yaml:"rule"`
	Action string `yaml:"action,omitempty"`
}

type yamlGrammar struct {
	Version string      `yaml:"version"`
	Source  string      `yaml:"source"`
	Stats   *lalr.Stats `yaml:"stats"`
	Rules   []yamlRule  `yaml:"rules"`
}

func makeYAML(t *lalr.Tables, s *lalr.Stats) ([]byte, error) {
	g := yamlGrammar{Version: keyword.Version, Source: parser.GrammarName, Stats: s}
	for i, r := range t.RuleNames {
		g.Rules = append(g.Rules, yamlRule{i, r, t.Actions[i]})
	}
	return yaml.Marshal(&g)
}

var goName = regexp.MustCompile("^[A-Za-z_][A-Za-z_0-9]*$")

func makeGo(t *lalr.Tables, pkg, name string) ([]byte, error) {
	if !goName.MatchString(pkg) {
		return nil, fmt.Errorf("invalid package name: %s", pkg)
	}
	if !goName.MatchString(name) {
		return nil, fmt.Errorf("invalid variable name: %s", name)
	}

	var buffer bytes.Buffer
	buffer.WriteString("// Code generated by rbparse grammar. DO NOT EDIT.\n\n" +
		"package " + pkg + "\n\n" +
		"import \"github.com/ava12/rbparse/lalr\"\n\n" +
		"var " + name + " = &lalr.Tables{\n")

	writeInts(&buffer, "DefRed", t.DefRed)
	writeInts(&buffer, "SIndex", t.SIndex)
	writeInts(&buffer, "RIndex", t.RIndex)
	writeInts(&buffer, "GIndex", t.GIndex)
	writeInts(&buffer, "DGoto", t.DGoto)
	writeInts(&buffer, "Table", t.Table)
	writeInts(&buffer, "Check", t.Check)
	writeInts(&buffer, "Len", t.Len)
	writeInts(&buffer, "Lhs", t.Lhs)
	writeInts(&buffer, "Context", t.Context)
	writeStrings(&buffer, "Actions", t.Actions)
	buffer.WriteString(fmt.Sprintf("\tFinal: %d,\n\tStart: %d,\n", t.Final, t.Start))
	writeStrings(&buffer, "TermNames", t.TermNames)
	writeStrings(&buffer, "RuleNames", t.RuleNames)
	buffer.WriteString("}\n")
	return buffer.Bytes(), nil
}

func writeInts(buffer *bytes.Buffer, field string, items []int) {
	buffer.WriteString("\t" + field + ": []int{")
	for i, v := range items {
		if i%16 == 0 {
			buffer.WriteString("\n\t\t")
		} else {
			buffer.WriteByte(' ')
		}
		buffer.WriteString(fmt.Sprintf("%d,", v))
	}
	buffer.WriteString("\n\t},\n")
}

func writeStrings(buffer *bytes.Buffer, field string, items []string) {
	buffer.WriteString("\t" + field + ": []string{\n")
	for i, s := range items {
		buffer.WriteString(fmt.Sprintf("\t\t%q, // %d\n", s, i))
	}
	buffer.WriteString("\t},\n")
}
