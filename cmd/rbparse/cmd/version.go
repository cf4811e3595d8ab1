package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/ava12/rbparse/keyword"
	"github.com/ava12/rbparse/parser"
)

// Version is set at build time with -ldflags "-X github.com/ava12/rbparse/cmd/rbparse/cmd.Version=..."
var Version = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, stats, err := parser.Tables()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rbparse %s (Ruby %s, %d states, %d rules)\n",
			version(), keyword.Version, stats.States, stats.Rules)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "devel"
}
