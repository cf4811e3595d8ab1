// Package cmd implements rbparse commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ava12/rbparse/config"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	opts   = config.Default()
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "rbparse",
	Short: "Ruby 1.8 parser",
	Long: `rbparse turns Ruby 1.8 source into syntax trees.

Trees are printed as s-expressions, YAML documents or canonical Ruby source.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// shownError wraps an error already printed by the command.
type shownError struct {
	error
}

func (e shownError) Unwrap() error {
	return e.error
}

// Execute runs the command line, errors are printed unless they were shown as diagnostics already.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !reported(err) && !errors.As(err, new(shownError)) {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (TOML or YAML, default: $"+config.EnvVar+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose warnings and debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostics")
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	if cfgFile != "" {
		opts, err = config.Load(cfgFile)
	} else {
		opts, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("verbose") {
		opts.Verbose = verbose
	}
	if noColor {
		opts.Color = false
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if cfgFile != "" {
		logger.Debug("config loaded", "file", cfgFile)
	}
	return nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, newRenderer(w, opts).errorStyle.Render(err.Error()))
}
