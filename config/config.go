// Package config holds options of the console utility and embedding programs.
// Options are read from TOML or YAML files, the format is chosen by file extension.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding configuration file path.
const EnvVar = "RBPARSE_CONFIG"

// Output formats.
const (
	FormatSexp = "sexp"
	FormatYAML = "yaml"
	FormatRuby = "ruby"
)

type Options struct {
	// Verbose enables verbose warnings and debug logging.
	Verbose bool `toml:"verbose" yaml:"verbose"`

	// Warnings disables all warnings when false.
	Warnings bool `toml:"warnings" yaml:"warnings"`

	// Eval compiles sources as eval'ed code.
	Eval bool `toml:"eval" yaml:"eval"`

	// StartLine is the number of the first source line.
	StartLine int `toml:"start_line" yaml:"start_line"`

	// Timeout limits a single compilation, zero means no limit.
	Timeout Duration `toml:"timeout" yaml:"timeout"`

	// Format is the syntax tree output format: sexp, yaml or ruby.
	Format string `toml:"format" yaml:"format"`

	// Color enables colored diagnostics.
	Color bool `toml:"color" yaml:"color"`

	// History is the REPL history file, empty to disable history.
	History string `toml:"history" yaml:"history"`
}

// Duration wraps time.Duration for text decoding.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() Options {
	return Options{
		Warnings:  true,
		StartLine: 1,
		Format:    FormatSexp,
		Color:     true,
		History:   defaultHistory(),
	}
}

func defaultHistory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rbparse_history")
}

// Load reads options from file, missing keys keep default values.
func Load(path string) (Options, error) {
	opts := Default()
	content, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read config: %w", err)
	}

	if err = Decode(content, detectFormat(path), &opts); err != nil {
		return opts, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return opts, opts.Validate()
}

// LoadFromEnv reads options from the file named by RBPARSE_CONFIG, defaults are returned if it is not set.
func LoadFromEnv() (Options, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return "toml"
	}
}

// Decode decodes options in given format ("toml" or "yaml") into opts.
func Decode(content []byte, format string, opts *Options) error {
	if format == FormatYAML {
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		err := dec.Decode(opts)
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	md, err := toml.NewDecoder(bytes.NewReader(content)).Decode(opts)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown option %s", undecoded[0].String())
	}
	return nil
}

func (o Options) Validate() error {
	switch o.Format {
	case FormatSexp, FormatYAML, FormatRuby:
	default:
		return fmt.Errorf("unknown output format %q", o.Format)
	}
	if o.StartLine < 1 {
		return fmt.Errorf("start line must be positive, got %d", o.StartLine)
	}
	if o.Timeout.Duration < 0 {
		return fmt.Errorf("negative timeout %s", o.Timeout.Duration)
	}
	return nil
}

// Encode writes options in TOML format.
func (o Options) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(o)
}
