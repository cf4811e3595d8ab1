package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ava12/rbparse/internal/test"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	opts := Default()
	test.ExpectBool(t, true, opts.Warnings)
	test.ExpectBool(t, false, opts.Verbose)
	test.ExpectInt(t, 1, opts.StartLine)
	test.ExpectString(t, FormatSexp, opts.Format)
	test.Assert(t, opts.Validate() == nil, "default options must be valid")
}

func TestLoad(t *testing.T) {
	samples := []struct {
		name, content string
		check         func(o Options) bool
	}{
		{"a.toml", "verbose = true\ntimeout = \"2s\"\n", func(o Options) bool {
			return o.Verbose && o.Timeout.Duration == 2*time.Second && o.Warnings
		}},
		{"a.conf", "format = \"ruby\"\nstart_line = 10\n", func(o Options) bool {
			return o.Format == FormatRuby && o.StartLine == 10
		}},
		{"a.yaml", "eval: true\nwarnings: false\n", func(o Options) bool {
			return o.Eval && !o.Warnings && o.Format == FormatSexp
		}},
		{"a.yml", "history: /tmp/h\ntimeout: 150ms\n", func(o Options) bool {
			return o.History == "/tmp/h" && o.Timeout.Duration == 150*time.Millisecond
		}},
		{"empty.yaml", "", func(o Options) bool {
			return o == Default()
		}},
	}

	for i, s := range samples {
		t.Run(s.name, func(t *testing.T) {
			opts, err := Load(writeFile(t, s.name, s.content))
			if err != nil {
				t.Fatalf("sample #%d: unexpected error: %s", i, err)
			}
			if !s.check(opts) {
				t.Errorf("sample #%d: unexpected options: %+v", i, opts)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	samples := []struct {
		name, content, message string
	}{
		{"a.toml", "unknown = 1\n", "unknown option"},
		{"a.toml", "verbose = \n", "failed to parse"},
		{"a.yaml", "colour: true\n", "failed to parse"},
		{"a.toml", "format = \"xml\"\n", "unknown output format"},
		{"a.toml", "start_line = 0\n", "start line"},
		{"a.toml", "timeout = \"soon\"\n", "failed to parse"},
	}

	for i, s := range samples {
		_, err := Load(writeFile(t, s.name, s.content))
		if err == nil {
			t.Errorf("sample #%d: error expected", i)
		} else if !strings.Contains(err.Error(), s.message) {
			t.Errorf("sample #%d: expecting %q in error, got %q", i, s.message, err.Error())
		}
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	test.Assert(t, err != nil && strings.Contains(err.Error(), "failed to read"), "missing file error expected, got %v", err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvVar, "")
	opts, err := LoadFromEnv()
	test.Assert(t, err == nil && opts == Default(), "defaults expected, got %+v, %v", opts, err)

	t.Setenv(EnvVar, writeFile(t, "env.toml", "color = false\n"))
	opts, err = LoadFromEnv()
	test.Assert(t, err == nil, "unexpected error: %v", err)
	test.ExpectBool(t, false, opts.Color)
}

func TestEncode(t *testing.T) {
	opts := Default()
	opts.Timeout.Duration = 3 * time.Second
	buf := &bytes.Buffer{}
	test.Assert(t, opts.Encode(buf) == nil, "encoding failed")

	var got Options
	test.Assert(t, Decode(buf.Bytes(), "toml", &got) == nil, "decoding failed: %s", buf.String())
	test.Expect(t, got == opts, opts, got)
}
