package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// runCmd executes the root command with fresh flag state.
func runCmd(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	reset := func(cmd *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}
	reset(rootCmd)
	for _, c := range rootCmd.Commands() {
		reset(c)
	}

	out := new(bytes.Buffer)
	rootCmd.SetIn(bytes.NewReader(stdin))
	rootCmd.SetOut(out)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertDefaultsToLatinFallback(t *testing.T) {
	out, err := runCmd(t, []byte("caf\xE9"))
	require.NoError(t, err)
	require.Equal(t, "café", out)
}

func TestConvertFlags(t *testing.T) {
	out, err := runCmd(t, []byte("café"), "-f", "utf-8", "-t", "latin1")
	require.NoError(t, err)
	require.Equal(t, "caf\xE9", out)
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	dst := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte("\x80"), 0o644))

	_, err := runCmd(t, nil, "-f", "windows-1252", "-o", dst, in)
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "€", string(got))
}

func TestConvertStrict(t *testing.T) {
	out, err := runCmd(t, []byte("x"), "-f", "doesnotexist")
	require.NoError(t, err)
	require.Equal(t, "x", out)

	_, err = runCmd(t, []byte("x"), "-f", "doesnotexist", "--strict")
	require.Error(t, err)
}

func TestConvertMaxOutputSize(t *testing.T) {
	_, err := runCmd(t, []byte("abc"), "--max-output-size", "8")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "allocate"), err.Error())
}

func TestConvertConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("from: utf-8\nto: latin1\n"), 0o644))

	out, err := runCmd(t, []byte("é"), "--config", path)
	require.NoError(t, err)
	require.Equal(t, "\xE9", out)

	// Flags win over the file.
	out, err = runCmd(t, []byte("é"), "--config", path, "-t", "utf-16le")
	require.NoError(t, err)
	require.Equal(t, "\xE9\x00", out)
}

func TestDecodeEncode(t *testing.T) {
	out, err := runCmd(t, []byte("\x80"), "decode", "latin1")
	require.NoError(t, err)
	require.Equal(t, "€", out)

	out, err = runCmd(t, []byte("日本"), "encode", "shift_jis")
	require.NoError(t, err)
	require.Equal(t, "\x93\xfa\x96\x7b", out)

	_, err = runCmd(t, nil, "decode", "doesnotexist")
	require.Error(t, err)
}

func TestReadConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := ReadConfig("")
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)

	_, err = ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("from: [unterminated"), 0o644))
	_, err = ReadConfig(path)
	require.Error(t, err)

	path = filepath.Join(t.TempDir(), "full.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"from: latin1\nto: utf-8\nstrict: true\nmax-output-size: 1024\nlog-level: debug\n"), 0o644))
	cfg, err = ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, Config{From: "latin1", To: "utf-8", Strict: true, MaxOutputSize: 1024, LogLevel: "debug", Backend: "go"}, cfg)
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := newLogger("loud", false)
	require.Error(t, err)

	l, err := newLogger("loud", true)
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestBackend(t *testing.T) {
	out, err := runCmd(t, []byte("caf\xE9"), "--backend", "go")
	require.NoError(t, err)
	require.Equal(t, "café", out)

	_, err = runCmd(t, []byte("x"), "--backend", "nosuchbackend")
	require.Error(t, err)
	require.Contains(t, err.Error(), "go")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: nosuchbackend\n"), 0o644))
	_, err = runCmd(t, []byte("x"), "--config", path)
	require.Error(t, err)
}

func TestConvertIconvNames(t *testing.T) {
	out, err := runCmd(t, []byte("café"), "-f", "utf-8", "-t", "ascii")
	require.NoError(t, err)
	require.Equal(t, "caf", out)

	out, err = runCmd(t, []byte("a"), "-f", "utf-8", "-t", "UTF-32LE")
	require.NoError(t, err)
	require.Equal(t, "a\x00\x00\x00", out)
}
