package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		configPath = ""
		logLevel = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", rootCmd.Version)
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "svcctl", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "svcctl version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})

	require.NoError(t, testCmd.Execute())
	assert.Equal(t, "svcctl version 1.0.0\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}

	for _, expected := range []string{"version", "self-update", "run", "check", "list", "config"} {
		assert.True(t, found[expected], "expected subcommand %s to be registered", expected)
	}
}

func TestVersionCommand(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()
	rootCmd.Version = "9.9.9"

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "svcctl version 9.9.9\n", out)
}

func TestListCommand(t *testing.T) {
	path := writeConfig(t, `
services:
  - name: heartbeat
    kind: heartbeat
    enabledByDefault: true
    interval: 2s
`)

	out, err := execute(t, "list", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "heartbeat")
	assert.Contains(t, out, "interval=2s")
	assert.Contains(t, out, "kvstore")
}

func TestConfigShowCommand(t *testing.T) {
	path := writeConfig(t, "container:\n  stopTimeout: 7s\n")

	out, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "stopTimeout: 7s")
	assert.Contains(t, out, "kind: kvstore")
}

func TestConfigValidateCommand(t *testing.T) {
	valid := writeConfig(t, "logging:\n  level: warn\n")
	out, err := execute(t, "config", "validate", "--config", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	invalid := writeConfig(t, "services:\n  - name: q\n    kind: queue\n")
	_, err = execute(t, "config", "validate", "--config", invalid)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), `unknown kind "queue"`))
}

func TestCheckCommand(t *testing.T) {
	path := writeConfig(t, `
services:
  - name: kvstore
    kind: kvstore
    enabledByDefault: true
    startDelay: 5ms
`)

	out, err := execute(t, "check", "--config", path, "--log-level", "error", "--only", "kvstore")
	require.NoError(t, err)
	assert.Contains(t, out, "kvstore")
	assert.Contains(t, out, "Running")
}

func TestCheckCommand_StartFailure(t *testing.T) {
	path := writeConfig(t, `
container:
  readyTimeout: 10ms
services:
  - name: kvstore
    kind: kvstore
    enabledByDefault: true
    startDelay: 1m
`)

	out, err := execute(t, "check", "--config", path, "--log-level", "error", "--only", "kvstore")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service kvstore")
	assert.Contains(t, out, "Starting")
}
