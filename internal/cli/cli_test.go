package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/dantetool/internal/cli"
	"github.com/yaklabco/dantetool/internal/configloader"
)

func testInfo() cli.BuildInfo {
	return cli.BuildInfo{Version: "test", Commit: "test", Date: "test"}
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	require.NotNil(t, cmd)

	assert.Equal(t, "dantetool", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, name := range []string{"debug", "config", "color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing persistent flag %q", name)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	subcommands := []string{
		"align", "compare", "gallery", "check", "strip", "pickup", "concat",
		"replace", "show", "fix", "tokenize", "split", "index", "init", "version",
	}
	for _, name := range subcommands {
		sub, _, err := cmd.Find([]string{name})
		if assert.NoError(t, err, "subcommand %q", name) {
			assert.Equal(t, name, sub.Name())
		}
	}

	for _, name := range []string{"build", "events", "stats"} {
		sub, _, err := cmd.Find([]string{"index", name})
		if assert.NoError(t, err, "index subcommand %q", name) {
			assert.Equal(t, name, sub.Name())
		}
	}
}

func TestCommandFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command []string
		flags   []string
	}{
		{[]string{"align"}, []string{"root", "tokenize-dir", "span", "jobs", "format", "strict", "rows", "no-events", "use-tokens"}},
		{[]string{"compare"}, []string{"output", "format", "html", "use-tokens", "strict", "dry-run"}},
		{[]string{"gallery"}, []string{"lang", "file", "output"}},
		{[]string{"check"}, []string{"backup", "jobs", "diff"}},
		{[]string{"strip"}, []string{"diff"}},
		{[]string{"replace"}, []string{"diff"}},
		{[]string{"pickup"}, []string{"tables"}},
		{[]string{"fix"}, []string{"columns", "diff"}},
		{[]string{"index", "build"}, []string{"use-tokens", "index"}},
		{[]string{"index", "events"}, []string{"kind", "model"}},
		{[]string{"init"}, []string{"force", "full", "output"}},
	}

	root := cli.NewRootCommand(testInfo())
	for _, tt := range tests {
		sub, _, err := root.Find(tt.command)
		require.NoError(t, err)
		for _, name := range tt.flags {
			assert.NotNil(t, sub.Flag(name), "%v: missing flag %q", tt.command, name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1.2.3")
	assert.Contains(t, out.String(), "abc123")
}

func TestHelpListsEnvironment(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--color", "never", "--help"})

	require.NoError(t, cmd.Execute())
	help := out.String()
	assert.Contains(t, help, "Available Commands:")
	assert.Contains(t, help, "Environment:")
	assert.Contains(t, help, "DANTETOOL_TOKENIZE_DIR")
}

func TestUsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"align", "--bogus"}},
		{"missing args", []string{"show"}},
		{"too many args", []string{"gallery", "a", "b", "-l", "en"}},
		{"missing lang", []string{"gallery", "top"}},
		{"missing columns", []string{"fix", "a.xml", "dir"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := cli.NewRootCommand(testInfo())
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.ErrorIs(t, err, cli.ErrUsage)
			assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, cli.ExitSuccess},
		{"validation", fmt.Errorf("wrapped: %w", cli.ErrValidationFailed), cli.ExitValidationFailed},
		{"usage", fmt.Errorf("%w: bad", cli.ErrUsage), cli.ExitInvalidUsage},
		{"config", fmt.Errorf("%w: bad", cli.ErrConfig), cli.ExitConfigError},
		{"config validation", &configloader.ValidationError{Field: "span", Message: "must not be negative"}, cli.ExitConfigError},
		{"other", errors.New("boom"), cli.ExitInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cli.ExitCode(tt.err))
		})
	}
}
