package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "namedump", cmd.Use)
	assert.Contains(t, cmd.Long, "$HASH.ext")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"hash", "query", "rename", "sort", "index", "stats", "simulate", "profiles"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestHashFlagsOnHashingCommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"hash", "query", "rename", "sort", "index", "stats"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)

			hashFlag := sub.Flags().Lookup("hash")
			require.NotNil(t, hashFlag)
			assert.Equal(t, "rolling", hashFlag.DefValue)
			require.NotNil(t, sub.Flags().Lookup("profile"))
		})
	}
}

func TestDatabaseFlagRequired(t *testing.T) {
	for _, name := range []string{"index", "stats"} {
		t.Run(name, func(t *testing.T) {
			args := []string{name}
			if name == "index" {
				args = append(args, "name_db.txt")
			}
			_, err := execute(t, NewRootCommand(), args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "required flag")
			assert.Contains(t, err.Error(), "db")
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "--format", "xml", "profiles")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"text", true},
		{"json", true},
		{"xml", false},
		{"", false},
		{"JSON", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.valid, isValidFormat(tt.format))
		})
	}
}
