package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "causalcore", cmd.Use)
	assert.Contains(t, cmd.Long, "causal types")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "validate", "types", "realize", "query", "typeprob", "runs", "test"}

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

	workersFlag := cmd.PersistentFlags().Lookup("workers")
	require.NotNil(t, workersFlag)
	assert.Equal(t, "1", workersFlag.DefValue)

	metricsFlag := cmd.PersistentFlags().Lookup("metrics")
	require.NotNil(t, metricsFlag)
	assert.Equal(t, "false", metricsFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flags   []string
	}{
		{"compile", []string{"output"}},
		{"types", []string{"limit"}},
		{"realize", []string{"do", "db"}},
		{"query", []string{"clause", "do", "db"}},
		{"typeprob", []string{"params", "draws", "db"}},
		{"runs", []string{"model", "verify"}},
		{"test", []string{"update", "filter"}},
	}

	root := NewRootCommand()
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)
			for _, f := range tt.flags {
				assert.NotNil(t, sub.Flags().Lookup(f), "flag --%s", f)
			}
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	path := writeModel(t, xyModelCUE)
	_, _, err := execute(t, "--format", "xml", "types", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidWorkers(t *testing.T) {
	path := writeModel(t, xyModelCUE)
	_, _, err := execute(t, "--workers", "0", "types", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid workers")
}

func TestMetricsFlag(t *testing.T) {
	path := writeModel(t, xyModelCUE)
	_, stderr, err := execute(t, "--metrics", "realize", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, `causalcore_realizations_total{status="ok"} 1`)
	assert.Contains(t, stderr, "causalcore_last_causal_types 8")
}

func TestVerboseLogsToStderr(t *testing.T) {
	path := writeModel(t, xyModelCUE)
	stdout, stderr, err := execute(t, "--verbose", "--format", "json", "realize", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "model realized")
	decodeResponse(t, stdout, nil)
}
