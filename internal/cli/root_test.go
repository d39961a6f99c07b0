package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samm329-ui/businessIntelligence-sub004/internal/cli"
	"github.com/samm329-ui/businessIntelligence-sub004/internal/config"
)

// execute runs the bicache root command with an isolated BICACHE_HOME and
// returns the combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func setupCLITest(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvLogLevel, "error")
}

func TestRootCmd_Help(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "bicache")
	assert.Contains(t, out, "status")
	assert.Contains(t, out, "cleanup")
}

func TestPutGetRoundTrip(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "put", "Technology Sector", "--data", `{"score": 42}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Stored")

	out, err = execute(t, "get", "technology   sector", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, `"score"`)
}

func TestPut_RejectsInvalidJSON(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "put", "broken", "--data", "{not json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestGet_MissingEntry(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "get", "never stored")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cached entry")
}

func TestDelete(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "put", "doomed report", "--data", `{"a":1}`)
	require.NoError(t, err)

	out, err := execute(t, "delete", "doomed report")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed cached entry")

	out, err = execute(t, "delete", "doomed report")
	require.NoError(t, err)
	assert.Contains(t, out, "No cached entry")
}

func TestWarmup(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "put", "cached query", "--data", `{"a":1}`)
	require.NoError(t, err)

	out, err := execute(t, "warmup", "cached query", "absent query")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 2 queries cached")
	assert.Contains(t, out, "missing: absent query")
}

func TestStatus(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "put", "some report", "--data", `{"a":1}`)
	require.NoError(t, err)

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries")

	out, err = execute(t, "status", "--json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "expected JSON output, got %q", out)
}

func TestCleanup(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "cleanup")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 expired entries")
}

func TestClear_WithYesFlag(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "put", "a report", "--data", `{"a":1}`)
	require.NoError(t, err)

	out, err := execute(t, "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 entries")

	_, err = execute(t, "get", "a report")
	require.Error(t, err)
}
