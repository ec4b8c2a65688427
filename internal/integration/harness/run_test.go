package harness_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/farcloser/primordium/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/lineprof/internal/integration/harness"
)

// The fake test runner writes a report where the plugin would, prints its own output, then the memory section.
const fakeRunner = `mkdir -p "$PROFILE_OUTPUT_DIR"
printf 'Timer unit: 1e-06 s\n\nFunction: %s at line 1\n' "$PROFILE_FUNCTIONS" > "$PROFILE_OUTPUT_DIR/line_stats.txt"
echo "modules=$PROFILE_MODULES"
echo "== MEMRAY REPORT =="
echo "1 MiB"
`

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var echo bytes.Buffer

	outcome, err := harness.Run(context.Background(), harness.Spec{
		Command:   "sh",
		Args:      []string{"-c", fakeRunner},
		Dir:       dir,
		Modules:   []string{"app.core", "app.io"},
		Functions: []string{"compute"},
		Echo:      &echo,
	})
	require.NoError(t, err)

	assert.Equal(t, "modules=app.core,app.io\n", echo.String())
	assert.Equal(t, "== MEMRAY REPORT ==\n1 MiB\n", outcome.Memory)
	assert.Equal(t, filepath.Join(dir, harness.DefaultOutputDir, harness.StatsFile), outcome.ReportPath)
	assert.Contains(t, outcome.Report, "Function: compute at line 1")
}

func TestRunFailures(t *testing.T) {
	t.Parallel()

	_, err := harness.Run(context.Background(), harness.Spec{Command: "lineprof-no-such-interpreter"})
	require.ErrorIs(t, err, fault.ErrMissingRequirements)

	_, err = harness.Run(context.Background(), harness.Spec{
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
		Dir:     t.TempDir(),
	})
	require.ErrorIs(t, err, fault.ErrCommandFailure)

	_, err = harness.Run(context.Background(), harness.Spec{
		Command: "sh",
		Args:    []string{"-c", "exec sleep 5"},
		Dir:     t.TempDir(),
		Timeout: 100 * time.Millisecond,
	})
	require.ErrorIs(t, err, fault.ErrTimeout)

	_, err = harness.Run(context.Background(), harness.Spec{
		Command: "sh",
		Args:    []string{"-c", "true"},
		Dir:     t.TempDir(),
	})
	require.ErrorIs(t, err, fault.ErrReadFailure)
}

// pluginCheckingRunner fails unless the plugin sits in the directory given as $1, then writes a report.
const pluginCheckingRunner = `test -f "$1/line_profiling_plugin.py" || exit 7
grep -q pytest_runtest_protocol "$1/line_profiling_plugin.py" || exit 8
mkdir -p "$PROFILE_OUTPUT_DIR"
echo "Function: installed at line 1" > "$PROFILE_OUTPUT_DIR/line_stats.txt"
`

func TestRunInstallsPlugin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testsDir := filepath.Join(dir, "tests")
	require.NoError(t, os.Mkdir(testsDir, 0o755))

	outcome, err := harness.Run(context.Background(), harness.Spec{
		Command:   "sh",
		Args:      []string{"-c", pluginCheckingRunner, "runner", testsDir},
		Dir:       dir,
		PluginDir: testsDir,
	})
	require.NoError(t, err)
	assert.Contains(t, outcome.Report, "Function: installed at line 1")

	assert.NoFileExists(t, filepath.Join(testsDir, harness.PluginFile))
	assert.NoDirExists(t, filepath.Join(dir, harness.DefaultOutputDir))
	assert.DirExists(t, testsDir)
}

func TestRunCleansUpAfterFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, "out")

	_, err := harness.Run(context.Background(), harness.Spec{
		Command:   "sh",
		Args:      []string{"-c", `mkdir -p "$PROFILE_OUTPUT_DIR" && exit 2`},
		Dir:       dir,
		OutputDir: output,
		PluginDir: dir,
	})
	require.ErrorIs(t, err, fault.ErrCommandFailure)

	assert.NoFileExists(t, filepath.Join(dir, harness.PluginFile))
	assert.NoDirExists(t, output)
}

func TestRunKeepsExistingPlugin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, harness.PluginFile)
	require.NoError(t, os.WriteFile(existing, []byte("# project plugin\n"), 0o600))

	_, err := harness.Run(context.Background(), harness.Spec{
		Command:   "sh",
		Args:      []string{"-c", pluginCheckingRunner, "runner", dir},
		Dir:       dir,
		PluginDir: dir,
	})
	require.ErrorIs(t, err, fault.ErrCommandFailure)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "# project plugin\n", string(content))
}

func TestRunDoesNotWaitForLingeringChildren(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	start := time.Now()

	outcome, err := harness.Run(context.Background(), harness.Spec{
		Command: "sh",
		Args: []string{"-c", `mkdir -p "$PROFILE_OUTPUT_DIR"
echo "Function: done at line 1" > "$PROFILE_OUTPUT_DIR/line_stats.txt"
sleep 3 &
`},
		Dir:       dir,
		WaitDelay: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Contains(t, outcome.Report, "Function: done at line 1")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPluginDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/repo/tests", harness.PluginDir("/repo/tests"))
	assert.Equal(t, "/repo/tests", harness.PluginDir("/repo/tests/test_app.py"))
}
