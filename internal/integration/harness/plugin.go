package harness

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/farcloser/primordium/fault"
)

// PluginFile is the file name the profiling plugin is installed under.
const PluginFile = PluginModule + ".py"

//nolint:gochecknoglobals // embedded asset
//go:embed line_profiling_plugin.py
var pluginSource []byte

// InstallPlugin writes the profiling plugin into dir and returns the function removing it again.
// A plugin already present in dir is left untouched and is not removed afterwards.
func InstallPlugin(dir string) (func(), error) {
	target := filepath.Join(dir, PluginFile)

	_, err := os.Stat(target)
	if err == nil {
		slog.Debug("harness.InstallPlugin", "path", target, "stage", "present")

		return func() {}, nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	//nolint:gosec // the plugin must be importable by the test runner
	if err = os.WriteFile(target, pluginSource, 0o644); err != nil {
		return nil, fmt.Errorf("installing %s: %w", target, err)
	}

	slog.Debug("harness.InstallPlugin", "path", target, "stage", "installed")

	return func() {
		if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to remove profiling plugin", "path", target, "error", err)
		}
	}, nil
}

// PluginDir is where the plugin goes for a test path: the path itself, or the directory of a test file.
func PluginDir(testPath string) string {
	if filepath.Ext(testPath) == ".py" {
		return filepath.Dir(testPath)
	}

	return testPath
}
