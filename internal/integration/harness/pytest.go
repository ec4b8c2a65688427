package harness

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// PluginModule is the name of the pytest plugin that drives the line profiler.
const PluginModule = "line_profiling_plugin"

//nolint:gochecknoglobals // configuration data, effectively const
var (
	testDirNames = []string{"tests", "test", "pytest"}
	skippedDirs  = []string{".venv", "venv", "env", ".env", ".pytest_cache", "__pycache__", "node_modules"}
)

// FindTestsDirectory looks for a tests directory: start itself, a child of start, a child of any direct
// subdirectory of start, then a child of up to three parents.
func FindTestsDirectory(start string) (string, bool) {
	base := strings.ToLower(filepath.Base(start))
	if base == "tests" || base == "test" {
		return start, true
	}

	if dir, ok := childTestsDir(start); ok {
		return dir, true
	}

	entries, err := os.ReadDir(start)
	if err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if !entry.IsDir() || strings.HasPrefix(name, ".") || slices.Contains(skippedDirs, name) {
				continue
			}

			if dir, ok := childTestsDir(filepath.Join(start, name)); ok {
				return dir, true
			}
		}
	}

	current := start

	for range 3 {
		parent := filepath.Dir(current)
		if parent == current {
			break
		}

		current = parent

		if dir, ok := childTestsDir(current); ok {
			return dir, true
		}
	}

	return "", false
}

func childTestsDir(dir string) (string, bool) {
	for _, name := range testDirNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
	}

	return "", false
}

// InferTestModule turns a test path into a dotted module name, relative to cwd when possible. A trailing .py file
// is dropped so the module designates the package holding it.
func InferTestModule(testPath, cwd string) string {
	module := filepath.Base(testPath)

	if rel, err := filepath.Rel(cwd, testPath); err == nil && !strings.HasPrefix(rel, "..") {
		module = strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
	}

	if trimmed, ok := strings.CutSuffix(module, ".py"); ok {
		parts := strings.Split(trimmed, ".")
		module = strings.Join(parts[:len(parts)-1], ".")
	}

	return module
}

// PytestArgs returns the arguments for "python -m pytest" with the profiling plugin and memray enabled.
// testPath pointing at a .py file is replaced by its directory.
func PytestArgs(testPath, testModule string) []string {
	if strings.HasSuffix(testPath, ".py") {
		testPath = filepath.Dir(testPath)
	}

	plugin := PluginModule
	if testModule != "" {
		plugin = testModule + "." + PluginModule
	}

	return []string{
		"-m", "pytest",
		"-p", plugin,
		testPath,
		"-v",
		"--memray",
		"--most-allocations=20",
		"--stacks=10",
	}
}
