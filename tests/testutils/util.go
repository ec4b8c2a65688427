// Package testutils provides test infrastructure for lineprof integration tests.
package testutils

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// lineprofSetup implements test.Testable for the lineprof binary.
type lineprofSetup struct {
	binary string
}

// CustomCommand returns a command running the lineprof binary with a minimal environment.
func (ls *lineprofSetup) CustomCommand(_ *test.Case, _ tig.T) test.CustomizableCommand {
	cmd := test.NewGenericCommand()
	cmd.WithBinary(ls.binary)

	gen := *(cmd.(*test.GenericCommand))
	gen.WithWhitelist([]string{
		"PATH",
		"HOME",
		"TMPDIR",
		"XDG_*",
	})

	return &gen
}

// AmbientRequirements only needs the binary: reports are plain text fixtures.
func (ls *lineprofSetup) AmbientRequirements(_ *test.Case, testing tig.T) {
	if _, err := os.Stat(ls.binary); err == nil {
		return
	}

	path, err := exec.LookPath(filepath.Base(ls.binary))
	if err != nil {
		testing.Log("binary " + ls.binary + " not found: run 'go build -o bin/lineprof ./cmd/lineprof' or install lineprof in PATH")
		testing.FailNow()
	}

	ls.binary = path
}

// Setup creates a test case configured to run the lineprof binary.
func Setup() *test.Case {
	_, thisFile, _, _ := runtime.Caller(0) //nolint:dogsled // runtime.Caller returns 4 values, only file is needed
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))

	test.Customize(&lineprofSetup{
		binary: filepath.Join(projectRoot, "bin", "lineprof"),
	})

	return &test.Case{
		Env: map[string]string{},
	}
}
