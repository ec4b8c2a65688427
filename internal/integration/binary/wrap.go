package binary

import (
	"log/slog"
	"os/exec"
)

// Available checks if a binary is available in the system PATH.
// Names containing a path separator are checked as-is.
func Available(binName string) (string, bool) {
	path, err := exec.LookPath(binName)
	if err != nil {
		slog.Debug("binary.Available", "name", binName, "error", err)

		return "", false
	}

	return path, true
}
