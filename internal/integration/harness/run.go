package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/lineprof/internal/integration/binary"
)

// Spec describes one profiled test run.
type Spec struct {
	Command   string        // binary to run, looked up in PATH
	Args      []string      // arguments passed to Command
	Dir       string        // working directory, empty for the current one
	OutputDir string        // where the plugin writes StatsFile (default DefaultOutputDir, relative to Dir)
	Modules   []string      // modules to instrument
	Functions []string      // functions to instrument, empty for every public function of Modules
	Echo      io.Writer     // receives the test runner output preceding the memory report
	Timeout   time.Duration // default 30 minutes
	WaitDelay time.Duration // grace period for the output pipe after the runner exits (default 10 seconds)

	// PluginDir receives the profiling plugin for the duration of the run. The plugin and the output directory
	// are both removed afterwards. Empty when the runner brings its own plugin.
	PluginDir string
}

// Outcome is what a run leaves behind for the parser.
type Outcome struct {
	Report     string // raw line profiler report
	Memory     string // raw memory profiler section, passed through unparsed
	ReportPath string
}

type captured struct {
	memory string
	err    error
}

// Run executes the test runner with the profiling environment set, streams its combined output through Capture,
// then reads the line profiler report the plugin left in the output directory.
func Run(ctx context.Context, spec Spec) (*Outcome, error) {
	slog.Debug("harness.Run", "command", spec.Command, "args", spec.Args, "stage", "start")

	commandPath, found := binary.Available(spec.Command)
	if !found {
		return nil, fmt.Errorf("%w: %s", fault.ErrMissingRequirements, spec.Command)
	}

	limit := spec.Timeout
	if limit <= 0 {
		limit = timeout
	}

	delay := spec.WaitDelay
	if delay <= 0 {
		delay = waitDelay
	}

	outputDir := spec.OutputDir
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}

	outputPath := outputDir
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(spec.Dir, outputPath)
	}

	if spec.PluginDir != "" {
		uninstall, err := InstallPlugin(spec.PluginDir)
		if err != nil {
			return nil, err
		}

		defer uninstall()
		defer removeOutput(outputPath)
	}

	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	//nolint:gosec // the command line is what the user asked to profile
	cmd := exec.CommandContext(ctx, commandPath, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.WaitDelay = delay
	cmd.Env = append(os.Environ(),
		EnvOutputDir+"="+outputDir,
		EnvModules+"="+strings.Join(spec.Modules, ","),
		EnvFunctions+"="+strings.Join(spec.Functions, ","),
	)

	reader, writer := io.Pipe()
	cmd.Stdout = writer
	cmd.Stderr = writer

	done := make(chan captured, 1)

	go func() {
		memory, err := Capture(reader, spec.Echo)
		if err != nil {
			// Drain, or cmd.Run never returns.
			_, _ = io.Copy(io.Discard, reader)
		}

		done <- captured{memory: memory, err: err}
	}()

	runErr := cmd.Run()
	_ = writer.Close()
	result := <-done

	if errors.Is(runErr, exec.ErrWaitDelay) {
		slog.Warn("test runner exited but left its output open", "command", spec.Command, "wait", delay)

		runErr = nil
	}

	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("harness.Run", "command", spec.Command, "stage", "timeout")

			return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, limit)
		}

		slog.Debug("harness.Run", "command", spec.Command, "stage", "error")

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, spec.Command, runErr)
	}

	if result.err != nil {
		return nil, result.err
	}

	reportPath := filepath.Join(outputPath, StatsFile)

	report, err := os.ReadFile(reportPath) //nolint:gosec // path derived from user configuration
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	slog.Debug("harness.Run", "command", spec.Command, "stage", "done", "report", reportPath)

	return &Outcome{
		Report:     string(report),
		Memory:     result.memory,
		ReportPath: reportPath,
	}, nil
}

func removeOutput(path string) {
	if err := os.RemoveAll(path); err != nil {
		slog.Warn("failed to remove profiler output", "path", path, "error", err)
	}
}
