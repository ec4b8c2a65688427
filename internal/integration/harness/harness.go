package harness

import "time"

const (
	// Test suites under a line profiler run much slower than usual.
	timeout = 30 * time.Minute

	// How long to wait for the output pipe once the runner is gone: its own children may still hold it.
	waitDelay = 10 * time.Second

	// memoryMarker opens the memory profiler section of the test runner output.
	memoryMarker = "MEMRAY REPORT"

	// StatsFile is the report written by the profiling plugin inside the output directory.
	StatsFile = "line_stats.txt"

	// DefaultOutputDir is where the profiling plugin writes its report when nothing else is configured.
	DefaultOutputDir = "line_profile_results"

	// Environment consumed by the profiling plugin.
	EnvOutputDir = "PROFILE_OUTPUT_DIR"
	EnvModules   = "PROFILE_MODULES"
	EnvFunctions = "PROFILE_FUNCTIONS"
)
