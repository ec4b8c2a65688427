package lineprof

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/lineprof/internal/types"
)

// Options configures hotspot analysis.
type Options struct {
	Checks Check // which checks to run (default: ChecksAll)

	// Severity bands per check (zero value = use defaults).
	HotLines       Bands // percent of total time spent on one line
	HeavyLoops     Bands // hits on one line
	SlowCalls      Bands // seconds per hit
	PerHitOutliers Bands // z-score of per-hit time within the function

	// Analyzer thresholds (not severity bands).
	MinOutlierSamples int     // lines with a per-hit value needed for outlier detection (default 3)
	TimerUnit         float64 // seconds per timer unit when the report does not say (default 1e-6)
}

// DefaultOptions returns options tuned for CPython line_profiler reports.
func DefaultOptions() Options {
	return Options{
		Checks:         ChecksAll,
		HotLines:       Bands{Mild: 10, Moderate: 25, Severe: 50},
		HeavyLoops:     Bands{Mild: 10_000, Moderate: 100_000, Severe: 1_000_000},
		SlowCalls:      Bands{Mild: 0.001, Moderate: 0.01, Severe: 0.1},
		PerHitOutliers: Bands{Mild: 2, Moderate: 3, Severe: 4},

		MinOutlierSamples: 3,
		TimerUnit:         1e-6,
	}
}

// Result contains all hotspot findings.
type Result struct {
	// Per-function, per-check outcomes, in report then check order.
	Issues []Issue

	// Quick access booleans
	HasHotLines       bool
	HasHeavyLoops     bool
	HasSlowCalls      bool
	HasPerHitOutliers bool

	// Summary
	IssueCount    int
	WorstSeverity Severity
	TimerUnit     float64 // seconds per timer unit actually used
	Functions     []FunctionSummary
}

// Analyze interprets a parsed report. Lines never get flagged on a metric they do not carry.
func Analyze(report *Report, opts Options) *Result {
	if opts.Checks == 0 {
		opts.Checks = ChecksAll
	}

	applyDefaults(&opts)

	unit, unitKnown := ParseTimerUnit(report.Metadata.TimerUnit)
	if !unitKnown {
		unit = opts.TimerUnit
	}

	result := &Result{TimerUnit: unit}

	for i := range report.Functions {
		function := &report.Functions[i]

		result.Functions = append(result.Functions, summarize(function, unit))

		if opts.Checks&CheckHotLines != 0 {
			result.Issues = append(result.Issues, hotLines(function, opts))
		}

		if opts.Checks&CheckHeavyLoops != 0 {
			result.Issues = append(result.Issues, heavyLoops(function, opts))
		}

		if opts.Checks&CheckSlowCalls != 0 {
			result.Issues = append(result.Issues, slowCalls(function, opts, unit, unitKnown))
		}

		if opts.Checks&CheckPerHitOutliers != 0 {
			result.Issues = append(result.Issues, perHitOutliers(function, opts))
		}

		if opts.Checks&CheckUnexecuted != 0 {
			result.Issues = append(result.Issues, unexecuted(function))
		}
	}

	// Calculate summary stats
	for _, issue := range result.Issues {
		if !issue.Detected {
			continue
		}

		result.IssueCount++

		switch issue.Check {
		case CheckHotLines:
			result.HasHotLines = true
		case CheckHeavyLoops:
			result.HasHeavyLoops = true
		case CheckSlowCalls:
			result.HasSlowCalls = true
		case CheckPerHitOutliers:
			result.HasPerHitOutliers = true
		default:
		}

		if issue.Severity > result.WorstSeverity {
			result.WorstSeverity = issue.Severity
		}
	}

	return result
}

// Hotspots returns the summaries of detected issues, worst severity first, report order within a severity.
func (r *Result) Hotspots() []string {
	var lines []string

	for severity := SeveritySevere; severity > SeverityNone; severity-- {
		for _, issue := range r.Issues {
			if issue.Detected && issue.Severity == severity {
				lines = append(lines, fmt.Sprintf("[%s] %s: %s", issue.Severity, issue.Function, issue.Summary))
			}
		}
	}

	return lines
}

// ParseTimerUnit reads a "Timer unit:" value such as "1e-06 s".
func ParseTimerUnit(raw string) (float64, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, false
	}

	unit, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || unit <= 0 {
		return 0, false
	}

	return unit, true
}

func applyDefaults(opts *Options) {
	defaults := DefaultOptions()
	zeroBands := Bands{}

	if opts.HotLines == zeroBands {
		opts.HotLines = defaults.HotLines
	}

	if opts.HeavyLoops == zeroBands {
		opts.HeavyLoops = defaults.HeavyLoops
	}

	if opts.SlowCalls == zeroBands {
		opts.SlowCalls = defaults.SlowCalls
	}

	if opts.PerHitOutliers == zeroBands {
		opts.PerHitOutliers = defaults.PerHitOutliers
	}

	if opts.MinOutlierSamples == 0 {
		opts.MinOutlierSamples = defaults.MinOutlierSamples
	}

	if opts.TimerUnit == 0 {
		opts.TimerUnit = defaults.TimerUnit
	}
}

func summarize(function *types.Function, unit float64) FunctionSummary {
	summary := FunctionSummary{
		Name:       function.Name,
		LineNumber: function.LineNumber,
		Lines:      len(function.Lines),
	}

	var (
		times   []float64
		shares  []float64
		hottest = math.Inf(-1)
	)

	for _, line := range function.Lines {
		if line.Hits == nil {
			summary.Unexecuted++
		}

		if line.Time != nil {
			times = append(times, *line.Time)
		}

		if line.PercentTime != nil {
			shares = append(shares, *line.PercentTime)

			if *line.PercentTime > hottest {
				hottest = *line.PercentTime
				summary.HottestLine = line.LineNumber
			}
		}
	}

	summary.Time = floats.Sum(times)
	summary.Seconds = summary.Time * unit
	summary.Share = floats.Sum(shares)

	return summary
}

// worst returns the line with the highest value of metric, skipping lines where metric is absent.
func worst(function *types.Function, metric func(types.LineMetric) (float64, bool)) (types.LineMetric, float64, bool) {
	var (
		best  types.LineMetric
		value = math.Inf(-1)
		found bool
	)

	for _, line := range function.Lines {
		v, ok := metric(line)
		if !ok || v <= value {
			continue
		}

		best, value, found = line, v, true
	}

	return best, value, found
}

func hotLines(function *types.Function, opts Options) Issue {
	line, percent, found := worst(function, func(l types.LineMetric) (float64, bool) {
		if l.PercentTime == nil {
			return 0, false
		}

		return *l.PercentTime, true
	})

	issue := Issue{Check: CheckHotLines, Function: function.Name, Confidence: 1.0}

	if !found {
		issue.Summary = "No time percentages recorded"

		return issue
	}

	issue.LineNumber = line.LineNumber
	issue.Severity, issue.Detected = opts.HotLines.Match(percent)

	switch issue.Severity {
	case SeverityNone:
		issue.Summary = fmt.Sprintf("Time evenly spread (hottest line %d at %.1f%%)", line.LineNumber, percent)
	case SeverityMild, SeverityModerate:
		issue.Summary = fmt.Sprintf("Line %d takes %.1f%% of the time: %s", line.LineNumber, percent, line.Code)
	case SeveritySevere:
		issue.Summary = fmt.Sprintf("Line %d dominates with %.1f%% of the time: %s", line.LineNumber, percent, line.Code)
	}

	return issue
}

func heavyLoops(function *types.Function, opts Options) Issue {
	line, hits, found := worst(function, func(l types.LineMetric) (float64, bool) {
		if l.Hits == nil {
			return 0, false
		}

		return float64(*l.Hits), true
	})

	issue := Issue{Check: CheckHeavyLoops, Function: function.Name, Confidence: 0.9}

	if !found {
		issue.Summary = "No hit counts recorded"

		return issue
	}

	issue.LineNumber = line.LineNumber
	issue.Severity, issue.Detected = opts.HeavyLoops.Match(hits)

	switch issue.Severity {
	case SeverityNone:
		issue.Summary = fmt.Sprintf("At most %.0f hits per line", hits)
	default:
		issue.Summary = fmt.Sprintf("Line %d runs %.0f times: %s", line.LineNumber, hits, line.Code)
	}

	return issue
}

func slowCalls(function *types.Function, opts Options, unit float64, unitKnown bool) Issue {
	line, perHit, found := worst(function, func(l types.LineMetric) (float64, bool) {
		if l.PerHit == nil {
			return 0, false
		}

		return *l.PerHit, true
	})

	issue := Issue{Check: CheckSlowCalls, Function: function.Name, Confidence: boolToConfidence(unitKnown)}

	if !found {
		issue.Summary = "No per-hit times recorded"

		return issue
	}

	seconds := perHit * unit

	issue.LineNumber = line.LineNumber
	issue.Severity, issue.Detected = opts.SlowCalls.Match(seconds)

	switch issue.Severity {
	case SeverityNone:
		issue.Summary = fmt.Sprintf("Slowest line %d at %s per hit", line.LineNumber, formatSeconds(seconds))
	default:
		issue.Summary = fmt.Sprintf("Line %d costs %s per hit: %s", line.LineNumber, formatSeconds(seconds), line.Code)
	}

	return issue
}

func perHitOutliers(function *types.Function, opts Options) Issue {
	issue := Issue{Check: CheckPerHitOutliers, Function: function.Name, Confidence: 0.7}

	var (
		values []float64
		lines  []types.LineMetric
	)

	for _, line := range function.Lines {
		if line.PerHit != nil {
			values = append(values, *line.PerHit)
			lines = append(lines, line)
		}
	}

	if len(values) < opts.MinOutlierSamples {
		issue.Summary = fmt.Sprintf("Too few per-hit samples (%d)", len(values))

		return issue
	}

	mean, stdDev := stat.MeanStdDev(values, nil)
	if stdDev == 0 || math.IsNaN(stdDev) {
		issue.Summary = "Uniform per-hit cost"

		return issue
	}

	idx := floats.MaxIdx(values)
	score := stat.StdScore(values[idx], mean, stdDev)

	issue.LineNumber = lines[idx].LineNumber
	issue.Severity, issue.Detected = opts.PerHitOutliers.Match(score)

	switch issue.Severity {
	case SeverityNone:
		issue.Summary = fmt.Sprintf("No per-hit outlier (max z-score %.1f)", score)
	default:
		issue.Summary = fmt.Sprintf(
			"Line %d per-hit cost is %.1f standard deviations above the mean: %s",
			lines[idx].LineNumber,
			score,
			lines[idx].Code,
		)
	}

	return issue
}

// unexecuted is informational: lines without hits are usually declarations, comments or untaken branches.
func unexecuted(function *types.Function) Issue {
	count := 0
	first := 0

	for _, line := range function.Lines {
		if line.Hits != nil {
			continue
		}

		if count == 0 {
			first = line.LineNumber
		}

		count++
	}

	return Issue{
		Check:      CheckUnexecuted,
		Function:   function.Name,
		LineNumber: first,
		Detected:   false,
		Severity:   SeverityNone,
		Summary:    fmt.Sprintf("%d of %d lines without hits", count, len(function.Lines)),
		Confidence: 1.0,
	}
}

func formatSeconds(seconds float64) string {
	switch {
	case seconds >= 1:
		return fmt.Sprintf("%.2fs", seconds)
	case seconds >= 1e-3:
		return fmt.Sprintf("%.2fms", seconds*1e3)
	default:
		return fmt.Sprintf("%.2fµs", seconds*1e6)
	}
}

func boolToConfidence(b bool) float64 {
	if b {
		return 0.95
	}

	return 0.5
}
