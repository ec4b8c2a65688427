// Package output provides shared result serialization for lineprof console, JSON and markdown output.
package output

import (
	"github.com/farcloser/lineprof"
	"github.com/farcloser/lineprof/internal/types"
)

// ReportToMap converts a parsed report into the canonical map structure used by the formatters.
func ReportToMap(report *lineprof.Report) map[string]any {
	meta := map[string]any{
		"dialect": report.Dialect.String(),
	}

	if report.Metadata.TotalTime != "" {
		meta["total_time"] = report.Metadata.TotalTime
	}

	if report.Metadata.File != "" {
		meta["file"] = report.Metadata.File
	}

	if report.Metadata.TimerUnit != "" {
		meta["timer_unit"] = report.Metadata.TimerUnit
	}

	functions := make([]any, 0, len(report.Functions))
	for i := range report.Functions {
		functions = append(functions, FunctionToMap(&report.Functions[i]))
	}

	meta["functions"] = functions

	return meta
}

// FunctionToMap converts one function record to a map, source text included.
func FunctionToMap(function *types.Function) map[string]any {
	lines := make([]any, 0, len(function.Lines))
	for _, line := range function.Lines {
		lines = append(lines, LineToMap(line))
	}

	return map[string]any{
		"function_name": function.Name,
		"line_number":   function.LineNumber,
		"file":          function.File,
		"total_time":    function.TotalTime,
		"source":        function.Source,
		"lines":         lines,
	}
}

// LineToMap converts a line metric to a map. Absent metrics are left out rather than written as zero.
func LineToMap(line types.LineMetric) map[string]any {
	entry := map[string]any{
		"line_number": line.LineNumber,
		"code":        line.Code,
		"indentation": line.Indentation,
	}

	if line.Hits != nil {
		entry["hits"] = *line.Hits
	}

	if line.Time != nil {
		entry["time"] = *line.Time
	}

	if line.PerHit != nil {
		entry["per_hit"] = *line.PerHit
	}

	if line.PercentTime != nil {
		entry["percent_time"] = *line.PercentTime
	}

	return entry
}

// ResultToMap converts a hotspot analysis result into the canonical map structure.
func ResultToMap(result *lineprof.Result) map[string]any {
	meta := map[string]any{
		"summary": map[string]any{
			"issue_count":    result.IssueCount,
			"worst_severity": result.WorstSeverity.String(),
			"timer_unit":     result.TimerUnit,
		},
	}

	issues := make([]any, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, map[string]any{
			"check":       issue.Check.String(),
			"function":    issue.Function,
			"line_number": issue.LineNumber,
			"detected":    issue.Detected,
			"severity":    issue.Severity.String(),
			"summary":     issue.Summary,
			"confidence":  issue.Confidence,
		})
	}

	meta["issues"] = issues

	functions := make([]any, 0, len(result.Functions))
	for _, summary := range result.Functions {
		functions = append(functions, map[string]any{
			"function_name": summary.Name,
			"line_number":   summary.LineNumber,
			"lines":         summary.Lines,
			"unexecuted":    summary.Unexecuted,
			"time":          summary.Time,
			"seconds":       summary.Seconds,
			"share":         summary.Share,
			"hottest_line":  summary.HottestLine,
		})
	}

	meta["functions"] = functions

	return meta
}
