//nolint:wrapcheck
package main

import (
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/lineprof"
	"github.com/farcloser/lineprof/internal/output"
)

func outputResult(object string, meta map[string]any, formatName string) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	data := &format.Data{
		Object: object,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

func outputAnalysis(object string, result *lineprof.Result, formatName string, raw bool) error {
	var meta map[string]any
	if raw {
		meta = output.ResultToMap(result)
	} else {
		meta = buildFriendlyOutput(result)
	}

	return outputResult(object, meta, formatName)
}

// buildFriendlyOutput creates a user-friendly summary of the analysis results.
func buildFriendlyOutput(result *lineprof.Result) map[string]any {
	meta := map[string]any{
		"summary": fmt.Sprintf("%d issues found (worst: %s)", result.IssueCount, result.WorstSeverity),
	}

	// Group issues by function.
	functionIssues := make(map[string][]any)

	var order []string

	for _, issue := range result.Issues {
		marker := "  "
		if issue.Detected {
			marker = "!!"
		}

		line := fmt.Sprintf("%s [%s] %s: %s (%.0f%% confidence)",
			marker, issue.Severity, issue.Check, issue.Summary, issue.Confidence*100)

		if _, seen := functionIssues[issue.Function]; !seen {
			order = append(order, issue.Function)
		}

		functionIssues[issue.Function] = append(functionIssues[issue.Function], line)
	}

	if len(functionIssues) > 0 {
		issues := make(map[string]any)
		for idx, name := range order {
			issues[fmt.Sprintf("%d. %s", idx+1, name)] = functionIssues[name]
		}

		meta["issues"] = issues
	}

	if props := buildProperties(result); len(props) > 0 {
		meta["functions"] = props
	}

	return meta
}

func buildProperties(result *lineprof.Result) map[string]any {
	props := make(map[string]any)

	for idx, summary := range result.Functions {
		entry := fmt.Sprintf("%d lines, %s total", summary.Lines, formatDuration(summary.Seconds))
		if summary.HottestLine > 0 {
			entry += fmt.Sprintf(", hottest line %d", summary.HottestLine)
		}

		if summary.Unexecuted > 0 {
			entry += fmt.Sprintf(", %d without hits", summary.Unexecuted)
		}

		props[fmt.Sprintf("%d. %s (line %d)", idx+1, summary.Name, summary.LineNumber)] = entry
	}

	return props
}

func formatDuration(seconds float64) string {
	switch {
	case seconds >= 1:
		return fmt.Sprintf("%.2fs", seconds)
	case seconds >= 1e-3:
		return fmt.Sprintf("%.2fms", seconds*1e3)
	default:
		return fmt.Sprintf("%.2fµs", seconds*1e6)
	}
}
