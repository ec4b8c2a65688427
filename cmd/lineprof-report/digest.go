package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/urfave/cli/v3"
)

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from a lineprof JSONL analysis",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "issue",
				Usage: "Show functions affected by a specific check (e.g., hot-lines, slow-calls)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("expected exactly one argument: path to report.jsonl")
			}

			return runDigest(cmd.Args().First(), cmd.String("issue"))
		},
	}
}

func runDigest(reportPath, issueFilter string) error {
	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(records)

	if issueFilter != "" {
		printIssueDetail(records, issueFilter)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	const maxLineSize = 4 * 1024 * 1024
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

func printDigest(records []digestRecord) {
	total := len(records)
	failures := 0
	functions := 0
	sevDist := map[string]int{"severe": 0, "moderate": 0, "mild": 0, "clean": 0}
	issueDist := map[int]int{}
	checkStats := map[string]*checkBreakdown{}

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil {
			failures++

			continue
		}

		functions += rec.Functions

		worst := rec.Analysis.Summary.WorstSeverity
		if worst == "" || worst == "no issue" {
			sevDist["clean"]++
		} else {
			sevDist[worst]++
		}

		issueDist[rec.Analysis.Summary.IssueCount]++

		for _, issue := range rec.Analysis.Issues {
			if !issue.Detected {
				continue
			}

			breakdown, ok := checkStats[issue.Check]
			if !ok {
				breakdown = &checkBreakdown{Check: issue.Check}
				checkStats[issue.Check] = breakdown
			}

			breakdown.Total++

			switch issue.Severity {
			case "severe":
				breakdown.Severe++
			case "moderate":
				breakdown.Moderate++
			case "mild":
				breakdown.Mild++
			}
		}
	}

	fmt.Println("=== Line Profiler Digest ===")
	fmt.Println()
	fmt.Printf("Total reports:  %d\n", total)
	fmt.Printf("Failed:         %d\n", failures)
	fmt.Printf("Analyzed:       %d\n", total-failures)
	fmt.Printf("Functions:      %d\n", functions)
	fmt.Println()

	fmt.Println("--- Worst Severity ---")
	fmt.Printf("  Clean:     %d\n", sevDist["clean"])
	fmt.Printf("  Mild:      %d\n", sevDist["mild"])
	fmt.Printf("  Moderate:  %d\n", sevDist["moderate"])
	fmt.Printf("  Severe:    %d\n", sevDist["severe"])
	fmt.Println()

	fmt.Println("--- Issues Per Report ---")

	counts := make([]int, 0, len(issueDist))
	for k := range issueDist {
		counts = append(counts, k)
	}

	slices.Sort(counts)

	for _, count := range counts {
		fmt.Printf("  %d issues:  %d reports\n", count, issueDist[count])
	}

	fmt.Println()

	fmt.Println("--- Issues By Check ---")

	breakdowns := make([]*checkBreakdown, 0, len(checkStats))
	for _, bd := range checkStats {
		breakdowns = append(breakdowns, bd)
	}

	slices.SortFunc(breakdowns, func(a, b *checkBreakdown) int {
		return b.Total - a.Total
	})

	for _, bd := range breakdowns {
		fmt.Printf("  %s\n", bd.Check)
		fmt.Printf("    total: %d  severe: %d  moderate: %d  mild: %d\n", bd.Total, bd.Severe, bd.Moderate, bd.Mild)
	}
}

type issueEntry struct {
	file       string
	function   string
	line       int
	severity   string
	summary    string
	confidence float64
	seconds    float64
}

func printIssueDetail(records []digestRecord, check string) {
	fmt.Println()

	var entries []issueEntry

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil {
			continue
		}

		for _, issue := range rec.Analysis.Issues {
			if !issue.Detected || issue.Check != check {
				continue
			}

			entry := issueEntry{
				file:       rec.File,
				function:   issue.Function,
				line:       issue.LineNumber,
				severity:   issue.Severity,
				summary:    issue.Summary,
				confidence: issue.Confidence,
			}

			if entry.file == "" {
				entry.file = "(redacted)"
			}

			for _, function := range rec.Analysis.Functions {
				if function.Name == issue.Function {
					entry.seconds = function.Seconds

					break
				}
			}

			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		fmt.Printf("No functions affected by %s\n", check)

		return
	}

	slices.SortStableFunc(entries, func(a, b issueEntry) int {
		return severityRank(a.severity) - severityRank(b.severity)
	})

	fmt.Printf("=== %s: %d functions ===\n\n", check, len(entries))

	for _, entry := range entries {
		fmt.Printf("  %s: %s (line %d)\n", entry.file, entry.function, entry.line)
		fmt.Printf("    severity: %s  confidence: %.0f%%  function time: %.6fs\n",
			entry.severity, entry.confidence*100, entry.seconds)
		fmt.Printf("    %s\n", entry.summary)
		fmt.Println()
	}
}

func severityRank(severity string) int {
	switch severity {
	case "severe":
		return 0
	case "moderate":
		return 1
	case "mild":
		return 2
	default:
		return 3
	}
}
