//nolint:wrapcheck
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/farcloser/lineprof"
	"github.com/farcloser/lineprof/internal/config"
	"github.com/farcloser/lineprof/internal/integration/harness"
	"github.com/farcloser/lineprof/internal/output"
)

const outputFile = "lineprof-report.jsonl"

var (
	errNotDirectory = errors.New("not a directory")
	errNoReports    = errors.New("no line profiler reports found")
	errNoFunctions  = errors.New("no profiled functions")
)

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Scan a folder of line profiler reports and write a JSONL analysis",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "redact-path",
				Usage: "Strip file paths from the report",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file (checks, bands)",
				Sources: cli.EnvVars("LINEPROF_CONFIG"),
			},
			&cli.StringSliceFlag{
				Name:  "ext",
				Usage: "File extensions holding reports",
				Value: []string{".txt"},
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("expected exactly one argument: folder path")
			}

			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}

			opts, err := cfg.Options()
			if err != nil {
				return err
			}

			folder := cmd.Args().First()
			redact := cmd.Bool("redact-path")
			workers := max(cmd.Int("workers"), 1)

			return runReport(ctx, folder, cmd.StringSlice("ext"), redact, opts, workers)
		},
	}
}

func runReport(ctx context.Context, folder string, exts []string, redact bool, opts lineprof.Options, workers int) error {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", folder, errNotDirectory)
	}

	files, err := collectReports(folder, exts)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("%q: %w", folder, errNoReports)
	}

	fmt.Fprintf(os.Stderr, "Found %d reports to analyze (%d workers)\n", len(files), workers)

	startTime := time.Now()
	results := make([]Record, len(files))

	var progress atomic.Int64

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for idx, filePath := range files {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[idx] = Record{File: filePath, Error: err.Error()}

				return nil
			}

			results[idx] = processFile(filePath, opts)

			done := progress.Add(1)
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, len(files), filePath)

			return nil
		})
	}

	// Workers record their failures instead of returning them.
	_ = group.Wait()

	// Write results in file order.
	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	failed := 0

	var totalRead, totalParse, totalAnalyze time.Duration

	for idx := range results {
		record := &results[idx]

		if record.Error != "" {
			failed++
		}

		if record.Timing != nil {
			totalRead += millisToDuration(record.Timing.ReadMs)
			totalParse += millisToDuration(record.Timing.ParseMs)
			totalAnalyze += millisToDuration(record.Timing.AnalyzeMs)
		}

		if redact {
			record.File = ""
		}

		if err := enc.Encode(record); err != nil {
			slog.Error("writing record", "file", files[idx], "error", err)
		}
	}

	out.Close()

	if err := compressFile(outputFile); err != nil {
		slog.Error("compressing report", "error", err)
	}

	elapsed := time.Since(startTime)

	fmt.Fprintf(os.Stderr, "\nDone: %d reports in %s (%d failed)\n", len(files), elapsed.Truncate(time.Millisecond), failed)
	fmt.Fprintf(os.Stderr, "Analysis written to %s (and %s.gz)\n", outputFile, outputFile)

	analyzed := len(files) - failed
	fmt.Fprintf(os.Stderr, "\n--- Timing ---\n")
	fmt.Fprintf(os.Stderr, "  read:      %s (cumulative)\n", totalRead.Truncate(time.Microsecond))
	fmt.Fprintf(os.Stderr, "  parse:     %s (cumulative)\n", totalParse.Truncate(time.Microsecond))
	fmt.Fprintf(os.Stderr, "  analysis:  %s (cumulative)\n", totalAnalyze.Truncate(time.Microsecond))

	if analyzed > 0 {
		fmt.Fprintf(os.Stderr, "  avg/file:  %s\n", (totalRead+totalParse+totalAnalyze)/time.Duration(analyzed))
	}

	fmt.Fprintln(os.Stderr)

	return runDigest(outputFile, "")
}

func processFile(filePath string, opts lineprof.Options) Record {
	fileStart := time.Now()
	timing := &RecordTiming{}

	data, err := os.ReadFile(filePath) //nolint:gosec // CLI tool opens user-specified report files
	timing.ReadMs = durationMs(time.Since(fileStart))

	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("read failed: %v", err), Timing: timing}
	}

	parseStart := time.Now()
	report := lineprof.Parse(string(data), lineprof.WithLogger(slog.Default().With("file", filePath)))
	timing.ParseMs = durationMs(time.Since(parseStart))

	record := Record{
		File:      filePath,
		Dialect:   report.Dialect.String(),
		TimerUnit: report.Metadata.TimerUnit,
		Functions: len(report.Functions),
		Timing:    timing,
	}

	if len(report.Functions) == 0 {
		record.Error = errNoFunctions.Error()
		timing.TotalMs = durationMs(time.Since(fileStart))

		return record
	}

	analyzeStart := time.Now()
	result := lineprof.Analyze(report, opts)
	timing.AnalyzeMs = durationMs(time.Since(analyzeStart))
	timing.TotalMs = durationMs(time.Since(fileStart))

	record.Analysis = output.ResultToMap(result)

	return record
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func millisToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// collectReports walks root for files with one of exts, plus any file the profiling plugin names StatsFile.
func collectReports(root string, exts []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if slices.Contains(exts, ext) || d.Name() == harness.StatsFile {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

func compressFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := gzWriter.Write(data); err != nil {
		return err
	}

	return gzWriter.Close()
}
