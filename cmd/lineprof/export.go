package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/lineprof"
	"github.com/farcloser/lineprof/internal/export"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Convert a line profiler report to a gzipped pprof profile",
		ArgsUsage: "<file | ->",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Profile to write, \"-\" for stdout",
				Value:   "lineprof.pb.gz",
			},
			configFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, text, err := reportArg(cmd)
			if err != nil {
				return err
			}

			opts, err := analysisOptions(cmd)
			if err != nil {
				return err
			}

			report := lineprof.Parse(text)

			unit, known := lineprof.ParseTimerUnit(report.Metadata.TimerUnit)
			if !known {
				unit = opts.TimerUnit
			}

			target := cmd.String("output")

			var out io.Writer = os.Stdout

			if target != "-" {
				file, err := os.Create(target)
				if err != nil {
					return fmt.Errorf("creating %s: %w", target, err)
				}
				defer file.Close()

				out = file
			}

			return export.WritePprof(out, report.Functions, unit) //nolint:wrapcheck
		},
	}
}
