package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/lineprof"
	"github.com/farcloser/lineprof/internal/output"
)

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse a line profiler report into per-function, per-line records",
		ArgsUsage: "<file | ->",
		Flags: []cli.Flag{
			formatFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			source, text, err := reportArg(cmd)
			if err != nil {
				return err
			}

			report := lineprof.Parse(text)

			return outputResult(source, output.ReportToMap(report), cmd.String("format"))
		},
	}
}
