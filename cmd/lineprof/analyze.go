package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/lineprof"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Parse a line profiler report and flag hotspots",
		ArgsUsage: "<file | ->",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "checks",
				Aliases: []string{"C"},
				Usage:   "Comma-separated checks or presets: all, hotspots, hot-lines, heavy-loops, slow-calls, per-hit-outliers, unexecuted (overrides the configuration file)",
			},
			configFlag(),
			formatFlag(),
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Include every check outcome and function summary in output",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			source, text, err := reportArg(cmd)
			if err != nil {
				return err
			}

			opts, err := analysisOptions(cmd)
			if err != nil {
				return err
			}

			result := lineprof.Analyze(lineprof.Parse(text), opts)

			return outputAnalysis(source, result, cmd.String("format"), cmd.Bool("raw"))
		},
	}
}

// analysisOptions merges the configuration file with the --checks flag.
func analysisOptions(cmd *cli.Command) (lineprof.Options, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return lineprof.Options{}, err
	}

	if raw := cmd.String("checks"); raw != "" {
		cfg.Checks = raw
	}

	return cfg.Options() //nolint:wrapcheck
}
