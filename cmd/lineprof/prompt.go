package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/lineprof"
	"github.com/farcloser/lineprof/internal/config"
	"github.com/farcloser/lineprof/internal/prompt"
)

func promptCommand() *cli.Command {
	return &cli.Command{
		Name:      "prompt",
		Usage:     "Render the optimization advisor prompt for a line profiler report",
		ArgsUsage: "<file | ->",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "memory",
				Aliases: []string{"m"},
				Usage:   "File holding the memory profiler output to include verbatim",
			},
			&cli.BoolFlag{
				Name:  "hotspots",
				Usage: "Include the hotspot findings in the prompt",
				Value: true,
			},
			configFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, text, err := reportArg(cmd)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var memory string
			if path := cmd.String("memory"); path != "" {
				if memory, err = readReport(path); err != nil {
					return err
				}
			}

			return printPrompt(cfg, text, memory, cmd.Bool("hotspots"))
		},
	}
}

// printPrompt parses text, optionally analyzes it, and writes the rendered prompt to stdout.
func printPrompt(cfg *config.Config, text, memory string, hotspots bool) error {
	def, err := prompt.LoadDef(cfg.Prompt)
	if err != nil {
		return err //nolint:wrapcheck
	}

	report := lineprof.Parse(text)

	input := prompt.Input{
		Functions: report.Texts(),
		Profiles:  report.Functions,
		Memory:    memory,
	}

	if hotspots {
		opts, err := cfg.Options()
		if err != nil {
			return err //nolint:wrapcheck
		}

		input.Hotspots = lineprof.Analyze(report, opts).Hotspots()
	}

	rendered, err := prompt.Render(def, input)
	if err != nil {
		return err //nolint:wrapcheck
	}

	_, err = fmt.Fprint(os.Stdout, rendered)

	return err //nolint:wrapcheck
}
