package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/lineprof/internal/integration/harness"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a test suite under the line profiler and print the advisor prompt",
		ArgsUsage: "[-- command args...]\n\n" +
			"Without a command, runs pytest with the profiling plugin and memray on --test-path.",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "test-path",
				Aliases: []string{"t"},
				Usage:   "Tests to run (default: the nearest tests directory)",
			},
			&cli.StringFlag{
				Name:  "test-module",
				Usage: "Dotted module holding the profiling plugin (default: inferred from --test-path)",
			},
			&cli.StringSliceFlag{
				Name:    "module",
				Aliases: []string{"m"},
				Usage:   "Module to instrument (repeatable)",
				Sources: cli.EnvVars(harness.EnvModules),
			},
			&cli.StringSliceFlag{
				Name:    "function",
				Aliases: []string{"F"},
				Usage:   "Function to instrument (repeatable, default: every public function)",
				Sources: cli.EnvVars(harness.EnvFunctions),
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory the profiling plugin writes its report to",
				Sources: cli.EnvVars(harness.EnvOutputDir),
			},
			&cli.StringFlag{
				Name:  "command",
				Usage: "Interpreter running the test suite (overrides the configuration file)",
			},
			&cli.BoolFlag{
				Name:  "hotspots",
				Usage: "Include the hotspot findings in the prompt",
				Value: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			limit, err := cfg.HarnessTimeout()
			if err != nil {
				return err //nolint:wrapcheck
			}

			spec := harness.Spec{
				Command:   cfg.Harness.Command,
				OutputDir: cfg.Harness.OutputDir,
				Modules:   cmd.StringSlice("module"),
				Functions: cmd.StringSlice("function"),
				Echo:      os.Stdout,
				Timeout:   limit,
			}

			if command := cmd.String("command"); command != "" {
				spec.Command = command
			}

			if outputDir := cmd.String("output-dir"); outputDir != "" {
				spec.OutputDir = outputDir
			}

			args := cmd.Args().Slice()
			if len(args) > 0 && args[0] == "--" {
				args = args[1:]
			}

			if len(args) > 0 {
				spec.Command = args[0]
				spec.Args = args[1:]
			} else {
				spec.Args, spec.PluginDir, err = pytestArgs(cmd.String("test-path"), cmd.String("test-module"))
				if err != nil {
					return err
				}
			}

			outcome, err := harness.Run(ctx, spec)
			if err != nil {
				return err //nolint:wrapcheck
			}

			slog.Info("line profiler report collected", "path", outcome.ReportPath)

			return printPrompt(cfg, outcome.Report, outcome.Memory, cmd.Bool("hotspots"))
		},
	}
}

var errNoTests = errors.New("no tests directory found, pass --test-path")

// pytestArgs builds the default pytest invocation and returns the directory the plugin has to be installed in.
func pytestArgs(testPath, testModule string) ([]string, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err //nolint:wrapcheck
	}

	if testPath == "" {
		found, ok := harness.FindTestsDirectory(cwd)
		if !ok {
			return nil, "", errNoTests
		}

		testPath = found
	}

	testPath, err = filepath.Abs(testPath)
	if err != nil {
		return nil, "", err //nolint:wrapcheck
	}

	if testModule == "" {
		testModule = harness.InferTestModule(testPath, cwd)
	}

	return harness.PytestArgs(testPath, testModule), harness.PluginDir(testPath), nil
}
