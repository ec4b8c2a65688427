package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/farcloser/primordium/fault"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/lineprof/internal/config"
)

var errInvalidArgCount = errors.New("expected exactly one argument: report path or \"-\" for stdin")

// formatFlag is shared by every command printing structured output.
func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: console, json, markdown",
		Value:   "console",
		Sources: cli.EnvVars("LINEPROF_FORMAT"),
	}
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to a YAML configuration file (checks, bands, prompt, harness)",
		Sources: cli.EnvVars("LINEPROF_CONFIG"),
	}
}

// reportArg reads the single report argument of cmd.
func reportArg(cmd *cli.Command) (string, string, error) {
	if cmd.NArg() != 1 {
		return "", "", fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	source := cmd.Args().First()

	text, err := readReport(source)
	if err != nil {
		return "", "", err
	}

	return source, text, nil
}

// readReport returns the content of a report file, or of stdin for "-".
func readReport(source string) (string, error) {
	var (
		data []byte
		err  error
	)

	if source == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(source) //nolint:gosec // CLI tool opens user-specified report files
	}

	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", fault.ErrReadFailure, source, err)
	}

	return string(data), nil
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.Load(cmd.String("config")) //nolint:wrapcheck
}
