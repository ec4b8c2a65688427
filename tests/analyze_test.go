package tests_test

import (
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/lineprof/tests/testutils"
)

const relaxedConfig = `bands:
  hot_lines:
    mild: 101
    moderate: 102
    severe: 103
`

func TestAnalyzeCLI(t *testing.T) {
	testCase := testutils.Setup()

	testCase.Setup = func(data test.Data, _ test.Helpers) {
		data.Labels().Set("file", testutils.Save(data, "report.txt", testutils.FunctionReport))
	}

	testCase.SubTests = []*test.Case{
		{
			Description: "analyze without arguments fails",
			Command:     test.Command("analyze"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "analyze flags the dominant line",
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("analyze", "--raw", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectIssue("hot-lines", "severe"),
						expectNotContains("severity: moderate"),
						expectWorstSeverity("severe"),
					),
				}
			},
		},
		{
			Description: "analyze rates a line under half of the time as moderate",
			Setup: func(data test.Data, _ test.Helpers) {
				data.Labels().Set("balanced", testutils.Save(data, "balanced.txt", testutils.BalancedReport))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("analyze", "--raw", data.Labels().Get("balanced"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectIssue("hot-lines", "moderate"),
						expectNotContains("severity: severe"),
						expectWorstSeverity("moderate"),
					),
				}
			},
		},
		{
			Description: "analyze friendly output groups issues by function",
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("analyze", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("2 issues found (worst: severe)"),
						expectContains("helper"),
						expectContains("hottest line 12"),
					),
				}
			},
		},
		{
			Description: "analyze with a single check runs only that check",
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("analyze", "--raw", "--checks", "unexecuted", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("check: unexecuted"),
						expectNotContains("check: hot-lines"),
						expectWorstSeverity("no issue"),
					),
				}
			},
		},
		{
			Description: "analyze with an unknown check fails",
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("analyze", "--checks", "clipping", data.Labels().Get("file"))
			},
			Expected: test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "analyze honors bands from the configuration file",
			Setup: func(data test.Data, _ test.Helpers) {
				data.Labels().Set("config", testutils.Save(data, "lineprof.yaml", relaxedConfig))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command(
					"analyze",
					"--raw",
					"--config",
					data.Labels().Get("config"),
					data.Labels().Get("file"),
				)
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectNoIssue("hot-lines"),
						expectWorstSeverity("no issue"),
					),
				}
			},
		},
		{
			Description: "analyze with a missing configuration file fails",
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("analyze", "--config", "/nonexistent/lineprof.yaml", data.Labels().Get("file"))
			},
			Expected: test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
	}

	testCase.Run(t)
}
