package lineprof_test

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/lineprof"
	"github.com/farcloser/lineprof/internal/types"
)

const functionReport = `Timer unit: 1e-06 s

Total time: 0.0005 s
File: example.py
Function: compute at line 10

Line #      Hits         Time  Per Hit   % Time  Line Contents
==============================================================
    10                                           def compute(y):
    11         1          2.0      2.0      0.4      total = 0
    12      1000        300.0      0.3     60.0      for i in range(y):
    13      1000        198.0      0.2     39.6          total += i
    14         1          0.0      0.0      0.0      return total

Total time: 0.0001 s
File: example.py
Function: broken

Line #      Hits         Time  Per Hit   % Time  Line Contents
==============================================================
    20         1        100.0    100.0    100.0      pass

Total time: 0.0002 s
File: example.py
Function: helper at line 30

Line #      Hits         Time  Per Hit   % Time  Line Contents
==============================================================
    30                                           def helper():
    31         1        200.0    200.0    100.0      return 42
`

const indexedReport = `Timer unit: 1e-06 s

Function 1: (load)
    1                                           def load():
    2         1         50.0     50.0    100.0      return read()
Function 2: unnamed
    5                                           def save():
    6         2         10.0      5.0    100.0      write()
Function 3: also unnamed
    9                                           def close():
`

func TestParseDialectA(t *testing.T) {
	t.Parallel()

	report := lineprof.Parse(functionReport)

	assert.Equal(t, types.DialectA, report.Dialect)
	assert.Equal(t, "0.0002 s", report.Metadata.TotalTime)
	assert.Equal(t, "1e-06 s", report.Metadata.TimerUnit)

	require.Len(t, report.Functions, 2)
	assert.Equal(t, "compute", report.Functions[0].Name)
	assert.Equal(t, 10, report.Functions[0].LineNumber)
	assert.Equal(t, "helper", report.Functions[1].Name)
	assert.Equal(t, 30, report.Functions[1].LineNumber)

	for _, function := range report.Functions {
		assert.Equal(t, "0.0002 s", function.TotalTime)
		assert.Equal(t, "example.py", function.File)
	}
}

func TestParseDialectB(t *testing.T) {
	t.Parallel()

	report := lineprof.Parse(indexedReport)

	assert.Equal(t, types.DialectB, report.Dialect)
	require.Len(t, report.Functions, 3)

	assert.Equal(t, "load", report.Functions[0].Name)
	assert.Equal(t, 1, report.Functions[0].LineNumber)
	assert.Equal(t, "function_2", report.Functions[1].Name)
	assert.Equal(t, 5, report.Functions[1].LineNumber)
	assert.Equal(t, "function_3", report.Functions[2].Name)
	assert.Equal(t, 9, report.Functions[2].LineNumber)
}

func TestParseOutputIsParallel(t *testing.T) {
	t.Parallel()

	texts, functions := lineprof.ParseOutput(functionReport)

	require.Len(t, texts, len(functions))

	for idx := range functions {
		assert.Equal(t, functions[idx].Source, texts[idx])
	}

	assert.Contains(t, texts[0], "def compute(y):")
	assert.Contains(t, texts[1], "return 42")
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "\n\n", "no profiler output here"} {
		texts, functions := lineprof.ParseOutput(text)

		assert.NotNil(t, texts)
		assert.NotNil(t, functions)
		assert.Empty(t, texts)
		assert.Empty(t, functions)
	}

	report := lineprof.Parse("")
	assert.Equal(t, types.DialectNone, report.Dialect)
}

func TestParseIsIdempotent(t *testing.T) {
	t.Parallel()

	first := lineprof.Parse(functionReport)
	second := lineprof.Parse(functionReport)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated parse differs (-first +second):\n%s", diff)
	}
}

func TestParseConcurrently(t *testing.T) {
	t.Parallel()

	want := lineprof.Parse(indexedReport)

	var waitGroup sync.WaitGroup

	results := make([]*lineprof.Report, 8)

	for idx := range results {
		waitGroup.Add(1)

		go func(idx int) {
			defer waitGroup.Done()

			results[idx] = lineprof.Parse(indexedReport)
		}(idx)
	}

	waitGroup.Wait()

	for _, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("concurrent parse differs (-want +got):\n%s", diff)
		}
	}
}

func TestParseWithLogger(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	text := strings.Replace(functionReport, "    11         1", "    99999999999999999999         1", 1)
	report := lineprof.Parse(text, lineprof.WithLogger(logger))

	require.Len(t, report.Functions, 2)
	assert.Len(t, report.Functions[0].Lines, 4)
	assert.Contains(t, logs.String(), "skipping profiler line")
	assert.Contains(t, logs.String(), "lineprof.Parse")
}
