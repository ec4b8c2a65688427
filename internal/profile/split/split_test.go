package split_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcloser/lineprof/internal/profile/split"
	"github.com/farcloser/lineprof/internal/types"
)

const dialectAReport = `Timer unit: 1e-06 s

Total time: 1.0 s
File: first.py
Function: alpha at line 3

Line #      Hits         Time  Per Hit   % Time  Line Contents
==============================================================
     3                                           def alpha():
     4         1          1.0      1.0    100.0      return 1

Total time: 2.0 s
File: second.py
Function: beta at line 10

Line #      Hits         Time  Per Hit   % Time  Line Contents
==============================================================
    10                                           def beta():
    11         1          2.0      2.0    100.0      return 2
`

func TestMetadataLastWins(t *testing.T) {
	t.Parallel()

	meta := split.Metadata(split.Lines(dialectAReport))

	assert.Equal(t, "2.0 s", meta.TotalTime)
	assert.Equal(t, "second.py", meta.File)
	assert.Equal(t, "1e-06 s", meta.TimerUnit)
}

func TestMetadataKeepsTextAfterFirstColon(t *testing.T) {
	t.Parallel()

	meta := split.Metadata([]string{"File: C:\\work\\module.py"})

	assert.Equal(t, "C:\\work\\module.py", meta.File)
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  types.Dialect
	}{
		{
			name:  "any Function: line selects dialect A",
			lines: []string{"Function 1: (x)", "noise", "Function: x at line 1"},
			want:  types.DialectA,
		},
		{
			name:  "no Function: line is dialect B",
			lines: []string{"Function 1: (x)", "     1   1   1.0   1.0  100.0   x()"},
			want:  types.DialectB,
		},
		{
			name:  "indented marker does not count",
			lines: []string{"  Function: x at line 1"},
			want:  types.DialectB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, split.Detect(tt.lines))
		})
	}
}

func TestIsHeader(t *testing.T) {
	t.Parallel()

	assert.True(t, split.IsHeader("Function: alpha at line 3", types.DialectA))
	assert.False(t, split.IsHeader("Function 1: (alpha)", types.DialectA))
	assert.True(t, split.IsHeader("Function 1: (alpha)", types.DialectB))
	assert.False(t, split.IsHeader("Function without colon", types.DialectB))
	assert.False(t, split.IsHeader("File: alpha.py", types.DialectB))
}

func TestGroups(t *testing.T) {
	t.Parallel()

	lines := []string{
		"Timer unit: 1e-06 s",
		"",
		"Function: alpha at line 3",
		"     3   def alpha():",
		"",
		"Function: beta at line 10",
		"    10   def beta():",
	}

	groups := split.Groups(lines, types.DialectA)
	require.Len(t, groups, 2)

	assert.Equal(t, []string{"Function: alpha at line 3", "     3   def alpha():", ""}, groups[0])
	assert.Equal(t, []string{"Function: beta at line 10", "    10   def beta():"}, groups[1])
}

func TestSplit(t *testing.T) {
	t.Parallel()

	meta, dialect, groups := split.Split(dialectAReport)

	assert.Equal(t, types.DialectA, dialect)
	assert.Equal(t, "second.py", meta.File)
	require.Len(t, groups, 2)
	assert.Equal(t, "Function: alpha at line 3", groups[0][0])
	assert.Equal(t, "Function: beta at line 10", groups[1][0])
	assert.Equal(t, "    11         1          2.0      2.0    100.0      return 2", groups[1][len(groups[1])-1])
}

func TestSplitWithoutSections(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "  \n\n ", "Timer unit: 1e-06 s\nTotal time: 0 s\n"} {
		meta, dialect, groups := split.Split(text)

		assert.Equal(t, types.DialectNone, dialect, text)
		assert.Empty(t, groups, text)

		if text != "" {
			continue
		}

		assert.Equal(t, types.Metadata{}, meta)
	}
}
