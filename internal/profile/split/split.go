// Package split partitions a line profiler report into metadata and per-function line groups.
package split

import (
	"strings"

	"github.com/farcloser/lineprof/internal/types"
)

const (
	totalTimePrefix = "Total time:"
	filePrefix      = "File:"
	timerUnitPrefix = "Timer unit:"

	functionPrefix        = "Function:"
	indexedFunctionPrefix = "Function "
)

// Lines splits a whole report into lines. Surrounding whitespace of the report is dropped, blank lines are kept.
func Lines(text string) []string {
	return strings.Split(strings.TrimSpace(text), "\n")
}

// Metadata scans every line; the last occurrence of a key wins.
func Metadata(lines []string) types.Metadata {
	var meta types.Metadata

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, totalTimePrefix):
			meta.TotalTime = valueOf(line)
		case strings.HasPrefix(line, filePrefix):
			meta.File = valueOf(line)
		case strings.HasPrefix(line, timerUnitPrefix):
			meta.TimerUnit = valueOf(line)
		}
	}

	return meta
}

// Detect returns DialectA when any line starts with "Function:", DialectB otherwise.
func Detect(lines []string) types.Dialect {
	for _, line := range lines {
		if strings.HasPrefix(line, functionPrefix) {
			return types.DialectA
		}
	}

	return types.DialectB
}

// IsHeader reports whether line opens a new section in the given dialect.
func IsHeader(line string, dialect types.Dialect) bool {
	if dialect == types.DialectA {
		return strings.HasPrefix(line, functionPrefix)
	}

	return strings.HasPrefix(line, indexedFunctionPrefix) && strings.Contains(line, ":")
}

// Groups cuts lines into sections, each starting at a header line. Lines before the first header are not
// part of any section.
func Groups(lines []string, dialect types.Dialect) [][]string {
	var (
		groups  [][]string
		current []string
	)

	for _, line := range lines {
		if IsHeader(line, dialect) {
			if len(current) > 0 {
				groups = append(groups, current)
			}

			current = []string{line}

			continue
		}

		if current != nil {
			current = append(current, line)
		}
	}

	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups
}

// Split runs the whole splitting stage on a raw report.
// Reports without any header come back with DialectNone and no groups.
func Split(text string) (types.Metadata, types.Dialect, [][]string) {
	if strings.TrimSpace(text) == "" {
		return types.Metadata{}, types.DialectNone, nil
	}

	lines := Lines(text)
	meta := Metadata(lines)
	dialect := Detect(lines)

	groups := Groups(lines, dialect)
	if len(groups) == 0 {
		return meta, types.DialectNone, nil
	}

	return meta, dialect, groups
}

func valueOf(line string) string {
	_, value, _ := strings.Cut(line, ":")

	return strings.TrimSpace(value)
}
