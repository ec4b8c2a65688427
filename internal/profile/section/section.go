// Package section decodes one function section of a line profiler report.
package section

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/farcloser/lineprof/internal/profile/column"
	"github.com/farcloser/lineprof/internal/types"
)

const (
	headerMarker = "Function:"
	lineMarker   = "at line"
)

var errLineNumber = errors.New("unreadable line number")

// Decode turns a raw section (header first) into a Function.
// index is the 1-based position of the section in the report and only feeds synthetic names.
// The boolean is false when the header cannot be read in DialectA: such sections are dropped without error.
func Decode(
	group []string,
	dialect types.Dialect,
	index int,
	meta types.Metadata,
	logger *slog.Logger,
) (*types.Function, bool) {
	if len(group) == 0 {
		return nil, false
	}

	if logger == nil {
		logger = slog.Default()
	}

	header, body := group[0], group[1:]

	var (
		name       string
		lineNumber int
		ok         bool
	)

	if dialect == types.DialectA {
		name, lineNumber, ok = decodeHeader(header)
		if !ok {
			logger.Debug("section.Decode", "stage", "discard", "header", header)

			return nil, false
		}
	} else {
		lineNumber = declarationLine(body)
		name = indexedName(header, index)
	}

	function := &types.Function{
		Name:       name,
		LineNumber: lineNumber,
		File:       meta.File,
		TotalTime:  meta.TotalTime,
		Lines:      []types.LineMetric{},
	}

	source := make([]string, 0, len(body))

	for _, line := range body {
		if column.TrimSpace(line) == "" {
			continue
		}

		fields := column.Fields(line)
		if !column.IsDigits(fields[0]) {
			continue
		}

		metric, code, err := decodeLine(line, fields)
		if err != nil {
			logger.Warn("skipping profiler line", "function", name, "line", line, "error", err)

			continue
		}

		function.Lines = append(function.Lines, metric)
		source = append(source, code)
	}

	function.Source = strings.Join(source, "\n")

	return function, true
}

// decodeHeader reads "Function: <name> at line <N>".
func decodeHeader(header string) (string, int, bool) {
	parts := strings.Split(header, headerMarker)
	if len(parts) < 2 {
		return "", 0, false
	}

	nameAndLine := strings.Split(parts[1], lineMarker)
	if len(nameAndLine) < 2 {
		return "", 0, false
	}

	name := strings.TrimSpace(nameAndLine[0])
	if name == "" {
		return "", 0, false
	}

	lineNumber, err := strconv.Atoi(strings.TrimSpace(nameAndLine[1]))
	if err != nil {
		return "", 0, false
	}

	return name, lineNumber, true
}

// declarationLine finds the first data line of the body and returns its line number, or 0.
func declarationLine(body []string) int {
	for _, line := range body {
		fields := column.Fields(line)
		if len(fields) == 0 || !column.IsDigits(fields[0]) {
			continue
		}

		if number, err := strconv.Atoi(fields[0]); err == nil {
			return number
		}
	}

	return 0
}

// indexedName takes the text after the first "(", up to the next "(" or ")", when the header has both
// parentheses anywhere. Otherwise it synthesizes one. "a) b(c" names "c", ") weird (" names "".
func indexedName(header string, index int) string {
	if !strings.Contains(header, "(") || !strings.Contains(header, ")") {
		return fmt.Sprintf("function_%d", index)
	}

	_, after, _ := strings.Cut(header, "(")
	segment, _, _ := strings.Cut(after, "(")
	name, _, _ := strings.Cut(segment, ")")

	return name
}

func decodeLine(line string, fields []string) (types.LineMetric, string, error) {
	lineNumber, err := strconv.Atoi(fields[0])
	if err != nil {
		return types.LineMetric{}, "", fmt.Errorf("%w %q: %w", errLineNumber, fields[0], err)
	}

	metric := types.LineMetric{LineNumber: lineNumber}

	if len(fields) > 1 && column.IsDigits(fields[1]) {
		hits, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return types.LineMetric{}, "", fmt.Errorf("hits %q: %w", fields[1], err)
		}

		metric.Hits = &hits
	}

	metric.Time = floatAt(fields, 2)
	metric.PerHit = floatAt(fields, 3)
	metric.PercentTime = floatAt(fields, 4)

	code, indentation := column.Extract(line)
	metric.Code = column.TrimSpace(code)
	metric.Indentation = indentation

	return metric, code, nil
}

func floatAt(fields []string, idx int) *float64 {
	if len(fields) <= idx {
		return nil
	}

	value, err := strconv.ParseFloat(fields[idx], 64)
	if err != nil {
		return nil
	}

	return &value
}
