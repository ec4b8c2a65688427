// Package column locates the source-code column of a single line profiler data line.
package column

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Whitespace as profiled Python sources see it: RE2 \s alone misses \v, U+001C-U+001F and the Unicode spaces.
const (
	spaceClass    = `[\t-\r\x1c-\x20\x85\p{Z}]`
	nonSpaceClass = `[^\t-\r\x1c-\x20\x85\p{Z}]`
)

// Patterns are tried in order, first match wins. The captured group starts with the whitespace that
// separates the last metric column from the code, so its leading run is the recovered indentation.
//
//nolint:gochecknoglobals // compiled once, read-only
var (
	// Line number, hits-or-blank, then three decimal-or-blank columns.
	strictColumns = compile(
		`^\s*\d+\s+(?:\d+|\s+)\s+(?:\d+\.\d+|\s+)\s+(?:\d+\.\d+|\s+)\s+(?:\d+\.\d+|\s+)(\s{2,}.*$)`,
	)
	// Wide gap followed by something shaped like an identifier.
	identifierAnchor = compile(`^\s*\d+.*?(\s{2,}[a-zA-Z_][a-zA-Z0-9_]*.*$)`)
	// Any wide gap followed by anything.
	wideGap = compile(`^\s*\d+.*?(\s{2,}\S.*$)`)
	// First non-blank character onward.
	firstVisible = compile(`(\s*\S.*$)`)
)

// compile swaps \s and \S for the wider whitespace classes before compiling.
func compile(pattern string) *regexp.Regexp {
	return regexp.MustCompile(strings.NewReplacer(`\s`, spaceClass, `\S`, nonSpaceClass).Replace(pattern))
}

// IsSpace reports whether r separates tokens of a profiler line.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Fields splits s around runs of IsSpace.
func Fields(s string) []string {
	return strings.FieldsFunc(s, IsSpace)
}

// TrimSpace removes leading and trailing IsSpace runes.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

// Extract returns the code column of line with its original leading whitespace, and the width of that
// whitespace. It never fails: when nothing better is found the trimmed line is returned with zero indentation.
func Extract(line string) (string, int) {
	if TrimSpace(line) == "" {
		return "", 0
	}

	fields := Fields(line)
	if !IsDigits(fields[0]) {
		return TrimSpace(line), 0
	}

	for _, pattern := range []*regexp.Regexp{strictColumns, identifierAnchor, wideGap} {
		if match := pattern.FindStringSubmatch(line); match != nil {
			return withIndent(match[1])
		}
	}

	if code, ok := skipMetrics(line, fields[0]); ok {
		return withIndent(code)
	}

	return TrimSpace(line), 0
}

// skipMetrics walks the tokens after the line number, skipping anything numeric, and cuts the original text
// right after the last skipped token so the whitespace in front of the code survives untouched.
func skipMetrics(line, lineNumber string) (string, bool) {
	rest := line[strings.Index(line, lineNumber)+len(lineNumber):]
	tokens := Fields(rest)

	skip := 0

	for _, token := range tokens {
		if !IsFloat(token) && !IsDigits(token) {
			break
		}

		skip++
	}

	if skip == 0 || skip >= len(tokens) {
		return "", false
	}

	pos := 0

	for _, token := range tokens[:skip] {
		next := strings.Index(rest[pos:], token)
		if next < 0 {
			continue
		}

		if end := pos + next + len(token); end > pos {
			pos = end
		}
	}

	if pos >= len(rest) {
		return "", false
	}

	match := firstVisible.FindString(rest[pos:])
	if match == "" {
		return "", false
	}

	return match, true
}

// withIndent counts the leading whitespace in characters, not bytes.
func withIndent(code string) (string, int) {
	trimmed := strings.TrimLeftFunc(code, IsSpace)

	return code, utf8.RuneCountInString(code[:len(code)-len(trimmed)])
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// IsFloat reports whether s parses as a floating point number.
func IsFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)

	return err == nil
}
