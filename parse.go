package lineprof

import (
	"log/slog"

	"github.com/farcloser/lineprof/internal/profile/section"
	"github.com/farcloser/lineprof/internal/profile/split"
	"github.com/farcloser/lineprof/internal/types"
)

/*
Usage:

report := lineprof.Parse(text)
for _, fn := range report.Functions {
    fmt.Printf("%s (line %d)\n%s\n", fn.Name, fn.LineNumber, fn.Source)
}

// The two parallel sequences handed to the advisor
texts, functions := lineprof.ParseOutput(text)

// Hotspots
result := lineprof.Analyze(report, lineprof.DefaultOptions())
for _, issue := range result.Issues {
    if issue.Detected {
        fmt.Printf("[%s] %s\n", issue.Severity, issue.Summary)
    }
}

*/

// Report is a parsed line profiler report.
type Report struct {
	Metadata  types.Metadata
	Dialect   types.Dialect
	Functions []types.Function
}

// Texts returns the reconstructed source of every function, in report order.
func (r *Report) Texts() []string {
	texts := make([]string, 0, len(r.Functions))
	for i := range r.Functions {
		texts = append(texts, r.Functions[i].Source)
	}

	return texts
}

type parseConfig struct {
	logger *slog.Logger
}

// ParseOption tunes Parse.
type ParseOption func(*parseConfig)

// WithLogger sets where skipped data lines are reported. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ParseOption {
	return func(cfg *parseConfig) {
		cfg.logger = logger
	}
}

// Parse converts the text output of a line profiler into structured data.
// Malformed content never fails the parse: bad sections are dropped, bad lines skipped, missing metrics left nil.
// Parse holds no state between calls and is safe for concurrent use.
func Parse(text string, opts ...ParseOption) *Report {
	cfg := &parseConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	meta, dialect, groups := split.Split(text)

	report := &Report{
		Metadata:  meta,
		Dialect:   dialect,
		Functions: []types.Function{},
	}

	for idx, group := range groups {
		function, ok := section.Decode(group, dialect, idx+1, meta, cfg.logger)
		if !ok {
			continue
		}

		report.Functions = append(report.Functions, *function)
	}

	cfg.logger.Debug("lineprof.Parse", "dialect", dialect, "sections", len(groups), "functions", len(report.Functions))

	return report
}

// ParseOutput returns the reconstructed function texts and the function records as two slices of equal length:
// texts[i] belongs to functions[i].
func ParseOutput(text string) ([]string, []types.Function) {
	report := Parse(text)

	return report.Texts(), report.Functions
}
