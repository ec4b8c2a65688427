//nolint:tagliatelle
package main

// Record is a single line in the JSONL report file.
type Record struct {
	File      string         `json:"file,omitempty"`
	Dialect   string         `json:"dialect,omitempty"`
	TimerUnit string         `json:"timer_unit,omitempty"`
	Functions int            `json:"functions"`
	Analysis  map[string]any `json:"analysis,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timing    *RecordTiming  `json:"timing,omitempty"`
}

// RecordTiming captures per-file processing durations in milliseconds.
type RecordTiming struct {
	ReadMs    float64 `json:"read_ms"`
	ParseMs   float64 `json:"parse_ms"`
	AnalyzeMs float64 `json:"analyze_ms"`
	TotalMs   float64 `json:"total_ms"`
}

// digestRecord holds the typed fields needed by the digest command.
type digestRecord struct {
	File      string          `json:"file,omitempty"`
	Functions int             `json:"functions"`
	Analysis  *digestAnalysis `json:"analysis,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type digestAnalysis struct {
	Summary   digestSummary    `json:"summary"`
	Issues    []digestIssue    `json:"issues"`
	Functions []digestFunction `json:"functions"`
}

type digestSummary struct {
	IssueCount    int    `json:"issue_count"`
	WorstSeverity string `json:"worst_severity"`
}

type digestIssue struct {
	Check      string  `json:"check"`
	Function   string  `json:"function"`
	LineNumber int     `json:"line_number"`
	Detected   bool    `json:"detected"`
	Severity   string  `json:"severity"`
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence"`
}

type digestFunction struct {
	Name    string  `json:"function_name"`
	Seconds float64 `json:"seconds"`
	Share   float64 `json:"share"`
}

// checkBreakdown tracks per-check severity counts for the digest.
type checkBreakdown struct {
	Check    string
	Total    int
	Severe   int
	Moderate int
	Mild     int
}
