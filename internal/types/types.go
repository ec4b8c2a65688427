//nolint:tagliatelle // keys follow the line profiler record layout
package types

// Dialect identifies which header convention a report uses.
type Dialect int

const (
	// DialectNone is reported when the input holds no function header at all.
	DialectNone Dialect = iota
	// DialectA headers read "Function: <name> at line <N>".
	DialectA
	// DialectB headers read "Function <index>: ..."; the declaration line comes from the first data line.
	DialectB
)

func (d Dialect) String() string {
	switch d {
	case DialectNone:
		return "none"
	case DialectA:
		return "function-at-line"
	case DialectB:
		return "indexed-function"
	}

	return "unknown"
}

// Metadata holds whole-report attributes, copied onto every function.
type Metadata struct {
	TotalTime string `json:"total_time,omitempty" yaml:"total_time,omitempty"`
	File      string `json:"file,omitempty"       yaml:"file,omitempty"`
	TimerUnit string `json:"timer_unit,omitempty" yaml:"timer_unit,omitempty"`
}

// LineMetric is one profiled source line.
// Metric pointers are nil when the column was missing or unreadable: nil and zero are distinct.
type LineMetric struct {
	LineNumber  int      `json:"line_number"  yaml:"line_number"`
	Hits        *int64   `json:"hits"         yaml:"hits"`
	Time        *float64 `json:"time"         yaml:"time"`
	PerHit      *float64 `json:"per_hit"      yaml:"per_hit"`
	PercentTime *float64 `json:"percent_time" yaml:"percent_time"`
	Code        string   `json:"code"         yaml:"code"`
	Indentation int      `json:"indentation"  yaml:"indentation"`
}

// Function is one profiled function section.
type Function struct {
	Name       string       `json:"function_name" yaml:"function_name"`
	LineNumber int          `json:"line_number"   yaml:"line_number"`
	File       string       `json:"file"          yaml:"file"`
	TotalTime  string       `json:"total_time"    yaml:"total_time"`
	Lines      []LineMetric `json:"lines"         yaml:"lines"`

	// Source is the reconstructed function text, one entry per retained line, indentation preserved.
	Source string `json:"-" yaml:"-"`
}
