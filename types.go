package lineprof

import (
	"fmt"
	"strings"
)

// Check represents a hotspot check run over parsed functions.
type Check int

const (
	CheckHotLines Check = 1 << iota
	CheckHeavyLoops
	CheckSlowCalls
	CheckPerHitOutliers
	CheckUnexecuted

	// Presets.
	ChecksHotspots = CheckHotLines | CheckHeavyLoops | CheckSlowCalls | CheckPerHitOutliers

	ChecksAll = ChecksHotspots | CheckUnexecuted
)

//nolint:gochecknoglobals // configuration data, effectively const
var checkOrder = []Check{
	CheckHotLines,
	CheckHeavyLoops,
	CheckSlowCalls,
	CheckPerHitOutliers,
	CheckUnexecuted,
}

func (c Check) String() string {
	switch c {
	case CheckHotLines:
		return "hot-lines"
	case CheckHeavyLoops:
		return "heavy-loops"
	case CheckSlowCalls:
		return "slow-calls"
	case CheckPerHitOutliers:
		return "per-hit-outliers"
	case CheckUnexecuted:
		return "unexecuted"
	}

	return "unknown"
}

// ParseChecks reads a comma-separated list of check names or presets ("all", "hotspots").
// An empty list means ChecksAll.
func ParseChecks(raw string) (Check, error) {
	var result Check

	for name := range strings.SplitSeq(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		switch name {
		case "all":
			result |= ChecksAll

			continue
		case "hotspots":
			result |= ChecksHotspots

			continue
		}

		found := false

		for _, check := range checkOrder {
			if check.String() == name {
				result |= check
				found = true

				break
			}
		}

		if !found {
			return 0, fmt.Errorf("unknown check %q", name)
		}
	}

	if result == 0 {
		return ChecksAll, nil
	}

	return result, nil
}

// Severity indicates how bad a detected hotspot is.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "no issue"
	case SeverityMild:
		return "mild"
	case SeverityModerate:
		return "moderate"
	case SeveritySevere:
		return "severe"
	}

	return "unknown"
}

// Bands defines severity thresholds for a check. Higher values are worse when Mild < Severe,
// lower values are worse when Mild > Severe.
type Bands struct {
	Mild     float64 `yaml:"mild"`
	Moderate float64 `yaml:"moderate"`
	Severe   float64 `yaml:"severe"`
}

// Match returns the severity for a value.
// Returns (SeverityNone, false) when the value does not reach the Mild threshold.
func (b Bands) Match(value float64) (Severity, bool) {
	if b.Mild <= b.Severe {
		if value >= b.Severe {
			return SeveritySevere, true
		}

		if value >= b.Moderate {
			return SeverityModerate, true
		}

		if value >= b.Mild {
			return SeverityMild, true
		}
	} else {
		if value <= b.Severe {
			return SeveritySevere, true
		}

		if value <= b.Moderate {
			return SeverityModerate, true
		}

		if value <= b.Mild {
			return SeverityMild, true
		}
	}

	return SeverityNone, false
}

// Issue is the outcome of one check on one function.
type Issue struct {
	Check      Check
	Function   string
	LineNumber int // worst line for the check, 0 when no line qualified
	Detected   bool
	Severity   Severity
	Summary    string  // human-readable summary
	Confidence float64 // 0.0-1.0
}

// FunctionSummary aggregates the metrics of one function.
type FunctionSummary struct {
	Name        string
	LineNumber  int
	Lines       int     // data lines decoded
	Unexecuted  int     // data lines without hits
	Time        float64 // sum of line times, in timer units
	Seconds     float64 // Time converted with the timer unit
	Share       float64 // sum of line percentages
	HottestLine int     // line with the highest percentage, 0 when none carries one
}
