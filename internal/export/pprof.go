// Package export converts parsed line profiler reports into other profile formats.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/pprof/profile"

	"github.com/farcloser/lineprof/internal/types"
)

const (
	sampleHits = "hits"
	sampleTime = "time"

	labelCode = "code"
)

var errNoSamples = errors.New("no line carries hits or time")

// Pprof builds a pprof profile with one sample per profiled line. Each sample holds the line hit count and its
// time converted to nanoseconds with unit (seconds per report time unit). Lines with neither metric are left out.
func Pprof(functions []types.Function, unit float64) (*profile.Profile, error) {
	prof := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: sampleHits, Unit: "count"},
			{Type: sampleTime, Unit: "nanoseconds"},
		},
		DefaultSampleType: sampleTime,
		PeriodType:        &profile.ValueType{Type: sampleTime, Unit: "nanoseconds"},
		Period:            max(1, int64(math.Round(unit*1e9))),
	}

	for i := range functions {
		function := &functions[i]

		fn := &profile.Function{
			ID:         uint64(len(prof.Function) + 1),
			Name:       function.Name,
			SystemName: function.Name,
			Filename:   function.File,
			StartLine:  int64(function.LineNumber),
		}

		prof.Function = append(prof.Function, fn)

		for _, line := range function.Lines {
			if line.Hits == nil && line.Time == nil {
				continue
			}

			loc := &profile.Location{
				ID:   uint64(len(prof.Location) + 1),
				Line: []profile.Line{{Function: fn, Line: int64(line.LineNumber)}},
			}

			prof.Location = append(prof.Location, loc)

			var hits, nanos int64
			if line.Hits != nil {
				hits = *line.Hits
			}

			if line.Time != nil {
				nanos = int64(math.Round(*line.Time * unit * 1e9))
			}

			prof.Sample = append(prof.Sample, &profile.Sample{
				Location: []*profile.Location{loc},
				Value:    []int64{hits, nanos},
				Label:    map[string][]string{labelCode: {line.Code}},
			})
		}
	}

	if len(prof.Sample) == 0 {
		return nil, errNoSamples
	}

	if err := prof.CheckValid(); err != nil {
		return nil, fmt.Errorf("building pprof profile: %w", err)
	}

	return prof, nil
}

// WritePprof builds the profile and writes it gzip-compressed to w.
func WritePprof(w io.Writer, functions []types.Function, unit float64) error {
	prof, err := Pprof(functions, unit)
	if err != nil {
		return err
	}

	return prof.Write(w) //nolint:wrapcheck
}
