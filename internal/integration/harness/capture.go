package harness

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/farcloser/primordium/fault"
)

// Capture copies r line by line to echo until a line containing the memory profiler marker shows up. That line
// and everything after it are returned instead of echoed. A nil echo discards the leading part.
func Capture(r io.Reader, echo io.Writer) (string, error) {
	if echo == nil {
		echo = io.Discard
	}

	reader := bufio.NewReader(r)

	var (
		memory    strings.Builder
		capturing bool
	)

	for {
		line, err := reader.ReadString('\n')

		if line != "" {
			if !capturing && strings.Contains(line, memoryMarker) {
				capturing = true
			}

			if capturing {
				memory.WriteString(line)
			} else if _, werr := io.WriteString(echo, line); werr != nil {
				return memory.String(), fmt.Errorf("echoing test output: %w", werr)
			}
		}

		if errors.Is(err, io.EOF) {
			return memory.String(), nil
		}

		if err != nil {
			return memory.String(), fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
	}
}
