package testutils

import (
	"github.com/containerd/nerdctl/mod/tigron/test"
)

// FunctionReport has two functions with a readable header and one with a broken header, which gets dropped.
const FunctionReport = `Timer unit: 1e-06 s

Total time: 0.0005 s
File: example.py
Function: compute at line 10

Line #      Hits         Time  Per Hit   % Time  Line Contents
==============================================================
    10                                           def compute(y):
    11         1          2.0      2.0      0.4      total = 0
    12      1000        300.0      0.3     60.0      for i in range(y):
    13      1000        198.0      0.2     39.6          total += i
    14         1          0.0      0.0      0.0      return total

Total time: 0.0001 s
File: example.py
Function: broken

Line #      Hits         Time  Per Hit   % Time  Line Contents
==============================================================
    20         1        100.0    100.0    100.0      pass

Total time: 0.0002 s
File: example.py
Function: helper at line 30

Line #      Hits         Time  Per Hit   % Time  Line Contents
==============================================================
    30                                           def helper():
    31         1        200.0    200.0    100.0      return 42
`

// BalancedReport spreads its time so that the hottest line takes 30%.
const BalancedReport = `Timer unit: 1e-06 s

Total time: 0.0001 s
File: example.py
Function: balanced at line 1

Line #      Hits         Time  Per Hit   % Time  Line Contents
==============================================================
     1                                           def balanced():
     2         1         30.0     30.0     30.0      a()
     3         1         30.0     30.0     30.0      b()
     4         1         20.0     20.0     20.0      c()
     5         1         20.0     20.0     20.0      d()
`

// IndexedReport numbers its sections instead of naming them.
const IndexedReport = `Timer unit: 1e-06 s

Function 1: (load)
    1                                           def load():
    2         1         50.0     50.0    100.0      return read()
Function 2: unnamed
    5                                           def save():
    6         2         10.0      5.0    100.0      write()
Function 1:
    9                                           def close():
`

// MemoryCapture is what the memory profiler leaves at the end of a test run.
const MemoryCapture = `=========== MEMRAY REPORT ===========
Allocation results for tests/test_app.py::test_compute at the high watermark

	 📦 Total memory allocated: 1.2MiB
`

// Save writes content to a temporary file of the test and returns its path.
func Save(data test.Data, name, content string) string {
	return data.Temp().Save(content, name)
}
