//go:build !amd64 && !arm64

package tsc

import (
	_ "unsafe" // for go:linkname
)

// No cycle counter is reachable from portable Go on this platform; all
// three readers share the runtime's monotonic nanosecond clock. It is
// fine-grained (the same source time.Since uses) so calibration yields
// cycles-per-ns of ~1.0 and durations stay meaningful, but the three
// serialization strengths collapse into one.
const synthesized = true

//go:linkname nanotime runtime.nanotime
func nanotime() int64

func readFast() uint64 { return uint64(nanotime()) }
func readMid() uint64  { return uint64(nanotime()) }
func readHard() uint64 { return uint64(nanotime()) }

func barrier() {}
