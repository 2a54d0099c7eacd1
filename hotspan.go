// Package hotspan instruments hot paths with the CPU timestamp counter.
//
// Measurement sites are identified by *ID values minted once with NewID;
// identity is the pointer, so the same site must present the same *ID
// for the process lifetime (package-scope variables do this naturally).
// Three recorders trade measurement cost against serialization
// strength:
//
//	var idParse = hotspan.NewID("parse")
//
//	hotspan.Fast.Start(idParse)
//	parse(buf)
//	hotspan.Fast.Stop(idParse)
//
// Pulse records the interval between successive calls at one site, for
// tight loops where no scope exists:
//
//	for msg := range feed {
//		hotspan.Pulse(idTick)
//		handle(msg)
//	}
//
// Recording is per goroutine: no locks, and no allocation once a site's
// buffer exists. Reports are produced at a quiescent point; dumping
// while other goroutines are still recording is undefined.
//
// The library never pins goroutines. On hardware without an invariant
// TSC, pin the measuring goroutine with runtime.LockOSThread (and the
// thread to a core): a delta taken across a migration is unreliable, and
// only one that comes out zero or negative is discarded.
package hotspan

import (
	"io"

	"github.com/wesleyorama2/hotspan/internal/engine"
	"github.com/wesleyorama2/hotspan/internal/report"
	"github.com/wesleyorama2/hotspan/internal/tsc"
)

// ID identifies a measurement site by pointer value. See NewID.
type ID = engine.ID

// NewID mints the identity for a measurement site. Call once per site,
// at package scope. The API deliberately takes no ad-hoc strings at the
// recording calls: a string key would tempt per-call formatting and
// hashing, neither of which belongs on a hot path.
func NewID(name string) *ID {
	return engine.NewID(name)
}

// Unit selects the report domain: raw cycle counts or wall time.
type Unit = report.Unit

// Data selects raw samples or overhead-corrected samples.
type Data = report.Data

// Report modes.
const (
	Cycles     = report.Cycles
	Time       = report.Time
	Raw        = report.Raw
	Calibrated = report.Calibrated
)

// A Recorder measures scoped regions with one of the three timestamp
// sources. Use the package-level Fast, Mid and Hard values.
type Recorder struct {
	mode tsc.Mode
}

// The three recorder flavors, in increasing serialization strength.
// Fast is cheapest but the CPU may reorder instructions into or out of
// the measured region; Hard fences speculation at both ends and costs
// the most; Mid sits between.
var (
	Fast = Recorder{mode: tsc.Fast}
	Mid  = Recorder{mode: tsc.Mid}
	Hard = Recorder{mode: tsc.Hard}
)

// Start opens a scope for id on the calling goroutine. Scopes nest
// strictly LIFO up to 64 deep; deeper Start calls are dropped.
func (r Recorder) Start(id *ID) {
	engine.Start(r.mode, id)
}

// Stop closes the innermost open scope and records its duration. The id
// is advisory: the sample is recorded against the scope actually on top
// of the stack, so mismatched ids cannot corrupt the stack.
func (r Recorder) Stop(id *ID) {
	engine.Stop(r.mode, id)
}

// Pulse records the delta since the previous Pulse call for id on this
// goroutine. The first call per goroutine records nothing.
func Pulse(id *ID) {
	engine.RecordPulse(id)
}

// Snapshot returns all raw cycle samples recorded for id across every
// goroutine. Callers must have quiesced recording first.
func Snapshot(id *ID) []uint64 {
	return engine.M().ExtractRaw(id)
}

// Calibrate measures the library's own overhead for every (start, stop)
// mode permutation and derives cycles-per-nanosecond. It runs at most
// once per process and is invoked implicitly by the dump entry points;
// call it explicitly to choose when the ~100 ms calibration pause
// happens.
func Calibrate() {
	engine.M().EnsureCalibrated()
}

// CyclesPerNanosecond returns the calibration constant (1.0 when the
// wall clock could not be measured, or before Calibrate).
func CyclesPerNanosecond() float64 {
	return engine.M().CyclesPerNS()
}

// DumpToStream writes the telemetry report to w. With Calibrated data
// the per-permutation overhead table is included and each sample has
// its buffer's overhead subtracted (clamped at zero). Undefined if
// recording is still in progress.
func DumpToStream(w io.Writer, unit Unit, data Data) error {
	return report.Write(w, unit, data)
}

// DumpJSON writes the report as an indented JSON document.
func DumpJSON(w io.Writer, unit Unit, data Data) error {
	return report.WriteJSON(w, unit, data)
}

// DumpPercentiles writes an HDR-histogram latency percentile summary
// (P50/P90/P95/P99 per component, in time units).
func DumpPercentiles(w io.Writer) error {
	return report.WritePercentiles(w)
}
