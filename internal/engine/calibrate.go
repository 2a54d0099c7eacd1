package engine

import (
	"runtime"
	"time"

	"github.com/wesleyorama2/hotspan/internal/ring"
	"github.com/wesleyorama2/hotspan/internal/stats"
	"github.com/wesleyorama2/hotspan/internal/tsc"
)

const (
	// calibrationSleep is the wall-clock window for deriving
	// cycles-per-nanosecond.
	calibrationSleep = 100 * time.Millisecond

	// calibrationWarmup runs before each permutation's measurement so
	// caches, the branch predictor and the lazily created buffers are
	// warm when samples start counting.
	calibrationWarmup = 1024
)

// EnsureCalibrated runs the self-calibration at most once per process.
// Safe to call from any goroutine; concurrent callers block until the
// first run completes.
func (m *Manager) EnsureCalibrated() {
	m.calOnce.Do(m.calibrate)
}

// calibrate derives cycles-per-nanosecond and fills the overhead table
// with the measured cost of an instrumented no-op for every
// (start, stop) mode permutation plus the Pulse primitive.
func (m *Manager) calibrate() {
	// Keep the measuring goroutine on one OS thread so both the
	// wall-clock window and the no-op pairs read a single core's
	// counter.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	t0 := time.Now()
	c0 := tsc.ReadFast()
	time.Sleep(calibrationSleep)
	c1 := tsc.ReadFast()
	elapsed := time.Since(t0).Nanoseconds()

	cpn := 1.0
	if elapsed > 0 && c1 > c0 {
		cpn = float64(c1-c0) / float64(elapsed)
		if cpn <= 0 {
			cpn = 1.0
		}
	}
	m.cyclesPerNS = cpn

	st := current()
	iters := ring.Cap + calibrationWarmup
	calIDs := make([]*ID, 0, tsc.NumModes*tsc.NumModes+2)

	for s := tsc.Mode(0); s < tsc.NumModes; s++ {
		for e := tsc.Mode(0); e < tsc.NumModes; e++ {
			id := NewID("calibrate." + s.String() + "." + e.String())
			calIDs = append(calIDs, id)

			// The barrier fences each iteration so consecutive
			// no-op pairs cannot interleave in the pipeline and
			// shrink the apparent cost.
			for i := 0; i < iters; i++ {
				tsc.Barrier()
				Start(s, id)
				Stop(e, id)
			}

			k := Key(s, e)
			m.offsets[k] = stats.BucketedMinMedian(st.buffers[id].AppendSamples(nil))
			m.offsetOK[k] = true
		}
	}

	// Pulse cost: a Fast/Fast pair wrapping exactly one Pulse call.
	// The wrap's floor is the Fast/Fast floor plus one Pulse, so the
	// Pulse slot is the difference, clamped at zero.
	wrapID := NewID("calibrate.pulse.wrap")
	pulseID := NewID("calibrate.pulse")
	calIDs = append(calIDs, wrapID, pulseID)

	for i := 0; i < iters+1; i++ { // +1: the first Pulse only baselines
		tsc.Barrier()
		Start(tsc.Fast, wrapID)
		RecordPulse(pulseID)
		Stop(tsc.Fast, wrapID)
	}

	wrap := stats.BucketedMinMedian(st.buffers[wrapID].AppendSamples(nil))
	if ff := m.offsets[Key(tsc.Fast, tsc.Fast)]; wrap > ff {
		m.offsets[KeyPulse] = wrap - ff
	} else {
		m.offsets[KeyPulse] = 0
	}
	m.offsetOK[KeyPulse] = true

	// The calibration sites must not show up in user reports.
	m.dropBuffers(st, calIDs...)

	logger.Info().
		Float64("cycles_per_ns", cpn).
		Uint64("fast_fast_cycles", m.offsets[Key(tsc.Fast, tsc.Fast)]).
		Uint64("pulse_cycles", m.offsets[KeyPulse]).
		Msg("calibration complete")
}
