package engine

import "github.com/wesleyorama2/hotspan/internal/tsc"

// Start opens a scope for id on the calling goroutine. The timestamp is
// read after all bookkeeping so the measured region starts as close to
// the caller's next instruction as possible. If the scope stack is full
// the call is dropped: no scope is pushed, and a later Stop pops the
// innermost scope that was pushed.
func Start(mode tsc.Mode, id *ID) {
	st := current()
	t := st.top
	if t < MaxDepth {
		st.stackIDs[t] = id
		st.stackModes[t] = uint8(mode)
		st.stackStarts[t] = tsc.Read(mode)
		st.top = t + 1
	}
}

// Stop closes the innermost open scope. The timestamp is read before
// any storage work so the buffer lookup does not inflate the
// measurement. The id argument is advisory only: pairing is strictly
// LIFO and the sample is recorded against the top-of-stack id, which
// keeps the stack consistent even when callers mismatch ids.
func Stop(mode tsc.Mode, id *ID) {
	end := tsc.Read(mode)

	st := current()
	t := st.top
	if t == 0 {
		return // Stop without a matching Start
	}
	t--
	st.top = t

	start := st.stackStarts[t]
	if end <= start {
		// The counter went backwards (core migration on
		// non-invariant hardware) or stood still; the delta is
		// coerced to the empty sentinel and discarded.
		return
	}

	openID := st.stackIDs[t]
	rb := st.buffer(openID)
	rb.Push(end-start, Key(tsc.Mode(st.stackModes[t]), mode))
}

// RecordPulse records the delta since the previous Pulse call for id on
// this goroutine. The first call per (goroutine, id) resolves and
// caches the buffer reference, records the baseline and produces no
// sample; every later call is a Fast read, a subtraction and a push.
func RecordPulse(id *ID) {
	st := current()
	ps := st.pulses[id]
	if ps == nil {
		// cold: first pulse at this site on this goroutine
		st.pulses[id] = &pulseState{rb: st.buffer(id), last: tsc.ReadFast()}
		return
	}

	now := tsc.ReadFast()
	if now > ps.last {
		ps.rb.Push(now-ps.last, KeyPulse)
	}
	ps.last = now
}
