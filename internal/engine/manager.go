package engine

import "sync"

// Manager is the process-wide registry of goroutine storages plus the
// calibration state. It sees no hot-path traffic: its lock is taken on
// storage creation, calibration and extraction only.
type Manager struct {
	mu       sync.Mutex
	storages []*Storage

	calOnce     sync.Once
	cyclesPerNS float64
	offsets     [NumKeys]uint64
	offsetOK    [NumKeys]bool
}

var mgr = &Manager{cyclesPerNS: 1.0}

// M returns the process manager.
func M() *Manager { return mgr }

func (m *Manager) register(st *Storage) {
	m.mu.Lock()
	m.storages = append(m.storages, st)
	m.mu.Unlock()
}

// CyclesPerNS returns the calibration constant; 1.0 until calibration
// has run (or when the wall clock could not be measured).
func (m *Manager) CyclesPerNS() float64 {
	return m.cyclesPerNS
}

// Offset returns the measured overhead in cycles for a calibration key,
// or 0 for the sentinels, out-of-range keys and slots that were never
// measured.
func (m *Manager) Offset(key byte) uint64 {
	if key >= NumKeys || !m.offsetOK[key] {
		return 0
	}
	return m.offsets[key]
}

// BufferDump is one ring buffer's extracted content: the non-zero
// samples plus the buffer's calibration tag, which selects the offset
// to subtract in calibrated mode.
type BufferDump struct {
	Key     byte
	Samples []uint64
}

// Collect extracts every buffer of every registered storage, grouped by
// id. The lock is held for the whole scan; the caller must have
// quiesced all recording goroutines (concurrent dump is undefined).
func (m *Manager) Collect() map[*ID][]BufferDump {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[*ID][]BufferDump)
	for _, st := range m.storages {
		for id, rb := range st.buffers {
			samples := rb.AppendSamples(nil)
			if len(samples) == 0 {
				continue
			}
			out[id] = append(out[id], BufferDump{Key: rb.Key(), Samples: samples})
		}
	}
	return out
}

// ExtractRaw returns all non-zero samples recorded for id across all
// registered storages.
func (m *Manager) ExtractRaw(id *ID) []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []uint64
	for _, st := range m.storages {
		if rb := st.buffers[id]; rb != nil {
			out = rb.AppendSamples(out)
		}
	}
	return out
}

// dropBuffers removes the given ids from st's maps. The calibrator uses
// it to keep its own telemetry out of reports.
func (m *Manager) dropBuffers(st *Storage, ids ...*ID) {
	m.mu.Lock()
	for _, id := range ids {
		delete(st.buffers, id)
		delete(st.pulses, id)
	}
	m.mu.Unlock()
}
