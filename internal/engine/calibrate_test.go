package engine

import (
	"testing"

	"github.com/wesleyorama2/hotspan/internal/tsc"
)

func TestCalibrationFillsTable(t *testing.T) {
	m := M()
	m.EnsureCalibrated()

	if m.CyclesPerNS() <= 0 {
		t.Fatalf("CyclesPerNS = %v, want > 0", m.CyclesPerNS())
	}
	for s := tsc.Mode(0); s < tsc.NumModes; s++ {
		for e := tsc.Mode(0); e < tsc.NumModes; e++ {
			k := Key(s, e)
			if !m.offsetOK[k] {
				t.Errorf("offset for (%v,%v) never measured", s, e)
			}
		}
	}
	if !m.offsetOK[KeyPulse] {
		t.Error("pulse offset never measured")
	}
}

func TestCalibrationIdempotent(t *testing.T) {
	m := M()
	m.EnsureCalibrated()

	cpn := m.CyclesPerNS()
	offsets := m.offsets

	m.EnsureCalibrated()
	if m.CyclesPerNS() != cpn {
		t.Errorf("second EnsureCalibrated changed cycles/ns: %v -> %v", cpn, m.CyclesPerNS())
	}
	if m.offsets != offsets {
		t.Error("second EnsureCalibrated changed the overhead table")
	}
}

func TestCalibrationLeavesNoTelemetry(t *testing.T) {
	m := M()
	m.EnsureCalibrated()

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range m.storages {
		for id := range st.buffers {
			if len(id.Name()) >= 10 && id.Name()[:10] == "calibrate." {
				t.Errorf("calibration id %q still registered", id.Name())
			}
		}
	}
}

func TestOffsetSentinels(t *testing.T) {
	m := M()
	m.EnsureCalibrated()

	if m.Offset(0xFF) != 0 {
		t.Error("Offset(KeyUnset) != 0")
	}
	if m.Offset(0xFE) != 0 {
		t.Error("Offset(KeyMixed) != 0")
	}
	if m.Offset(NumKeys) != 0 {
		t.Error("Offset(out of range) != 0")
	}
}

func TestKeyEncoding(t *testing.T) {
	if Key(tsc.Fast, tsc.Fast) != 0 {
		t.Error("key(Fast,Fast) != 0")
	}
	if Key(tsc.Fast, tsc.Hard) != 2 {
		t.Error("key(Fast,Hard) != 2")
	}
	if Key(tsc.Hard, tsc.Hard) != 8 {
		t.Error("key(Hard,Hard) != 8")
	}
	if Key(tsc.Mid, tsc.Fast) != 3 {
		t.Error("key(Mid,Fast) != 3")
	}
}
