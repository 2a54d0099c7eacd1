// Package engine is the recording core: per-goroutine sample storage,
// the process-wide manager, the Start/Stop and Pulse hot paths, and the
// self-calibration that measures what those hot paths themselves cost.
//
// The hot path is strictly synchronous and, once a goroutine's storage
// and a site's buffer exist, performs no allocation and takes no lock.
// Everything between the two timestamp reads of a Start/Stop pair is
// deliberately minimal; the ordering of the reads relative to the
// bookkeeping is part of the design, not an accident.
package engine

import "github.com/wesleyorama2/hotspan/internal/tsc"

// ID identifies a measurement site. Identity is the pointer value: the
// engine never hashes or compares the display name on the hot path, and
// the same logical site must present the same *ID for the process
// lifetime. Package-scope variables satisfy this naturally.
type ID struct {
	name string
}

// NewID mints the identity for a measurement site. Call it once per
// site, at package scope; minting a fresh ID per measurement splits the
// site's samples across unrelated buffers.
func NewID(name string) *ID {
	return &ID{name: name}
}

// Name returns the display name used in reports.
func (id *ID) Name() string { return id.name }

// Calibration keys index the overhead table. Keys 0..8 encode the nine
// (start mode, stop mode) permutations, key 9 is the Pulse slot. The
// sentinels ring.KeyUnset and ring.KeyMixed never index the table.
const (
	// KeyPulse is the overhead-table slot for the Pulse primitive.
	KeyPulse byte = 9

	// NumKeys is the size of the overhead table.
	NumKeys = 10
)

// Key encodes a (start, stop) mode pair.
func Key(start, stop tsc.Mode) byte {
	return byte(tsc.NumModes*uint8(start) + uint8(stop))
}
