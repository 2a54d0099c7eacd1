package engine

import (
	"sync"
	"sync/atomic"
)

// The goroutine index maps goid -> *Storage without locks. It is a
// fixed-capacity open-addressing table: slots are claimed with a CAS on
// the key and never released (goids are never reused, and storages live
// until process exit). Each goroutine only ever looks up its own key,
// so a slot's value needs no ordering beyond the owner's program order.
//
// If every slot in a goroutine's probe window (maxProbe slots from its
// hash) is already claimed, that goroutine falls back to a
// mutex-guarded map: its
// samples are still recorded, just no longer lock-free. The fallback is
// logged once.
const (
	indexBits = 16
	indexSize = 1 << indexBits
	indexMask = indexSize - 1

	// maxProbe bounds the linear probe before declaring the window
	// full; long probe chains would otherwise creep into the hot path.
	maxProbe = 128
)

type indexSlot struct {
	gid int64 // atomic; 0 = empty
	st  *Storage
}

type goroutineIndex struct {
	slots [indexSize]indexSlot

	overflowMu  sync.Mutex
	overflow    map[int64]*Storage
	overflowLog sync.Once
}

var defaultIndex goroutineIndex

// hashGID spreads goids (small dense integers) across the table.
func hashGID(g int64) uint32 {
	return uint32((uint64(g)*0x9E3779B97F4A7C15)>>(64-indexBits)) & indexMask
}

// lookup returns the storage for g, or nil if g has none yet.
func (x *goroutineIndex) lookup(g int64) *Storage {
	h := hashGID(g)
	for i := uint32(0); i < maxProbe; i++ {
		s := &x.slots[(h+i)&indexMask]
		k := atomic.LoadInt64(&s.gid)
		if k == g {
			return s.st
		}
		if k == 0 {
			return nil
		}
	}
	return x.overflowLookup(g)
}

// insert publishes st under g. Called exactly once per goroutine, by
// that goroutine.
func (x *goroutineIndex) insert(g int64, st *Storage) {
	h := hashGID(g)
	for i := uint32(0); i < maxProbe; i++ {
		s := &x.slots[(h+i)&indexMask]
		if atomic.CompareAndSwapInt64(&s.gid, 0, g) {
			// The slot is ours; only this goroutine reads s.st
			// through this key, so a plain store suffices.
			s.st = st
			return
		}
		if atomic.LoadInt64(&s.gid) == g {
			s.st = st
			return
		}
	}
	x.overflowInsert(g, st)
}

func (x *goroutineIndex) overflowLookup(g int64) *Storage {
	x.overflowMu.Lock()
	st := x.overflow[g]
	x.overflowMu.Unlock()
	return st
}

func (x *goroutineIndex) overflowInsert(g int64, st *Storage) {
	x.overflowLog.Do(func() {
		logger.Warn().Msg("goroutine index full; overflow goroutines record through a lock")
	})
	x.overflowMu.Lock()
	if x.overflow == nil {
		x.overflow = make(map[int64]*Storage)
	}
	x.overflow[g] = st
	x.overflowMu.Unlock()
}
