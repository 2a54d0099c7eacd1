package engine

import (
	"github.com/wesleyorama2/hotspan/internal/gid"
	"github.com/wesleyorama2/hotspan/internal/ring"
)

// MaxDepth is the scope-stack depth per goroutine. Start calls beyond
// this nesting depth are silently dropped.
const MaxDepth = 64

// pulseState is the per-(goroutine, id) cache for the Pulse primitive:
// the buffer reference is resolved once, then every later call is a
// counter read, a subtraction and a push.
type pulseState struct {
	rb   *ring.Ring
	last uint64
}

// Storage holds one goroutine's recording state. It is created lazily
// on the goroutine's first instrumentation call, registered with the
// manager under lock, and never destroyed before process exit. Only the
// owning goroutine writes it; the reporter reads it under the manager
// lock while no recording is expected (dumping concurrently with
// recording is undefined).
//
// The scope stack is three parallel arrays rather than a slice of
// structs so a push touches three adjacent array stores and no pointer
// indirection.
type Storage struct {
	top         int32
	stackIDs    [MaxDepth]*ID
	stackStarts [MaxDepth]uint64
	stackModes  [MaxDepth]uint8

	buffers map[*ID]*ring.Ring
	pulses  map[*ID]*pulseState

	gid int64
}

// current returns the calling goroutine's storage, creating and
// registering it on first use.
func current() *Storage {
	g := gid.ID()
	if st := defaultIndex.lookup(g); st != nil {
		return st
	}
	return newStorage(g) // cold: first instrumentation call on this goroutine
}

func newStorage(g int64) *Storage {
	st := &Storage{
		buffers: make(map[*ID]*ring.Ring),
		pulses:  make(map[*ID]*pulseState),
		gid:     g,
	}
	mgr.register(st)
	defaultIndex.insert(g, st)
	logger.Debug().Int64("goroutine", g).Msg("storage registered")
	return st
}

// buffer returns the ring buffer for id, creating it on first use (a
// one-time allocation per (goroutine, id); callers needing a fully
// allocation-free hot path pre-touch their ids at startup).
func (st *Storage) buffer(id *ID) *ring.Ring {
	rb := st.buffers[id]
	if rb == nil {
		rb = ring.New()
		st.buffers[id] = rb
	}
	return rb
}
