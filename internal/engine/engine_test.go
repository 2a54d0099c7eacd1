package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/wesleyorama2/hotspan/internal/ring"
	"github.com/wesleyorama2/hotspan/internal/tsc"
)

// run executes f on a fresh goroutine and hands its storage back, so
// each test starts from an empty scope stack and buffer map.
func run(t *testing.T, f func(st *Storage)) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f(current())
	}()
	<-done
}

func TestStartStopRecordsOneSample(t *testing.T) {
	id := NewID("one-sample")
	run(t, func(st *Storage) {
		Start(tsc.Fast, id)
		Stop(tsc.Fast, id)

		rb := st.buffers[id]
		if rb == nil {
			t.Fatal("no buffer created for id")
		}
		if rb.Len() != 1 {
			t.Fatalf("buffer has %d samples, want 1", rb.Len())
		}
		for _, v := range rb.AppendSamples(nil) {
			if v == 0 {
				t.Fatal("recorded sample is zero")
			}
		}
	})
}

func TestDeepNestingPairsLIFO(t *testing.T) {
	a, b := NewID("nest-a"), NewID("nest-b")
	run(t, func(st *Storage) {
		var f func(d int)
		f = func(d int) {
			Start(tsc.Fast, a)
			if d > 0 {
				Start(tsc.Fast, b)
				f(d - 1)
				Stop(tsc.Fast, b)
			}
			Stop(tsc.Fast, a)
		}
		f(9)

		if got := st.buffers[a].Len(); got != 10 {
			t.Errorf("id a: %d samples, want 10", got)
		}
		if got := st.buffers[b].Len(); got != 9 {
			t.Errorf("id b: %d samples, want 9", got)
		}
	})
}

func TestRingOverflow(t *testing.T) {
	id := NewID("overflow")
	run(t, func(st *Storage) {
		const k = 100000
		for i := 0; i < k; i++ {
			Start(tsc.Fast, id)
			Stop(tsc.Fast, id)
		}
		rb := st.buffers[id]
		if rb.Len() != ring.Cap {
			t.Errorf("Len = %d, want %d", rb.Len(), ring.Cap)
		}
		if want := uint32(k % ring.Cap); rb.Head() != want {
			t.Errorf("Head = %d, want %d", rb.Head(), want)
		}
	})
}

func TestStopOnEmptyStackIsNoOp(t *testing.T) {
	id := NewID("stop-only")
	run(t, func(st *Storage) {
		Stop(tsc.Fast, id)
		if len(st.buffers) != 0 {
			t.Errorf("Stop on empty stack touched %d buffers", len(st.buffers))
		}
		if st.top != 0 {
			t.Errorf("top = %d, want 0", st.top)
		}
	})
}

func TestStackOverflowDropsInvisibly(t *testing.T) {
	id := NewID("deep")
	run(t, func(st *Storage) {
		const k = MaxDepth + 6
		for i := 0; i < k; i++ {
			Start(tsc.Fast, id)
		}
		if st.top != MaxDepth {
			t.Fatalf("top = %d after %d starts, want %d", st.top, k, MaxDepth)
		}

		// M stops pop real scopes; the dropped starts never existed.
		const m = 10
		for i := 0; i < m; i++ {
			Stop(tsc.Fast, id)
		}
		if st.top != MaxDepth-m {
			t.Errorf("top = %d, want %d", st.top, MaxDepth-m)
		}

		for i := 0; i < k-m; i++ {
			Stop(tsc.Fast, id)
		}
		if st.top != 0 {
			t.Errorf("top = %d after draining, want 0", st.top)
		}
		// Only MaxDepth scopes ever recorded.
		if got := st.buffers[id].Len(); got != MaxDepth {
			t.Errorf("%d samples, want %d", got, MaxDepth)
		}
	})
}

func TestStopIDAdvisory(t *testing.T) {
	outer, inner, wrong := NewID("adv-outer"), NewID("adv-inner"), NewID("adv-wrong")
	run(t, func(st *Storage) {
		Start(tsc.Fast, outer)
		Start(tsc.Fast, inner)
		Stop(tsc.Fast, wrong) // records against inner, the top of stack
		Stop(tsc.Fast, outer)

		if st.buffers[wrong] != nil {
			t.Error("sample recorded against the advisory id")
		}
		if st.buffers[inner].Len() != 1 {
			t.Error("top-of-stack id did not receive the sample")
		}
		if st.buffers[outer].Len() != 1 {
			t.Error("outer scope lost its sample")
		}
	})
}

func TestMixedModeTagging(t *testing.T) {
	id := NewID("mixed")
	run(t, func(st *Storage) {
		Start(tsc.Fast, id)
		Stop(tsc.Hard, id)
		if got, want := st.buffers[id].Key(), Key(tsc.Fast, tsc.Hard); got != want {
			t.Fatalf("tag = %#x, want key(Fast,Hard) = %#x", got, want)
		}

		Start(tsc.Mid, id)
		Stop(tsc.Hard, id)
		if got := st.buffers[id].Key(); got != ring.KeyMixed {
			t.Fatalf("tag = %#x after cross-mode pair, want KeyMixed", got)
		}
	})
}

func TestPulseLoop(t *testing.T) {
	id := NewID("pulse-loop")
	run(t, func(st *Storage) {
		for i := 0; i < 1001; i++ {
			time.Sleep(10 * time.Microsecond)
			RecordPulse(id)
		}
		rb := st.buffers[id]
		if rb == nil {
			t.Fatal("no pulse buffer")
		}
		if got := rb.Len(); got != 1000 {
			t.Errorf("%d samples from 1001 pulses, want 1000", got)
		}
		if got := rb.Key(); got != KeyPulse {
			t.Errorf("tag = %#x, want KeyPulse", got)
		}
		for _, v := range rb.AppendSamples(nil) {
			if v < 1 {
				t.Fatalf("pulse delta %d below one cycle", v)
			}
		}
	})
}

func TestDisjointIDsAcrossGoroutines(t *testing.T) {
	x, y := NewID("disjoint-x"), NewID("disjoint-y")
	const n = 500

	var wg sync.WaitGroup
	for _, id := range []*ID{x, y} {
		wg.Add(1)
		go func(id *ID) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				Start(tsc.Fast, id)
				Stop(tsc.Fast, id)
			}
		}(id)
	}
	wg.Wait()

	if got := len(M().ExtractRaw(x)); got != n {
		t.Errorf("id x: %d samples, want %d", got, n)
	}
	if got := len(M().ExtractRaw(y)); got != n {
		t.Errorf("id y: %d samples, want %d", got, n)
	}
}

func TestSnapshotMatchesBufferUnion(t *testing.T) {
	id := NewID("snapshot-union")
	const workers, n = 3, 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				Start(tsc.Fast, id)
				Stop(tsc.Fast, id)
			}
		}()
	}
	wg.Wait()

	raw := M().ExtractRaw(id)
	if len(raw) != workers*n {
		t.Fatalf("ExtractRaw returned %d samples, want %d", len(raw), workers*n)
	}

	want := make(map[uint64]int)
	total := 0
	for cid, bufs := range M().Collect() {
		if cid != id {
			continue
		}
		for _, b := range bufs {
			total += len(b.Samples)
			for _, v := range b.Samples {
				want[v]++
			}
		}
	}
	if total != len(raw) {
		t.Errorf("Collect total %d != ExtractRaw %d", total, len(raw))
	}
	for _, v := range raw {
		if want[v] == 0 {
			t.Fatalf("sample %d missing from per-buffer union", v)
		}
		want[v]--
	}
}

func TestHotPathDoesNotAllocate(t *testing.T) {
	id := NewID("alloc-free")
	run(t, func(st *Storage) {
		// Warm the cold first-use paths.
		Start(tsc.Fast, id)
		Stop(tsc.Fast, id)
		RecordPulse(id)
		RecordPulse(id)

		allocs := testing.AllocsPerRun(1000, func() {
			Start(tsc.Fast, id)
			Stop(tsc.Fast, id)
			RecordPulse(id)
		})
		if allocs != 0 {
			t.Errorf("warmed hot path allocates %v per op, want 0", allocs)
		}
	})
}

func BenchmarkStartStopFast(b *testing.B) {
	id := NewID("bench-fast")
	Start(tsc.Fast, id)
	Stop(tsc.Fast, id)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Start(tsc.Fast, id)
		Stop(tsc.Fast, id)
	}
}

func BenchmarkPulse(b *testing.B) {
	id := NewID("bench-pulse")
	RecordPulse(id)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RecordPulse(id)
	}
}
