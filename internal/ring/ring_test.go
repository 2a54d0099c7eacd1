package ring

import "testing"

func TestNewEmpty(t *testing.T) {
	r := New()
	if r.Head() != 0 {
		t.Errorf("Head() = %d, want 0", r.Head())
	}
	if r.Key() != KeyUnset {
		t.Errorf("Key() = %#x, want KeyUnset", r.Key())
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestPushCountsUntilFull(t *testing.T) {
	r := New()
	const n = 1000
	for i := 0; i < n; i++ {
		r.Push(uint64(i+1), 0)
	}
	if r.Len() != n {
		t.Errorf("Len() = %d, want %d", r.Len(), n)
	}
	if r.Head() != n {
		t.Errorf("Head() = %d, want %d", r.Head(), n)
	}
}

func TestPushWrapsSilently(t *testing.T) {
	r := New()
	const k = 100000 // > Cap
	for i := 0; i < k; i++ {
		r.Push(uint64(i+1), 0)
	}
	if r.Len() != Cap {
		t.Errorf("Len() = %d, want %d", r.Len(), Cap)
	}
	if want := uint32(k % Cap); r.Head() != want {
		t.Errorf("Head() = %d, want %d", r.Head(), want)
	}
}

func TestAppendSamplesSkipsEmptySlots(t *testing.T) {
	r := New()
	r.Push(7, 0)
	r.Push(9, 0)
	got := r.AppendSamples(nil)
	if len(got) != 2 || got[0] != 7 || got[1] != 9 {
		t.Errorf("AppendSamples = %v, want [7 9]", got)
	}
}

func TestKeyTagTransitions(t *testing.T) {
	r := New()

	r.Push(1, 4)
	if r.Key() != 4 {
		t.Fatalf("after first push: Key() = %#x, want 4", r.Key())
	}

	r.Push(2, 4)
	if r.Key() != 4 {
		t.Fatalf("same key again: Key() = %#x, want 4", r.Key())
	}

	r.Push(3, 5)
	if r.Key() != KeyMixed {
		t.Fatalf("differing key: Key() = %#x, want KeyMixed", r.Key())
	}

	// Mixed is terminal.
	r.Push(4, 4)
	if r.Key() != KeyMixed {
		t.Fatalf("after mixing: Key() = %#x, want KeyMixed", r.Key())
	}
}

func BenchmarkPush(b *testing.B) {
	r := New()
	for i := 0; i < b.N; i++ {
		r.Push(uint64(i)|1, 0)
	}
}
