package ringbuf

import (
	"sort"
	"testing"
)

func TestWindow_BasicPush(t *testing.T) {
	w := New(3)

	if _, evicted := w.Push(1); evicted {
		t.Fatal("push into empty window should not evict")
	}
	w.Push(2)

	if w.Len() != 2 {
		t.Fatalf("expected len=2, got %d", w.Len())
	}
	if w.At(0) != 1 || w.At(1) != 2 {
		t.Fatalf("expected [1 2], got [%v %v]", w.At(0), w.At(1))
	}
}

func TestWindow_Evicts(t *testing.T) {
	w := New(2)
	w.Push(10)
	w.Push(20)

	old, evicted := w.Push(30)
	if !evicted || old != 10 {
		t.Fatalf("expected eviction of 10, got old=%v evicted=%v", old, evicted)
	}
	if w.Len() != 2 || w.At(0) != 20 || w.At(1) != 30 {
		t.Fatalf("expected [20 30], got len=%d", w.Len())
	}
}

func TestWindow_Wraparound(t *testing.T) {
	w := New(4)

	// Push many rounds and check the oldest-first view each time
	for i := 0; i < 23; i++ {
		w.Push(float64(i))
		n := w.Len()
		for j := 0; j < n; j++ {
			want := float64(i - n + 1 + j)
			if got := w.At(j); got != want {
				t.Fatalf("after push %d: At(%d)=%v, want %v", i, j, got, want)
			}
		}
	}
}

func TestWindow_ValuesHoldsWindowContents(t *testing.T) {
	w := New(3)
	for _, v := range []float64{5, 6, 7, 8, 9} {
		w.Push(v)
	}

	got := append([]float64(nil), w.Values()...)
	sort.Float64s(got)
	want := []float64{7, 8, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values()=%v, want %v", got, want)
		}
	}

	partial := New(5)
	partial.Push(1)
	partial.Push(2)
	if len(partial.Values()) != 2 {
		t.Fatalf("expected 2 values before wrap, got %d", len(partial.Values()))
	}
}

func TestWindow_InvalidCapacityPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero capacity")
		}
	}()
	New(0)
}
