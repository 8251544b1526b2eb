package planning

import (
	"sync"
	"testing"
)

func TestFrameHistory_BoundedFIFO(t *testing.T) {
	h := NewFrameHistory(2)

	h.Add(NewFrame(1))
	h.Add(NewFrame(2))
	h.Add(NewFrame(3))

	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
	if f := h.Get(1); f != nil {
		t.Error("frame 1 still retained after eviction")
	}
	if f := h.Get(2); f == nil || f.SequenceNum() != 2 {
		t.Error("frame 2 missing")
	}
	if f := h.Get(3); f == nil || f.SequenceNum() != 3 {
		t.Error("frame 3 missing")
	}

	seqs := h.Seqs()
	if len(seqs) != 2 || seqs[0] != 2 || seqs[1] != 3 {
		t.Errorf("Seqs = %v, want [2 3]", seqs)
	}
}

func TestFrameHistory_Latest(t *testing.T) {
	h := NewFrameHistory(3)
	if h.Latest() != nil {
		t.Error("Latest on empty history, want nil")
	}

	h.Add(NewFrame(7))
	h.Add(NewFrame(8))
	if f := h.Latest(); f == nil || f.SequenceNum() != 8 {
		t.Errorf("Latest = %v, want frame 8", f)
	}
}

func TestFrameHistory_CapacityFallback(t *testing.T) {
	h := NewFrameHistory(0)
	if h.Cap() != DefaultMaxHistoryFrames {
		t.Errorf("Cap = %d, want %d", h.Cap(), DefaultMaxHistoryFrames)
	}
}

func TestFrameHistory_NilFrameDropped(t *testing.T) {
	h := NewFrameHistory(2)
	h.Add(nil)
	if h.Len() != 0 {
		t.Errorf("Len = %d after adding nil, want 0", h.Len())
	}
}

func TestFrameHistory_ConcurrentReads(t *testing.T) {
	h := NewFrameHistory(4)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := uint32(1); i <= 100; i++ {
			h.Add(NewFrame(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			h.Latest()
			h.Seqs()
			h.Len()
		}
	}()
	wg.Wait()

	if h.Len() != 4 {
		t.Errorf("Len = %d, want 4", h.Len())
	}
}
