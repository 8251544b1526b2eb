package planning

import (
	"sync"

	"github.com/M-Vagrant/apollo/internal/indexedqueue"
)

// DefaultMaxHistoryFrames bounds the history when no capacity is
// configured.
const DefaultMaxHistoryFrames = 10

// FrameHistory retains the most recent successfully initialized frames,
// keyed by sequence number. The cycle driver writes it and the diagnostics
// monitor reads it from its own goroutine, so access is guarded.
type FrameHistory struct {
	mu sync.RWMutex
	q  *indexedqueue.Queue[uint32, *Frame]
}

// NewFrameHistory creates a history bounded to capacity frames. A capacity
// below 1 falls back to DefaultMaxHistoryFrames.
func NewFrameHistory(capacity int) *FrameHistory {
	if capacity < 1 {
		capacity = DefaultMaxHistoryFrames
	}
	return &FrameHistory{q: indexedqueue.New[uint32, *Frame](capacity)}
}

// Add retains a frame, evicting the oldest retained frame when full. Nil
// frames are dropped.
func (h *FrameHistory) Add(f *Frame) {
	if f == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.q.Add(f.SequenceNum(), f)
}

// Get returns the retained frame with the given sequence number, or nil.
func (h *FrameHistory) Get(seq uint32) *Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	f, ok := h.q.Get(seq)
	if !ok {
		return nil
	}
	return f
}

// Latest returns the most recently retained frame, or nil when empty.
func (h *FrameHistory) Latest() *Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	f, ok := h.q.Latest()
	if !ok {
		return nil
	}
	return f
}

// Len returns the number of retained frames.
func (h *FrameHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.q.Len()
}

// Cap returns the history's fixed capacity.
func (h *FrameHistory) Cap() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.q.Cap()
}

// Seqs returns the retained sequence numbers from oldest to newest.
func (h *FrameHistory) Seqs() []uint32 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.q.Keys()
}
