// Package indexedqueue provides a fixed-capacity keyed FIFO: values are
// retrievable by key while insertion order determines eviction. It backs
// the planner's frame history but is not specific to frames.
package indexedqueue

// Queue holds at most a fixed number of entries, keyed for lookup.
// Inserting beyond capacity evicts the single oldest-inserted entry.
// Queue is not synchronized; callers that share one across goroutines
// own the locking.
type Queue[K comparable, V any] struct {
	capacity int
	order    []K
	items    map[K]V
}

// New creates a queue with the given capacity. A capacity below 1 is
// coerced to 1.
func New[K comparable, V any](capacity int) *Queue[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[K, V]{
		capacity: capacity,
		order:    make([]K, 0, capacity),
		items:    make(map[K]V, capacity),
	}
}

// Add inserts value under key, evicting the oldest entry if the queue
// would exceed its capacity. Adding an existing key replaces its value
// and keeps its original insertion position.
func (q *Queue[K, V]) Add(key K, value V) {
	if _, ok := q.items[key]; ok {
		q.items[key] = value
		return
	}
	if len(q.order) >= q.capacity {
		oldest := q.order[0]
		q.order = q.order[1:]
		delete(q.items, oldest)
	}
	q.order = append(q.order, key)
	q.items[key] = value
}

// Get returns the value stored under key. The second result reports
// whether the key is present; an absent key is not an error.
func (q *Queue[K, V]) Get(key K) (V, bool) {
	v, ok := q.items[key]
	return v, ok
}

// Latest returns the most recently inserted value, or false when empty.
func (q *Queue[K, V]) Latest() (V, bool) {
	if len(q.order) == 0 {
		var zero V
		return zero, false
	}
	return q.items[q.order[len(q.order)-1]], true
}

// Len returns the current number of entries.
func (q *Queue[K, V]) Len() int { return len(q.order) }

// Cap returns the fixed capacity set at construction.
func (q *Queue[K, V]) Cap() int { return q.capacity }

// Keys returns the retained keys from oldest to newest insertion.
func (q *Queue[K, V]) Keys() []K {
	keys := make([]K, len(q.order))
	copy(keys, q.order)
	return keys
}
