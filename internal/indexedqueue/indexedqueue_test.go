package indexedqueue

import (
	"testing"
)

func TestQueue_AddAndGet(t *testing.T) {
	q := New[uint32, string](3)

	q.Add(1, "one")
	q.Add(2, "two")

	if q.Len() != 2 {
		t.Errorf("Len = %d, want 2", q.Len())
	}

	v, ok := q.Get(1)
	if !ok || v != "one" {
		t.Errorf("Get(1) = %q, %v, want \"one\", true", v, ok)
	}

	// Missing key is not an error
	_, ok = q.Get(99)
	if ok {
		t.Error("Get(99) succeeded on absent key, expected false")
	}
}

func TestQueue_EvictsOldest(t *testing.T) {
	q := New[uint32, int](2)

	q.Add(1, 10)
	q.Add(2, 20)
	q.Add(3, 30)

	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}
	if _, ok := q.Get(1); ok {
		t.Error("key 1 still present after eviction")
	}
	if v, ok := q.Get(2); !ok || v != 20 {
		t.Errorf("Get(2) = %d, %v, want 20, true", v, ok)
	}
	if v, ok := q.Get(3); !ok || v != 30 {
		t.Errorf("Get(3) = %d, %v, want 30, true", v, ok)
	}
}

func TestQueue_DuplicateKeyReplaces(t *testing.T) {
	q := New[string, int](2)

	q.Add("a", 1)
	q.Add("b", 2)
	q.Add("a", 100)

	// Replacement must not grow the queue or evict anything.
	if q.Len() != 2 {
		t.Errorf("Len = %d, want 2", q.Len())
	}
	if v, _ := q.Get("a"); v != 100 {
		t.Errorf("Get(a) = %d, want 100", v)
	}
	if v, _ := q.Get("b"); v != 2 {
		t.Errorf("Get(b) = %d, want 2", v)
	}

	// Insertion position is kept, so "a" is still the eviction candidate.
	q.Add("c", 3)
	if _, ok := q.Get("a"); ok {
		t.Error("key a still present, expected eviction of oldest position")
	}
}

func TestQueue_Latest(t *testing.T) {
	q := New[int, string](3)

	if _, ok := q.Latest(); ok {
		t.Error("Latest succeeded on empty queue, expected false")
	}

	q.Add(1, "first")
	q.Add(2, "second")

	v, ok := q.Latest()
	if !ok || v != "second" {
		t.Errorf("Latest = %q, %v, want \"second\", true", v, ok)
	}

	// Replacing an older key does not make it the latest.
	q.Add(1, "updated")
	v, _ = q.Latest()
	if v != "second" {
		t.Errorf("Latest after replace = %q, want \"second\"", v)
	}
}

func TestQueue_Keys(t *testing.T) {
	q := New[int, int](3)
	q.Add(3, 0)
	q.Add(1, 0)
	q.Add(2, 0)

	keys := q.Keys()
	want := []int{3, 1, 2}
	if len(keys) != len(want) {
		t.Fatalf("Keys len = %d, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys[%d] = %d, want %d", i, keys[i], want[i])
		}
	}
}

func TestQueue_CapacityCoercion(t *testing.T) {
	q := New[int, int](0)
	if q.Cap() != 1 {
		t.Errorf("Cap = %d, want 1", q.Cap())
	}

	q.Add(1, 10)
	q.Add(2, 20)
	if q.Len() != 1 {
		t.Errorf("Len = %d, want 1", q.Len())
	}
	if _, ok := q.Get(2); !ok {
		t.Error("newest entry missing after eviction")
	}
}
