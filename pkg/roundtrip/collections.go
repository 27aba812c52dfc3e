package roundtrip

import (
	"cmp"
	"container/heap"
	"encoding/json"
	"iter"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
)

// Map relates hash-keyed maps. Keys must be comparable in both namespaces;
// Go's built-in map hashing serves both sides. Two source keys that land on
// the same target key collapse to one entry, as they would when decoding.
func Map[SK, TK comparable, SV, TV any](key Relation[SK, TK], value Relation[SV, TV]) Relation[map[SK]SV, map[TK]TV] {
	return Func[map[SK]SV, map[TK]TV](func(m map[SK]SV) map[TK]TV {
		if m == nil {
			return nil
		}
		out := make(map[TK]TV, len(m))
		for k, v := range m {
			out[key.RoundTrip(k)] = value.RoundTrip(v)
		}
		return out
	})
}

// SortedSet is an ordered set. It encodes as an ascending sequence.
type SortedSet[T cmp.Ordered] struct {
	items []T
}

// NewSortedSet returns a set holding items.
func NewSortedSet[T cmp.Ordered](items ...T) SortedSet[T] {
	var s SortedSet[T]
	for _, v := range items {
		s.Insert(v)
	}
	return s
}

// Insert adds v and reports whether it was absent.
func (s *SortedSet[T]) Insert(v T) bool {
	i, found := slices.BinarySearch(s.items, v)
	if found {
		return false
	}
	s.items = slices.Insert(s.items, i, v)
	return true
}

// Contains reports whether v is in the set.
func (s SortedSet[T]) Contains(v T) bool {
	_, found := slices.BinarySearch(s.items, v)
	return found
}

func (s SortedSet[T]) Len() int {
	return len(s.items)
}

// All yields the elements in ascending order.
func (s SortedSet[T]) All() iter.Seq[T] {
	return slices.Values(s.items)
}

// Equal reports whether both sets hold the same elements.
func (s SortedSet[T]) Equal(o SortedSet[T]) bool {
	return slices.Equal(s.items, o.items)
}

func (s SortedSet[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(nonNil(s.items))
}

func (s *SortedSet[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewSortedSet(items...)
	return nil
}

func (s SortedSet[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(nonNil(s.items))
}

func (s *SortedSet[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	var items []T
	if err := dec.Decode(&items); err != nil {
		return err
	}
	*s = NewSortedSet(items...)
	return nil
}

// SortedSetOf rebuilds a set by transforming every element and reinserting
// it. Elements must be ordered in both namespaces.
func SortedSetOf[S, T cmp.Ordered](elem Relation[S, T]) Relation[SortedSet[S], SortedSet[T]] {
	return Func[SortedSet[S], SortedSet[T]](func(s SortedSet[S]) SortedSet[T] {
		var out SortedSet[T]
		for v := range s.All() {
			out.Insert(elem.RoundTrip(v))
		}
		return out
	})
}

// SortedMap is an ordered map. It encodes as a map whose entries appear in
// ascending key order.
type SortedMap[K cmp.Ordered, V any] struct {
	keys   []K
	values []V
}

// Set stores v under k, replacing any previous value.
func (m *SortedMap[K, V]) Set(k K, v V) {
	i, found := slices.BinarySearch(m.keys, k)
	if found {
		m.values[i] = v
		return
	}
	m.keys = slices.Insert(m.keys, i, k)
	m.values = slices.Insert(m.values, i, v)
}

// Get returns the value stored under k.
func (m SortedMap[K, V]) Get(k K) (V, bool) {
	i, found := slices.BinarySearch(m.keys, k)
	if !found {
		var zero V
		return zero, false
	}
	return m.values[i], true
}

func (m SortedMap[K, V]) Len() int {
	return len(m.keys)
}

// All yields the entries in ascending key order.
func (m SortedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i, k := range m.keys {
			if !yield(k, m.values[i]) {
				return
			}
		}
	}
}

// EqualFunc reports whether both maps hold the same keys with values equal
// under eq.
func (m SortedMap[K, V]) EqualFunc(o SortedMap[K, V], eq func(V, V) bool) bool {
	return slices.Equal(m.keys, o.keys) && slices.EqualFunc(m.values, o.values, eq)
}

// JSON object keys must be strings, so the JSON form is a list of
// [key, value] pairs.
func (m SortedMap[K, V]) MarshalJSON() ([]byte, error) {
	pairs := make([][2]any, 0, len(m.keys))
	for k, v := range m.All() {
		pairs = append(pairs, [2]any{k, v})
	}
	return json.Marshal(pairs)
}

func (m *SortedMap[K, V]) UnmarshalJSON(data []byte) error {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	var out SortedMap[K, V]
	for _, p := range pairs {
		var k K
		var v V
		if err := json.Unmarshal(p[0], &k); err != nil {
			return err
		}
		if err := json.Unmarshal(p[1], &v); err != nil {
			return err
		}
		out.Set(k, v)
	}
	*m = out
	return nil
}

func (m SortedMap[K, V]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(m.keys)); err != nil {
		return err
	}
	for k, v := range m.All() {
		if err := enc.Encode(k); err != nil {
			return err
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

func (m *SortedMap[K, V]) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	var out SortedMap[K, V]
	for i := 0; i < n; i++ {
		var k K
		var v V
		if err := dec.Decode(&k); err != nil {
			return err
		}
		if err := dec.Decode(&v); err != nil {
			return err
		}
		out.Set(k, v)
	}
	*m = out
	return nil
}

// SortedMapOf rebuilds a map by transforming every entry and reinserting it.
func SortedMapOf[SK, TK cmp.Ordered, SV, TV any](key Relation[SK, TK], value Relation[SV, TV]) Relation[SortedMap[SK, SV], SortedMap[TK, TV]] {
	return Func[SortedMap[SK, SV], SortedMap[TK, TV]](func(m SortedMap[SK, SV]) SortedMap[TK, TV] {
		var out SortedMap[TK, TV]
		for k, v := range m.All() {
			out.Set(key.RoundTrip(k), value.RoundTrip(v))
		}
		return out
	})
}

type minHeap[T cmp.Ordered] []T

func (h minHeap[T]) Len() int           { return len(h) }
func (h minHeap[T]) Less(i, j int) bool { return cmp.Less(h[i], h[j]) }
func (h minHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap[T]) Push(x any)        { *h = append(*h, x.(T)) }
func (h *minHeap[T]) Pop() any {
	old := *h
	v := old[len(old)-1]
	*h = old[:len(old)-1]
	return v
}

// Heap is a priority queue yielding its smallest element first. It encodes
// as the sequence of its elements in storage order.
type Heap[T cmp.Ordered] struct {
	h minHeap[T]
}

// Push adds v.
func (q *Heap[T]) Push(v T) {
	heap.Push(&q.h, v)
}

// Pop removes and returns the smallest element.
func (q *Heap[T]) Pop() (T, bool) {
	if len(q.h) == 0 {
		var zero T
		return zero, false
	}
	return heap.Pop(&q.h).(T), true
}

// Peek returns the smallest element without removing it.
func (q Heap[T]) Peek() (T, bool) {
	if len(q.h) == 0 {
		var zero T
		return zero, false
	}
	return q.h[0], true
}

func (q Heap[T]) Len() int {
	return len(q.h)
}

// Sorted returns the elements in ascending order.
func (q Heap[T]) Sorted() []T {
	out := slices.Clone([]T(q.h))
	slices.Sort(out)
	return out
}

// Equal reports whether both heaps hold the same elements, ignoring storage
// order.
func (q Heap[T]) Equal(o Heap[T]) bool {
	return slices.Equal(q.Sorted(), o.Sorted())
}

func (q Heap[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(nonNil([]T(q.h)))
}

func (q *Heap[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*q = Heap[T]{}
	for _, v := range items {
		q.Push(v)
	}
	return nil
}

func (q Heap[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(nonNil([]T(q.h)))
}

func (q *Heap[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	var items []T
	if err := dec.Decode(&items); err != nil {
		return err
	}
	*q = Heap[T]{}
	for _, v := range items {
		q.Push(v)
	}
	return nil
}

// HeapOf rebuilds a heap by transforming every element and pushing it.
func HeapOf[S, T cmp.Ordered](elem Relation[S, T]) Relation[Heap[S], Heap[T]] {
	return Func[Heap[S], Heap[T]](func(q Heap[S]) Heap[T] {
		var out Heap[T]
		for _, v := range q.h {
			out.Push(elem.RoundTrip(v))
		}
		return out
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
