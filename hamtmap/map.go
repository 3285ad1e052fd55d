// Package hamtmap is a thin persistent-map facade over the hashtrie
// engine: Put/Get/Delete/Merge wrap Trie.Insert/Find/Remove and the joint
// transform engine so callers don't need to reach for TransformResult and
// flag streams directly for everyday map use.
package hamtmap

import "github.com/gopersist/hashtrie"

// Map is an immutable map from K to V. The zero value is not usable;
// construct one with New.
type Map[K comparable, V any] struct {
	trie *hashtrie.Trie[K, V]
}

// New returns an empty Map using hasher to hash keys.
func New[K comparable, V any](hasher hashtrie.Hasher[K]) *Map[K, V] {
	return &Map[K, V]{trie: hashtrie.Empty[K, V](hasher)}
}

// Len returns the number of entries in m.
func (m *Map[K, V]) Len() int { return m.trie.Size() }

// IsEmpty reports whether m has no entries.
func (m *Map[K, V]) IsEmpty() bool { return m.trie.IsEmpty() }

// Get returns the value stored under key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	v, err := m.trie.Find(key)
	return v, err == nil
}

// ContainsKey reports whether key is present in m.
func (m *Map[K, V]) ContainsKey(key K) bool {
	_, err := m.trie.Find(key)
	return err == nil
}

// Put returns a new Map with key bound to value, overwriting any existing
// binding. The previous value (if any) is returned alongside.
func (m *Map[K, V]) Put(key K, value V) (updated *Map[K, V], previous V, hadPrevious bool) {
	newTrie, prev, err := m.trie.Insert(key, value, true)
	_ = err // Insert with replace=true never returns ErrAlreadyPresent
	_, findErr := m.trie.Find(key)
	hadPrevious = findErr == nil
	return &Map[K, V]{trie: newTrie}, prev, hadPrevious
}

// PutIfAbsent returns a new Map with key bound to value only if key was not
// already present. If key was already present, ok is false and m is
// returned unchanged alongside the existing value.
func (m *Map[K, V]) PutIfAbsent(key K, value V) (updated *Map[K, V], existing V, ok bool) {
	newTrie, prev, err := m.trie.Insert(key, value, false)
	if err != nil {
		return m, prev, false
	}
	return &Map[K, V]{trie: newTrie}, prev, true
}

// Delete returns a new Map with key absent. If key was present, removed
// holds its value and ok is true.
func (m *Map[K, V]) Delete(key K) (updated *Map[K, V], removed V, ok bool) {
	newTrie, val, err := m.trie.Remove(key)
	if err != nil {
		return m, val, false
	}
	return &Map[K, V]{trie: newTrie}, val, true
}

// ForEach calls op once per stored (key, value) pair, in an unspecified but
// deterministic order.
func (m *Map[K, V]) ForEach(op func(key K, value V)) {
	m.trie.Visit(func(e hashtrie.Entry[K, V]) { op(e.Key, e.Value) })
}

// unit is the reduction token Map's own facade methods use when they have
// no interest in a fold result; noReduce is its (trivial) ReduceOp.
type unit = struct{}

func noReduce(unit, unit) unit { return unit{} }

// Transform returns a new Map obtained by applying op to every entry,
// reusing untouched subtrees wherever op reports Unchanged.
func (m *Map[K, V]) Transform(op func(key K, value V) hashtrie.TransformResult[V]) *Map[K, V] {
	newTrie, _ := hashtrie.Transform[K, V, unit](m.trie, noReduce, func(e hashtrie.Entry[K, V]) (hashtrie.TransformResult[V], unit) {
		return op(e.Key, e.Value), unit{}
	})
	return &Map[K, V]{trie: newTrie}
}

// TransformReduce is Transform plus a caller-supplied fold: op additionally
// returns a reduction token per entry, and reduce folds the whole pass into
// one value alongside the rebuilt Map.
func TransformReduce[K comparable, V any, R any](m *Map[K, V], reduce hashtrie.ReduceOp[R], op func(key K, value V) (hashtrie.TransformResult[V], R)) (*Map[K, V], R) {
	newTrie, red := hashtrie.Transform[K, V, R](m.trie, reduce, func(e hashtrie.Entry[K, V]) (hashtrie.TransformResult[V], R) {
		return op(e.Key, e.Value)
	})
	return &Map[K, V]{trie: newTrie}, red
}

// Merge combines m and other into a new Map of the same value type: keys
// unique to either side are kept as-is, and keys present in both are
// resolved by resolveConflict.
func (m *Map[K, V]) Merge(other *Map[K, V], resolveConflict func(key K, left, right V) V) *Map[K, V] {
	newTrie, _ := hashtrie.TransformWithTransformed[K, V, unit](
		m.trie, other.trie, hashtrie.Sequential, noReduce,
		func(k K, l, r V) (hashtrie.JointBothResult[V], unit) {
			return hashtrie.JointTransformed(resolveConflict(k, l, r)), unit{}
		},
		func(hashtrie.Entry[K, V]) (hashtrie.TransformResult[V], unit) { return hashtrie.Unchanged[V](), unit{} },
		func(hashtrie.Entry[K, V]) (hashtrie.TransformResult[V], unit) { return hashtrie.Unchanged[V](), unit{} },
	)
	return &Map[K, V]{trie: newTrie}
}

// Equal reports whether m and other hold the same set of (key, value)
// pairs, using eq to compare values.
func (m *Map[K, V]) Equal(other *Map[K, V], eq func(V, V) bool) bool {
	return m.trie.Equal(other.trie, eq)
}
