// Package hamtset is a persistent set built on the hashtrie engine, with
// the element type stored in both the trie's key and (as struct{}) its
// value slot. Union/Intersect/Difference/SymmetricDifference are each a
// thin wrapper around hashtrie's dual-trie joint transform operator.
package hamtset

import (
	set3 "github.com/TomTonic/Set3"

	"github.com/gopersist/hashtrie"
)

type void = struct{}

var present = void{}

// noReduce is the trivial ReduceOp used by every set combinator below: none
// of them has any interest in a folded reduction value, only in the merged
// trie itself.
func noReduce(void, void) void { return void{} }

// Set is an immutable set of K. The zero value is not usable; construct
// one with New.
type Set[K comparable] struct {
	trie *hashtrie.Trie[K, void]
}

// New returns an empty Set using hasher to hash elements.
func New[K comparable](hasher hashtrie.Hasher[K]) *Set[K] {
	return &Set[K]{trie: hashtrie.Empty[K, void](hasher)}
}

// Len returns the number of elements in s.
func (s *Set[K]) Len() int { return s.trie.Size() }

// IsEmpty reports whether s has no elements.
func (s *Set[K]) IsEmpty() bool { return s.trie.IsEmpty() }

// Contains reports whether k is a member of s.
func (s *Set[K]) Contains(k K) bool {
	_, err := s.trie.Find(k)
	return err == nil
}

// Add returns a new Set with k as a member.
func (s *Set[K]) Add(k K) *Set[K] {
	newTrie, _, err := s.trie.Insert(k, present, false)
	if err != nil {
		return s // already present, nothing changes
	}
	return &Set[K]{trie: newTrie}
}

// Remove returns a new Set without k as a member.
func (s *Set[K]) Remove(k K) *Set[K] {
	newTrie, _, err := s.trie.Remove(k)
	if err != nil {
		return s // not present, nothing changes
	}
	return &Set[K]{trie: newTrie}
}

// ForEach calls op once per element, in an unspecified but deterministic
// order.
func (s *Set[K]) ForEach(op func(K)) {
	s.trie.Visit(func(e hashtrie.Entry[K, void]) { op(e.Key) })
}

// ToSet3 exports s's elements into a *set3.Set3[K], the teacher library's
// own hash set, useful as an interchange type or as a reference oracle when
// testing Set against an independent implementation.
func (s *Set[K]) ToSet3() *set3.Set3[K] {
	out := set3.EmptyWithCapacity[K](uint32(s.Len()))
	s.ForEach(func(k K) { out.Add(k) })
	return out
}

// Union returns a new Set containing every element of s or other. Every
// element is present on at least one side with the same (void) value, so
// both reports UnchangedLR for every match: a subtree present untouched on
// one side and absent on the other is reused by pointer rather than
// rebuilt (the pointer-reuse fast path described in §4.5).
func (s *Set[K]) Union(other *Set[K]) *Set[K] {
	newTrie, _ := hashtrie.TransformWithTransformed[K, void, void](
		s.trie, other.trie, hashtrie.Sequential, noReduce,
		func(_ K, _, _ void) (hashtrie.JointBothResult[void], void) { return hashtrie.UnchangedLR[void](), void{} },
		func(hashtrie.Entry[K, void]) (hashtrie.TransformResult[void], void) { return hashtrie.Unchanged[void](), void{} },
		func(hashtrie.Entry[K, void]) (hashtrie.TransformResult[void], void) { return hashtrie.Unchanged[void](), void{} },
	)
	return &Set[K]{trie: newTrie}
}

// Intersect returns a new Set containing only elements present in both s
// and other.
func (s *Set[K]) Intersect(other *Set[K]) *Set[K] {
	newTrie, _ := hashtrie.TransformWithTransformed[K, void, void](
		s.trie, other.trie, hashtrie.Sequential, noReduce,
		func(_ K, _, _ void) (hashtrie.JointBothResult[void], void) { return hashtrie.UnchangedLR[void](), void{} },
		func(hashtrie.Entry[K, void]) (hashtrie.TransformResult[void], void) { return hashtrie.Removed[void](), void{} },
		func(hashtrie.Entry[K, void]) (hashtrie.TransformResult[void], void) { return hashtrie.Removed[void](), void{} },
	)
	return &Set[K]{trie: newTrie}
}

// Difference returns a new Set containing the elements of s that are not
// in other.
func (s *Set[K]) Difference(other *Set[K]) *Set[K] {
	newTrie, _ := hashtrie.TransformWithTransformed[K, void, void](
		s.trie, other.trie, hashtrie.Sequential, noReduce,
		func(_ K, _, _ void) (hashtrie.JointBothResult[void], void) { return hashtrie.JointRemoved[void](), void{} },
		func(hashtrie.Entry[K, void]) (hashtrie.TransformResult[void], void) { return hashtrie.Unchanged[void](), void{} },
		func(hashtrie.Entry[K, void]) (hashtrie.TransformResult[void], void) { return hashtrie.Removed[void](), void{} },
	)
	return &Set[K]{trie: newTrie}
}

// SymmetricDifference returns a new Set containing elements present in
// exactly one of s or other. As a testable law (every element of the
// result belongs to exactly one input, and every element belonging to
// exactly one input is in the result) this is checked against an
// independently-built Go map oracle in the test suite.
func (s *Set[K]) SymmetricDifference(other *Set[K]) *Set[K] {
	newTrie, _ := hashtrie.TransformWithTransformed[K, void, void](
		s.trie, other.trie, hashtrie.Sequential, noReduce,
		func(_ K, _, _ void) (hashtrie.JointBothResult[void], void) { return hashtrie.JointRemoved[void](), void{} },
		func(hashtrie.Entry[K, void]) (hashtrie.TransformResult[void], void) { return hashtrie.Unchanged[void](), void{} },
		func(hashtrie.Entry[K, void]) (hashtrie.TransformResult[void], void) { return hashtrie.Unchanged[void](), void{} },
	)
	return &Set[K]{trie: newTrie}
}

// Equal reports whether s and other contain exactly the same elements.
func (s *Set[K]) Equal(other *Set[K]) bool {
	return s.trie.Equal(other.trie, func(void, void) bool { return true })
}
