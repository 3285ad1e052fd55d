package hashtrie

import "github.com/gopersist/hashtrie/internal/carray"

// Entry is a single stored (key, value) pair (§3).
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// node is the closed set of trie node kinds: branch, bucket, singleton
// (§3 "C / L / S"). Dispatch is a type switch over the three concrete
// pointer types below, which the Go compiler lowers to a jump table — the
// "tagged variant, dispatch by variant, no dynamic dispatch on the hot
// path" idiom the specification's design notes call for (§9), reshaped
// from the teacher's unsafe-pointer-cast mechanism into ordinary Go
// interfaces (generics plus unsafe reinterpretation across differently
// shaped instantiations is not a sound substitute here).
type node[K comparable, V any] interface {
	size() int
}

// singletonNode (S) holds exactly one entry; terminal.
type singletonNode[K comparable, V any] struct {
	entry Entry[K, V]
}

func (n *singletonNode[K, V]) size() int { return 1 }

func newSingleton[K comparable, V any](k K, v V) *singletonNode[K, V] {
	return &singletonNode[K, V]{entry: Entry[K, V]{Key: k, Value: v}}
}

// bucketNode (L) holds two or more entries whose hashes are fully equal
// (a genuine hash collision, not merely a shared prefix). Implemented as a
// chain: a head entry plus a tail that is either another bucket or a
// singleton (§3 invariant 3).
type bucketNode[K comparable, V any] struct {
	head Entry[K, V]
	next node[K, V] // *bucketNode[K,V] or *singletonNode[K,V]
	n    int        // cached chain length, >= 2
}

func (n *bucketNode[K, V]) size() int { return n.n }

func newBucket[K comparable, V any](head Entry[K, V], next node[K, V]) *bucketNode[K, V] {
	return &bucketNode[K, V]{head: head, next: next, n: 1 + next.size()}
}

// branchNode (C) holds an occupancy bitmap and a dense child vector sized
// to its popcount, plus a memoized subtree entry count (§3 invariant 6).
type branchNode[K comparable, V any] struct {
	children *carray.Array[node[K, V]]
}

func (n *branchNode[K, V]) size() int { return n.children.Extra() }

// emptyBranch is the canonical empty trie: a branch with bitmap = 0 and no
// children (§3 invariant 4).
func emptyBranch[K comparable, V any]() *branchNode[K, V] {
	return &branchNode[K, V]{children: carray.Empty[node[K, V]](0)}
}

func isEmptyBranch[K comparable, V any](n node[K, V]) bool {
	b, ok := n.(*branchNode[K, V])
	return ok && b.children.Len() == 0
}
