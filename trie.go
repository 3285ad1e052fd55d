// Package hashtrie implements a persistent (immutable, structurally
// shared) hash map/set core built on a Hash Array Mapped Trie: branch (C),
// bucket (L), and singleton (S) nodes addressed by a flag stream derived
// from a 64-bit key hash. Every mutating operation returns a new Trie that
// shares every untouched subtree with its predecessor; callers never
// observe in-place mutation.
package hashtrie

// Trie is an immutable hash map from K to V. The zero value is not usable;
// construct one with Empty.
type Trie[K comparable, V any] struct {
	root   node[K, V]
	hasher Hasher[K]
}

// Empty returns a new, empty Trie using hasher to hash keys.
func Empty[K comparable, V any](hasher Hasher[K]) *Trie[K, V] {
	return &Trie[K, V]{root: emptyBranch[K, V](), hasher: hasher}
}

// Size returns the number of entries stored in t, read in O(1) from the
// root's cached subtree count rather than by walking every entry (§3
// invariant 6).
func (t *Trie[K, V]) Size() int {
	if t.root == nil {
		return 0
	}
	return t.root.size()
}

// IsEmpty reports whether t has no entries.
func (t *Trie[K, V]) IsEmpty() bool { return t.Size() == 0 }

// Find returns the value stored under key, or ErrNotFound.
func (t *Trie[K, V]) Find(key K) (V, error) {
	hash := t.hasher.Hash(key)
	v, ok := findNode[K, V](t.root, hash, newFlagStream(hash), key, func(k, q K) bool { return k == q })
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return v, nil
}

// FindAs looks up a key of a different (query) type Q than the stored K,
// the cross-type lookup capability from §4.6: hasher must produce the same
// hash a stored K equal (per eq) to query would produce, and eq must agree
// with K's own equality wherever both sides are the same underlying value.
func FindAs[K comparable, V any, Q any](t *Trie[K, V], query Q, hasher Hasher[Q], eq func(K, Q) bool) (V, error) {
	hash := hasher.Hash(query)
	v, ok := findNode[K, V](t.root, hash, newFlagStream(hash), query, eq)
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return v, nil
}

// Insert returns a new Trie with key bound to value. If key is already
// present and replace is false, the original entry is left untouched, t is
// returned as-is, and err is ErrAlreadyPresent with prev set to the
// existing value. If key is already present and replace is true, prev is
// the value that was just overwritten and err is nil. Otherwise prev is
// the zero value and err is nil.
func (t *Trie[K, V]) Insert(key K, value V, replace bool) (result *Trie[K, V], prev V, err error) {
	hash := t.hasher.Hash(key)
	newRoot, prevVal, found, _ := insertNode[K, V](t.root, hash, newFlagStream(hash), Entry[K, V]{Key: key, Value: value}, replace, t.hasher)
	if found && !replace {
		return t, prevVal, ErrAlreadyPresent
	}
	return &Trie[K, V]{root: newRoot, hasher: t.hasher}, prevVal, nil
}

// Remove returns a new Trie with key absent. If key was not present, t is
// returned as-is and err is ErrNotFound.
func (t *Trie[K, V]) Remove(key K) (result *Trie[K, V], removed V, err error) {
	hash := t.hasher.Hash(key)
	newRoot, val, found := removeNode[K, V, K](t.root, newFlagStream(hash), key, func(k, q K) bool { return k == q })
	if !found {
		var zero V
		return t, zero, ErrNotFound
	}
	if newRoot == nil {
		newRoot = emptyBranch[K, V]()
	}
	return &Trie[K, V]{root: newRoot, hasher: t.hasher}, val, nil
}

// RemoveAs removes a key of a different (query) type Q than the stored K,
// the cross-type remove capability from §4.6 (mirroring FindAs): hasher
// must produce the same hash a stored K equal (per eq) to query would
// produce, and eq must agree with K's own equality wherever both sides are
// the same underlying value. If query is not present, t is returned as-is
// and err is ErrNotFound.
func RemoveAs[K comparable, V any, Q any](t *Trie[K, V], query Q, hasher Hasher[Q], eq func(K, Q) bool) (result *Trie[K, V], removed V, err error) {
	hash := hasher.Hash(query)
	newRoot, val, found := removeNode[K, V, Q](t.root, newFlagStream(hash), query, eq)
	if !found {
		var zero V
		return t, zero, ErrNotFound
	}
	if newRoot == nil {
		newRoot = emptyBranch[K, V]()
	}
	return &Trie[K, V]{root: newRoot, hasher: t.hasher}, val, nil
}

// Visit calls op once per stored entry, in an unspecified but deterministic
// order (§4.5).
func (t *Trie[K, V]) Visit(op func(Entry[K, V])) {
	if t.root == nil {
		return
	}
	visitNode[K, V](t.root, op)
}

// Transform returns a new Trie obtained by applying op to every entry, plus
// the ReduceOp-folded reduction token collected across every entry visited
// (§4.5 "transform(reduce, op)"). Subtrees for which every entry reported
// Unchanged are reused without allocation, including the degenerate case
// where op is Unchanged everywhere: Transform then returns t's own root.
// Transform is a package function, not a method, because its reduction type
// R is not among t's own type parameters — Go methods cannot introduce type
// parameters beyond the receiver's.
func Transform[K comparable, V any, R any](t *Trie[K, V], reduce ReduceOp[R], op func(Entry[K, V]) (TransformResult[V], R)) (*Trie[K, V], R) {
	newRoot, changed, red := transformNode[K, V, R](t.root, reduce, op)
	if !changed {
		return t, red
	}
	if newRoot == nil {
		newRoot = emptyBranch[K, V]()
	}
	return &Trie[K, V]{root: newRoot, hasher: t.hasher}, red
}

// Transmute returns a new Trie of a possibly different value type (the key
// type stays K) by applying op to every entry, plus the folded
// reduction token (§4.5 "transform(reduce, op)"). There is no Unchanged
// fast path: the result is always rebuilt.
func Transmute[K comparable, V any, V2 any, R any](t *Trie[K, V], hasher Hasher[K], reduce ReduceOp[R], op func(Entry[K, V]) (TransmuteResult[K, V2], R)) (*Trie[K, V2], R) {
	newRoot, red := transmuteNode[K, V, K, V2, R](t.root, reduce, op)
	if newRoot == nil {
		newRoot = emptyBranch[K, V2]()
	}
	return &Trie[K, V2]{root: newRoot, hasher: hasher}, red
}

// Clone returns t itself: because every Trie value is already immutable
// and every mutating operation returns a fresh Trie sharing untouched
// subtrees, a "deep copy" is never needed — the persistent structure's own
// sharing guarantee (§5) makes Clone trivial and allocation-free.
func (t *Trie[K, V]) Clone() *Trie[K, V] { return t }

// Equal reports whether t and other contain the same set of (key, value)
// pairs, using eq to compare values. It does not assume identical tree
// shape (two tries holding equal contents can differ structurally, for
// example after a Remove/Insert round trip through a bucket).
func (t *Trie[K, V]) Equal(other *Trie[K, V], eq func(V, V) bool) bool {
	if t.Size() != other.Size() {
		return false
	}
	equal := true
	t.Visit(func(e Entry[K, V]) {
		if !equal {
			return
		}
		v, err := other.Find(e.Key)
		if err != nil || !eq(e.Value, v) {
			equal = false
		}
	})
	return equal
}
