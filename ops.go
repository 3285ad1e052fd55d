package hashtrie

import "github.com/gopersist/hashtrie/internal/carray"

// findNode implements §4.4 "find(key)" for an arbitrary query type Q,
// which is how cross-type lookup (§4.6, the HashLike capability) is
// expressed in Go: the caller supplies the query's hash and an equality
// predicate between the stored key type K and the query type Q, instead of
// relying on operator overloading.
func findNode[K comparable, V any, Q any](n node[K, V], hash uint64, fs flagStream, query Q, eq func(K, Q) bool) (V, bool) {
	switch c := n.(type) {
	case *singletonNode[K, V]:
		if eq(c.entry.Key, query) {
			return c.entry.Value, true
		}
		var zero V
		return zero, false
	case *bucketNode[K, V]:
		return bucketFind[K, V](c, query, eq)
	case *branchNode[K, V]:
		flag := fs.flag()
		child, ok := c.children.At(flag)
		if !ok {
			var zero V
			return zero, false
		}
		nextFs, _ := fs.next()
		return findNode[K, V](child, hash, nextFs, query, eq)
	}
	panic("hashtrie: unreachable node kind")
}

func bucketFind[K comparable, V any, Q any](n node[K, V], query Q, eq func(K, Q) bool) (V, bool) {
	for {
		switch c := n.(type) {
		case *bucketNode[K, V]:
			if eq(c.head.Key, query) {
				return c.head.Value, true
			}
			n = c.next
		case *singletonNode[K, V]:
			if eq(c.entry.Key, query) {
				return c.entry.Value, true
			}
			var zero V
			return zero, false
		default:
			panic("hashtrie: bucket chain contains a non-chain node")
		}
	}
}

// singletonFromEntry builds a singleton node directly from an Entry.
func singletonFromEntry[K comparable, V any](e Entry[K, V]) *singletonNode[K, V] {
	return &singletonNode[K, V]{entry: e}
}

// liftAndInsert builds the chain of branch nodes needed to separate two
// entries whose hashes share a flag-chunk prefix (§4.4 "lift to C and
// insert recursion"). existing is lifted as a whole subtree (a singleton
// or an entire bucket chain sharing existingHash); newEntry is the single
// new entry being inserted.
//
// The flag chunks cover all 64 hash bits, so two different hashes always
// diverge at some depth below maxDepth. If the last level is reached
// without a divergence the hashes are equal, and the entries are joined
// into a bucket rather than recursing past the end of the flag stream.
func liftAndInsert[K comparable, V any](existing node[K, V], existingHash uint64, newEntry Entry[K, V], newHash uint64, depth int) node[K, V] {
	ef := flagAtDepth(existingHash, depth)
	nf := flagAtDepth(newHash, depth)

	if ef == nf {
		if depth >= maxDepth-1 {
			return newBucket[K, V](newEntry, existing)
		}
		inner := liftAndInsert[K, V](existing, existingHash, newEntry, newHash, depth+1)
		arr := carray.Empty[node[K, V]](existing.size() + 1)
		arr = arr.Inserted(ef, inner, arr.Extra())
		return &branchNode[K, V]{children: arr}
	}

	arr := carray.Empty[node[K, V]](existing.size() + 1)
	arr = arr.Inserted(ef, existing, arr.Extra())
	arr = arr.Inserted(nf, singletonFromEntry[K, V](newEntry), arr.Extra())
	return &branchNode[K, V]{children: arr}
}

// insertNode implements §4.4 "insert(key, value, replace)". found reports
// AlreadyPresent (replace=false on an existing key); prev is the
// previously stored value when the key already existed (whether replaced
// or not); delta is the net change in entry count (0 or 1 — replace never
// changes the count).
func insertNode[K comparable, V any](n node[K, V], hash uint64, fs flagStream, entry Entry[K, V], replace bool, hasher Hasher[K]) (result node[K, V], prev V, found bool, delta int) {
	switch c := n.(type) {
	case *singletonNode[K, V]:
		if c.entry.Key == entry.Key {
			if !replace {
				return c, c.entry.Value, true, 0
			}
			return singletonFromEntry[K, V](entry), c.entry.Value, false, 0
		}
		existingHash := hasher.Hash(c.entry.Key)
		if existingHash == hash {
			return newBucket[K, V](entry, c), prev, false, 1
		}
		return liftAndInsert[K, V](c, existingHash, entry, hash, fs.depth), prev, false, 1

	case *bucketNode[K, V]:
		bucketHash := hasher.Hash(c.head.Key)
		if bucketHash != hash {
			return liftAndInsert[K, V](c, bucketHash, entry, hash, fs.depth), prev, false, 1
		}
		existingVal, exists := bucketFind[K, V](c, entry.Key, func(k, q K) bool { return k == q })
		if exists {
			if !replace {
				return c, existingVal, true, 0
			}
			rest, _, _ := removeFromChain[K, V, K](c, entry.Key, func(k, q K) bool { return k == q })
			return prependToChain[K, V](entry, rest), existingVal, false, 0
		}
		return prependToChain[K, V](entry, c), prev, false, 1

	case *branchNode[K, V]:
		flag := fs.flag()
		child, ok := c.children.At(flag)
		if !ok {
			newArr := c.children.Inserted(flag, node[K, V](singletonFromEntry[K, V](entry)), c.children.Extra()+1)
			return &branchNode[K, V]{children: newArr}, prev, false, 1
		}
		nextFs, _ := fs.next()
		newChild, childPrev, childFound, childDelta := insertNode[K, V](child, hash, nextFs, entry, replace, hasher)
		if childFound {
			return c, childPrev, true, 0
		}
		newArr := c.children.Updated(flag, newChild, c.children.Extra()+childDelta)
		return &branchNode[K, V]{children: newArr}, childPrev, false, childDelta
	}
	panic("hashtrie: unreachable node kind")
}

// prependToChain adds entry to the front of a bucket chain (rest is either
// a *bucketNode or a *singletonNode).
func prependToChain[K comparable, V any](entry Entry[K, V], rest node[K, V]) *bucketNode[K, V] {
	return newBucket[K, V](entry, rest)
}

// removeFromChain removes a query of type Q from a bucket/singleton chain,
// the cross-type remove counterpart of bucketFind (§4.6). When the chain
// collapses to nothing (the only entry was removed) newChain is nil — the
// caller (either another chain link or the branch/root above) must handle
// that as the bucket-to-singleton collapse or RemovedZero signal described
// in §4.4 "remove(key)".
func removeFromChain[K comparable, V any, Q any](n node[K, V], query Q, eq func(K, Q) bool) (newChain node[K, V], removedVal V, removed bool) {
	switch c := n.(type) {
	case *singletonNode[K, V]:
		if eq(c.entry.Key, query) {
			return nil, c.entry.Value, true
		}
		var zero V
		return n, zero, false
	case *bucketNode[K, V]:
		if eq(c.head.Key, query) {
			return c.next, c.head.Value, true
		}
		newNext, val, ok := removeFromChain[K, V, Q](c.next, query, eq)
		if !ok {
			var zero V
			return n, zero, false
		}
		if newNext == nil {
			// c.next held exactly one entry that was just removed; the
			// chain collapses to a singleton holding c.head (§4.4
			// "An L collapses to an S when only one entry remains").
			return singletonFromEntry[K, V](c.head), val, true
		}
		return newBucket[K, V](c.head, newNext), val, true
	}
	panic("hashtrie: bucket chain contains a non-chain node")
}

// removeNode implements §4.4 "remove(key)" for an arbitrary query type Q
// (the cross-type remove capability from §4.6, mirroring findNode) with the
// structural-sharing and size-cache bookkeeping on the return path. A nil
// result node signals RemovedZero: the caller must drop this slot entirely
// (or, at the root, replace the trie with the canonical empty branch).
func removeNode[K comparable, V any, Q any](n node[K, V], fs flagStream, query Q, eq func(K, Q) bool) (result node[K, V], removedVal V, found bool) {
	switch c := n.(type) {
	case *singletonNode[K, V]:
		if eq(c.entry.Key, query) {
			return nil, c.entry.Value, true
		}
		var zero V
		return n, zero, false

	case *bucketNode[K, V]:
		newChain, val, ok := removeFromChain[K, V, Q](c, query, eq)
		if !ok {
			var zero V
			return n, zero, false
		}
		return newChain, val, true

	case *branchNode[K, V]:
		flag := fs.flag()
		child, ok := c.children.At(flag)
		if !ok {
			var zero V
			return n, zero, false
		}
		nextFs, _ := fs.next()
		newChild, val, childFound := removeNode[K, V, Q](child, nextFs, query, eq)
		if !childFound {
			var zero V
			return n, zero, false
		}
		if newChild == nil {
			if c.children.Len() == 1 {
				// this branch's only child vanished: propagate RemovedZero
				// upward instead of replacing ourselves with an empty
				// branch (§4.4 "C has exactly 1 slot occupied").
				return nil, val, true
			}
			newArr := c.children.Removed(flag, c.children.Extra()-1)
			return &branchNode[K, V]{children: newArr}, val, true
		}
		// Note: a branch with a single remaining child is never contracted
		// back to that child (§4.4 "Contractions" — preserved as specified,
		// not a bug to fix).
		newArr := c.children.Updated(flag, newChild, c.children.Extra()-1)
		return &branchNode[K, V]{children: newArr}, val, true
	}
	panic("hashtrie: unreachable node kind")
}

// countEntries walks n and returns the number of entries reachable from
// it, independent of any cached size, so the result can be compared with
// the cached count (invariant 1: cached size equals enumerated count).
func countEntries[K comparable, V any](n node[K, V]) int {
	count := 0
	visitNode[K, V](n, func(Entry[K, V]) { count++ })
	return count
}

// visitNode implements §4.5 "visit(op)": a depth-first walk invoking op on
// every entry, in a deterministic (but otherwise unspecified) order.
func visitNode[K comparable, V any](n node[K, V], op func(Entry[K, V])) {
	switch c := n.(type) {
	case *singletonNode[K, V]:
		op(c.entry)
	case *bucketNode[K, V]:
		op(c.head)
		visitNode[K, V](c.next, op)
	case *branchNode[K, V]:
		c.children.Each(func(_ carray.Flag, child node[K, V]) {
			visitNode[K, V](child, op)
		})
	}
}
