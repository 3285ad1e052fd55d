package hashtrie

import "github.com/gopersist/hashtrie/internal/carray"

// transformChain runs a shape-preserving Transform over a bucket/singleton
// chain, folding each entry's reduction token via reduce as it goes. It
// returns the original node unchanged (same pointer) whenever every entry in
// the chain reported Unchanged, giving the zero-allocation fast path
// described in §4.5 even for colliding entries.
func transformChain[K comparable, V any, R any](n node[K, V], reduce ReduceOp[R], op func(Entry[K, V]) (TransformResult[V], R)) (node[K, V], bool, R) {
	switch c := n.(type) {
	case *singletonNode[K, V]:
		res, red := op(c.entry)
		switch res.kind {
		case tUnchanged:
			return n, false, red
		case tTransformed:
			return singletonFromEntry[K, V](Entry[K, V]{Key: c.entry.Key, Value: res.val}), true, red
		default: // tRemoved
			return nil, true, red
		}

	case *bucketNode[K, V]:
		headRes, headRed := op(c.head)
		newNext, nextChanged, nextRed := transformChain[K, V, R](c.next, reduce, op)
		folded := reduce(headRed, nextRed)
		if headRes.kind == tUnchanged && !nextChanged {
			return n, false, folded
		}
		if headRes.kind == tRemoved {
			return newNext, true, folded
		}
		headEntry := c.head
		if headRes.kind == tTransformed {
			headEntry = Entry[K, V]{Key: c.head.Key, Value: headRes.val}
		}
		if newNext == nil {
			return singletonFromEntry[K, V](headEntry), true, folded
		}
		return newBucket[K, V](headEntry, newNext), true, folded
	}
	panic("hashtrie: unreachable chain node kind")
}

// transformNode runs a shape-preserving Transform over an arbitrary subtree
// (§4.5 "transform"), folding every visited entry's reduction token via
// reduce. A nil result with changed=true signals that the entire subtree was
// removed. An empty subtree folds to the zero value of R.
func transformNode[K comparable, V any, R any](n node[K, V], reduce ReduceOp[R], op func(Entry[K, V]) (TransformResult[V], R)) (node[K, V], bool, R) {
	branch, ok := n.(*branchNode[K, V])
	if !ok {
		return transformChain[K, V, R](n, reduce, op)
	}

	type slot struct {
		flag carray.Flag
		node node[K, V]
	}
	kept := make([]slot, 0, branch.children.Len())
	changedAny := false
	var folded R
	first := true
	branch.children.Each(func(flag carray.Flag, child node[K, V]) {
		newChild, childChanged, childRed := transformNode[K, V, R](child, reduce, op)
		if first {
			folded = childRed
			first = false
		} else {
			folded = reduce(folded, childRed)
		}
		if childChanged {
			changedAny = true
		}
		if newChild != nil {
			kept = append(kept, slot{flag, newChild})
		} else {
			changedAny = true
		}
	})
	if !changedAny {
		return n, false, folded
	}
	if len(kept) == 0 {
		return nil, true, folded
	}
	var bitmap carray.Bitmap
	values := make([]node[K, V], len(kept))
	newExtra := 0
	for i, s := range kept {
		bitmap = bitmap.Insert(s.flag)
		values[i] = s.node
		newExtra += s.node.size()
	}
	return &branchNode[K, V]{children: carray.New[node[K, V]](bitmap, values, newExtra)}, true, folded
}
