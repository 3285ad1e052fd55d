package hashtrie

import "github.com/gopersist/hashtrie/internal/carray"

// transmuteChain runs a type-changing Transmute over a bucket/singleton
// chain, folding each entry's reduction token via reduce. Unlike
// transformChain there is no Unchanged fast path: K2/V2 may differ from
// K/V, so every surviving entry is rebuilt (§4.5 "transmute").
func transmuteChain[K comparable, V any, K2 comparable, V2 any, R any](n node[K, V], reduce ReduceOp[R], op func(Entry[K, V]) (TransmuteResult[K2, V2], R)) (node[K2, V2], R) {
	switch c := n.(type) {
	case *singletonNode[K, V]:
		res, red := op(c.entry)
		if res.isRemoved {
			return nil, red
		}
		return singletonFromEntry[K2, V2](Entry[K2, V2]{Key: res.key, Value: res.val}), red

	case *bucketNode[K, V]:
		headRes, headRed := op(c.head)
		newNext, nextRed := transmuteChain[K, V, K2, V2, R](c.next, reduce, op)
		folded := reduce(headRed, nextRed)
		if headRes.isRemoved {
			return newNext, folded
		}
		headEntry := Entry[K2, V2]{Key: headRes.key, Value: headRes.val}
		if newNext == nil {
			return singletonFromEntry[K2, V2](headEntry), folded
		}
		return newBucket[K2, V2](headEntry, newNext), folded
	}
	panic("hashtrie: unreachable chain node kind")
}

// transmuteNode runs a type-changing Transmute over an arbitrary subtree,
// folding every visited entry's reduction token via reduce. It relies on the
// caller's HashLike contract (§4.6): a Transmuted entry's new key is
// asserted — not verified — to hash identically to the old key, so the
// branch shape (bitmaps, slot positions) can be reused verbatim and no
// hasher is needed here at all.
func transmuteNode[K comparable, V any, K2 comparable, V2 any, R any](n node[K, V], reduce ReduceOp[R], op func(Entry[K, V]) (TransmuteResult[K2, V2], R)) (node[K2, V2], R) {
	branch, ok := n.(*branchNode[K, V])
	if !ok {
		return transmuteChain[K, V, K2, V2, R](n, reduce, op)
	}

	type slot struct {
		flag carray.Flag
		node node[K2, V2]
	}
	kept := make([]slot, 0, branch.children.Len())
	var folded R
	first := true
	branch.children.Each(func(flag carray.Flag, child node[K, V]) {
		newChild, childRed := transmuteNode[K, V, K2, V2, R](child, reduce, op)
		if first {
			folded = childRed
			first = false
		} else {
			folded = reduce(folded, childRed)
		}
		if newChild != nil {
			kept = append(kept, slot{flag, newChild})
		}
	})
	if len(kept) == 0 {
		return nil, folded
	}
	var bitmap carray.Bitmap
	values := make([]node[K2, V2], len(kept))
	newExtra := 0
	for i, s := range kept {
		bitmap = bitmap.Insert(s.flag)
		values[i] = s.node
		newExtra += s.node.size()
	}
	return &branchNode[K2, V2]{children: carray.New[node[K2, V2]](bitmap, values, newExtra)}, folded
}
