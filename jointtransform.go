package hashtrie

import (
	"sort"
	"sync"

	"github.com/gopersist/hashtrie/internal/carray"
)

// BothOp combines an entry present in both tries into the joined trie's
// (possibly different) key/value type, or drops it, alongside a reduction
// token folded across the whole pass via the caller's ReduceOp.
type BothOp[K comparable, VL any, VR any, VO any, R any] func(key K, left VL, right VR) (TransmuteResult[K, VO], R)

// mergeSide records, for a merged subtree, whether the result is pointer-
// identical to the original left subtree, the original right subtree, or
// was freshly rebuilt (§4.5 "all-sharing fast paths"). Only mergeNodeSame
// (TransformWithTransformed, where both inputs and the output share type V)
// can ever report sideLeft/sideRight; the fully general mergeNode used by
// the type-changing combinators always rebuilds, exactly as a plain
// Transmute has no Unchanged fast path.
type mergeSide uint8

const (
	sideNone mergeSide = iota
	sideLeft
	sideRight
)

// chainHash returns the single hash shared by every entry in a
// bucket/singleton chain (§3 invariant 3: all of a bucket's entries hash
// identically, so any one member's hash identifies the whole chain).
func chainHash[K comparable, V any](n node[K, V], hasher Hasher[K]) uint64 {
	switch c := n.(type) {
	case *singletonNode[K, V]:
		return hasher.Hash(c.entry.Key)
	case *bucketNode[K, V]:
		return hasher.Hash(c.head.Key)
	}
	panic("hashtrie: chainHash called on a non-chain node")
}

func chainEntries[K comparable, V any](n node[K, V]) []Entry[K, V] {
	var out []Entry[K, V]
	visitNode[K, V](n, func(e Entry[K, V]) { out = append(out, e) })
	return out
}

// buildChainFromEntries rebuilds a bucket/singleton chain from entries in
// the given order (nil if entries is empty).
func buildChainFromEntries[K comparable, V any](entries []Entry[K, V]) node[K, V] {
	if len(entries) == 0 {
		return nil
	}
	n := node[K, V](singletonFromEntry[K, V](entries[len(entries)-1]))
	for i := len(entries) - 2; i >= 0; i-- {
		n = newBucket[K, V](entries[i], n)
	}
	return n
}

// foldTokens accumulates a stream of per-entry reduction tokens via reduce,
// yielding the zero value of R when nothing was ever folded in (an empty
// subtree), matching the reference implementation's `ReduceT: Default`.
type foldTokens[R any] struct {
	reduce ReduceOp[R]
	folded R
	any    bool
}

func (f *foldTokens[R]) add(r R) {
	if !f.any {
		f.folded = r
		f.any = true
		return
	}
	f.folded = f.reduce(f.folded, r)
}

// combineChainsByKey merges two bucket/singleton chains known to share a
// single hash, matching entries by key equality rather than by descending
// further (there is no further flag to descend into: both chains already
// occupy the same terminal slot).
func combineChainsByKey[K comparable, VL any, VR any, VO any, R any](
	left node[K, VL], right node[K, VR],
	reduce ReduceOp[R],
	both BothOp[K, VL, VR, VO, R],
	leftOnly func(Entry[K, VL]) (TransmuteResult[K, VO], R),
	rightOnly func(Entry[K, VR]) (TransmuteResult[K, VO], R),
) (node[K, VO], R) {
	leftEntries := chainEntries[K, VL](left)
	rightEntries := chainEntries[K, VR](right)
	matchedRight := make([]bool, len(rightEntries))
	fold := foldTokens[R]{reduce: reduce}

	var out []Entry[K, VO]
	for _, le := range leftEntries {
		idx := -1
		for i, re := range rightEntries {
			if !matchedRight[i] && re.Key == le.Key {
				idx = i
				break
			}
		}
		if idx >= 0 {
			matchedRight[idx] = true
			res, red := both(le.Key, le.Value, rightEntries[idx].Value)
			fold.add(red)
			if !res.isRemoved {
				out = append(out, Entry[K, VO]{Key: res.key, Value: res.val})
			}
			continue
		}
		res, red := leftOnly(le)
		fold.add(red)
		if !res.isRemoved {
			out = append(out, Entry[K, VO]{Key: res.key, Value: res.val})
		}
	}
	for i, re := range rightEntries {
		if matchedRight[i] {
			continue
		}
		res, red := rightOnly(re)
		fold.add(red)
		if !res.isRemoved {
			out = append(out, Entry[K, VO]{Key: res.key, Value: res.val})
		}
	}
	return buildChainFromEntries[K, VO](out), fold.folded
}

// combineChainsByKeySame is combineChainsByKey specialized to the
// same-value-type case (TransformWithTransformed), additionally deciding
// whether the merged chain can reuse the original left or right pointer
// verbatim: true only when every entry resolved in a way that leaves that
// side's chain exactly as it already was (§4.5 "all-sharing fast paths").
func combineChainsByKeySame[K comparable, V any, R any](
	left, right node[K, V],
	reduce ReduceOp[R],
	both func(key K, left, right V) (JointBothResult[V], R),
	leftOnly func(Entry[K, V]) (TransformResult[V], R),
	rightOnly func(Entry[K, V]) (TransformResult[V], R),
) (node[K, V], R, mergeSide) {
	leftEntries := chainEntries[K, V](left)
	rightEntries := chainEntries[K, V](right)
	matchedRight := make([]bool, len(rightEntries))
	fold := foldTokens[R]{reduce: reduce}

	leftOK, rightOK := true, true
	var out []Entry[K, V]
	for _, le := range leftEntries {
		idx := -1
		for i, re := range rightEntries {
			if !matchedRight[i] && re.Key == le.Key {
				idx = i
				break
			}
		}
		if idx >= 0 {
			matchedRight[idx] = true
			re := rightEntries[idx]
			res, red := both(le.Key, le.Value, re.Value)
			fold.add(red)
			switch res.kind {
			case jbUnchangedL:
				out = append(out, le)
				rightOK = false
			case jbUnchangedR:
				out = append(out, Entry[K, V]{Key: le.Key, Value: re.Value})
				leftOK = false
			case jbUnchangedLR:
				out = append(out, le)
			case jbTransformed:
				out = append(out, Entry[K, V]{Key: le.Key, Value: res.val})
				leftOK, rightOK = false, false
			default: // jbRemoved
				leftOK, rightOK = false, false
			}
			continue
		}
		res, red := leftOnly(le)
		fold.add(red)
		switch res.kind {
		case tUnchanged:
			out = append(out, le)
			rightOK = false
		case tTransformed:
			out = append(out, Entry[K, V]{Key: le.Key, Value: res.val})
			leftOK, rightOK = false, false
		default: // tRemoved
			leftOK = false
		}
	}
	for i, re := range rightEntries {
		if matchedRight[i] {
			continue
		}
		res, red := rightOnly(re)
		fold.add(red)
		switch res.kind {
		case tUnchanged:
			out = append(out, re)
			leftOK = false
		case tTransformed:
			out = append(out, Entry[K, V]{Key: re.Key, Value: res.val})
			leftOK, rightOK = false, false
		default: // tRemoved
			rightOK = false
		}
	}

	if leftOK {
		return left, fold.folded, sideLeft
	}
	if rightOK {
		return right, fold.folded, sideRight
	}
	return buildChainFromEntries[K, V](out), fold.folded, sideNone
}

type jointSlot[K comparable, V any] struct {
	flag carray.Flag
	node node[K, V]
}

// slotsOf gives a uniform view of n's occupied flags at depth: a branch's
// real occupancy array, or — for a bucket/singleton chain — a single
// virtual slot at the flag the chain's (shared) hash produces at depth.
// This lets the merge walk below treat a branch-vs-chain node-kind
// mismatch (§4.5's C/L, C/S pairs) with exactly the same code as a
// branch-vs-branch merge (C/C).
func slotsOf[K comparable, V any](n node[K, V], depth int, hasher Hasher[K]) []jointSlot[K, V] {
	if b, ok := n.(*branchNode[K, V]); ok {
		out := make([]jointSlot[K, V], 0, b.children.Len())
		b.children.Each(func(flag carray.Flag, child node[K, V]) {
			out = append(out, jointSlot[K, V]{flag, child})
		})
		return out
	}
	h := chainHash[K, V](n, hasher)
	return []jointSlot[K, V]{{flagAtDepth(h, depth), n}}
}

// mergeNode is the general dual-trie merge engine behind the type-changing
// joint operators (§4.5 "joint transform"): every entry present in only one
// side is transmuted through that side's *Only op; every entry present in
// both is combined through both. Like Transmute, there is no Unchanged fast
// path here — VL/VR/VO need not agree, so a matched subtree is always
// rebuilt even when nothing about it actually changed. Two chains meeting
// at a depth where every flag chunk has already been consumed are combined
// key-wise in the same slot rather than recursing further, matching the
// bucket liftAndInsert builds for plain inserts at the last level.
func mergeNode[K comparable, VL any, VR any, VO any, R any](
	left node[K, VL], right node[K, VR], depth int, hasher Hasher[K], strategy ParallelismStrategy,
	reduce ReduceOp[R],
	both BothOp[K, VL, VR, VO, R],
	leftOnly func(Entry[K, VL]) (TransmuteResult[K, VO], R),
	rightOnly func(Entry[K, VR]) (TransmuteResult[K, VO], R),
) (node[K, VO], R) {
	if left == nil {
		return transmuteNode[K, VR, K, VO, R](right, reduce, rightOnly)
	}
	if right == nil {
		return transmuteNode[K, VL, K, VO, R](left, reduce, leftOnly)
	}

	_, leftIsBranch := left.(*branchNode[K, VL])
	_, rightIsBranch := right.(*branchNode[K, VR])
	if !leftIsBranch && !rightIsBranch {
		lh := chainHash[K, VL](left, hasher)
		rh := chainHash[K, VR](right, hasher)
		if lh == rh || depth >= maxDepth {
			return combineChainsByKey[K, VL, VR, VO, R](left, right, reduce, both, leftOnly, rightOnly)
		}
	}

	leftSlots := slotsOf[K, VL](left, depth, hasher)
	rightSlots := slotsOf[K, VR](right, depth, hasher)

	rightByFlag := make(map[carray.Flag]node[K, VR], len(rightSlots))
	for _, s := range rightSlots {
		rightByFlag[s.flag] = s.node
	}
	matchedRight := make(map[carray.Flag]bool, len(rightSlots))
	var matchedMu sync.Mutex

	type outcome struct {
		flag carray.Flag
		node node[K, VO]
		red  R
	}
	leftResults := make([]outcome, len(leftSlots))
	forkJoin(strategy, len(leftSlots), func(i int) {
		ls := leftSlots[i]
		if rn, ok := rightByFlag[ls.flag]; ok {
			matchedMu.Lock()
			matchedRight[ls.flag] = true
			matchedMu.Unlock()
			n, r := mergeNode[K, VL, VR, VO, R](ls.node, rn, depth+1, hasher, strategy, reduce, both, leftOnly, rightOnly)
			leftResults[i] = outcome{ls.flag, n, r}
			return
		}
		n, r := transmuteNode[K, VL, K, VO, R](ls.node, reduce, leftOnly)
		leftResults[i] = outcome{ls.flag, n, r}
	})

	var rightOnlySlots []jointSlot[K, VR]
	for _, rs := range rightSlots {
		if !matchedRight[rs.flag] {
			rightOnlySlots = append(rightOnlySlots, rs)
		}
	}
	rightResults := make([]outcome, len(rightOnlySlots))
	forkJoin(strategy, len(rightOnlySlots), func(i int) {
		rs := rightOnlySlots[i]
		n, r := transmuteNode[K, VR, K, VO, R](rs.node, reduce, rightOnly)
		rightResults[i] = outcome{rs.flag, n, r}
	})

	all := make([]outcome, 0, len(leftResults)+len(rightResults))
	fold := foldTokens[R]{reduce: reduce}
	for _, o := range leftResults {
		fold.add(o.red)
		if o.node != nil {
			all = append(all, o)
		}
	}
	for _, o := range rightResults {
		fold.add(o.red)
		if o.node != nil {
			all = append(all, o)
		}
	}
	if len(all) == 0 {
		return nil, fold.folded
	}
	sort.Slice(all, func(i, j int) bool { return all[i].flag < all[j].flag })

	var bitmap carray.Bitmap
	values := make([]node[K, VO], len(all))
	extra := 0
	for i, o := range all {
		bitmap = bitmap.Insert(o.flag)
		values[i] = o.node
		extra += o.node.size()
	}
	return &branchNode[K, VO]{children: carray.New[node[K, VO]](bitmap, values, extra)}, fold.folded
}

// mergeNodeSame is mergeNode specialized to TransformWithTransformed, where
// left, right, and the merged result all share value type V. Because V is
// shared throughout, a matched pair of subtrees (or an unmatched left-only
// or right-only one) can be detected as entirely reusable, and the original
// pointer returned instead of rebuilt — the joint-transform analogue of
// transformNode's single-sided Unchanged fast path (§4.5 "all-sharing fast
// paths").
func mergeNodeSame[K comparable, V any, R any](
	left, right node[K, V], depth int, hasher Hasher[K], strategy ParallelismStrategy,
	reduce ReduceOp[R],
	both func(key K, left, right V) (JointBothResult[V], R),
	leftOnly func(Entry[K, V]) (TransformResult[V], R),
	rightOnly func(Entry[K, V]) (TransformResult[V], R),
) (node[K, V], R, mergeSide) {
	if left == nil {
		newNode, changed, red := transformNode[K, V, R](right, reduce, rightOnly)
		if !changed {
			return right, red, sideRight
		}
		return newNode, red, sideNone
	}
	if right == nil {
		newNode, changed, red := transformNode[K, V, R](left, reduce, leftOnly)
		if !changed {
			return left, red, sideLeft
		}
		return newNode, red, sideNone
	}

	_, leftIsBranch := left.(*branchNode[K, V])
	_, rightIsBranch := right.(*branchNode[K, V])
	if !leftIsBranch && !rightIsBranch {
		lh := chainHash[K, V](left, hasher)
		rh := chainHash[K, V](right, hasher)
		if lh == rh || depth >= maxDepth {
			return combineChainsByKeySame[K, V, R](left, right, reduce, both, leftOnly, rightOnly)
		}
	}

	leftSlots := slotsOf[K, V](left, depth, hasher)
	rightSlots := slotsOf[K, V](right, depth, hasher)

	rightByFlag := make(map[carray.Flag]node[K, V], len(rightSlots))
	for _, s := range rightSlots {
		rightByFlag[s.flag] = s.node
	}
	matchedRight := make(map[carray.Flag]bool, len(rightSlots))
	var matchedMu sync.Mutex

	type outcome struct {
		flag    carray.Flag
		node    node[K, V]
		red     R
		side    mergeSide
		matched bool
	}
	leftResults := make([]outcome, len(leftSlots))
	forkJoin(strategy, len(leftSlots), func(i int) {
		ls := leftSlots[i]
		if rn, ok := rightByFlag[ls.flag]; ok {
			matchedMu.Lock()
			matchedRight[ls.flag] = true
			matchedMu.Unlock()
			n, r, side := mergeNodeSame[K, V, R](ls.node, rn, depth+1, hasher, strategy, reduce, both, leftOnly, rightOnly)
			leftResults[i] = outcome{ls.flag, n, r, side, true}
			return
		}
		n, changed, r := transformNode[K, V, R](ls.node, reduce, leftOnly)
		side := sideLeft
		if changed {
			side = sideNone
		}
		leftResults[i] = outcome{ls.flag, n, r, side, false}
	})

	var rightOnlySlots []jointSlot[K, V]
	for _, rs := range rightSlots {
		if !matchedRight[rs.flag] {
			rightOnlySlots = append(rightOnlySlots, rs)
		}
	}
	rightResults := make([]outcome, len(rightOnlySlots))
	forkJoin(strategy, len(rightOnlySlots), func(i int) {
		rs := rightOnlySlots[i]
		n, changed, r := transformNode[K, V, R](rs.node, reduce, rightOnly)
		side := sideRight
		if changed {
			side = sideNone
		}
		rightResults[i] = outcome{rs.flag, n, r, side, false}
	})

	leftOK, rightOK := true, true
	for _, o := range leftResults {
		if o.matched {
			if o.side != sideLeft {
				leftOK = false
			}
			if o.side != sideRight {
				rightOK = false
			}
		} else {
			if o.side != sideLeft {
				leftOK = false
			}
			if o.node != nil {
				rightOK = false
			}
		}
	}
	for _, o := range rightResults {
		if o.side != sideRight {
			rightOK = false
		}
		if o.node != nil {
			leftOK = false
		}
	}

	fold := foldTokens[R]{reduce: reduce}
	all := make([]outcome, 0, len(leftResults)+len(rightResults))
	for _, o := range leftResults {
		fold.add(o.red)
		if o.node != nil {
			all = append(all, o)
		}
	}
	for _, o := range rightResults {
		fold.add(o.red)
		if o.node != nil {
			all = append(all, o)
		}
	}

	if leftOK {
		return left, fold.folded, sideLeft
	}
	if rightOK {
		return right, fold.folded, sideRight
	}
	if len(all) == 0 {
		return nil, fold.folded, sideNone
	}
	sort.Slice(all, func(i, j int) bool { return all[i].flag < all[j].flag })

	var bitmap carray.Bitmap
	values := make([]node[K, V], len(all))
	extra := 0
	for i, o := range all {
		bitmap = bitmap.Insert(o.flag)
		values[i] = o.node
		extra += o.node.size()
	}
	return &branchNode[K, V]{children: carray.New[node[K, V]](bitmap, values, extra)}, fold.folded, sideNone
}

func wrapRoot[K comparable, V any](n node[K, V]) node[K, V] {
	if n == nil {
		return emptyBranch[K, V]()
	}
	return n
}

// TransformWithTransformed merges two tries holding the same value type:
// entries unique to left or right, and entries present in both, are all
// combined through ops that preserve V (no key/value type change), plus the
// ReduceOp-folded reduction token across the whole pass. both may signal
// UnchangedL, UnchangedR, or UnchangedLR in addition to Transformed/Removed,
// letting an entire matched subtree's original pointer be reused when every
// entry beneath it resolves the same way — the joint-transform counterpart
// of Transform's single-sided Unchanged fast path. This is the combinator
// behind set/map operations like union and symmetric-difference where both
// sides already share a type.
func TransformWithTransformed[K comparable, V any, R any](
	left, right *Trie[K, V], strategy ParallelismStrategy, reduce ReduceOp[R],
	both func(key K, left, right V) (JointBothResult[V], R),
	leftOnly func(Entry[K, V]) (TransformResult[V], R),
	rightOnly func(Entry[K, V]) (TransformResult[V], R),
) (*Trie[K, V], R) {
	newRoot, red, _ := mergeNodeSame[K, V, R](left.root, right.root, 0, left.hasher, strategy, reduce, both, leftOnly, rightOnly)
	return &Trie[K, V]{root: wrapRoot[K, V](newRoot), hasher: left.hasher}, red
}

// TransformWithTransmuted merges a left trie of type V with a right trie
// of a different type VR: left-only entries keep type V, right-only
// entries are transmuted from VR into V, and entries in both are combined
// into V. There is no Unchanged fast path: VR may differ from V, so a
// matched subtree is always rebuilt.
func TransformWithTransmuted[K comparable, V any, VR any, R any](
	left *Trie[K, V], right *Trie[K, VR], strategy ParallelismStrategy, reduce ReduceOp[R],
	both func(key K, left V, right VR) (TransformResult[V], R),
	leftOnly func(Entry[K, V]) (TransformResult[V], R),
	rightOnly func(Entry[K, VR]) (TransmuteResult[K, V], R),
) (*Trie[K, V], R) {
	bothT := func(k K, l V, r VR) (TransmuteResult[K, V], R) {
		res, red := both(k, l, r)
		switch res.kind {
		case tRemoved:
			return TransmuteRemoved[K, V](), red
		case tUnchanged:
			return Transmuted(k, l), red
		default:
			return Transmuted(k, res.val), red
		}
	}
	leftT := func(e Entry[K, V]) (TransmuteResult[K, V], R) {
		res, red := leftOnly(e)
		switch res.kind {
		case tRemoved:
			return TransmuteRemoved[K, V](), red
		case tUnchanged:
			return Transmuted(e.Key, e.Value), red
		default:
			return Transmuted(e.Key, res.val), red
		}
	}
	newRoot, red := mergeNode[K, V, VR, V, R](left.root, right.root, 0, left.hasher, strategy, reduce, bothT, leftT, rightOnly)
	return &Trie[K, V]{root: wrapRoot[K, V](newRoot), hasher: left.hasher}, red
}

// TransmuteWithTransformed is TransformWithTransmuted with the sides
// swapped: left-only entries are transmuted from VL into V, right-only
// entries keep type V. It is implemented as a flip adapter over
// TransformWithTransmuted rather than its own traversal, per §4.5's note
// that only one direction needs explicit code per node-kind pair.
func TransmuteWithTransformed[K comparable, VL any, V any, R any](
	left *Trie[K, VL], right *Trie[K, V], strategy ParallelismStrategy, reduce ReduceOp[R],
	both func(key K, left VL, right V) (TransformResult[V], R),
	leftOnly func(Entry[K, VL]) (TransmuteResult[K, V], R),
	rightOnly func(Entry[K, V]) (TransformResult[V], R),
) (*Trie[K, V], R) {
	flippedBoth := func(k K, r V, l VL) (TransformResult[V], R) { return both(k, l, r) }
	return TransformWithTransmuted[K, V, VL, R](right, left, strategy, reduce, flippedBoth, rightOnly, leftOnly)
}

// TransmuteWithTransmuted is the fully general joint operator: left and
// right may hold entirely different value types, and the joined trie's
// type VO need not match either. There is no Unchanged fast path anywhere,
// since no two of K/VL/VR/VO are guaranteed to coincide.
func TransmuteWithTransmuted[K comparable, VL any, VR any, VO any, R any](
	left *Trie[K, VL], right *Trie[K, VR], strategy ParallelismStrategy, outHasher Hasher[K], reduce ReduceOp[R],
	both BothOp[K, VL, VR, VO, R],
	leftOnly func(Entry[K, VL]) (TransmuteResult[K, VO], R),
	rightOnly func(Entry[K, VR]) (TransmuteResult[K, VO], R),
) (*Trie[K, VO], R) {
	newRoot, red := mergeNode[K, VL, VR, VO, R](left.root, right.root, 0, left.hasher, strategy, reduce, both, leftOnly, rightOnly)
	return &Trie[K, VO]{root: wrapRoot[K, VO](newRoot), hasher: outHasher}, red
}
