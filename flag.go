package hashtrie

import "github.com/gopersist/hashtrie/internal/carray"

// maxDepth is the number of flag chunks a 64-bit hash yields at the default
// 5-bit-per-level chunk width (ceil(64/5) = 13: twelve full chunks plus a
// last chunk holding the top 4 bits); beyond it the flag stream is
// exhausted (§4.3). Two hashes that agree on every chunk are equal.
const maxDepth = (64 + carray.LogWidth - 1) / carray.LogWidth

// flagStream decomposes a 64-bit hash into a sequence of 5-bit chunks (the
// last one 4 bits wide), one per trie depth, each identifying the branch
// slot to follow at that
// depth. It mirrors the teacher's and the reference implementation's
// mask-and-shift approach (no allocation, no interface dispatch).
type flagStream struct {
	hash  uint64
	depth int
}

// newFlagStream starts a flag stream for hash at depth 0.
func newFlagStream(hash uint64) flagStream {
	return flagStream{hash: hash, depth: 0}
}

// flag returns the current depth's flag.
func (f flagStream) flag() carray.Flag {
	shifted := f.hash >> (uint(f.depth) * carray.LogWidth)
	return carray.NthBit(uint(shifted) & (carray.Width - 1))
}

// next advances to depth+1. ok is false once the hash is exhausted.
func (f flagStream) next() (flagStream, bool) {
	if f.depth+1 >= maxDepth {
		return flagStream{}, false
	}
	return flagStream{hash: f.hash, depth: f.depth + 1}, true
}

// flagAtDepth returns the flag that hash would produce at an arbitrary
// depth, used when lifting two singleton/bucket entries into a chain of
// branch nodes (the recursion needs to re-derive flags for depths it
// hasn't visited as a stream).
func flagAtDepth(hash uint64, depth int) carray.Flag {
	shifted := hash >> (uint(depth) * carray.LogWidth)
	return carray.NthBit(uint(shifted) & (carray.Width - 1))
}
