package hashtrie

import (
	"hash/fnv"

	"github.com/dolthub/maphash"
)

// Hasher is the hasher typed parameter M from §6: a deterministic function
// from a key to a 64-bit hash (HashWidth H = 64, the default
// concretization). Two Hasher instances used against the same trie must
// agree on every key ever inserted into it.
type Hasher[K any] interface {
	Hash(K) uint64
}

// HasherFunc adapts a plain function to a Hasher.
type HasherFunc[K any] func(K) uint64

// Hash implements Hasher.
func (f HasherFunc[K]) Hash(k K) uint64 { return f(k) }

// FNVHasher hashes a Key (a normalized byte string, see key.go) with
// Fowler-Noll-Vo, the specification's named default hasher (§6). Map and
// Set constructors take their hasher as an argument; FNVHasher is not
// selected automatically when Key is used as K.
type FNVHasher struct{}

// Hash implements Hasher[Key].
func (FNVHasher) Hash(k Key) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k))
	return h.Sum64()
}

// genericHasher adapts github.com/dolthub/maphash's generic comparable-key
// hasher to the Hasher interface. It backs DefaultHasher for arbitrary
// comparable key types — the teacher's go.mod already pulls in
// dolthub/maphash (transitively, via Set3); here it is wired directly as
// the fast path for keys that aren't the library's own Key type.
type genericHasher[K comparable] struct {
	h maphash.Hasher[K]
}

func (g genericHasher[K]) Hash(k K) uint64 { return g.h.Hash(k) }

// DefaultHasher returns the default Hasher for an arbitrary comparable key
// type, backed by github.com/dolthub/maphash's seeded generic hash. For
// byte/string-oriented keys built from the Key helper type, prefer
// FNVHasher, the specification's named default concretization.
func DefaultHasher[K comparable]() Hasher[K] {
	return genericHasher[K]{h: maphash.NewHasher[K]()}
}

// constantHasher hashes every key to the same value. It is a test fixture
// only (never exported outside the module): it forces every insertion into
// one bucket chain, letting tests exercise the full-hash-collision paths
// described in §8 ("Full-hash collisions forced by a constant hasher").
type constantHasher[K any] struct{ value uint64 }

func (c constantHasher[K]) Hash(K) uint64 { return c.value }
