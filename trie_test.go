package hashtrie

import (
	"errors"
	"fmt"
	"testing"
)

func intHasher() Hasher[int] {
	return HasherFunc[int](func(i int) uint64 { return uint64(i) })
}

func TestEmptyTrieSizeAndFind(t *testing.T) {
	tr := Empty[int, string](intHasher())
	if got := tr.Size(); got != 0 {
		t.Fatalf("Size() = %d, want 0", got)
	}
	if !tr.IsEmpty() {
		t.Fatalf("IsEmpty() = false, want true")
	}
	if _, err := tr.Find(42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find on empty trie: err = %v, want ErrNotFound", err)
	}
}

func TestInsertFindRemoveRoundTrip(t *testing.T) {
	tr := Empty[int, string](intHasher())
	var err error
	for i := 0; i < 200; i++ {
		tr, _, err = tr.Insert(i, fmt.Sprintf("v%d", i), false)
		if err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	if got := tr.Size(); got != 200 {
		t.Fatalf("Size() = %d, want 200", got)
	}
	for i := 0; i < 200; i++ {
		v, err := tr.Find(i)
		if err != nil {
			t.Fatalf("Find(%d): %v", i, err)
		}
		if want := fmt.Sprintf("v%d", i); v != want {
			t.Fatalf("Find(%d) = %q, want %q", i, v, want)
		}
	}
	for i := 0; i < 200; i += 2 {
		var err error
		tr, _, err = tr.Remove(i)
		if err != nil {
			t.Fatalf("Remove(%d): %v", i, err)
		}
	}
	if got := tr.Size(); got != 100 {
		t.Fatalf("Size() after removing evens = %d, want 100", got)
	}
	for i := 0; i < 200; i++ {
		_, err := tr.Find(i)
		if i%2 == 0 {
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Find(%d) after removal: err = %v, want ErrNotFound", i, err)
			}
		} else if err != nil {
			t.Fatalf("Find(%d): %v", i, err)
		}
	}
}

func TestInsertAlreadyPresentWithoutReplace(t *testing.T) {
	tr := Empty[int, string](intHasher())
	tr, _, err := tr.Insert(1, "first", false)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	same, prev, err := tr.Insert(1, "second", false)
	if !errors.Is(err, ErrAlreadyPresent) {
		t.Fatalf("Insert replace=false on existing key: err = %v, want ErrAlreadyPresent", err)
	}
	if prev != "first" {
		t.Fatalf("prev = %q, want %q", prev, "first")
	}
	if same != tr {
		t.Fatalf("Insert replace=false on existing key must return the same trie pointer")
	}
	v, _ := tr.Find(1)
	if v != "first" {
		t.Fatalf("value mutated despite replace=false: got %q", v)
	}
}

func TestInsertReplaceOverwritesValue(t *testing.T) {
	tr := Empty[int, string](intHasher())
	tr, _, _ = tr.Insert(1, "first", false)
	tr, prev, err := tr.Insert(1, "second", true)
	if err != nil {
		t.Fatalf("Insert replace=true: %v", err)
	}
	if prev != "first" {
		t.Fatalf("prev = %q, want %q", prev, "first")
	}
	v, _ := tr.Find(1)
	if v != "second" {
		t.Fatalf("Find(1) = %q, want %q", v, "second")
	}
}

func TestRemoveNotFound(t *testing.T) {
	tr := Empty[int, string](intHasher())
	tr, _, _ = tr.Insert(1, "a", false)
	same, _, err := tr.Remove(2)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Remove(2): err = %v, want ErrNotFound", err)
	}
	if same != tr {
		t.Fatalf("Remove on absent key must return the same trie pointer")
	}
}

// TestFullHashCollisions forces every key into one bucket chain via a
// constant hasher, exercising find/insert/remove over a genuine hash
// collision chain held in the root branch's single occupied slot (§8
// "full-hash collisions forced by a constant hasher").
func TestFullHashCollisions(t *testing.T) {
	h := constantHasher[int]{value: 7}
	tr := Empty[int, string](h)
	rootSlot := func() node[int, string] {
		child, _ := tr.root.(*branchNode[int, string]).children.At(flagAtDepth(7, 0))
		return child
	}
	var err error
	keys := []int{10, 20, 30, 40}
	for _, k := range keys {
		tr, _, err = tr.Insert(k, fmt.Sprintf("v%d", k), false)
		if err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}
	if _, ok := rootSlot().(*bucketNode[int, string]); !ok {
		t.Fatalf("root slot = %T, want *bucketNode (all keys share one hash)", rootSlot())
	}
	if got := tr.Size(); got != len(keys) {
		t.Fatalf("Size() = %d, want %d", got, len(keys))
	}
	for _, k := range keys {
		v, err := tr.Find(k)
		if err != nil || v != fmt.Sprintf("v%d", k) {
			t.Fatalf("Find(%d) = (%q, %v)", k, v, err)
		}
	}
	tr, _, err = tr.Remove(20)
	if err != nil {
		t.Fatalf("Remove(20): %v", err)
	}
	if got := tr.Size(); got != len(keys)-1 {
		t.Fatalf("Size() after remove = %d, want %d", got, len(keys)-1)
	}
	if _, err := tr.Find(20); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find(20) after removal: err = %v, want ErrNotFound", err)
	}

	// Collapse down to one entry: the chain must become a singleton.
	tr, _, _ = tr.Remove(30)
	tr, _, _ = tr.Remove(40)
	if _, ok := rootSlot().(*singletonNode[int, string]); !ok {
		t.Fatalf("root slot = %T, want *singletonNode once only one collision survives", rootSlot())
	}
}

func TestVisitEnumeratesEveryEntry(t *testing.T) {
	tr := Empty[int, int](intHasher())
	for i := 0; i < 50; i++ {
		tr, _, _ = tr.Insert(i, i*i, false)
	}
	seen := make(map[int]int)
	tr.Visit(func(e Entry[int, int]) { seen[e.Key] = e.Value })
	if len(seen) != 50 {
		t.Fatalf("Visit saw %d entries, want 50", len(seen))
	}
	for i := 0; i < 50; i++ {
		if seen[i] != i*i {
			t.Fatalf("Visit entry %d = %d, want %d", i, seen[i], i*i)
		}
	}
}

func TestCloneIsIdentity(t *testing.T) {
	tr := Empty[int, string](intHasher())
	tr, _, _ = tr.Insert(1, "a", false)
	if tr.Clone() != tr {
		t.Fatalf("Clone() must return the same pointer: persistent tries need no deep copy")
	}
}

func TestEqual(t *testing.T) {
	a := Empty[int, string](intHasher())
	a, _, _ = a.Insert(1, "x", false)
	a, _, _ = a.Insert(2, "y", false)

	b := Empty[int, string](intHasher())
	b, _, _ = b.Insert(2, "y", false)
	b, _, _ = b.Insert(1, "x", false)

	if !a.Equal(b, func(x, y string) bool { return x == y }) {
		t.Fatalf("Equal() = false for tries with identical contents built in different order")
	}

	b, _, _ = b.Insert(1, "z", true)
	if a.Equal(b, func(x, y string) bool { return x == y }) {
		t.Fatalf("Equal() = true after a value diverged")
	}
}

func TestFindAsCrossTypeLookup(t *testing.T) {
	tr := Empty[string, int](HasherFunc[string](func(s string) uint64 { return FNVHasher{}.Hash(Key(s)) }))
	tr, _, _ = tr.Insert(string(FromString("hello")), 1, false)

	v, err := FindAs[string, int, string](tr, "hello", HasherFunc[string](func(s string) uint64 {
		return FNVHasher{}.Hash(FromString(s))
	}), func(k string, q string) bool { return k == string(FromString(q)) })
	if err != nil {
		t.Fatalf("FindAs: %v", err)
	}
	if v != 1 {
		t.Fatalf("FindAs = %d, want 1", v)
	}
}

func TestRemoveAsCrossTypeRemove(t *testing.T) {
	tr := Empty[string, int](HasherFunc[string](func(s string) uint64 { return FNVHasher{}.Hash(Key(s)) }))
	tr, _, _ = tr.Insert(string(FromString("hello")), 1, false)
	tr, _, _ = tr.Insert(string(FromString("world")), 2, false)

	hashAsString := HasherFunc[string](func(s string) uint64 {
		return FNVHasher{}.Hash(FromString(s))
	})
	eq := func(k string, q string) bool { return k == string(FromString(q)) }

	out, removed, err := RemoveAs[string, int, string](tr, "hello", hashAsString, eq)
	if err != nil {
		t.Fatalf("RemoveAs: %v", err)
	}
	if removed != 1 {
		t.Fatalf("RemoveAs removed = %d, want 1", removed)
	}
	if out.Size() != 1 {
		t.Fatalf("Size() after RemoveAs = %d, want 1", out.Size())
	}
	if _, err := FindAs[string, int, string](out, "hello", hashAsString, eq); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindAs(hello) after RemoveAs: err = %v, want ErrNotFound", err)
	}

	same, _, err := RemoveAs[string, int, string](out, "nope", hashAsString, eq)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveAs on absent query: err = %v, want ErrNotFound", err)
	}
	if same != out {
		t.Fatalf("RemoveAs on absent query must return the same trie pointer")
	}
}
