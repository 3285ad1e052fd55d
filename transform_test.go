package hashtrie

import "testing"

func buildIntTrie(n int) *Trie[int, int] {
	tr := Empty[int, int](intHasher())
	for i := 0; i < n; i++ {
		tr, _, _ = tr.Insert(i, i, false)
	}
	return tr
}

func sumReduce(a, b int) int { return a + b }

func TestTransformUnchangedReturnsSameRoot(t *testing.T) {
	tr := buildIntTrie(100)
	out, _ := Transform[int, int, int](tr, sumReduce, func(Entry[int, int]) (TransformResult[int], int) {
		return Unchanged[int](), 0
	})
	if out != tr {
		t.Fatalf("Transform with an all-Unchanged op must return the receiver unchanged (no allocation)")
	}
}

func TestTransformDoublesValues(t *testing.T) {
	tr := buildIntTrie(100)
	out, _ := Transform[int, int, int](tr, sumReduce, func(e Entry[int, int]) (TransformResult[int], int) {
		return Transformed(e.Value * 2), 0
	})
	if out.Size() != tr.Size() {
		t.Fatalf("Size changed under a value-only Transform: got %d, want %d", out.Size(), tr.Size())
	}
	for i := 0; i < 100; i++ {
		v, err := out.Find(i)
		if err != nil || v != i*2 {
			t.Fatalf("Find(%d) = (%d, %v), want (%d, nil)", i, v, err, i*2)
		}
	}
}

func TestTransformRemovesSubset(t *testing.T) {
	tr := buildIntTrie(100)
	out, _ := Transform[int, int, int](tr, sumReduce, func(e Entry[int, int]) (TransformResult[int], int) {
		if e.Key%2 == 0 {
			return Removed[int](), 0
		}
		return Unchanged[int](), 0
	})
	if got := out.Size(); got != 50 {
		t.Fatalf("Size() after removing evens = %d, want 50", got)
	}
	for i := 0; i < 100; i++ {
		_, err := out.Find(i)
		if i%2 == 0 && err == nil {
			t.Fatalf("Find(%d) succeeded after Removed", i)
		}
		if i%2 != 0 && err != nil {
			t.Fatalf("Find(%d) failed for a surviving key: %v", i, err)
		}
	}
}

func TestTransformPartialChangeOnlyTouchesAffectedPath(t *testing.T) {
	tr := buildIntTrie(64)
	branch := tr.root.(*branchNode[int, int])
	lowestFlag := branch.children.Bitmap() & (^branch.children.Bitmap() + 1)
	beforeChild, _ := branch.children.At(lowestFlag)

	// Transform a single key that does not live under the lowest-flag
	// child; that child's subtree must be reused verbatim.
	out, _ := Transform[int, int, int](tr, sumReduce, func(e Entry[int, int]) (TransformResult[int], int) {
		if e.Key == 1 { // lives under root slot 1; every other entry is Unchanged
			return Transformed(-1), 0
		}
		return Unchanged[int](), 0
	})
	if out == tr {
		t.Fatalf("key 1 was transformed; Transform should have returned a new trie")
	}
	outBranch := out.root.(*branchNode[int, int])
	afterChild, _ := outBranch.children.At(lowestFlag)
	if !sameNodePointer(beforeChild, afterChild) {
		t.Fatalf("untouched subtree was rebuilt during Transform")
	}
}

// TestTransformReductionSumsEveryEntry exercises the reduce/fold token
// returned alongside the rebuilt trie: summing 0..100 (inclusive) yields
// 5050, the worked example this engine is checked against.
func TestTransformReductionSumsEveryEntry(t *testing.T) {
	tr := buildIntTrie(101) // keys/values 0..100
	_, total := Transform[int, int, int](tr, sumReduce, func(e Entry[int, int]) (TransformResult[int], int) {
		return Unchanged[int](), e.Value
	})
	if total != 5050 {
		t.Fatalf("folded reduction = %d, want 5050", total)
	}
}

// TestTransformReductionSumsWhileRemovingEverything is §8's "Set-transform
// summing all keys via a reduction that adds values and a Removed op":
// reduction equals 5050, and the resulting trie is empty.
func TestTransformReductionSumsWhileRemovingEverything(t *testing.T) {
	tr := buildIntTrie(101) // keys/values 0..100
	out, total := Transform[int, int, int](tr, sumReduce, func(e Entry[int, int]) (TransformResult[int], int) {
		return Removed[int](), e.Value
	})
	if total != 5050 {
		t.Fatalf("folded reduction = %d, want 5050", total)
	}
	if !out.IsEmpty() {
		t.Fatalf("out.IsEmpty() = false, want true after removing every entry")
	}
}

func TestTransmuteChangesValueType(t *testing.T) {
	tr := buildIntTrie(50)
	out, _ := Transmute[int, int, string, int](tr, intHasher(), sumReduce, func(e Entry[int, int]) (TransmuteResult[int, string], int) {
		if e.Key%10 == 0 {
			return TransmuteRemoved[int, string](), 0
		}
		return Transmuted(e.Key, "v"), 1
	})
	if got, want := out.Size(), 45; got != want {
		t.Fatalf("Size() = %d, want %d", got, want)
	}
	for i := 0; i < 50; i++ {
		v, err := out.Find(i)
		if i%10 == 0 {
			if err == nil {
				t.Fatalf("Find(%d) succeeded after TransmuteRemoved", i)
			}
			continue
		}
		if err != nil || v != "v" {
			t.Fatalf("Find(%d) = (%q, %v), want (\"v\", nil)", i, v, err)
		}
	}
}

func TestTransmuteReductionCountsSurvivors(t *testing.T) {
	tr := buildIntTrie(50)
	_, survivors := Transmute[int, int, string, int](tr, intHasher(), sumReduce, func(e Entry[int, int]) (TransmuteResult[int, string], int) {
		if e.Key%10 == 0 {
			return TransmuteRemoved[int, string](), 0
		}
		return Transmuted(e.Key, "v"), 1
	})
	if survivors != 45 {
		t.Fatalf("folded reduction = %d, want 45", survivors)
	}
}
