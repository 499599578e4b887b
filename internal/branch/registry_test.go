package branch

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
)

func nonZeroHashForTest() plumbing.Hash {
	var h plumbing.Hash
	h[0] = 1
	return h
}

func TestByPathDefaultsToMaster(t *testing.T) {
	r := NewRegistry()
	b, sub := r.ByPath("trunk/src/main.c")
	if b.Name != DefaultName {
		t.Fatalf("expected default branch, got %s", b.Name)
	}
	if sub != "trunk/src/main.c" {
		t.Fatalf("expected full path as subpath, got %q", sub)
	}
}

func TestByPathLongestPrefixWins(t *testing.T) {
	r := NewRegistry()
	r.Register("feat", "branches/feat", false)
	r.Register("feat-sub", "branches/feat/sub", false)

	b, sub := r.ByPath("branches/feat/sub/file.txt")
	if b.Name != "feat-sub" {
		t.Fatalf("expected longest-prefix match 'feat-sub', got %s", b.Name)
	}
	if sub != "file.txt" {
		t.Fatalf("expected subpath 'file.txt', got %q", sub)
	}

	b2, sub2 := r.ByPath("branches/feat/other.txt")
	if b2.Name != "feat" {
		t.Fatalf("expected 'feat' match, got %s", b2.Name)
	}
	if sub2 != "other.txt" {
		t.Fatalf("expected subpath 'other.txt', got %q", sub2)
	}
}

func TestRegisterIsIdempotentPerPrefix(t *testing.T) {
	r := NewRegistry()
	first := r.Register("feat", "branches/feat", false)
	second := r.Register("feat-renamed", "branches/feat", false)
	if first != second {
		t.Fatal("expected re-registering an existing prefix to return the original branch")
	}
	if second.Name != "feat" {
		t.Fatalf("expected original name to stick, got %s", second.Name)
	}
}

func TestTagSealing(t *testing.T) {
	r := NewRegistry()
	b := r.Register("v1", "tags/v1", true)
	if err := b.MarkModified(); err != nil {
		t.Fatalf("first modification should succeed: %v", err)
	}
	b.Advance(nonZeroHashForTest())
	if b.State != Sealed {
		t.Fatalf("expected tag to be Sealed after its first commit, got %v", b.State)
	}
	if err := b.MarkModified(); err != ErrTagMutation {
		t.Fatalf("expected ErrTagMutation on second write, got %v", err)
	}
}

func TestAllReturnsSortedByName(t *testing.T) {
	r := NewRegistry()
	r.Register("zeta", "branches/zeta", false)
	r.Register("alpha", "branches/alpha", false)
	r.Default() // the default branch only exists once something resolves to it

	all := r.All()
	var names []string
	for _, b := range all {
		names = append(names, b.Name)
	}
	want := []string{"alpha", DefaultName, "zeta"}
	if len(names) != len(want) {
		t.Fatalf("expected %d branches, got %d (%v)", len(want), len(names), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected sorted order %v, got %v", want, names)
		}
	}
}
