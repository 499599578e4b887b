package classify

import (
	"testing"

	"github.com/gitbridge/svn2git/internal/branch"
	"github.com/gitbridge/svn2git/internal/config"
)

func newClassifier() *Classifier {
	return New(branch.NewRegistry(), config.DefaultBranchRules())
}

func TestTrunkMapsToMaster(t *testing.T) {
	c := newClassifier()
	b, sub := c.Classify("trunk/src/main.c")
	if b.Name != "master" {
		t.Fatalf("expected master, got %s", b.Name)
	}
	if sub != "src/main.c" {
		t.Fatalf("expected subpath 'src/main.c', got %q", sub)
	}
}

func TestBranchesWildcardRegistersNamedBranch(t *testing.T) {
	c := newClassifier()
	b, sub := c.Classify("branches/feat/src/main.c")
	if b.Name != "feat" {
		t.Fatalf("expected branch 'feat', got %s", b.Name)
	}
	if b.IsTag {
		t.Fatal("branches/* should not be a tag")
	}
	if sub != "src/main.c" {
		t.Fatalf("expected subpath 'src/main.c', got %q", sub)
	}
}

func TestTagsWildcardRegistersTag(t *testing.T) {
	c := newClassifier()
	b, _ := c.Classify("tags/v1/src/main.c")
	if b.Name != "v1" || !b.IsTag {
		t.Fatalf("expected tag 'v1', got name=%s tag=%v", b.Name, b.IsTag)
	}
}

func TestUnmatchedPathFallsToDefault(t *testing.T) {
	c := newClassifier()
	b, sub := c.Classify("README.txt")
	if b.Name != branch.DefaultName {
		t.Fatalf("expected default branch, got %s", b.Name)
	}
	if sub != "README.txt" {
		t.Fatalf("expected full path as subpath, got %q", sub)
	}
}

func TestClassificationIsStableAcrossCalls(t *testing.T) {
	c := newClassifier()
	b1, _ := c.Classify("branches/feat/a.txt")
	b2, _ := c.Classify("branches/feat/b.txt")
	if b1 != b2 {
		t.Fatal("expected repeated classification of the same branch to return the same *Branch")
	}
}
