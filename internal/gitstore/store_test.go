package gitstore

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"

	"github.com/gitbridge/svn2git/internal/tree"
)

func TestPutBlobIsContentAddressedAndIdempotent(t *testing.T) {
	s := OpenMemory()
	h1, err := s.PutBlob([]byte("hi\n"))
	if err != nil {
		t.Fatalf("PutBlob failed: %v", err)
	}
	h2, err := s.PutBlob([]byte("hi\n"))
	if err != nil {
		t.Fatalf("PutBlob failed: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected identical content to hash identically: %v != %v", h1, h2)
	}
}

func TestPutTreeCanonicalOrdering(t *testing.T) {
	s := OpenMemory()
	blobHash, err := s.PutBlob([]byte("x"))
	if err != nil {
		t.Fatalf("PutBlob failed: %v", err)
	}

	entriesA := []tree.TreeEntryRef{
		{Name: "b.txt", Mode: filemode.Regular, Hash: blobHash},
		{Name: "a.txt", Mode: filemode.Regular, Hash: blobHash},
	}
	entriesB := []tree.TreeEntryRef{
		{Name: "a.txt", Mode: filemode.Regular, Hash: blobHash},
		{Name: "b.txt", Mode: filemode.Regular, Hash: blobHash},
	}

	h1, err := s.PutTree(entriesA)
	if err != nil {
		t.Fatalf("PutTree failed: %v", err)
	}
	h2, err := s.PutTree(entriesB)
	if err != nil {
		t.Fatalf("PutTree failed: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected canonical ordering to make input order irrelevant: %v != %v", h1, h2)
	}
}

func TestPutCommitAndRefRoundTrip(t *testing.T) {
	s := OpenMemory()
	blobHash, _ := s.PutBlob([]byte("hi\n"))
	treeHash, err := s.PutTree([]tree.TreeEntryRef{{Name: "a.txt", Mode: filemode.Regular, Hash: blobHash}})
	if err != nil {
		t.Fatalf("PutTree failed: %v", err)
	}

	sig := Signature{Name: "J Smith", Email: "js@example.com", When: time.Unix(0, 0)}
	commitHash, err := s.PutCommit(treeHash, nil, sig, sig, "initial")
	if err != nil {
		t.Fatalf("PutCommit failed: %v", err)
	}

	refName := plumbing.NewBranchReferenceName("master")
	if err := s.SetRef(refName, commitHash); err != nil {
		t.Fatalf("SetRef failed: %v", err)
	}

	got, ok, err := s.ReadRef(refName)
	if err != nil {
		t.Fatalf("ReadRef failed: %v", err)
	}
	if !ok {
		t.Fatal("expected ref to exist")
	}
	if got != commitHash {
		t.Fatalf("expected ref to point at %v, got %v", commitHash, got)
	}
}

func TestReadRefMissingReturnsNotOK(t *testing.T) {
	s := OpenMemory()
	_, ok, err := s.ReadRef(plumbing.NewBranchReferenceName("nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected missing ref to report ok=false")
	}
}
