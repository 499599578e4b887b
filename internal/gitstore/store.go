// Package gitstore wraps github.com/go-git/go-git/v5's plumbing layer
// into the small ObjectStore surface the converter core needs: hash/store
// a blob, hash/store a tree from an ordered entry list, create a commit,
// read/write refs. It owns no converter semantics of its own.
package gitstore

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/gitbridge/svn2git/internal/tree"
)

// Signature is the author/committer identity attached to a commit.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

func (s Signature) toObject() object.Signature {
	return object.Signature{Name: s.Name, Email: s.Email, When: s.When}
}

// Store is the ObjectStore adapter (component C1). All operations are
// synchronous and side-effecting on disk (or in memory for tests).
type Store struct {
	repo *git.Repository
}

// Open opens an existing repository at path, or initializes a new one
// (with its object store under path/.git) if none exists yet (bootstrap
// for a fresh conversion target).
func Open(path string) (*Store, error) {
	repo, err := git.PlainOpen(path)
	if err == nil {
		return &Store{repo: repo}, nil
	}
	fs := osfs.New(path)
	dot, err := fs.Chroot(".git")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, path, err)
	}
	storer := filesystem.NewStorage(dot, nil)
	repo, err = git.Init(storer, fs)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open or init %s: %v", ErrStoreUnavailable, path, err)
	}
	return &Store{repo: repo}, nil
}

// OpenMemory creates a Store backed entirely by an in-memory storer, for
// tests and scenario verification (spec's "convert twice into two fresh
// repositories" determinism property does not require disk at all).
func OpenMemory() *Store {
	repo, _ := git.Init(memory.NewStorage(), nil)
	return &Store{repo: repo}
}

// Storer exposes the underlying go-git storer for callers (tests) that
// need to walk committed history directly.
func (s *Store) Storer() storage.Storer { return s.repo.Storer }

// Repository exposes the underlying *git.Repository for higher-level
// read-back of committed objects (used by tests).
func (s *Store) Repository() *git.Repository { return s.repo }

// PutBlob hashes and stores content-addressed blob bytes. Idempotent:
// storing the same bytes twice yields the same hash and does not error.
func (s *Store) PutBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: blob writer: %v", ErrIO, err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return plumbing.ZeroHash, fmt.Errorf("%w: writing blob: %v", ErrIO, err)
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: closing blob writer: %v", ErrIO, err)
	}

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: storing blob: %v", ErrIO, err)
	}
	return hash, nil
}

// PutTree canonicalizes entry ordering (ASCII byte order of name, with
// directories compared as if trailing "/") and hashes/stores the tree.
// Callers (internal/tree) are expected to have already sorted entries;
// PutTree re-sorts defensively so it is safe to call directly.
func (s *Store) PutTree(entries []tree.TreeEntryRef) (plumbing.Hash, error) {
	objEntries := make([]object.TreeEntry, 0, len(entries))
	for _, e := range entries {
		objEntries = append(objEntries, object.TreeEntry{Name: e.Name, Mode: e.Mode, Hash: e.Hash})
	}
	sortTreeEntries(objEntries)

	gitTree := &object.Tree{Entries: objEntries}
	obj := s.repo.Storer.NewEncodedObject()
	if err := gitTree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: encoding tree: %v", ErrCorrupt, err)
	}
	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: storing tree: %v", ErrIO, err)
	}
	return hash, nil
}

func sortTreeEntries(entries []object.TreeEntry) {
	sortSlice(entries, func(a, b object.TreeEntry) bool {
		return sortKey(a) < sortKey(b)
	})
}

func sortKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}

// sortSlice is a small in-place insertion sort kept local so this file
// has a single, obvious place to look for the comparator.
func sortSlice(entries []object.TreeEntry, less func(a, b object.TreeEntry) bool) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && less(entries[j], entries[j-1]); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// PutCommit hashes and stores a commit object with the given tree,
// parents, authorship and message.
func (s *Store) PutCommit(treeHash plumbing.Hash, parents []plumbing.Hash, author, committer Signature, message string) (plumbing.Hash, error) {
	commit := &object.Commit{
		Author:       author.toObject(),
		Committer:    committer.toObject(),
		Message:      message,
		TreeHash:     treeHash,
		ParentHashes: parents,
	}
	obj := s.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: encoding commit: %v", ErrCorrupt, err)
	}
	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: storing commit: %v", ErrIO, err)
	}
	return hash, nil
}

// SetRef points refname at hash, creating or updating it.
func (s *Store) SetRef(refname plumbing.ReferenceName, hash plumbing.Hash) error {
	ref := plumbing.NewHashReference(refname, hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("%w: setting ref %s: %v", ErrIO, refname, err)
	}
	return nil
}

// ReadRef returns the commit hash refname points at, or ok=false if the
// ref does not exist yet.
func (s *Store) ReadRef(refname plumbing.ReferenceName) (hash plumbing.Hash, ok bool, err error) {
	ref, refErr := s.repo.Storer.Reference(refname)
	if refErr != nil {
		if refErr == plumbing.ErrReferenceNotFound {
			return plumbing.ZeroHash, false, nil
		}
		return plumbing.ZeroHash, false, fmt.Errorf("%w: reading ref %s: %v", ErrIO, refname, refErr)
	}
	return ref.Hash(), true, nil
}

// GC is an opaque end-of-run hook. go-git has no standalone repack/gc
// primitive comparable to git-gc(1); this adapter method exists to keep
// the ObjectStore interface contract from the spec (§4.1) intact and is a
// documented no-op rather than a silent omission.
func (s *Store) GC() error {
	return nil
}
