// Package tree implements the in-memory working-tree model: blobs,
// subtrees and commit references with lazy hashing and bottom-up write
// propagation.
package tree

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// DefaultBlobMode is the file mode assigned to blobs unless overridden.
const DefaultBlobMode = filemode.Regular

// Entry is a node in the working tree: a Blob, a Subtree or a CommitRef.
type Entry interface {
	// Name returns the entry's basename.
	Name() string
	// SetName renames the entry in place (used by copy-to-name).
	SetName(name string)
	// Mode returns the entry's file-mode bits.
	Mode() filemode.FileMode
	// Hash returns the entry's content hash. Only meaningful once Written
	// reports true.
	Hash() plumbing.Hash
	// Written reports whether the entry's hash has been computed and
	// persisted. For a Subtree this is true only when Modified is false
	// and every child is Written (invariant 1 in the data model).
	Written() bool
	// cloneForCopy returns a structural copy suitable for installing
	// under a new name (copy-on-rename semantics).
	cloneForCopy(newName string) Entry
}

// CopyToName implements copy-on-rename: copying a Blob reuses its hash;
// copying a Subtree yields a structurally cloned Subtree in which nested
// Subtrees are copied and Blobs and CommitRefs are shared.
func CopyToName(e Entry, newName string) Entry {
	if e.Name() == newName {
		if b, ok := e.(*Blob); ok {
			return b
		}
	}
	return e.cloneForCopy(newName)
}

// Blob is a file entry. Its hash, once set, is immutable: "renames"
// produce a new logical Entry with the same hash (invariant 4).
type Blob struct {
	name    string
	mode    filemode.FileMode
	hash    plumbing.Hash
	written bool
}

// NewBlob constructs a Blob from an already-stored content hash.
func NewBlob(name string, hash plumbing.Hash, mode filemode.FileMode) *Blob {
	if mode == 0 {
		mode = DefaultBlobMode
	}
	return &Blob{name: name, mode: mode, hash: hash, written: true}
}

func (b *Blob) Name() string               { return b.name }
func (b *Blob) SetName(name string)         { b.name = name }
func (b *Blob) Mode() filemode.FileMode     { return b.mode }
func (b *Blob) Hash() plumbing.Hash         { return b.hash }
func (b *Blob) Written() bool               { return b.written }
func (b *Blob) cloneForCopy(name string) Entry {
	return NewBlob(name, b.hash, b.mode)
}

// CommitRef is a pointer to a previously materialized commit, used when
// the dump embeds a submodule-like reference. Optional; most converters
// never construct one.
type CommitRef struct {
	name string
	hash plumbing.Hash
}

// NewCommitRef constructs a CommitRef pointing at an already-written commit.
func NewCommitRef(name string, hash plumbing.Hash) *CommitRef {
	return &CommitRef{name: name, hash: hash}
}

func (c *CommitRef) Name() string           { return c.name }
func (c *CommitRef) SetName(name string)    { c.name = name }
func (c *CommitRef) Mode() filemode.FileMode { return filemode.Submodule }
func (c *CommitRef) Hash() plumbing.Hash    { return c.hash }
func (c *CommitRef) Written() bool          { return true }
func (c *CommitRef) cloneForCopy(name string) Entry {
	return NewCommitRef(name, c.hash)
}

// NotADirectoryError is returned when a path traverses through a Blob.
type NotADirectoryError struct {
	Path string
}

func (e *NotADirectoryError) Error() string {
	return fmt.Sprintf("not a directory: %s", e.Path)
}

// NotFoundError is returned when a path does not resolve to an entry.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}
