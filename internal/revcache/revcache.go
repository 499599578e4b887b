// Package revcache implements the revision tree cache (component C4):
// per-revision snapshot trees retained for cross-revision copy
// resolution, with retention driven by the minimum source revision still
// referenced by pending copy operations (never a fixed window).
package revcache

import (
	"fmt"

	"github.com/gitbridge/svn2git/internal/tree"
)

// Cache maps revision number to the root Subtree snapshot taken at the
// end of that revision.
type Cache struct {
	snapshots map[int]*tree.Subtree
	// pending tracks source revisions still referenced by copy
	// operations recorded during prescan but not yet resolved.
	pending map[int]int // revision -> outstanding reference count
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{
		snapshots: make(map[int]*tree.Subtree),
		pending:   make(map[int]int),
	}
}

// Snapshot records root as the working-tree snapshot for revision. The
// snapshot is a cheap structural reference (the live Subtree, captured
// before further mutation); callers must not mutate a Subtree that has
// been handed to Snapshot except through the copy-on-write path that
// cloneForCopy provides.
func (c *Cache) Snapshot(revision int, root *tree.Subtree) {
	c.snapshots[revision] = root
}

// Get returns the snapshot for revision, or nil if it is not retained.
func (c *Cache) Get(revision int) (*tree.Subtree, bool) {
	t, ok := c.snapshots[revision]
	return t, ok
}

// ErrCopySourceMissing is returned when a copy operation names a source
// revision not present in the cache, or a path that does not resolve
// inside that snapshot.
type ErrCopySourceMissing struct {
	Revision int
	Path     string
}

func (e *ErrCopySourceMissing) Error() string {
	return fmt.Sprintf("revcache: copy source missing: rev %d path %q", e.Revision, e.Path)
}

// Resolve looks up path inside the snapshot for revision, returning
// ErrCopySourceMissing if either the revision or the path is absent.
func (c *Cache) Resolve(revision int, path string) (tree.Entry, error) {
	snap, ok := c.snapshots[revision]
	if !ok {
		return nil, &ErrCopySourceMissing{Revision: revision, Path: path}
	}
	entry, err := snap.Lookup(path)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &ErrCopySourceMissing{Revision: revision, Path: path}
	}
	return entry, nil
}

// RecordPendingSource increments the reference count for a source
// revision named by a copy node observed during prescan, ensuring the
// snapshot for that revision is retained until Resolved is called for
// every such reference.
func (c *Cache) RecordPendingSource(revision int) {
	c.pending[revision]++
}

// Resolved decrements the pending reference count for revision. Once a
// revision's count reaches zero it becomes eligible for pruning.
func (c *Cache) Resolved(revision int) {
	if c.pending[revision] <= 1 {
		delete(c.pending, revision)
	} else {
		c.pending[revision]--
	}
}

// Prune discards every retained snapshot older than the minimum revision
// still referenced in the pending copy list. If there are no pending
// references, only the most recent snapshot is kept (callers typically
// call this right after a revision's copies have all resolved).
func (c *Cache) Prune(currentRevision int) {
	min := currentRevision
	for rev := range c.pending {
		if rev < min {
			min = rev
		}
	}
	for rev := range c.snapshots {
		if rev < min {
			delete(c.snapshots, rev)
		}
	}
}
