package tree

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// TreeEntryRef is the canonical (name, mode, hash) triple handed to the
// object store adapter when materializing a tree.
type TreeEntryRef struct {
	Name string
	Mode filemode.FileMode
	Hash plumbing.Hash
}

// Store is the subset of the object-store adapter the tree model needs
// to materialize itself. Implemented by internal/gitstore.Store.
type Store interface {
	PutTree(entries []TreeEntryRef) (plumbing.Hash, error)
}

// Subtree is a directory-like Entry holding named children. Keys are
// unique; children are materialized in lexicographic (ASCII byte) order
// at write time (invariant 2).
type Subtree struct {
	name     string
	mode     filemode.FileMode
	children map[string]Entry
	modified bool
	written  bool
	hash     plumbing.Hash
}

// NewSubtree constructs an empty, unwritten Subtree.
func NewSubtree(name string) *Subtree {
	return &Subtree{
		name:     name,
		mode:     filemode.Dir,
		children: make(map[string]Entry),
		modified: true,
	}
}

func (t *Subtree) Name() string           { return t.name }
func (t *Subtree) SetName(name string)    { t.name = name }
func (t *Subtree) Mode() filemode.FileMode { return filemode.Dir }
func (t *Subtree) Hash() plumbing.Hash    { return t.hash }

// Written is true only if Modified is false and every child is written
// (invariant 1).
func (t *Subtree) Written() bool {
	return t.written && !t.modified
}

// Modified reports whether this Subtree (not necessarily any descendant)
// has pending structural changes since it was last written.
func (t *Subtree) Modified() bool { return t.modified }

// Empty reports whether the Subtree has no children.
func (t *Subtree) Empty() bool { return len(t.children) == 0 }

// Children returns the live child map. Callers must not retain it across
// mutations.
func (t *Subtree) Children() map[string]Entry { return t.children }

func (t *Subtree) cloneForCopy(newName string) Entry {
	clone := &Subtree{
		name:     newName,
		mode:     filemode.Dir,
		children: make(map[string]Entry, len(t.children)),
		modified: true, // a copy always needs its own hash
	}
	for name, child := range t.children {
		if sub, ok := child.(*Subtree); ok {
			clone.children[name] = sub.cloneForCopy(name)
		} else {
			// blobs and commit-refs are immutable once written; share by hash
			clone.children[name] = child
		}
	}
	return clone
}

// invalidate demotes this Subtree back to Modified/unwritten, the
// consequence of any descendant mutation (Entry state machine,
// Written -> Modified transition).
func (t *Subtree) invalidate() {
	t.modified = true
	t.written = false
}

// Lookup traverses path segment by segment, returning nil if any segment
// is missing. Fails with NotADirectoryError if a non-final segment names
// a Blob.
func (t *Subtree) Lookup(path string) (Entry, error) {
	segs := splitPath(path)
	return t.doLookup(segs, path)
}

func (t *Subtree) doLookup(segs []string, fullPath string) (Entry, error) {
	if len(segs) == 0 {
		return t, nil
	}
	child, ok := t.children[segs[0]]
	if !ok {
		return nil, nil
	}
	if len(segs) == 1 {
		return child, nil
	}
	sub, ok := child.(*Subtree)
	if !ok {
		return nil, &NotADirectoryError{Path: fullPath}
	}
	return sub.doLookup(segs[1:], fullPath)
}

// Update installs entry at path, creating intermediate Subtrees as
// needed, replacing any prior entry of the same name. If path is empty,
// entry (which must be a *Subtree) is merged into t rather than
// replacing it (invariant 3). Sets Modified on every Subtree along the
// spine.
func (t *Subtree) Update(path string, entry Entry) error {
	segs := splitPath(path)
	if len(segs) == 0 {
		sub, ok := entry.(*Subtree)
		if !ok {
			return fmt.Errorf("tree: update at empty path requires a Subtree, got %T", entry)
		}
		for name, child := range sub.children {
			t.children[name] = child
		}
		t.invalidate()
		return nil
	}
	t.doUpdate(segs, entry)
	return nil
}

func (t *Subtree) doUpdate(segs []string, entry Entry) {
	t.invalidate()
	name := segs[0]
	if len(segs) == 1 {
		entry.SetName(name)
		t.children[name] = entry
		return
	}
	child, ok := t.children[name]
	sub, isSub := child.(*Subtree)
	if !ok || !isSub {
		sub = NewSubtree(name)
		t.children[name] = sub
	}
	sub.doUpdate(segs[1:], entry)
}

// Remove deletes the entry named by path. An empty path clears all of
// t's children. Removing a missing path fails with NotFoundError.
// Intermediate Subtrees are never pruned when they become empty.
func (t *Subtree) Remove(path string) error {
	segs := splitPath(path)
	if len(segs) == 0 {
		t.children = make(map[string]Entry)
		t.invalidate()
		return nil
	}
	return t.doRemove(segs, path)
}

func (t *Subtree) doRemove(segs []string, fullPath string) error {
	name := segs[0]
	child, ok := t.children[name]
	if !ok {
		return &NotFoundError{Path: fullPath}
	}
	if len(segs) == 1 {
		delete(t.children, name)
		t.invalidate()
		return nil
	}
	sub, isSub := child.(*Subtree)
	if !isSub {
		return &NotADirectoryError{Path: fullPath}
	}
	if err := sub.doRemove(segs[1:], fullPath); err != nil {
		return err
	}
	t.invalidate()
	return nil
}

// Write materializes the Subtree bottom-up: each child is written
// recursively (if not already), then PutTree is called with the
// lexicographically ordered entry list. A no-op if already written.
func (t *Subtree) Write(store Store) error {
	if t.Written() {
		return nil
	}
	names := make([]string, 0, len(t.children))
	for name := range t.children {
		names = append(names, name)
	}
	sortNames(names, t.children)

	entries := make([]TreeEntryRef, 0, len(names))
	for _, name := range names {
		child := t.children[name]
		if sub, ok := child.(*Subtree); ok {
			if err := sub.Write(store); err != nil {
				return fmt.Errorf("tree: writing subtree %q: %w", name, err)
			}
		}
		entries = append(entries, TreeEntryRef{Name: child.Name(), Mode: child.Mode(), Hash: child.Hash()})
	}

	hash, err := store.PutTree(entries)
	if err != nil {
		return fmt.Errorf("tree: putting tree for %q: %w", t.name, err)
	}
	t.hash = hash
	t.modified = false
	t.written = true
	return nil
}

// sortNames orders entry names the way git canonicalizes tree entries:
// plain ASCII byte order, except directories compare as if their name
// carried a trailing "/" so "foo" sorts after "foo.txt" but before
// "foo/bar".
func sortNames(names []string, children map[string]Entry) {
	sort.Slice(names, func(i, j int) bool {
		return sortKey(names[i], children[names[i]]) < sortKey(names[j], children[names[j]])
	})
}

func sortKey(name string, e Entry) string {
	if _, ok := e.(*Subtree); ok {
		return name + "/"
	}
	return name
}

// Dump writes a human-readable tree listing to w, one entry per line,
// indented by depth. Intended for --debug-tree diagnostics, not for
// driving any converter decision.
func (t *Subtree) Dump(w io.Writer, depth int) {
	indent := strings.Repeat("  ", depth)
	names := make([]string, 0, len(t.children))
	for name := range t.children {
		names = append(names, name)
	}
	sortNames(names, t.children)
	for _, name := range names {
		child := t.children[name]
		if sub, ok := child.(*Subtree); ok {
			fmt.Fprintf(w, "%s%s/\n", indent, name)
			sub.Dump(w, depth+1)
		} else {
			fmt.Fprintf(w, "%s%s %s\n", indent, name, child.Hash())
		}
	}
}
