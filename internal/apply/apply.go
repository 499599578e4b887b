// Package apply implements the apply engine (component C6): turning one
// dump-stream Node into a mutation of the owning branch's working tree,
// resolving copy sources through the revision cache and tolerating
// idempotent re-adds.
package apply

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"

	"github.com/gitbridge/svn2git/internal/branch"
	"github.com/gitbridge/svn2git/internal/classify"
	"github.com/gitbridge/svn2git/internal/dump"
	"github.com/gitbridge/svn2git/internal/revcache"
	"github.com/gitbridge/svn2git/internal/tree"
)

// PutBlobFunc stores raw content and returns its hash; satisfied by
// gitstore.Store.PutBlob.
type PutBlobFunc func([]byte) (plumbing.Hash, error)

// Engine applies dump nodes against a Classifier-resolved branch tree,
// using a revcache.Cache to resolve Node-copyfrom references.
//
// A dump stream's Node-copyfrom-path is always a full repository path
// (e.g. "trunk/a.txt"), not a branch-relative one, and it may reference
// a path that, at the time it was written, lived under a different
// branch prefix than its copy destination. So the Engine keeps a
// virtual whole-repository tree alongside each branch's relative
// working tree: every mutation is applied to both, and the revision
// cache snapshots the virtual tree, never a branch's.
type Engine struct {
	classifier *classify.Classifier
	cache      *revcache.Cache
	virtual    *tree.Subtree
}

// New returns an Engine wired to classifier and cache.
func New(classifier *classify.Classifier, cache *revcache.Cache) *Engine {
	return &Engine{classifier: classifier, cache: cache, virtual: tree.NewSubtree("")}
}

// Virtual returns the engine's whole-repository working tree. Callers
// must treat it as read-only except through cloning (tree.CopyToName);
// the apply engine continues to mutate it on every subsequent call.
func (e *Engine) Virtual() *tree.Subtree { return e.virtual }

// Snapshot records a structural copy of the engine's current
// whole-repository tree as the copy-source snapshot for revision, so
// later mutations of the live tree do not reach it. Call once, after
// every node in a revision has been applied.
func (e *Engine) Snapshot(revision int) {
	e.cache.Snapshot(revision, tree.CopyToName(e.virtual, "").(*tree.Subtree))
}

// Result reports what an Apply call did, for status/verbose logging
// (describe_change).
type Result struct {
	Branch      *branch.Branch
	Subpath     string
	Node        dump.Node
	Skipped     bool // idempotent re-add: target already has identical content
	Description string
}

// Apply resolves node's owning branch, performs the requested mutation
// against that branch's working tree, and returns a Result describing
// what happened. putBlob stores new file content; it is unused for
// directory nodes and for copies (which reuse the source's hash).
func (e *Engine) Apply(node dump.Node, putBlob PutBlobFunc) (*Result, error) {
	b, subpath := e.classifier.Classify(node.Path)

	res := &Result{Branch: b, Subpath: subpath, Node: node, Description: DescribeChange(node)}

	if node.Action == dump.ActionChange && node.Kind == dump.KindDir {
		// SVN carries no content for directories, so a dir/change node is
		// always property-only; the core ignores properties and leaves
		// the tree's structure untouched (spec §4.6).
		return res, nil
	}

	switch node.Action {
	case dump.ActionDelete:
		if err := b.Root.Remove(subpath); err != nil {
			return nil, fmt.Errorf("apply: delete %s: %w", node.Path, err)
		}
		if err := e.virtual.Remove(node.Path); err != nil {
			return nil, fmt.Errorf("apply: delete %s: %w", node.Path, err)
		}
		if err := b.MarkModified(); err != nil {
			return nil, fmt.Errorf("apply: %s: %w", node.Path, err)
		}
		return res, nil

	case dump.ActionAdd, dump.ActionReplace, dump.ActionChange:
		virtualEntry, err := e.resolveEntry(node, putBlob)
		if err != nil {
			return nil, err
		}
		branchEntry := tree.CopyToName(virtualEntry, baseName(subpath))

		if node.Action == dump.ActionChange {
			existing, lookupErr := b.Root.Lookup(subpath)
			if lookupErr != nil {
				return nil, fmt.Errorf("apply: change %s: %w", node.Path, lookupErr)
			}
			if existing == nil {
				return nil, fmt.Errorf("apply: change %s: %w", node.Path, &tree.NotFoundError{Path: node.Path})
			}
			if _, ok := existing.(*tree.Blob); !ok {
				return nil, fmt.Errorf("apply: change %s: %w", node.Path, &tree.NotFoundError{Path: node.Path})
			}
		}

		if node.Action == dump.ActionAdd {
			existing, lookupErr := b.Root.Lookup(subpath)
			if lookupErr == nil && existing != nil && sameContent(existing, branchEntry) {
				res.Skipped = true
				return res, nil
			}
		}

		if err := b.Root.Update(subpath, branchEntry); err != nil {
			return nil, fmt.Errorf("apply: %s %s: %w", node.Action, node.Path, err)
		}
		if err := e.virtual.Update(node.Path, virtualEntry); err != nil {
			return nil, fmt.Errorf("apply: %s %s: %w", node.Action, node.Path, err)
		}
		if err := b.MarkModified(); err != nil {
			return nil, fmt.Errorf("apply: %s: %w", node.Path, err)
		}
		return res, nil

	default:
		return nil, fmt.Errorf("apply: unknown action %v for %s", node.Action, node.Path)
	}
}

// resolveEntry builds the tree.Entry to install at node.Path in the
// whole-repository tree: a fresh Blob for inline content, a copy-on-
// rename clone for Node-copyfrom references, or an empty Subtree for a
// plain directory add. The branch-relative entry is always derived from
// this one via tree.CopyToName, so a directory copy never aliases the
// same *Subtree between the virtual tree and a branch tree.
func (e *Engine) resolveEntry(node dump.Node, putBlob PutBlobFunc) (tree.Entry, error) {
	name := baseName(node.Path)

	if node.CopySource != nil {
		src, err := e.cache.Resolve(node.CopySource.Rev, node.CopySource.Path)
		if err != nil {
			return nil, fmt.Errorf("apply: resolving copy source for %s: %w", node.Path, err)
		}
		e.cache.Resolved(node.CopySource.Rev)
		return tree.CopyToName(src, name), nil
	}

	if node.Kind == dump.KindDir {
		return tree.NewSubtree(name), nil
	}

	hash, err := putBlob(node.Content)
	if err != nil {
		return nil, fmt.Errorf("apply: storing blob for %s: %w", node.Path, err)
	}
	return tree.NewBlob(name, hash, filemode.Regular), nil
}

func sameContent(existing, candidate tree.Entry) bool {
	eb, eok := existing.(*tree.Blob)
	cb, cok := candidate.(*tree.Blob)
	if !eok || !cok {
		return false
	}
	return eb.Hash() == cb.Hash()
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// DescribeChange renders a one-line human description of a node's
// (kind, action), for verbose/debug logging, e.g. "add file trunk/a.txt".
func DescribeChange(node dump.Node) string {
	return fmt.Sprintf("%s %s %s", node.Action, node.Kind, node.Path)
}

// RecordCopySources walks a revision's nodes during the prescan pass,
// registering every Node-copyfrom reference with cache so the source
// revision's snapshot is retained until the copy is actually resolved.
func RecordCopySources(cache *revcache.Cache, nodes []dump.Node) {
	for _, n := range nodes {
		if n.CopySource != nil {
			cache.RecordPendingSource(n.CopySource.Rev)
		}
	}
}
