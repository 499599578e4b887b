// Package commit implements the commit driver (component C7): at each
// revision boundary, materializes every branch touched during that
// revision into a new commit, in deterministic lexicographic branch-name
// order, honoring tag sealing and the new-branch (parentless) case.
package commit

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/gitbridge/svn2git/internal/branch"
	"github.com/gitbridge/svn2git/internal/gitstore"
	"github.com/gitbridge/svn2git/internal/tree"
)

// TreeStore is the subset of the object store the driver needs to
// materialize a branch's working tree and commit it. gitstore.Store
// satisfies this, including tree.Store (PutTree) used to write the
// working tree bottom-up before the commit object is built.
type TreeStore interface {
	tree.Store
	PutCommit(treeHash plumbing.Hash, parents []plumbing.Hash, author, committer gitstore.Signature, message string) (plumbing.Hash, error)
	SetRef(refname plumbing.ReferenceName, hash plumbing.Hash) error
}

// Info carries the per-revision, per-branch authorship and message the
// driver needs to build a commit. Populated by the converter core from
// the dump revision's svn:author/svn:date/svn:log properties.
type Info struct {
	Author    gitstore.Signature
	Committer gitstore.Signature
	Message   string
	// Whether the commit is the branch's first (parentless) one is not
	// carried here; the driver reports it in Outcome.NewBranch.
}

// SetCommitInfoFunc lets the converter core rewrite a branch's commit
// message/authorship immediately before it is persisted (e.g. appending
// an "Svn-Revision:" trailer). Grounded on the original converter's
// set_commit_info hook; a nil func is a no-op.
type SetCommitInfoFunc func(b *branch.Branch, info *Info)

// Driver advances branches to new commits at revision boundaries.
type Driver struct {
	store         TreeStore
	setCommitInfo SetCommitInfoFunc
}

// New returns a Driver writing through store. setCommitInfo may be nil.
func New(store TreeStore, setCommitInfo SetCommitInfoFunc) *Driver {
	return &Driver{store: store, setCommitInfo: setCommitInfo}
}

// Outcome describes one branch's commit result for a revision.
type Outcome struct {
	Branch    *branch.Branch
	Committed bool
	Hash      plumbing.Hash
	NewBranch bool
}

// CommitRevision materializes every branch reported by registry.All()
// that either has pending modifications, or (when emitEmptyCommits is
// true and the branch is Active, i.e. already committed and not a sealed
// tag) is otherwise due a flat per-revision commit. infoFor supplies
// authorship/message per branch.
//
// Tag branches accept exactly one commit: a second attempt returns
// branch.ErrTagMutation together with the outcomes of the branches
// committed before it; branches after it in name order are not committed.
func (d *Driver) CommitRevision(registry *branch.Registry, infoFor func(b *branch.Branch) Info, emitEmptyCommits bool) ([]Outcome, error) {
	var outcomes []Outcome

	for _, b := range registry.All() {
		modified := b.PendingModified()
		if !modified && !(emitEmptyCommits && b.State == branch.Active) {
			continue
		}

		if err := b.Root.Write(d.store); err != nil {
			return outcomes, fmt.Errorf("commit: writing tree for branch %s: %w", b.Name, err)
		}

		info := infoFor(b)
		if d.setCommitInfo != nil {
			d.setCommitInfo(b, &info)
		}

		outcome, err := d.commitBranch(b, info)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
		b.ClearPending()
	}

	return outcomes, nil
}

func (d *Driver) commitBranch(b *branch.Branch, info Info) (Outcome, error) {
	if b.IsTag && b.State == branch.Sealed {
		return Outcome{}, fmt.Errorf("commit: branch %s: %w", b.Name, branch.ErrTagMutation)
	}

	var parents []plumbing.Hash
	newBranch := b.IsNewBranch()
	if !newBranch {
		parents = []plumbing.Hash{b.Head}
	}

	hash, err := d.store.PutCommit(b.Root.Hash(), parents, info.Author, info.Committer, info.Message)
	if err != nil {
		return Outcome{}, fmt.Errorf("commit: branch %s: %w", b.Name, err)
	}

	if err := d.store.SetRef(b.RefName(), hash); err != nil {
		return Outcome{}, fmt.Errorf("commit: branch %s: %w", b.Name, err)
	}

	b.Advance(hash)

	return Outcome{Branch: b, Committed: true, Hash: hash, NewBranch: newBranch}, nil
}
