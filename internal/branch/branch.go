// Package branch implements the branch registry (component C3): mapping
// branch path-prefixes and names to branch state, with tag sealing.
package branch

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/gitbridge/svn2git/internal/tree"
)

// State is the branch lifecycle: Unborn -> Active -> (tags only) Sealed.
type State int

const (
	Unborn State = iota
	Active
	Sealed
)

// DefaultName is the branch every unclassified path falls back to.
const DefaultName = "master"

// ErrTagMutation is returned when a write is attempted against a sealed
// tag branch.
var ErrTagMutation = fmt.Errorf("branch: write after tag sealed")

// Branch is a named record tracking a branch's committed head and the
// commit currently being built for the in-flight revision.
type Branch struct {
	Name   string
	Prefix string // source-hierarchy path-prefix, e.g. "branches/feat"
	IsTag  bool
	State  State

	// Head is the last committed hash on this branch, zero if unborn.
	Head plumbing.Hash

	// Root is the live working-tree root for this branch. Mutated by the
	// apply engine; materialized (Write) by the commit driver at
	// revision boundaries.
	Root *tree.Subtree

	// pendingModified tracks whether Root was touched during the
	// in-flight revision, so the commit driver knows which branches
	// need a new commit.
	pendingModified bool
}

func newBranch(name, prefix string, isTag bool) *Branch {
	return &Branch{
		Name:   name,
		Prefix: prefix,
		IsTag:  isTag,
		State:  Unborn,
		Root:   tree.NewSubtree(""),
	}
}

// MarkModified records that this revision touched the branch's tree.
// Returns ErrTagMutation if the branch is a sealed tag.
func (b *Branch) MarkModified() error {
	if b.State == Sealed {
		return ErrTagMutation
	}
	b.pendingModified = true
	return nil
}

// PendingModified reports whether MarkModified was called since the last
// ClearPending.
func (b *Branch) PendingModified() bool { return b.pendingModified }

// ClearPending resets the per-revision modified flag after the commit
// driver has materialized (or decided not to materialize) this branch
// for the current revision.
func (b *Branch) ClearPending() { b.pendingModified = false }

// Advance records a newly written commit as this branch's head and
// transitions Unborn -> Active (or Active -> Sealed for tags, which
// accept exactly one commit).
func (b *Branch) Advance(commitHash plumbing.Hash) {
	b.Head = commitHash
	if b.IsTag {
		b.State = Sealed
	} else {
		b.State = Active
	}
}

// IsNewBranch reports whether the branch has not yet received a commit
// (its next commit will have no parent and should set new_branch).
func (b *Branch) IsNewBranch() bool { return b.State == Unborn }

// RefName returns the fully-qualified git reference name for this
// branch: refs/heads/<name> or refs/tags/<name>.
func (b *Branch) RefName() plumbing.ReferenceName {
	if b.IsTag {
		return plumbing.NewTagReferenceName(b.Name)
	}
	return plumbing.NewBranchReferenceName(b.Name)
}
