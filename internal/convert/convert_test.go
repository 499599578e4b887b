package convert

import (
	"context"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	"github.com/gitbridge/svn2git/internal/authors"
	"github.com/gitbridge/svn2git/internal/branch"
	"github.com/gitbridge/svn2git/internal/config"
	"github.com/gitbridge/svn2git/internal/dump"
	"github.com/gitbridge/svn2git/internal/gitstore"
)

func newTestConverter() (*Converter, *gitstore.Store) {
	store := gitstore.OpenMemory()
	c := New(store, Options{Config: config.Default()})
	return c, store
}

func addFile(path, content string) dump.Node {
	return dump.Node{Kind: dump.KindFile, Action: dump.ActionAdd, Path: path, Content: []byte(content)}
}

func changeFile(path, content string) dump.Node {
	return dump.Node{Kind: dump.KindFile, Action: dump.ActionChange, Path: path, Content: []byte(content)}
}

func deleteNode(path string) dump.Node {
	return dump.Node{Kind: dump.KindFile, Action: dump.ActionDelete, Path: path}
}

func copyDir(path string, srcRev int, srcPath string) dump.Node {
	return dump.Node{Kind: dump.KindDir, Action: dump.ActionAdd, Path: path, CopySource: &dump.CopySource{Rev: srcRev, Path: srcPath}}
}

func fileAt(t *testing.T, store *gitstore.Store, hash plumbing.Hash, path string) string {
	t.Helper()
	commitObj, err := store.Repository().CommitObject(hash)
	require.NoError(t, err)
	tr, err := commitObj.Tree()
	require.NoError(t, err)
	f, err := tr.File(path)
	require.NoError(t, err)
	content, err := f.Contents()
	require.NoError(t, err)
	return content
}

func TestS1SimpleAdd(t *testing.T) {
	c, store := newTestConverter()
	ctx := context.Background()

	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 1, Author: "alice", Nodes: []dump.Node{addFile("trunk/a.txt", "hi\n")}}))

	b, ok := c.registry.ByName(branch.DefaultName)
	require.True(t, ok)
	require.Equal(t, branch.Active, b.State)
	require.Equal(t, "hi\n", fileAt(t, store, b.Head, "a.txt"))
}

func TestS2BranchCreationByCopy(t *testing.T) {
	c, store := newTestConverter()
	ctx := context.Background()

	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 1, Author: "alice", Nodes: []dump.Node{addFile("trunk/a.txt", "x")}}))
	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 2, Author: "alice", Nodes: []dump.Node{copyDir("branches/feat", 1, "trunk")}}))

	master, _ := c.registry.ByName("master")
	feat, ok := c.registry.ByName("feat")
	require.True(t, ok)
	require.False(t, feat.IsTag)
	require.Equal(t, "x", fileAt(t, store, master.Head, "a.txt"))
	require.Equal(t, "x", fileAt(t, store, feat.Head, "a.txt"))
}

func TestS3Tag(t *testing.T) {
	c, store := newTestConverter()
	ctx := context.Background()

	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 1, Author: "alice", Nodes: []dump.Node{addFile("trunk/a.txt", "x")}}))
	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 2, Author: "alice", Nodes: []dump.Node{copyDir("branches/feat", 1, "trunk")}}))
	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 3, Author: "alice", Nodes: []dump.Node{copyDir("tags/v1", 1, "trunk")}}))

	v1, ok := c.registry.ByName("v1")
	require.True(t, ok)
	require.True(t, v1.IsTag)
	require.Equal(t, branch.Sealed, v1.State)
	require.Equal(t, "x", fileAt(t, store, v1.Head, "a.txt"))

	err := c.applyRevision(ctx, &dump.Revision{Number: 4, Author: "alice", Nodes: []dump.Node{changeFile("tags/v1/a.txt", "y")}})
	require.Error(t, err)
	require.ErrorIs(t, err, TagMutation)
}

func TestS4DeleteThenReAdd(t *testing.T) {
	c, store := newTestConverter()
	ctx := context.Background()

	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 1, Author: "alice", Nodes: []dump.Node{addFile("trunk/a", "1")}}))
	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 2, Author: "alice", Nodes: []dump.Node{deleteNode("trunk/a")}}))
	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 3, Author: "alice", Nodes: []dump.Node{addFile("trunk/a", "2")}}))

	master, _ := c.registry.ByName("master")
	require.Equal(t, "2", fileAt(t, store, master.Head, "a"))
	// master + flat-history commit every one of the three revisions.
	require.Equal(t, 6, c.commits)
}

func TestS5FileChangePropagatesSpine(t *testing.T) {
	c, store := newTestConverter()
	ctx := context.Background()

	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 1, Author: "alice", Nodes: []dump.Node{addFile("trunk/dir/f", "1")}}))
	master, _ := c.registry.ByName("master")
	rev1Head := master.Head
	rev1Tree, err := store.Repository().CommitObject(rev1Head)
	require.NoError(t, err)
	rev1TreeObj, err := rev1Tree.Tree()
	require.NoError(t, err)

	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 2, Author: "alice", Nodes: []dump.Node{changeFile("trunk/dir/f", "2")}}))
	rev2Head := master.Head
	require.NotEqual(t, rev1Head, rev2Head)

	rev2Commit, err := store.Repository().CommitObject(rev2Head)
	require.NoError(t, err)
	rev2TreeObj, err := rev2Commit.Tree()
	require.NoError(t, err)
	require.NotEqual(t, rev1TreeObj.Hash, rev2TreeObj.Hash)

	require.Equal(t, "2", fileAt(t, store, rev2Head, "dir/f"))
}

func TestS6AuthorMapping(t *testing.T) {
	store := gitstore.OpenMemory()
	am := authors.New()
	var warnings []string

	c := New(store, Options{Config: config.Default(), Authors: am})
	ctx := context.Background()

	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 1, Author: "jsmith", Nodes: []dump.Node{addFile("trunk/a.txt", "x")}}))
	master, _ := c.registry.ByName("master")
	commitObj, err := store.Repository().CommitObject(master.Head)
	require.NoError(t, err)
	require.Equal(t, "jsmith", commitObj.Author.Name)
	require.Equal(t, "jsmith@localhost", commitObj.Author.Email)

	am.OnUnmapped(func(u string) { warnings = append(warnings, u) })
	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 2, Author: "nobody", Nodes: []dump.Node{addFile("trunk/b.txt", "y")}}))
	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 3, Author: "nobody", Nodes: []dump.Node{addFile("trunk/c.txt", "z")}}))
	require.Len(t, warnings, 1)
}

func TestNotFoundNodeIsSkippedNotFatal(t *testing.T) {
	c, store := newTestConverter()
	ctx := context.Background()

	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 1, Author: "alice", Nodes: []dump.Node{
		changeFile("trunk/missing.txt", "x"),
		addFile("trunk/a.txt", "hi\n"),
	}}))

	master, _ := c.registry.ByName("master")
	require.Equal(t, "hi\n", fileAt(t, store, master.Head, "a.txt"))
}

func TestCopySourceMissingDirFallsBackToEmptyAdd(t *testing.T) {
	c, store := newTestConverter()
	ctx := context.Background()

	require.NoError(t, c.applyRevision(ctx, &dump.Revision{Number: 1, Author: "alice", Nodes: []dump.Node{
		copyDir("branches/feat", 99, "trunk"),
	}}))

	feat, ok := c.registry.ByName("feat")
	require.True(t, ok)

	commitObj, err := store.Repository().CommitObject(feat.Head)
	require.NoError(t, err)
	tr, err := commitObj.Tree()
	require.NoError(t, err)
	_, err = tr.File("a.txt")
	require.Error(t, err) // the copy source never existed; feat starts empty instead
}

func TestCopySourceMissingFileIsFatal(t *testing.T) {
	c, _ := newTestConverter()
	ctx := context.Background()

	node := dump.Node{
		Kind: dump.KindFile, Action: dump.ActionAdd, Path: "trunk/a.txt",
		CopySource: &dump.CopySource{Rev: 99, Path: "trunk/a.txt"},
	}
	err := c.applyRevision(ctx, &dump.Revision{Number: 1, Author: "alice", Nodes: []dump.Node{node}})
	require.Error(t, err)
	require.ErrorIs(t, err, CopySourceMissing)
}

const outOfOrderDump = `Revision-number: 2
Prop-content-length: 10
Content-length: 10

PROPS-END

Node-path: trunk
Node-kind: dir
Node-action: add
Prop-content-length: 10
Content-length: 10

PROPS-END

Revision-number: 1
Prop-content-length: 10
Content-length: 10

PROPS-END

`

func TestRunRejectsOutOfOrderRevisions(t *testing.T) {
	c, _ := newTestConverter()
	r := dump.NewReader(strings.NewReader(outOfOrderDump))
	_, err := c.Run(context.Background(), r)
	require.Error(t, err)
	require.ErrorIs(t, err, RevisionOrder)
}
