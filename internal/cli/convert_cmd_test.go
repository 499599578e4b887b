package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
)

const sampleDump = `SVN-fs-dump-format-version: 2

Revision-number: 1
Prop-content-length: 10
Content-length: 10

PROPS-END

Node-path: trunk
Node-kind: dir
Node-action: add
Prop-content-length: 10
Content-length: 10

PROPS-END

Node-path: trunk/a.txt
Node-kind: file
Node-action: add
Prop-content-length: 10
Text-content-length: 3
Content-length: 13

PROPS-END
hi
`

func TestConvertCmdRequiresTwoArgs(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"convert", "only-one-arg"})
	err := root.Execute()
	require.Error(t, err)
}

func TestConvertCmdProducesCommitOnMaster(t *testing.T) {
	dir := t.TempDir()
	dumpFile := filepath.Join(dir, "repo.dump")
	require.NoError(t, os.WriteFile(dumpFile, []byte(sampleDump), 0o644))

	targetRepo := filepath.Join(dir, "target")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"convert", dumpFile, targetRepo})
	require.NoError(t, root.Execute())

	repo, err := git.PlainOpen(targetRepo)
	require.NoError(t, err)

	ref, err := repo.Reference(plumbing.NewBranchReferenceName("master"), true)
	require.NoError(t, err)

	commit, err := repo.CommitObject(ref.Hash())
	require.NoError(t, err)

	tr, err := commit.Tree()
	require.NoError(t, err)
	file, err := tr.File("a.txt")
	require.NoError(t, err)
	content, err := file.Contents()
	require.NoError(t, err)
	require.Equal(t, "hi\n", content)
}
