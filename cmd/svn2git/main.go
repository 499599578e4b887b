// Command svn2git converts a Subversion dump stream into a git
// repository, one commit per revision, inferring branches and tags
// from the usual trunk/branches/tags layout.
package main

import (
	"os"

	"github.com/gitbridge/svn2git/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
