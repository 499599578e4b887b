package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitbridge/svn2git/internal/authors"
	"github.com/gitbridge/svn2git/internal/config"
	"github.com/gitbridge/svn2git/internal/convert"
	"github.com/gitbridge/svn2git/internal/dump"
	"github.com/gitbridge/svn2git/internal/gitstore"
	"github.com/gitbridge/svn2git/internal/status"
)

func newConvertCmd() *cobra.Command {
	var (
		authorsPath     string
		configPath      string
		svnRevTrailer   bool
		debugTreeBranch string
	)

	cmd := &cobra.Command{
		Use:   "convert <dump-file> <target-repo>",
		Short: "Replay a dump stream's revisions as commits in target-repo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], args[1], convertFlags{
				authorsPath:     authorsPath,
				configPath:      configPath,
				svnRevTrailer:   svnRevTrailer,
				debugTreeBranch: debugTreeBranch,
			})
		},
	}

	cmd.Flags().StringVar(&authorsPath, "authors", "", "path to an svn_user = Full Name <email> mapping file")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a branch-convention/run-time config file (YAML or JSON)")
	cmd.Flags().BoolVar(&svnRevTrailer, "svn-revision-trailer", false, "append \"Svn-Revision: <rev>\" to every commit message")
	cmd.Flags().StringVar(&debugTreeBranch, "debug-tree", "", "dump the named branch's final working tree to stdout after conversion")

	return cmd
}

type convertFlags struct {
	authorsPath     string
	configPath      string
	svnRevTrailer   bool
	debugTreeBranch string
}

func runConvert(cmd *cobra.Command, dumpPath, targetRepo string, flags convertFlags) error {
	f, err := os.Open(dumpPath)
	if err != nil {
		return fmt.Errorf("svn2git: opening dump file %s: %w", dumpPath, err)
	}
	defer f.Close()

	store, err := gitstore.Open(targetRepo)
	if err != nil {
		return fmt.Errorf("svn2git: opening target repository %s: %w", targetRepo, err)
	}

	opts, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.svnRevTrailer {
		opts.SvnRevisionTrailer = true
	}

	var authorMap *authors.Map
	if flags.authorsPath != "" {
		authorMap, err = authors.Load(flags.authorsPath)
		if err != nil {
			return err
		}
	}

	reporter := status.New(cmd.OutOrStdout(), int(os.Stdout.Fd()), verbose)

	c := convert.New(store, convert.Options{
		Config:   opts,
		Authors:  authorMap,
		Reporter: reporter,
		Verbose:  verbose,
	})

	if _, err := c.Run(cmd.Context(), dump.NewReader(f)); err != nil {
		return fmt.Errorf("svn2git: %w", err)
	}

	if flags.debugTreeBranch != "" {
		if b, ok := c.Registry().ByName(flags.debugTreeBranch); ok {
			b.Root.Dump(cmd.OutOrStdout(), 0)
		}
	}

	return c.Finish()
}
