// Package cli wires the converter's internal packages into the
// svn2git command-line tool: flag parsing, config/authors loading,
// target repository bootstrap, and delegating to internal/convert.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitbridge/svn2git/internal/logging"
)

var verbose bool

// NewRootCmd builds the svn2git command tree. Exported so tests can
// Execute it against captured buffers.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "svn2git",
		Short:         "Convert a Subversion dump stream into a git repository",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logging.SetOutput(os.Stderr, level)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every node applied, and show a progress line")
	root.AddCommand(newConvertCmd())

	return root
}

// Main is the process entry point's body, split out so cmd/svn2git/main.go
// stays a thin wrapper.
func Main() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "svn2git:", err)
		return 1
	}
	return 0
}
