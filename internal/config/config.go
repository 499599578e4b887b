// Package config loads the converter's branch-convention table and
// run-time switches (emit_empty_commits, cancellation granularity) from
// an optional YAML/JSON file via spf13/viper, layered over built-in
// defaults.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// BranchRule maps a source path-prefix to a target branch or tag name.
type BranchRule struct {
	// Prefix is the source-hierarchy path-prefix, e.g. "trunk" or
	// "branches/*". A rule whose Prefix ends in "/*" treats the path segment
	// following the prefix as the branch name (the default
	// branches/<X>, tags/<Y> convention); a rule with a literal Prefix
	// (no "*") maps that exact prefix to Name (the "trunk" -> "master"
	// convention).
	Prefix string
	Name   string
	IsTag  bool
}

// Options holds everything the converter needs beyond the dump stream
// and the authors map.
type Options struct {
	// BranchRules is evaluated in order; the first structural match
	// wins classification for newly observed paths (see
	// internal/classify).
	BranchRules []BranchRule

	// EmitEmptyCommits, when true, makes every Active branch (already
	// committed to, and not a sealed tag) receive a commit in every
	// revision, with its tree unchanged if nothing touched it. It is not
	// limited to branches touched by a directory "change" node; such
	// property-only nodes never mark a branch modified. Defaults to false.
	EmitEmptyCommits bool

	// CancelCheckInterval is how many nodes the apply engine processes
	// between cooperative-cancellation checks within a revision.
	CancelCheckInterval int

	// SvnRevisionTrailer, when true, appends "Svn-Revision: <rev>" to
	// every emitted commit message via the SetCommitInfo hook.
	SvnRevisionTrailer bool
}

// DefaultBranchRules implements spec.md §6's default convention:
// trunk/ -> master, branches/<X>/ -> <X>, tags/<Y>/ -> tag <Y>.
func DefaultBranchRules() []BranchRule {
	return []BranchRule{
		{Prefix: "trunk", Name: "master", IsTag: false},
		{Prefix: "branches/*", IsTag: false},
		{Prefix: "tags/*", IsTag: true},
	}
}

// Default returns the built-in Options: default branch rules,
// EmitEmptyCommits false, a CancelCheckInterval of 500.
func Default() Options {
	return Options{
		BranchRules:         DefaultBranchRules(),
		EmitEmptyCommits:    false,
		CancelCheckInterval: 500,
	}
}

// Load reads path (YAML or JSON, sniffed by viper from the extension) and
// overlays it onto Default(). An empty path returns Default() unchanged.
func Load(path string) (Options, error) {
	opts := Default()
	if path == "" {
		return opts, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return opts, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if v.IsSet("emit_empty_commits") {
		opts.EmitEmptyCommits = v.GetBool("emit_empty_commits")
	}
	if v.IsSet("cancel_check_interval") {
		opts.CancelCheckInterval = v.GetInt("cancel_check_interval")
	}
	if v.IsSet("svn_revision_trailer") {
		opts.SvnRevisionTrailer = v.GetBool("svn_revision_trailer")
	}
	if v.IsSet("branches") {
		var rules []struct {
			Prefix string `mapstructure:"prefix"`
			Name   string `mapstructure:"name"`
			Tag    bool   `mapstructure:"tag"`
		}
		if err := v.UnmarshalKey("branches", &rules); err != nil {
			return opts, fmt.Errorf("config: parsing branches: %w", err)
		}
		if len(rules) > 0 {
			opts.BranchRules = opts.BranchRules[:0]
			for _, r := range rules {
				opts.BranchRules = append(opts.BranchRules, BranchRule{Prefix: r.Prefix, Name: r.Name, IsTag: r.Tag})
			}
		}
	}

	return opts, nil
}
