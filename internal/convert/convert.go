// Package convert is the orchestrator (component C14): it owns a full
// conversion run, wiring the dump reader, branch classifier, revision
// cache, apply engine and commit driver together, and applying the
// converter-wide error taxonomy and cancellation policy.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gitbridge/svn2git/internal/apply"
	"github.com/gitbridge/svn2git/internal/authors"
	"github.com/gitbridge/svn2git/internal/branch"
	"github.com/gitbridge/svn2git/internal/classify"
	"github.com/gitbridge/svn2git/internal/commit"
	"github.com/gitbridge/svn2git/internal/config"
	"github.com/gitbridge/svn2git/internal/dump"
	"github.com/gitbridge/svn2git/internal/gitstore"
	"github.com/gitbridge/svn2git/internal/logging"
	"github.com/gitbridge/svn2git/internal/revcache"
	"github.com/gitbridge/svn2git/internal/status"
	"github.com/gitbridge/svn2git/internal/tree"
)

// flatHistoryPrefix can never match a real dump-stream path (SVN paths
// never contain a NUL byte), which keeps the classifier from ever
// routing ordinary content onto the flat-history branch.
const flatHistoryPrefix = "\x00flat-history"

// FlatHistoryBranch is the display name of the reserved audit branch
// that receives one commit per dump revision, regardless of branch
// classification.
const FlatHistoryBranch = "flat-history"

// Options configures a single conversion run.
type Options struct {
	// Config holds branch conventions and run-time switches, typically
	// loaded via internal/config.Load.
	Config config.Options
	// Authors resolves dump-stream usernames to commit identities. If
	// nil, every user falls back to the synthetic identity.
	Authors *authors.Map
	// Reporter receives progress/verbose output. If nil, status is not
	// reported.
	Reporter *status.Reporter
	// Verbose enables per-node Detail logging through Reporter.
	Verbose bool
}

// Converter runs a single dump stream against a target object store.
type Converter struct {
	store    *gitstore.Store
	opts     Options
	registry *branch.Registry
	cache    *revcache.Cache
	engine   *apply.Engine
	driver   *commit.Driver

	flatHistory *branch.Branch

	currentRevision int
	commits         int
}

// New constructs a Converter writing into store.
func New(store *gitstore.Store, opts Options) *Converter {
	registry := branch.NewRegistry()
	classifier := classify.New(registry, opts.Config.BranchRules)
	cache := revcache.New()
	engine := apply.New(classifier, cache)

	flatHistory := registry.Register(FlatHistoryBranch, flatHistoryPrefix, false)

	c := &Converter{store: store, opts: opts, registry: registry, cache: cache, engine: engine, flatHistory: flatHistory}

	var setCommitInfo commit.SetCommitInfoFunc
	if opts.Config.SvnRevisionTrailer {
		setCommitInfo = func(_ *branch.Branch, info *commit.Info) {
			info.Message = fmt.Sprintf("%s\n\nSvn-Revision: %d\n", info.Message, c.currentRevision)
		}
	}
	c.driver = commit.New(store, setCommitInfo)

	return c
}

// Run reads every revision from r and converts it, returning the total
// number of commits produced. Processing stops, and ctx.Err() is
// returned, if ctx is canceled between revisions or every
// CancelCheckInterval nodes within one.
func (c *Converter) Run(ctx context.Context, r *dump.Reader) (int, error) {
	ctx = logging.WithComponent(ctx, "convert")
	start := time.Now()

	if c.opts.Authors != nil {
		c.opts.Authors.OnUnmapped(func(u string) {
			logging.Warn(ctx, "author unmapped, synthesizing identity", "user", u)
		})
	}

	lastRevision := -1
	revisionCount := 0

	for {
		rev, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return c.commits, fmt.Errorf("%w: %v", DumpParse, err)
		}

		if lastRevision >= 0 && rev.Number <= lastRevision {
			return c.commits, fmt.Errorf("%w: revision %d after %d", RevisionOrder, rev.Number, lastRevision)
		}
		lastRevision = rev.Number
		revisionCount++

		if err := c.applyRevision(ctx, rev); err != nil {
			return c.commits, err
		}

		if err := ctx.Err(); err != nil {
			return c.commits, err
		}
	}

	if c.opts.Reporter != nil {
		c.opts.Reporter.Finish(revisionCount, c.commits)
	}
	logging.LogDuration(ctx, slog.LevelInfo, "conversion finished", start,
		"revisions", revisionCount, "commits", c.commits)

	return c.commits, nil
}

func (c *Converter) applyRevision(ctx context.Context, rev *dump.Revision) error {
	c.currentRevision = rev.Number
	apply.RecordCopySources(c.cache, rev.Nodes)

	for i, node := range rev.Nodes {
		if i%max(1, c.opts.Config.CancelCheckInterval) == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		res, err := c.engine.Apply(node, c.store.PutBlob)
		if err != nil {
			terr := translateApplyErr(err)
			switch {
			case errors.Is(terr, NotFound):
				// Revision-local recoverable: the node's target path no
				// longer exists (e.g. a prior delete this converter didn't
				// see the other side of). Skip it and keep converting.
				logging.Warn(ctx, "path not found, skipping node", "path", node.Path, "action", node.Action, "error", terr)
				continue
			case errors.Is(terr, CopySourceMissing) && node.Kind == dump.KindDir:
				// A missing copy source for a directory degrades to an
				// empty add rather than aborting the run; files have no
				// such fallback and stay fatal below.
				logging.Warn(ctx, "copy source missing, adding empty directory", "path", node.Path, "error", terr)
				fallback := node
				fallback.CopySource = nil
				res, err = c.engine.Apply(fallback, c.store.PutBlob)
				if err != nil {
					return translateApplyErr(err)
				}
			default:
				return terr
			}
		}

		if c.opts.Reporter != nil && c.opts.Verbose {
			if res.Skipped {
				c.opts.Reporter.Detail("skip (idempotent) %s", res.Description)
			} else {
				c.opts.Reporter.Detail("%s", res.Description)
			}
		}
	}

	if err := c.flatHistory.Root.Remove(""); err != nil {
		return fmt.Errorf("convert: resetting flat-history tree: %w", err)
	}
	virtualClone := tree.CopyToName(c.engine.Virtual(), "")
	if err := c.flatHistory.Root.Update("", virtualClone); err != nil {
		return fmt.Errorf("convert: mirroring flat-history tree: %w", err)
	}
	c.flatHistory.MarkModified() // never a tag; error is impossible

	c.engine.Snapshot(rev.Number)
	c.cache.Prune(rev.Number)

	author := c.resolveAuthor(rev.Author, rev.Date)
	message := rev.Log

	outcomes, err := c.driver.CommitRevision(c.registry, func(b *branch.Branch) commit.Info {
		return commit.Info{Author: author, Committer: author, Message: message}
	}, c.opts.Config.EmitEmptyCommits)
	if err != nil {
		return translateCommitErr(err)
	}
	c.commits += len(outcomes)

	if c.opts.Reporter != nil {
		c.opts.Reporter.Progress(rev.Number, rev.Number, c.commits)
	}

	return nil
}

func (c *Converter) resolveAuthor(user string, when time.Time) gitstore.Signature {
	var sig gitstore.Signature
	if c.opts.Authors != nil {
		sig = c.opts.Authors.Resolve(user)
	} else {
		sig = gitstore.Signature{Name: user, Email: user + "@localhost"}
	}
	sig.When = when
	return sig
}

// Registry exposes the branch registry for diagnostics (e.g. the CLI's
// --debug-tree flag); the converter core never needs callers to mutate
// it directly.
func (c *Converter) Registry() *branch.Registry { return c.registry }

// Finish flushes any remaining object-store bookkeeping (garbage
// collection) at the end of a run. Safe to call even if Run returned an
// error partway through; already-written commits and refs are durable.
func (c *Converter) Finish() error {
	if err := c.store.GC(); err != nil {
		return fmt.Errorf("%w: %v", IoError, err)
	}
	return nil
}
