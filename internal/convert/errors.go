package convert

import (
	"errors"
	"fmt"

	"github.com/gitbridge/svn2git/internal/branch"
	"github.com/gitbridge/svn2git/internal/gitstore"
	"github.com/gitbridge/svn2git/internal/revcache"
	"github.com/gitbridge/svn2git/internal/tree"
)

// The error taxonomy a caller (the CLI, or a library consumer) should
// switch on: every fatal condition the converter can raise maps to one
// of these sentinels via errors.Is, regardless of which internal package
// originated it.
var (
	// DumpParse marks a malformed dump stream.
	DumpParse = errors.New("convert: dump stream parse error")
	// RevisionOrder marks a dump stream whose revisions are not strictly
	// increasing.
	RevisionOrder = errors.New("convert: revisions out of order")
	// NotFound marks an operation against a path that does not exist.
	NotFound = errors.New("convert: path not found")
	// NotADirectory marks a path traversal through a non-directory entry.
	NotADirectory = errors.New("convert: not a directory")
	// CopySourceMissing marks a Node-copyfrom reference to a revision or
	// path no longer retained in the revision cache.
	CopySourceMissing = errors.New("convert: copy source missing")
	// TagMutation marks a second write attempted against an already
	// sealed tag branch.
	TagMutation = errors.New("convert: tag branch mutated after sealing")
	// StoreUnavailable marks a failure to open or initialize the target
	// object store.
	StoreUnavailable = errors.New("convert: object store unavailable")
	// Corrupt marks an object-encoding failure in the underlying store.
	Corrupt = errors.New("convert: corrupt object")
	// IoError marks an I/O failure reading or writing repository data.
	IoError = errors.New("convert: io error")
	// AuthorUnmapped marks (informationally; never fatal by default) that
	// a dump-stream username had no entry in the authors file.
	AuthorUnmapped = errors.New("convert: author unmapped")
)

// translateApplyErr maps an error surfaced by internal/apply to the
// converter's error taxonomy, wrapping the original error for %w chains.
func translateApplyErr(err error) error {
	var notFound *tree.NotFoundError
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", NotFound, err)
	}
	var notDir *tree.NotADirectoryError
	if errors.As(err, &notDir) {
		return fmt.Errorf("%w: %v", NotADirectory, err)
	}
	var copyMissing *revcache.ErrCopySourceMissing
	if errors.As(err, &copyMissing) {
		return fmt.Errorf("%w: %v", CopySourceMissing, err)
	}
	if errors.Is(err, branch.ErrTagMutation) {
		return fmt.Errorf("%w: %v", TagMutation, err)
	}
	if errors.Is(err, gitstore.ErrIO) {
		return fmt.Errorf("%w: %v", IoError, err)
	}
	return err
}

// translateCommitErr maps an error surfaced by internal/commit to the
// converter's error taxonomy.
func translateCommitErr(err error) error {
	if errors.Is(err, branch.ErrTagMutation) {
		return fmt.Errorf("%w: %v", TagMutation, err)
	}
	if errors.Is(err, gitstore.ErrCorrupt) {
		return fmt.Errorf("%w: %v", Corrupt, err)
	}
	if errors.Is(err, gitstore.ErrIO) {
		return fmt.Errorf("%w: %v", IoError, err)
	}
	return err
}
