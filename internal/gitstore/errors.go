package gitstore

import "errors"

// ErrStoreUnavailable means the target repository could not be opened or
// initialized.
var ErrStoreUnavailable = errors.New("gitstore: store unavailable")

// ErrCorrupt means an object could not be encoded for storage.
var ErrCorrupt = errors.New("gitstore: corrupt object")

// ErrIO wraps an underlying filesystem error encountered while reading or
// writing objects.
var ErrIO = errors.New("gitstore: io error")
