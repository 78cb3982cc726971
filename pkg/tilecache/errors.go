package tilecache

import "errors"

// ErrNotFound is returned by Cache.Get when the underlying source has no
// tile for the requested id.
var ErrNotFound = errors.New("tilecache: not found")
