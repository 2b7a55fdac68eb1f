package ports

import (
	"context"
	"errors"
)

// ErrWatchUnsupported is returned by Watch when the underlying source cannot report changes.
var ErrWatchUnsupported = errors.New("current card source does not support watching")

// Watchable is implemented by card sources that can report changes.
type Watchable interface {
	// Watch emits the id of every changed card document until ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
