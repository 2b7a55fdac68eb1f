package ports

import (
	"context"

	"github.com/aretw0/cardflow/pkg/graph"
)

// SnapshotStore defines the interface for persisting graph snapshots.
// Keys are chosen by the caller; edit sessions use "<session>/<snapshot id>".
type SnapshotStore interface {
	// Save persists the snapshot under key, replacing any previous value.
	Save(ctx context.Context, key string, snap graph.Snapshot) error

	// Load retrieves the snapshot stored under key.
	// Returns domain.ErrSnapshotNotFound if the key does not exist.
	Load(ctx context.Context, key string) (graph.Snapshot, error)

	// Delete removes the snapshot stored under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the stored keys having the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
