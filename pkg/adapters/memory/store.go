package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use. Snapshots keep their card side table.
type Store struct {
	data map[string]graph.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]graph.Snapshot),
	}
}

// Save persists a deep copy of the snapshot.
func (s *Store) Save(_ context.Context, key string, snap graph.Snapshot) error {
	snap.Graph = graph.Restore(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = snap
	return nil
}

// Load retrieves a deep copy of the snapshot so callers cannot alter the stored one.
func (s *Store) Load(_ context.Context, key string) (graph.Snapshot, error) {
	s.mu.RLock()
	snap, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return graph.Snapshot{}, domain.ErrSnapshotNotFound
	}
	snap.Graph = graph.Restore(snap)
	return snap, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored keys with the given prefix, sorted.
func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
