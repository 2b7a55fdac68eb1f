package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/cardflow/internal/logging"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/ports"
)

// DefaultHistoryLimit bounds the undo history kept per session.
const DefaultHistoryLimit = 50

// DefaultLockTTL is how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// ErrInvalidSessionID is returned for empty ids or ids containing "/".
var ErrInvalidSessionID = errors.New("invalid session id")

// EditFunc transforms the current graph into the next version.
type EditFunc func(*graph.Graph) (*graph.Graph, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent edits.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store    ports.SnapshotStore
	resolver domain.CardResolver

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	limit   int
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithHistoryLimit bounds the undo history. Zero or less disables the bound.
func WithHistoryLimit(n int) Option {
	return func(m *Manager) {
		m.limit = n
	}
}

// WithResolver materializes cards of graphs loaded from stores that drop them.
func WithResolver(r domain.CardResolver) Option {
	return func(m *Manager) {
		m.resolver = r
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new session manager over store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		limit:   DefaultHistoryLimit,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func headKey(id string) string       { return id + "/head" }
func historyPrefix(id string) string { return id + "/history/" }

func historyKey(id string, seq uint64) string {
	return fmt.Sprintf("%s%020d", historyPrefix(id), seq)
}

// historyKeys lists the session's undo entries, oldest first.
func (m *Manager) historyKeys(ctx context.Context, id string) ([]string, error) {
	keys, err := m.store.List(ctx, historyPrefix(id))
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// nextHistoryKey numbers history entries from the store itself, so ordering
// survives restarts of the process that writes them.
func (m *Manager) nextHistoryKey(ctx context.Context, id string) (string, error) {
	keys, err := m.historyKeys(ctx, id)
	if err != nil {
		return "", err
	}
	var next uint64 = 1
	if len(keys) > 0 {
		last := strings.TrimPrefix(keys[len(keys)-1], historyPrefix(id))
		seq, err := strconv.ParseUint(last, 10, 64)
		if err != nil {
			return "", fmt.Errorf("malformed history key %q: %w", keys[len(keys)-1], err)
		}
		next = seq + 1
	}
	return historyKey(id, next), nil
}

func checkID(id string) error {
	if id == "" || strings.Contains(id, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) loadHead(ctx context.Context, id string) (*graph.Graph, error) {
	snap, err := m.store.Load(ctx, headKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}
		return nil, err
	}
	return graph.RestoreWith(snap, m.resolver), nil
}

// Load returns the session's current graph.
func (m *Manager) Load(ctx context.Context, id string) (*graph.Graph, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var g *graph.Graph
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		g, err = m.loadHead(ctx, id)
		return err
	})
	return g, err
}

// LoadOrStart loads a session, creating it with initial when it does not exist.
// A nil initial starts from an empty graph.
func (m *Manager) LoadOrStart(ctx context.Context, id string, initial *graph.Graph) (*graph.Graph, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var g *graph.Graph
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		g, err = m.loadHead(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		if initial == nil {
			initial = graph.New()
		}
		g = initial
		if err := m.store.Save(ctx, headKey(id), graph.TakeSnapshot(g)); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		m.logger.Debug("session started", "session_id", id, "graph_id", g.ID())
		return nil
	})
	return g, err
}

// Apply runs edit against the current graph and stores the result as the new
// head. The previous head becomes the newest undo entry. When edit fails,
// nothing is stored.
func (m *Manager) Apply(ctx context.Context, id string, edit EditFunc) (*graph.Graph, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var next *graph.Graph
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		prev, err := m.store.Load(ctx, headKey(id))
		if err != nil {
			if errors.Is(err, domain.ErrSnapshotNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
			}
			return err
		}

		next, err = edit(graph.RestoreWith(prev, m.resolver))
		if err != nil {
			return err
		}
		if next == nil {
			return errors.New("edit returned a nil graph")
		}

		key, err := m.nextHistoryKey(ctx, id)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, key, prev); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}
		head := graph.TakeSnapshot(next)
		if err := m.store.Save(ctx, headKey(id), head); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		m.logger.Debug("session edit applied", "session_id", id, "snapshot_id", head.ID)
		return m.prune(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Undo restores the previous version of the session graph.
func (m *Manager) Undo(ctx context.Context, id string) (*graph.Graph, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var g *graph.Graph
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		keys, err := m.historyKeys(ctx, id)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			if _, err := m.store.Load(ctx, headKey(id)); errors.Is(err, domain.ErrSnapshotNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
			}
			return domain.ErrNothingToUndo
		}

		last := keys[len(keys)-1]
		prev, err := m.store.Load(ctx, last)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, headKey(id), prev); err != nil {
			return fmt.Errorf("failed to restore session: %w", err)
		}
		if err := m.store.Delete(ctx, last); err != nil {
			return err
		}
		g = graph.RestoreWith(prev, m.resolver)
		m.logger.Debug("session edit undone", "session_id", id, "snapshot_id", prev.ID)
		return nil
	})
	return g, err
}

// History returns how many undo steps the session holds.
func (m *Manager) History(ctx context.Context, id string) (int, error) {
	if err := checkID(id); err != nil {
		return 0, err
	}
	keys, err := m.store.List(ctx, historyPrefix(id))
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (m *Manager) prune(ctx context.Context, id string) error {
	if m.limit <= 0 {
		return nil
	}
	keys, err := m.historyKeys(ctx, id)
	if err != nil {
		return err
	}
	for len(keys) > m.limit {
		if err := m.store.Delete(ctx, keys[0]); err != nil {
			return err
		}
		keys = keys[1:]
	}
	return nil
}

// Delete removes the session and its history.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		keys, err := m.store.List(ctx, historyPrefix(id))
		if err != nil {
			return err
		}
		for _, k := range append(keys, headKey(id)) {
			if err := m.store.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns the ids of stored sessions, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	keys, err := m.store.List(ctx, "")
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, k := range keys {
		if id, ok := strings.CutSuffix(k, "/head"); ok && !strings.Contains(id, "/") {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}
