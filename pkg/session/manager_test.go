package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/cardflow/pkg/adapters/file"
	"github.com/aretw0/cardflow/pkg/adapters/memory"
	"github.com/aretw0/cardflow/pkg/adapters/redis"
	"github.com/aretw0/cardflow/pkg/card"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/registry"
	"github.com/aretw0/cardflow/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addNode(id string) session.EditFunc {
	return func(g *graph.Graph) (*graph.Graph, error) {
		return g.AddNode(graph.Node{ID: id, CardID: "gain"})
	}
}

func TestManager_ApplyAndUndo(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, err := mgr.LoadOrStart(ctx, "s1", nil)
	require.NoError(t, err)

	g, err := mgr.Apply(ctx, "s1", addNode("a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, g.NodeIDs())

	g, err = mgr.Apply(ctx, "s1", addNode("b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, g.NodeIDs())

	n, err := mgr.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	g, err = mgr.Undo(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, g.NodeIDs())

	loaded, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, loaded.NodeIDs())

	_, err = mgr.Undo(ctx, "s1")
	require.NoError(t, err)
	_, err = mgr.Undo(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)
}

func TestManager_FailedEditStoresNothing(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	_, err := mgr.LoadOrStart(ctx, "s1", nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = mgr.Apply(ctx, "s1", func(*graph.Graph) (*graph.Graph, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	n, err := mgr.History(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestManager_UnknownSession(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, err := mgr.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = mgr.Apply(ctx, "missing", addNode("a"))
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = mgr.Undo(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = mgr.Load(ctx, "a/b")
	assert.ErrorIs(t, err, session.ErrInvalidSessionID)
}

func TestManager_HistoryLimit(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), session.WithHistoryLimit(2))
	ctx := context.Background()
	_, err := mgr.LoadOrStart(ctx, "s1", nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := mgr.Apply(ctx, "s1", addNode(fmt.Sprintf("n%d", i)))
		require.NoError(t, err)
	}

	n, err := mgr.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	g, err := mgr.Undo(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, g.NodeIDs(), 4)
}

func TestManager_HistorySurvivesRestart(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	// State left behind by an earlier process whose snapshot ids ran high.
	orig, err := graph.New().AddNode(graph.Node{ID: "orig", CardID: "gain"})
	require.NoError(t, err)
	head := graph.TakeSnapshot(orig)
	head.ID = 5000
	require.NoError(t, store.Save(ctx, "s1/head", head))
	older := graph.TakeSnapshot(graph.New())
	older.ID = 4999
	require.NoError(t, store.Save(ctx, "s1/history/00000000000000004999", older))

	mgr := session.NewManager(store, session.WithHistoryLimit(2))
	_, err = mgr.Apply(ctx, "s1", addNode("e1"))
	require.NoError(t, err)
	_, err = mgr.Apply(ctx, "s1", addNode("e2"))
	require.NoError(t, err)

	g, err := mgr.Undo(ctx, "s1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"orig", "e1"}, g.NodeIDs())

	g, err = mgr.Undo(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"orig"}, g.NodeIDs())

	_, err = mgr.Undo(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNothingToUndo)
}

func TestManager_ConcurrentEdits(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), session.WithHistoryLimit(0))
	ctx := context.Background()
	_, err := mgr.LoadOrStart(ctx, "race", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	const writers = 20
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := mgr.Apply(ctx, "race", addNode(fmt.Sprintf("n%d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Serialized read-modify-write loses no update.
	g, err := mgr.Load(ctx, "race")
	require.NoError(t, err)
	assert.Equal(t, writers, g.NodeCount())
}

func TestManager_LoadOrStartOnce(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 2)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := mgr.LoadOrStart(ctx, "atomic-init", graph.New())
			assert.NoError(t, err)
			ids[i] = g.ID()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, ids[0], ids[1])
}

func TestManager_ListAndDelete(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	for _, id := range []string{"b", "a"} {
		_, err := mgr.LoadOrStart(ctx, id, nil)
		require.NoError(t, err)
		_, err = mgr.Apply(ctx, id, addNode("x"))
		require.NoError(t, err)
	}

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, mgr.Delete(ctx, "a"))
	ids, err = mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	keys, err := mgr.Store().List(ctx, "a/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestManager_FileStoreResolvesCards(t *testing.T) {
	gain := card.Passthrough(domain.CardMeta{ID: "gain"}, domain.CardSignature{}).Erase()
	cards := registry.NewCards().MustRegister(gain)

	mgr := session.NewManager(file.New(t.TempDir()), session.WithResolver(cards))
	ctx := context.Background()
	_, err := mgr.LoadOrStart(ctx, "s1", nil)
	require.NoError(t, err)
	_, err = mgr.Apply(ctx, "s1", addNode("a"))
	require.NoError(t, err)

	g, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	_, ok := g.Card("gain")
	assert.True(t, ok)
}

func TestManager_DistributedLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewFromClient(client)
	locker := redis.NewLocker(client, "test:")
	mgr := session.NewManager(store, session.WithLocker(locker), session.WithLockTTL(time.Second))
	ctx := context.Background()

	_, err = mgr.LoadOrStart(ctx, "s1", nil)
	require.NoError(t, err)

	err = mgr.WithLock(ctx, "s1", func(context.Context) error {
		assert.True(t, mr.Exists("test:lock:s1"))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:lock:s1"))

	_, err = mgr.Apply(ctx, "s1", addNode("a"))
	require.NoError(t, err)
	g, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, g.NodeIDs())
}
