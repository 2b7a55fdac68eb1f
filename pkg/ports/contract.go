package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	sample := func(t *testing.T) *graph.Graph {
		g := graph.New(graph.WithMetadata(map[string]any{"name": "contract"}))
		g, err := g.AddNode(graph.Node{ID: "osc", CardID: "osc", Position: graph.Position{X: 10, Y: 20}, Data: map[string]any{"params": map[string]any{"freq": 440.0}}})
		require.NoError(t, err)
		g, err = g.AddNode(graph.Node{ID: "out", CardID: "speaker"})
		require.NoError(t, err)
		g, err = g.Connect(graph.Edge{ID: "e1", Source: "osc", SourcePort: "out", Target: "out", TargetPort: "in"})
		require.NoError(t, err)
		return g
	}

	t.Run("Save and Load", func(t *testing.T) {
		g := sample(t)
		snap := graph.TakeSnapshot(g)
		key := prefix + "/save"

		require.NoError(t, store.Save(ctx, key, snap), "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.ID, loaded.ID)
		assert.True(t, snap.Timestamp.Equal(loaded.Timestamp))

		restored := graph.Restore(loaded)
		assert.Equal(t, g.ID(), restored.ID())
		assert.Equal(t, g.NodeIDs(), restored.NodeIDs())
		assert.Equal(t, g.Edges(), restored.Edges())
		n, ok := restored.Node("osc")
		require.True(t, ok)
		assert.Equal(t, graph.Position{X: 10, Y: 20}, n.Position)
		assert.Equal(t, 440.0, n.Data["params"].(map[string]any)["freq"])
	})

	t.Run("Overwrite", func(t *testing.T) {
		key := prefix + "/overwrite"
		first := graph.TakeSnapshot(sample(t))
		second := graph.TakeSnapshot(graph.New())
		require.NoError(t, store.Save(ctx, key, first))
		require.NoError(t, store.Save(ctx, key, second))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, second.ID, loaded.ID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, prefix+"/missing")
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		key := prefix + "/delete"
		require.NoError(t, store.Save(ctx, key, graph.TakeSnapshot(sample(t))))

		require.NoError(t, store.Delete(ctx, key), "Delete should not return error")

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Delete of a missing key is not an error")
	})

	t.Run("List", func(t *testing.T) {
		listPrefix := prefix + "-list/"
		k1, k2 := listPrefix+"1", listPrefix+"2"
		require.NoError(t, store.Save(ctx, k1, graph.TakeSnapshot(sample(t))))
		require.NoError(t, store.Save(ctx, k2, graph.TakeSnapshot(sample(t))))
		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx, listPrefix)
		require.NoError(t, err)
		assert.Equal(t, []string{k1, k2}, keys)
	})
}
