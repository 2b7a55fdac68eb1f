package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/cardflow/pkg/adapters/memory"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/persistence/middleware"
	"github.com/aretw0/cardflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func sampleGraph(t *testing.T) *graph.Graph {
	g := graph.New(graph.WithMetadata(map[string]any{"author": "someone", "title": "beat"}))
	g, err := g.AddNode(graph.Node{ID: "sampler", CardID: "sampler", Data: map[string]any{
		"params": map[string]any{"samplePath": "/home/someone/kick.wav", "gain": 0.8},
	}})
	require.NoError(t, err)
	return g
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	secure := mw(underlying)
	ctx := context.Background()

	snap := graph.TakeSnapshot(sampleGraph(t))
	require.NoError(t, secure.Save(ctx, "s1", snap))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, snap.ID, stored.ID)
	assert.Zero(t, stored.Graph.NodeCount(), "envelope must not expose nodes")
	assert.NotContains(t, stored.Graph.Meta(), "author")
	assert.Contains(t, stored.Graph.Meta(), middleware.EnvelopeKey)

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, snap.ID, loaded.ID)
	n, ok := loaded.Graph.Node("sampler")
	require.True(t, ok)
	assert.Equal(t, 0.8, n.Data["params"].(map[string]any)["gain"])
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	ports.RunSnapshotStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	oldKey, newKey := generateKey(t), generateKey(t)

	oldMW, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, err)
	require.NoError(t, oldMW(underlying).Save(ctx, "s1", graph.TakeSnapshot(sampleGraph(t))))

	rotated, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	require.NoError(t, err)
	_, err = rotated(underlying).Load(ctx, "s1")
	assert.NoError(t, err)

	strict, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})
	require.NoError(t, err)
	_, err = strict(underlying).Load(ctx, "s1")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_PlainSnapshotRejected(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", graph.TakeSnapshot(sampleGraph(t))))

	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	_, err = mw(underlying).Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrMissingEnvelope)
}

func TestEncryptionMiddleware_BadKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)
}

func TestRedactMiddleware(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewRedactMiddleware([]string{"(?i)path$", "^author$"})
	require.NoError(t, err)
	store := mw(underlying)
	ctx := context.Background()

	g := sampleGraph(t)
	require.NoError(t, store.Save(ctx, "s1", graph.TakeSnapshot(g)))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, stored.Graph.Meta()["author"])
	assert.Equal(t, "beat", stored.Graph.Meta()["title"])
	n, _ := stored.Graph.Node("sampler")
	params := n.Data["params"].(map[string]any)
	assert.Equal(t, middleware.Mask, params["samplePath"])
	assert.Equal(t, 0.8, params["gain"])

	// The caller's graph is untouched.
	orig, _ := g.Node("sampler")
	assert.Equal(t, "/home/someone/kick.wav", orig.Data["params"].(map[string]any)["samplePath"])
}

func TestRedactMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewRedactMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	underlying := memory.NewStore()
	redact, err := middleware.NewRedactMiddleware([]string{"^author$"})
	require.NoError(t, err)
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Chain(underlying, redact, encrypt)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", graph.TakeSnapshot(sampleGraph(t))))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Graph.Meta()["author"])
}
