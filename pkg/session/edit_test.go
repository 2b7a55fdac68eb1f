package session_test

import (
	"context"
	"testing"

	"github.com/aretw0/cardflow/pkg/adapters/memory"
	"github.com/aretw0/cardflow/pkg/card"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/registry"
	"github.com/aretw0/cardflow/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdit_Ops(t *testing.T) {
	gain := card.Passthrough(domain.CardMeta{ID: "gain"}, domain.CardSignature{}).Erase()
	reg := registry.NewCards().MustRegister(gain)
	mgr := session.NewManager(memory.NewStore(), session.WithResolver(reg))
	ctx := context.Background()

	_, err := mgr.LoadOrStart(ctx, "s1", nil)
	require.NoError(t, err)

	fn, err := session.Edits(reg,
		session.Edit{Op: session.OpAddNode, Node: &graph.NodeDocument{ID: "a", CardID: "gain"}},
		session.Edit{Op: session.OpAddNode, Node: &graph.NodeDocument{ID: "b", CardID: "gain"}},
		session.Edit{Op: session.OpConnect, Edge: &graph.EdgeDocument{ID: "e1", Source: "a", SourcePort: "out", Target: "b", TargetPort: "in"}},
		session.Edit{Op: session.OpMoveNode, ID: "b", Position: &graph.Position{X: 250}},
		session.Edit{Op: session.OpUpdateData, ID: "a", Data: map[string]any{"params": map[string]any{"level": 0.5}}},
		session.Edit{Op: session.OpSetMeta, Key: "name", Value: "patch"},
	)
	require.NoError(t, err)

	g, err := mgr.Apply(ctx, "s1", fn)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, g.NodeIDs())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, "patch", g.Meta()["name"])
	b, _ := g.Node("b")
	assert.Equal(t, 250.0, b.Position.X)
	_, ok := g.Card("gain")
	assert.True(t, ok, "added nodes carry their resolved card")

	n, err := mgr.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "a batch of edits is one undo step")

	fn, err = session.Edits(reg,
		session.Edit{Op: session.OpDisconnect, ID: "e1"},
		session.Edit{Op: session.OpRemoveNode, ID: "a"},
	)
	require.NoError(t, err)
	g, err = mgr.Apply(ctx, "s1", fn)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, g.NodeIDs())
	assert.Zero(t, g.EdgeCount())
}

func TestEdit_Invalid(t *testing.T) {
	cases := []session.Edit{
		{Op: "explode"},
		{Op: session.OpAddNode},
		{Op: session.OpConnect, Edge: &graph.EdgeDocument{Source: "a"}},
		{Op: session.OpRemoveNode},
		{Op: session.OpMoveNode, ID: "a"},
		{Op: session.OpSetMeta},
	}
	for _, e := range cases {
		t.Run(string(e.Op), func(t *testing.T) {
			_, err := e.Func(nil)
			assert.ErrorIs(t, err, session.ErrInvalidEdit)
		})
	}
}

func TestEdit_FailureKeepsHead(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	_, err := mgr.LoadOrStart(ctx, "s1", nil)
	require.NoError(t, err)

	fn, err := session.Edits(nil,
		session.Edit{Op: session.OpAddNode, Node: &graph.NodeDocument{ID: "a"}},
		session.Edit{Op: session.OpRemoveNode, ID: "ghost"},
	)
	require.NoError(t, err)

	_, err = mgr.Apply(ctx, "s1", fn)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	g, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, g.NodeCount())
}
