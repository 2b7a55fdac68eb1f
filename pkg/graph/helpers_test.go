package graph

import (
	"testing"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/stretchr/testify/require"
)

// build creates a graph from node ids and "src->dst" edges using "out"/"in" ports.
func build(t *testing.T, nodes []string, edges ...[2]string) *Graph {
	t.Helper()
	g := New(WithID("test"))
	var err error
	for _, id := range nodes {
		g, err = g.AddNode(Node{ID: id, CardID: id})
		require.NoError(t, err)
	}
	for _, e := range edges {
		g, err = g.Connect(Edge{ID: e[0] + "->" + e[1], Source: e[0], SourcePort: "out", Target: e[1], TargetPort: "in"})
		require.NoError(t, err)
	}
	return g
}

type fakeCard struct {
	meta domain.CardMeta
	sig  domain.CardSignature
}

func (c fakeCard) Meta() domain.CardMeta           { return c.meta }
func (c fakeCard) Signature() domain.CardSignature { return c.sig }
func (c fakeCard) InitialState() *domain.CardState { return nil }
func (c fakeCard) Process(in any, _ domain.CardContext, _ *domain.CardState) domain.Result {
	return domain.Result{Output: in}
}

func newFake(id string, in, out domain.PortType) fakeCard {
	c := fakeCard{meta: domain.CardMeta{ID: id, Name: id, Category: domain.CategoryUtilities}}
	if in != "" {
		c.sig.Inputs = []domain.Port{{Name: "in", Type: in}}
	}
	if out != "" {
		c.sig.Outputs = []domain.Port{{Name: "out", Type: out}}
	}
	return c
}

func resolverOf(cards ...domain.Card) domain.CardResolver {
	m := map[string]domain.Card{}
	for _, c := range cards {
		m[c.Meta().ID] = c
	}
	return domain.ResolverFunc(func(id string) (domain.Card, bool) {
		c, ok := m[id]
		return c, ok
	})
}
