package graph

import (
	"fmt"
	"maps"

	"github.com/aretw0/cardflow/pkg/domain"
)

// NodeOption configures a node being added.
type NodeOption func(*nodeConfig)

type nodeConfig struct {
	card domain.Card
}

// WithCard materializes c for the new node. When the node has no CardID, the
// card's id is used.
func WithCard(c domain.Card) NodeOption {
	return func(cfg *nodeConfig) { cfg.card = c }
}

// AddNode returns a graph with n appended.
// An empty node id is replaced by a generated one.
func (g *Graph) AddNode(n Node, opts ...NodeOption) (*Graph, error) {
	var cfg nodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if n.ID == "" {
		n.ID = newNodeID()
	}
	if _, exists := g.nodeIndex[n.ID]; exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateNode, n.ID)
	}
	if cfg.card != nil && n.CardID == "" {
		n.CardID = cfg.card.Meta().ID
	}

	out := g.clone()
	out.nodes = append(out.nodes, n.clone())
	out.nodeIndex[n.ID] = len(out.nodes) - 1
	if cfg.card != nil {
		out.cards[n.CardID] = cfg.card
	}
	return out, nil
}

// RemoveNode returns a graph without the node and without every edge touching it.
func (g *Graph) RemoveNode(id string) (*Graph, error) {
	if _, ok := g.nodeIndex[id]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}

	out := g.clone()
	out.nodes = out.nodes[:0:0]
	for _, n := range g.nodes {
		if n.ID != id {
			out.nodes = append(out.nodes, n)
		}
	}
	out.edges = out.edges[:0:0]
	for _, e := range g.edges {
		if e.Source != id && e.Target != id {
			out.edges = append(out.edges, e)
		}
	}
	out.reindex()
	return out, nil
}

// Connect returns a graph with e added. An empty edge id is generated.
//
// Connecting an identical (source, target, sourcePort, targetPort) link again
// returns g unchanged, whatever the edge id. Both endpoints must be nodes of g.
func (g *Graph) Connect(e Edge) (*Graph, error) {
	for _, id := range []string{e.Source, e.Target} {
		if _, ok := g.nodeIndex[id]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
		}
	}
	return g.link(e)
}

// link adds e without checking its endpoints. Decoded documents may carry
// edges to missing nodes; Validate reports them.
func (g *Graph) link(e Edge) (*Graph, error) {
	for _, existing := range g.edges {
		if existing.sameLink(e) {
			return g, nil
		}
	}
	if e.ID == "" {
		e.ID = newEdgeID()
	}
	if _, exists := g.edgeIndex[e.ID]; exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateEdge, e.ID)
	}

	out := g.clone()
	out.edges = append(out.edges, e.clone())
	out.edgeIndex[e.ID] = len(out.edges) - 1
	return out, nil
}

// Disconnect returns a graph without the given edge.
func (g *Graph) Disconnect(edgeID string) (*Graph, error) {
	if _, ok := g.edgeIndex[edgeID]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEdgeNotFound, edgeID)
	}

	out := g.clone()
	out.edges = out.edges[:0:0]
	for _, e := range g.edges {
		if e.ID != edgeID {
			out.edges = append(out.edges, e)
		}
	}
	out.reindex()
	return out, nil
}

// MoveNode returns a graph with the node placed at pos.
func (g *Graph) MoveNode(id string, pos Position) (*Graph, error) {
	return g.updateNode(id, func(n *Node) { n.Position = pos })
}

// UpdateNodeData returns a graph with the node's data bag replaced by data.
func (g *Graph) UpdateNodeData(id string, data map[string]any) (*Graph, error) {
	return g.updateNode(id, func(n *Node) { n.Data = maps.Clone(data) })
}

// WithMeta returns a graph with key set in the metadata bag.
func (g *Graph) WithMeta(key string, value any) *Graph {
	out := g.clone()
	if out.meta == nil {
		out.meta = map[string]any{}
	}
	out.meta[key] = value
	return out
}

// AddCard returns a graph with c added to the card side table.
func (g *Graph) AddCard(c domain.Card) *Graph {
	out := g.clone()
	out.cards[c.Meta().ID] = c
	return out
}

func (g *Graph) updateNode(id string, fn func(*Node)) (*Graph, error) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	out := g.clone()
	n := out.nodes[i]
	fn(&n)
	out.nodes[i] = n
	return out, nil
}
