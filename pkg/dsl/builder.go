package dsl

import (
	"fmt"
	"maps"

	"github.com/aretw0/cardflow/pkg/graph"
)

// Default port names used by NodeBuilder.To.
const (
	DefaultSourcePort = "out"
	DefaultTargetPort = "in"
)

// Builder manages the graph construction.
// Nodes keep the order in which they were first added.
type Builder struct {
	opts  []graph.Option
	meta  map[string]any
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a new graph builder. opts are passed to graph.New.
func New(opts ...graph.Option) *Builder {
	return &Builder{
		opts:  opts,
		meta:  make(map[string]any),
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    graph.Node{ID: id, CardID: id},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Meta sets a graph-level metadata entry.
func (b *Builder) Meta(key string, value any) *Builder {
	b.meta[key] = value
	return b
}

// Build creates the graph: nodes first, in insertion order, then edges in
// the order they were declared. The builder authors a document, so
// connections to undeclared nodes are kept; graph.Validate reports them.
func (b *Builder) Build() (*graph.Graph, error) {
	base := graph.New(b.opts...)
	meta := base.Meta()
	if meta == nil {
		meta = make(map[string]any, len(b.meta))
	}
	maps.Copy(meta, b.meta)

	doc := graph.Document{ID: base.ID(), Meta: meta}
	for _, id := range b.order {
		n := b.nodes[id].node
		doc.Nodes = append(doc.Nodes, graph.NodeDocument{
			ID:       n.ID,
			CardID:   n.CardID,
			Position: n.Position,
			Data:     n.Data,
		})
	}
	for _, id := range b.order {
		for _, e := range b.nodes[id].edges {
			doc.Edges = append(doc.Edges, graph.EdgeDocument{
				ID:         e.ID,
				Source:     e.Source,
				Target:     e.Target,
				SourcePort: e.SourcePort,
				TargetPort: e.TargetPort,
				Data:       e.Data,
			})
		}
	}

	g, err := graph.FromDocument(doc, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	for _, id := range b.order {
		if c := b.nodes[id].card; c != nil {
			g = g.AddCard(c)
		}
	}
	return g, nil
}

// MustBuild is Build for static setup code. It panics on error.
func (b *Builder) MustBuild() *graph.Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
