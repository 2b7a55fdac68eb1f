package graph

import (
	"maps"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/google/uuid"
)

// Position is the canvas location of a node.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Node places a card in a graph. CardID need not resolve to a loaded card.
type Node struct {
	ID       string
	CardID   string
	Position Position
	Data     map[string]any
}

// Edge links an output port of Source to an input port of Target.
// Several edges may join the same pair of nodes on different ports.
type Edge struct {
	ID         string
	Source     string
	Target     string
	SourcePort string
	TargetPort string
	Data       map[string]any
}

func (e Edge) sameLink(o Edge) bool {
	return e.Source == o.Source && e.Target == o.Target &&
		e.SourcePort == o.SourcePort && e.TargetPort == o.TargetPort
}

// Graph is an immutable directed graph of card nodes.
// The zero value is not usable; call New.
type Graph struct {
	id        string
	nodes     []Node
	nodeIndex map[string]int
	edges     []Edge
	edgeIndex map[string]int
	meta      map[string]any
	cards     map[string]domain.Card
}

// Option configures a new Graph.
type Option func(*Graph)

// WithID sets the graph id instead of generating one.
func WithID(id string) Option {
	return func(g *Graph) { g.id = id }
}

// WithMetadata sets the initial metadata bag.
func WithMetadata(meta map[string]any) Option {
	return func(g *Graph) { g.meta = maps.Clone(meta) }
}

// New returns an empty graph with a fresh id.
func New(opts ...Option) *Graph {
	g := &Graph{
		id:        uuid.NewString(),
		nodeIndex: map[string]int{},
		edgeIndex: map[string]int{},
		cards:     map[string]domain.Card{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ID returns the graph id.
func (g *Graph) ID() string { return g.id }

// Meta returns a copy of the metadata bag.
func (g *Graph) Meta() map[string]any { return maps.Clone(g.meta) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.clone()
	}
	return out
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	for i, e := range g.edges {
		out[i] = e.clone()
	}
	return out
}

// NodeIDs returns the node ids in insertion order.
func (g *Graph) NodeIDs() []string {
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.ID
	}
	return out
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i].clone(), true
}

// HasNode reports whether id names a node of g.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeIndex[id]
	return ok
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	i, ok := g.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i].clone(), true
}

// Incoming returns the edges targeting id, in insertion order.
func (g *Graph) Incoming(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Target == id {
			out = append(out, e.clone())
		}
	}
	return out
}

// Outgoing returns the edges leaving id, in insertion order.
func (g *Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Source == id {
			out = append(out, e.clone())
		}
	}
	return out
}

// Predecessors returns the distinct sources of edges into id, in edge order.
func (g *Graph) Predecessors(id string) []string {
	return distinct(g.edges, func(e Edge) (string, bool) { return e.Source, e.Target == id })
}

// Successors returns the distinct targets of edges out of id, in edge order.
func (g *Graph) Successors(id string) []string {
	return distinct(g.edges, func(e Edge) (string, bool) { return e.Target, e.Source == id })
}

// Card returns the materialized card registered on g under cardID.
func (g *Graph) Card(cardID string) (domain.Card, bool) {
	c, ok := g.cards[cardID]
	return c, ok
}

// Resolve implements domain.CardResolver over the graph's side table.
func (g *Graph) Resolve(cardID string) (domain.Card, bool) { return g.Card(cardID) }

// CardFor resolves the card of a node: the graph's side table first, then resolver.
// resolver may be nil.
func (g *Graph) CardFor(nodeID string, resolver domain.CardResolver) (domain.Card, bool) {
	i, ok := g.nodeIndex[nodeID]
	if !ok {
		return nil, false
	}
	cardID := g.nodes[i].CardID
	if c, ok := g.cards[cardID]; ok {
		return c, true
	}
	if resolver == nil {
		return nil, false
	}
	return resolver.Resolve(cardID)
}

// Materialize returns a copy of g whose side table holds every card resolver
// can find for the graph's nodes. Unresolved nodes stay valid but card-less.
func (g *Graph) Materialize(resolver domain.CardResolver) *Graph {
	if resolver == nil {
		return g
	}
	out := g.clone()
	for _, n := range out.nodes {
		if _, ok := out.cards[n.CardID]; ok {
			continue
		}
		if c, ok := resolver.Resolve(n.CardID); ok {
			out.cards[n.CardID] = c
		}
	}
	return out
}

// clone copies the graph's containers so the copy can be edited.
// Node and edge data bags are shared until replaced; they are never mutated in place.
func (g *Graph) clone() *Graph {
	return &Graph{
		id:        g.id,
		nodes:     append([]Node(nil), g.nodes...),
		nodeIndex: maps.Clone(g.nodeIndex),
		edges:     append([]Edge(nil), g.edges...),
		edgeIndex: maps.Clone(g.edgeIndex),
		meta:      maps.Clone(g.meta),
		cards:     maps.Clone(g.cards),
	}
}

func (g *Graph) reindex() {
	g.nodeIndex = make(map[string]int, len(g.nodes))
	for i, n := range g.nodes {
		g.nodeIndex[n.ID] = i
	}
	g.edgeIndex = make(map[string]int, len(g.edges))
	for i, e := range g.edges {
		g.edgeIndex[e.ID] = i
	}
}

func (n Node) clone() Node {
	n.Data = maps.Clone(n.Data)
	return n
}

func (e Edge) clone() Edge {
	e.Data = maps.Clone(e.Data)
	return e
}

func distinct(edges []Edge, pick func(Edge) (string, bool)) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range edges {
		id, ok := pick(e)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func newEdgeID() string { return "e-" + uuid.NewString() }

func newNodeID() string { return "n-" + uuid.NewString() }
