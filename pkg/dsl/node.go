package dsl

import (
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    graph.Node
	card    domain.Card
	edges   []graph.Edge
	builder *Builder
}

// Card sets the card id the node refers to. By default it equals the node id.
func (n *NodeBuilder) Card(cardID string) *NodeBuilder {
	n.node.CardID = cardID
	return n
}

// Use attaches a materialized card and takes its id.
func (n *NodeBuilder) Use(c domain.Card) *NodeBuilder {
	n.card = c
	n.node.CardID = c.Meta().ID
	return n
}

// At sets the node's editor position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = graph.Position{X: x, Y: y}
	return n
}

// Data sets an entry of the node's data bag.
func (n *NodeBuilder) Data(key string, value any) *NodeBuilder {
	if n.node.Data == nil {
		n.node.Data = make(map[string]any)
	}
	n.node.Data[key] = value
	return n
}

// Param sets a parameter value under the data bag's "params" entry.
func (n *NodeBuilder) Param(name string, value any) *NodeBuilder {
	params, _ := n.node.Data[graph.ParamsKey].(map[string]any)
	if params == nil {
		params = make(map[string]any)
	}
	params[name] = value
	return n.Data(graph.ParamsKey, params)
}

// To connects the node's default output to target's default input.
func (n *NodeBuilder) To(target string) *NodeBuilder {
	return n.Wire(DefaultSourcePort, target, DefaultTargetPort)
}

// Wire connects sourcePort of this node to targetPort of target.
func (n *NodeBuilder) Wire(sourcePort, target, targetPort string) *NodeBuilder {
	n.edges = append(n.edges, graph.Edge{
		Source:     n.node.ID,
		SourcePort: sourcePort,
		Target:     target,
		TargetPort: targetPort,
	})
	return n
}

// Add starts the next node; shorthand for returning to the Builder.
func (n *NodeBuilder) Add(id string) *NodeBuilder {
	return n.builder.Add(id)
}

// Node returns a copy of the node as configured so far.
func (n *NodeBuilder) Node() graph.Node {
	return n.node
}
