package session

import (
	"errors"
	"fmt"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
)

// ErrInvalidEdit is returned for edits missing the fields their op needs.
var ErrInvalidEdit = errors.New("invalid edit")

// Op names a graph edit.
type Op string

const (
	OpAddNode    Op = "add_node"
	OpRemoveNode Op = "remove_node"
	OpConnect    Op = "connect"
	OpDisconnect Op = "disconnect"
	OpMoveNode   Op = "move_node"
	OpUpdateData Op = "update_data"
	OpSetMeta    Op = "set_meta"
)

// Edit is the serializable form of one graph mutation, as sent by editors.
type Edit struct {
	Op       Op                  `json:"op" yaml:"op" mapstructure:"op"`
	Node     *graph.NodeDocument `json:"node,omitempty" yaml:"node,omitempty" mapstructure:"node"`
	Edge     *graph.EdgeDocument `json:"edge,omitempty" yaml:"edge,omitempty" mapstructure:"edge"`
	ID       string              `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Position *graph.Position     `json:"position,omitempty" yaml:"position,omitempty" mapstructure:"position"`
	Data     map[string]any      `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"`
	Key      string              `json:"key,omitempty" yaml:"key,omitempty" mapstructure:"key"`
	Value    any                 `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}

// Func turns the edit into an EditFunc. Added nodes get their card from
// resolver when it knows the card id; resolver may be nil.
func (e Edit) Func(resolver domain.CardResolver) (EditFunc, error) {
	switch e.Op {
	case OpAddNode:
		if e.Node == nil || e.Node.ID == "" {
			return nil, fmt.Errorf("%w: %s needs a node with an id", ErrInvalidEdit, e.Op)
		}
		n := graph.Node{ID: e.Node.ID, CardID: e.Node.CardID, Position: e.Node.Position, Data: e.Node.Data}
		return func(g *graph.Graph) (*graph.Graph, error) {
			var opts []graph.NodeOption
			if resolver != nil {
				if c, ok := resolver.Resolve(n.CardID); ok {
					opts = append(opts, graph.WithCard(c))
				}
			}
			return g.AddNode(n, opts...)
		}, nil

	case OpConnect:
		if e.Edge == nil || e.Edge.Source == "" || e.Edge.Target == "" {
			return nil, fmt.Errorf("%w: %s needs an edge with source and target", ErrInvalidEdit, e.Op)
		}
		edge := graph.Edge{
			ID:         e.Edge.ID,
			Source:     e.Edge.Source,
			Target:     e.Edge.Target,
			SourcePort: e.Edge.SourcePort,
			TargetPort: e.Edge.TargetPort,
			Data:       e.Edge.Data,
		}
		return func(g *graph.Graph) (*graph.Graph, error) { return g.Connect(edge) }, nil

	case OpRemoveNode, OpDisconnect, OpMoveNode, OpUpdateData:
		if e.ID == "" {
			return nil, fmt.Errorf("%w: %s needs an id", ErrInvalidEdit, e.Op)
		}
	case OpSetMeta:
		if e.Key == "" {
			return nil, fmt.Errorf("%w: %s needs a key", ErrInvalidEdit, e.Op)
		}
		return func(g *graph.Graph) (*graph.Graph, error) { return g.WithMeta(e.Key, e.Value), nil }, nil
	default:
		return nil, fmt.Errorf("%w: unknown op %q", ErrInvalidEdit, e.Op)
	}

	switch e.Op {
	case OpRemoveNode:
		return func(g *graph.Graph) (*graph.Graph, error) { return g.RemoveNode(e.ID) }, nil
	case OpDisconnect:
		return func(g *graph.Graph) (*graph.Graph, error) { return g.Disconnect(e.ID) }, nil
	case OpMoveNode:
		if e.Position == nil {
			return nil, fmt.Errorf("%w: %s needs a position", ErrInvalidEdit, e.Op)
		}
		pos := *e.Position
		return func(g *graph.Graph) (*graph.Graph, error) { return g.MoveNode(e.ID, pos) }, nil
	default:
		return func(g *graph.Graph) (*graph.Graph, error) { return g.UpdateNodeData(e.ID, e.Data) }, nil
	}
}

// Edits composes several edits into one EditFunc applied atomically.
func Edits(resolver domain.CardResolver, edits ...Edit) (EditFunc, error) {
	fns := make([]EditFunc, 0, len(edits))
	for i, e := range edits {
		fn, err := e.Func(resolver)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		fns = append(fns, fn)
	}
	return func(g *graph.Graph) (*graph.Graph, error) {
		var err error
		for _, fn := range fns {
			if g, err = fn(g); err != nil {
				return nil, err
			}
		}
		return g, nil
	}, nil
}
