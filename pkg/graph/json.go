package graph

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Document is the plain serialized form of a graph. It carries ids, positions,
// port names and opaque data bags, never card implementations.
type Document struct {
	ID    string         `json:"id" yaml:"id" mapstructure:"id"`
	Nodes []NodeDocument `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
	Edges []EdgeDocument `json:"edges" yaml:"edges" mapstructure:"edges"`
	Meta  map[string]any `json:"meta" yaml:"meta,omitempty" mapstructure:"meta"`
}

// NodeDocument is the serialized form of a Node.
type NodeDocument struct {
	ID       string         `json:"id" yaml:"id" mapstructure:"id"`
	CardID   string         `json:"cardId" yaml:"cardId" mapstructure:"cardId"`
	Position Position       `json:"position" yaml:"position" mapstructure:"position"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"`
}

// EdgeDocument is the serialized form of an Edge.
type EdgeDocument struct {
	ID         string         `json:"id" yaml:"id" mapstructure:"id"`
	Source     string         `json:"source" yaml:"source" mapstructure:"source"`
	Target     string         `json:"target" yaml:"target" mapstructure:"target"`
	SourcePort string         `json:"sourcePort" yaml:"sourcePort" mapstructure:"sourcePort"`
	TargetPort string         `json:"targetPort" yaml:"targetPort" mapstructure:"targetPort"`
	Data       map[string]any `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"`
}

// ToDocument converts g to its serialized form.
func ToDocument(g *Graph) Document {
	doc := Document{
		ID:    g.id,
		Nodes: make([]NodeDocument, 0, len(g.nodes)),
		Edges: make([]EdgeDocument, 0, len(g.edges)),
		Meta:  deepCopyMap(g.meta),
	}
	if doc.Meta == nil {
		doc.Meta = map[string]any{}
	}
	for _, n := range g.nodes {
		doc.Nodes = append(doc.Nodes, NodeDocument{
			ID:       n.ID,
			CardID:   n.CardID,
			Position: n.Position,
			Data:     deepCopyMap(n.Data),
		})
	}
	for _, e := range g.edges {
		doc.Edges = append(doc.Edges, EdgeDocument{
			ID:         e.ID,
			Source:     e.Source,
			Target:     e.Target,
			SourcePort: e.SourcePort,
			TargetPort: e.TargetPort,
			Data:       deepCopyMap(e.Data),
		})
	}
	return doc
}

// FromDocument builds a graph from its serialized form. Cards are materialized
// through resolver when given; unresolved nodes stay valid but card-less.
// An empty document id yields a fresh graph id.
func FromDocument(doc Document, resolver domain.CardResolver) (*Graph, error) {
	var opts []Option
	if doc.ID != "" {
		opts = append(opts, WithID(doc.ID))
	}
	if len(doc.Meta) > 0 {
		opts = append(opts, WithMetadata(deepCopyMap(doc.Meta)))
	}
	g := New(opts...)

	var err error
	for _, n := range doc.Nodes {
		g, err = g.AddNode(Node{ID: n.ID, CardID: n.CardID, Position: n.Position, Data: deepCopyMap(n.Data)})
		if err != nil {
			return nil, fmt.Errorf("failed to add node: %w", err)
		}
	}
	for _, e := range doc.Edges {
		g, err = g.link(Edge{
			ID:         e.ID,
			Source:     e.Source,
			Target:     e.Target,
			SourcePort: e.SourcePort,
			TargetPort: e.TargetPort,
			Data:       deepCopyMap(e.Data),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect edge: %w", err)
		}
	}
	return g.Materialize(resolver), nil
}

// ToJSON serializes g.
func ToJSON(g *Graph) ([]byte, error) {
	return json.Marshal(ToDocument(g))
}

// FromJSON parses a serialized graph. resolver may be nil.
func FromJSON(data []byte, resolver domain.CardResolver) (*Graph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	return FromDocument(doc, resolver)
}

// MarshalJSON implements json.Marshaler.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return ToJSON(g)
}

// UnmarshalJSON implements json.Unmarshaler. Cards are not materialized.
func (g *Graph) UnmarshalJSON(data []byte) error {
	parsed, err := FromJSON(data, nil)
	if err != nil {
		return err
	}
	*g = *parsed
	return nil
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = deepCopyValue(x)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
