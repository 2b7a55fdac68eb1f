package graph

import (
	"fmt"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/schema"
)

// NodeReport describes one node as seen by the inspector.
// Port lists are empty when the node's card is not materialized.
type NodeReport struct {
	NodeID        string   `json:"node_id"`
	CardID        string   `json:"card_id"`
	Resolved      bool     `json:"resolved"`
	Inputs        []string `json:"inputs"`
	Outputs       []string `json:"outputs"`
	IncomingEdges []string `json:"incoming_edges"`
	OutgoingEdges []string `json:"outgoing_edges"`
	Degree        int      `json:"degree"`
	ParamErrors   []string `json:"param_errors,omitempty"`
}

// EdgeReport describes one edge. IsValid is false only when both cards are
// materialized and a named port is missing or the port types are incompatible.
type EdgeReport struct {
	EdgeID     string          `json:"edge_id"`
	IsValid    bool            `json:"is_valid"`
	Checked    bool            `json:"checked"`
	Reason     string          `json:"reason,omitempty"`
	SourceType domain.PortType `json:"source_type,omitempty"`
	TargetType domain.PortType `json:"target_type,omitempty"`
}

// Inspection is the per-node and per-edge report of a graph.
type Inspection struct {
	Nodes []NodeReport `json:"nodes"`
	Edges []EdgeReport `json:"edges"`
}

// ParamsKey is the node data key holding parameter values checked by Inspect.
const ParamsKey = "params"

// Node returns the report for a node id.
func (in Inspection) Node(id string) (NodeReport, bool) {
	for _, n := range in.Nodes {
		if n.NodeID == id {
			return n, true
		}
	}
	return NodeReport{}, false
}

// Edge returns the report for an edge id.
func (in Inspection) Edge(id string) (EdgeReport, bool) {
	for _, e := range in.Edges {
		if e.EdgeID == id {
			return e, true
		}
	}
	return EdgeReport{}, false
}

// InvalidEdges returns the reports of edges flagged invalid.
func (in Inspection) InvalidEdges() []EdgeReport {
	var out []EdgeReport
	for _, e := range in.Edges {
		if !e.IsValid {
			out = append(out, e)
		}
	}
	return out
}

// Issues converts invalid edges and parameter errors into invalid_port findings.
func (in Inspection) Issues() []domain.ValidationIssue {
	var out []domain.ValidationIssue
	for _, e := range in.InvalidEdges() {
		out = append(out, domain.ValidationIssue{
			Kind:    domain.IssueInvalidPort,
			Message: e.Reason,
			EdgeID:  e.EdgeID,
		})
	}
	for _, n := range in.Nodes {
		for _, msg := range n.ParamErrors {
			out = append(out, domain.ValidationIssue{
				Kind:    domain.IssueInvalidPort,
				Message: fmt.Sprintf("node %s: %s", n.NodeID, msg),
				NodeIDs: []string{n.NodeID},
			})
		}
	}
	return out
}

// Inspect reports resolved ports, incident edges and degree for every node and
// checks every edge whose endpoints both have a materialized card. Findings are
// informational: nothing is blocked by an invalid edge. resolver may be nil.
func Inspect(g *Graph, resolver domain.CardResolver) Inspection {
	cards := make(map[string]domain.Card, len(g.nodes))
	out := Inspection{
		Nodes: make([]NodeReport, 0, len(g.nodes)),
		Edges: make([]EdgeReport, 0, len(g.edges)),
	}

	for _, n := range g.nodes {
		rep := NodeReport{
			NodeID:        n.ID,
			CardID:        n.CardID,
			Inputs:        []string{},
			Outputs:       []string{},
			IncomingEdges: []string{},
			OutgoingEdges: []string{},
		}
		if c, ok := g.CardFor(n.ID, resolver); ok {
			cards[n.ID] = c
			sig := c.Signature()
			rep.Resolved = true
			rep.Inputs = sig.InputNames()
			rep.Outputs = sig.OutputNames()
			rep.ParamErrors = paramErrors(sig, n.Data)
		}
		for _, e := range g.edges {
			if e.Target == n.ID {
				rep.IncomingEdges = append(rep.IncomingEdges, e.ID)
			}
			if e.Source == n.ID {
				rep.OutgoingEdges = append(rep.OutgoingEdges, e.ID)
			}
		}
		rep.Degree = len(rep.IncomingEdges) + len(rep.OutgoingEdges)
		out.Nodes = append(out.Nodes, rep)
	}

	for _, e := range g.edges {
		out.Edges = append(out.Edges, inspectEdge(e, cards[e.Source], cards[e.Target]))
	}
	return out
}

func inspectEdge(e Edge, src, dst domain.Card) EdgeReport {
	rep := EdgeReport{EdgeID: e.ID, IsValid: true}
	if src == nil || dst == nil {
		return rep
	}
	rep.Checked = true

	out, ok := src.Signature().Output(e.SourcePort)
	if !ok {
		rep.IsValid = false
		rep.Reason = fmt.Sprintf("edge %s: card %s has no output port %q", e.ID, src.Meta().ID, e.SourcePort)
		return rep
	}
	in, ok := dst.Signature().Input(e.TargetPort)
	if !ok {
		rep.IsValid = false
		rep.Reason = fmt.Sprintf("edge %s: card %s has no input port %q", e.ID, dst.Meta().ID, e.TargetPort)
		return rep
	}
	rep.SourceType, rep.TargetType = out.Type, in.Type
	if !Compatible(out.Type, in.Type) {
		rep.IsValid = false
		rep.Reason = fmt.Sprintf("edge %s: cannot connect %s output to %s input", e.ID, out.Type, in.Type)
	}
	return rep
}

// Compatible reports whether data of type from may flow into a port of type to.
// Types must match unless either side is "any".
func Compatible(from, to domain.PortType) bool {
	return from == to || from == domain.PortAny || to == domain.PortAny
}

func paramErrors(sig domain.CardSignature, data map[string]any) []string {
	raw, ok := data[ParamsKey]
	if !ok {
		return nil
	}
	values, ok := raw.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("%s must be an object, got %T", ParamsKey, raw)}
	}
	err := schema.ValidateParams(sig.Parameters, values)
	if err == nil {
		return nil
	}
	var out []string
	for _, e := range schema.ValidationErrors(err) {
		out = append(out, e.Error())
	}
	return out
}
