// Package validator combines structural validation, port inspection and
// parameter checks into one report for the CLI and the adapters.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
)

// Report is the combined result of checking a graph.
type Report struct {
	GraphID    string                   `json:"graph_id"`
	Validation domain.ValidationResult  `json:"validation"`
	Inspection graph.Inspection         `json:"inspection"`
	Issues     []domain.ValidationIssue `json:"issues"`
	Unresolved []string                 `json:"unresolved,omitempty"`
	CyclicNode []string                 `json:"cyclic_nodes,omitempty"`
	strict     bool
}

// Option configures Check.
type Option func(*Report)

// Strict makes warnings and unresolved cards count as failures.
func Strict() Option {
	return func(r *Report) { r.strict = true }
}

// Check validates g and inspects it through resolver, which may be nil.
// Issues holds structural errors first, then inspection findings.
func Check(g *graph.Graph, resolver domain.CardResolver, opts ...Option) Report {
	r := Report{
		GraphID:    g.ID(),
		Validation: graph.Validate(g),
		Inspection: graph.Inspect(g, resolver),
		Issues:     []domain.ValidationIssue{},
	}
	for _, opt := range opts {
		opt(&r)
	}

	r.Issues = append(r.Issues, r.Validation.Errors...)
	r.Issues = append(r.Issues, r.Inspection.Issues()...)
	for _, n := range r.Inspection.Nodes {
		if !n.Resolved {
			r.Unresolved = append(r.Unresolved, n.NodeID)
		}
	}
	if r.Validation.HasKind(domain.IssueCycle) {
		r.CyclicNode = graph.CyclicNodes(g)
	}
	return r
}

// OK reports whether the graph passed.
func (r Report) OK() bool {
	if len(r.Issues) > 0 {
		return false
	}
	if r.strict && (len(r.Validation.Warnings) > 0 || len(r.Unresolved) > 0) {
		return false
	}
	return true
}

// Err returns nil when the report is OK, otherwise an error listing every finding.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}

	var lines []string
	for _, issue := range r.Issues {
		lines = append(lines, fmt.Sprintf("[%s] %s", issue.Kind, issue.Message))
	}
	if r.strict {
		for _, w := range r.Validation.Warnings {
			lines = append(lines, fmt.Sprintf("[%s] %s", w.Kind, w.Message))
		}
		for _, id := range r.Unresolved {
			lines = append(lines, fmt.Sprintf("[unresolved] node %s has no card", id))
		}
	}
	return fmt.Errorf("found %d errors:\n- %s", len(lines), strings.Join(lines, "\n- "))
}
