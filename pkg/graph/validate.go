package graph

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Validate checks the structure of g. All checks run independently:
// a missing_node error per dangling edge endpoint, one cycle error naming every
// node of every cyclic region, and a warning for an empty or disconnected graph.
// Port compatibility is not checked here; see Inspect.
func Validate(g *Graph) domain.ValidationResult {
	res := domain.ValidationResult{
		Errors:   []domain.ValidationIssue{},
		Warnings: []domain.ValidationIssue{},
	}

	for _, e := range g.edges {
		for _, end := range []struct{ role, id string }{{"source", e.Source}, {"target", e.Target}} {
			if g.HasNode(end.id) {
				continue
			}
			res.Errors = append(res.Errors, domain.ValidationIssue{
				Kind:    domain.IssueMissingNode,
				Message: fmt.Sprintf("edge %s references missing %s node %q", e.ID, end.role, end.id),
				NodeIDs: []string{end.id},
				EdgeID:  e.ID,
			})
		}
	}

	if cyclic := CyclicNodes(g); len(cyclic) > 0 {
		res.Errors = append(res.Errors, domain.ValidationIssue{
			Kind:    domain.IssueCycle,
			Message: fmt.Sprintf("cycle detected involving nodes: %s", strings.Join(cyclic, ", ")),
			NodeIDs: cyclic,
		})
	}

	if len(g.nodes) == 0 {
		res.Warnings = append(res.Warnings, domain.ValidationIssue{
			Kind:    domain.IssueEmptyGraph,
			Message: "graph has no nodes",
		})
	} else if comps := Components(g); len(comps) > 1 {
		res.Warnings = append(res.Warnings, domain.ValidationIssue{
			Kind:    domain.IssueDisconnected,
			Message: fmt.Sprintf("graph has %d disconnected components", len(comps)),
		})
	}

	res.Valid = len(res.Errors) == 0
	return res
}

type frame struct {
	id   string
	next int
}

// CyclicNodes returns, sorted, every node that lies on a cycle: the members of
// each strongly connected component with more than one node, plus nodes with a
// self-loop. Components come from Tarjan's algorithm, driven by an explicit
// stack of frames instead of recursion.
func CyclicNodes(g *Graph) []string {
	adj := g.adjacency()
	index := make(map[string]int, len(g.nodes))
	low := make(map[string]int, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))
	var pending []string
	counter := 0
	out := []string{}

	visit := func(id string) {
		index[id], low[id] = counter, counter
		counter++
		pending = append(pending, id)
		onStack[id] = true
	}

	for _, root := range g.nodes {
		if _, seen := index[root.ID]; seen {
			continue
		}
		visit(root.ID)
		stack := []frame{{id: root.ID}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := adj[top.id]
			if top.next < len(succ) {
				next := succ[top.next]
				top.next++
				if _, seen := index[next]; !seen {
					visit(next)
					stack = append(stack, frame{id: next})
				} else if onStack[next] {
					low[top.id] = min(low[top.id], index[next])
				}
				continue
			}

			id := top.id
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				parent := stack[len(stack)-1].id
				low[parent] = min(low[parent], low[id])
			}
			if low[id] != index[id] {
				continue
			}

			var component []string
			for {
				member := pending[len(pending)-1]
				pending = pending[:len(pending)-1]
				onStack[member] = false
				component = append(component, member)
				if member == id {
					break
				}
			}
			if len(component) > 1 || slices.Contains(adj[id], id) {
				out = append(out, component...)
			}
		}
	}

	sort.Strings(out)
	return out
}
