package compiler

import (
	"github.com/aretw0/cardflow/pkg/graph"
)

// Step is one node of a plan and the nodes it reads from.
type Step struct {
	NodeID       string   `json:"node_id"`
	Dependencies []string `json:"dependencies"`
}

// Plan is a flat, dependency-ordered execution plan.
type Plan struct {
	GraphID string   `json:"graph_id"`
	Steps   []Step   `json:"steps"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
}

// Compile derives a plan from g. It returns nil when g has a cycle; any other
// finding of graph.Validate, warnings included, does not block compilation.
// Edges from or to nodes outside the graph are ignored.
func Compile(g *graph.Graph) *Plan {
	order := graph.TopologicalSort(g)
	if order == nil {
		return nil
	}

	p := &Plan{
		GraphID: g.ID(),
		Steps:   make([]Step, 0, len(order)),
		Inputs:  []string{},
		Outputs: []string{},
	}
	for _, id := range order {
		deps := []string{}
		for _, pred := range g.Predecessors(id) {
			if g.HasNode(pred) {
				deps = append(deps, pred)
			}
		}
		p.Steps = append(p.Steps, Step{NodeID: id, Dependencies: deps})
		if len(deps) == 0 {
			p.Inputs = append(p.Inputs, id)
		}
		if !hasLiveSuccessor(g, id) {
			p.Outputs = append(p.Outputs, id)
		}
	}
	return p
}

func hasLiveSuccessor(g *graph.Graph, id string) bool {
	for _, s := range g.Successors(id) {
		if g.HasNode(s) {
			return true
		}
	}
	return false
}

// Order returns the node ids in execution order.
func (p *Plan) Order() []string {
	out := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.NodeID
	}
	return out
}

// Step returns the step of a node.
func (p *Plan) Step(nodeID string) (Step, bool) {
	for _, s := range p.Steps {
		if s.NodeID == nodeID {
			return s, true
		}
	}
	return Step{}, false
}

// Levels groups the steps by longest-path depth from the inputs. No node in a
// level depends, directly or transitively, on another node of the same level,
// so a level may run concurrently once the previous levels are done.
func (p *Plan) Levels() [][]string {
	depth := make(map[string]int, len(p.Steps))
	maxDepth := -1
	for _, s := range p.Steps {
		d := 0
		for _, dep := range s.Dependencies {
			if depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}
		depth[s.NodeID] = d
		maxDepth = max(maxDepth, d)
	}

	levels := make([][]string, maxDepth+1)
	for _, s := range p.Steps {
		d := depth[s.NodeID]
		levels[d] = append(levels[d], s.NodeID)
	}
	return levels
}
