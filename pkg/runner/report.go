package runner

import (
	"time"

	"github.com/aretw0/cardflow/pkg/domain"
)

// States maps node ids to their card state between runs.
type States map[string]*domain.CardState

// Request is the input of one run.
type Request struct {
	// Input is fed to every plan input node.
	Input any
	// Context is handed, unchanged, to every card.
	Context domain.CardContext
	// States carries node states from a previous Report. Missing entries use
	// the card's initial state.
	States States
}

// StepReport is the outcome of one step.
type StepReport struct {
	NodeID   string            `json:"node_id"`
	CardID   string            `json:"card_id"`
	Output   any               `json:"output"`
	State    *domain.CardState `json:"state,omitempty"`
	Errors   []string          `json:"errors,omitempty"`
	Duration time.Duration     `json:"duration"`
}

// Report is the outcome of a run.
type Report struct {
	GraphID string `json:"graph_id"`
	// Output is the single output node's value, or a compiler.FanIn of every
	// output node when the plan has several.
	Output   any            `json:"output"`
	Outputs  map[string]any `json:"outputs"`
	States   States         `json:"states"`
	Steps    []StepReport   `json:"steps"`
	Duration time.Duration  `json:"duration"`
}

// Errors returns every advisory error in step order, prefixed by node id.
func (r *Report) Errors() []string {
	var out []string
	for _, s := range r.Steps {
		for _, e := range s.Errors {
			out = append(out, s.NodeID+": "+e)
		}
	}
	return out
}

// Step returns the report of a node.
func (r *Report) Step(nodeID string) (StepReport, bool) {
	for _, s := range r.Steps {
		if s.NodeID == nodeID {
			return s, true
		}
	}
	return StepReport{}, false
}
