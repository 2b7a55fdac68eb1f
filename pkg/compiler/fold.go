package compiler

import (
	"fmt"
	"maps"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
)

// FoldState is the state of a folded graph: the state of every stateful node.
type FoldState map[string]*domain.CardState

// Fold packs g into a single card. Every node's card must resolve, through g's
// side table or resolver, and g must be acyclic.
//
// The folded card feeds its input to the plan inputs, applies the fan-in policy
// of GatherInput at every step and returns Plan.Collect of the outputs. Node
// errors are prefixed with the node id and concatenated in step order.
func Fold(g *graph.Graph, resolver domain.CardResolver) (domain.Card, error) {
	plan := Compile(g)
	if plan == nil {
		return nil, fmt.Errorf("cannot fold graph %s: %w", g.ID(), domain.ErrCycle)
	}

	cards := make(map[string]domain.Card, len(plan.Steps))
	for _, s := range plan.Steps {
		c, ok := g.CardFor(s.NodeID, resolver)
		if !ok {
			n, _ := g.Node(s.NodeID)
			return nil, fmt.Errorf("cannot fold node %s: %w: %s", s.NodeID, domain.ErrCardNotFound, n.CardID)
		}
		cards[s.NodeID] = c
	}

	f := &folded{plan: plan, cards: cards}
	f.meta, f.sig = foldedIdentity(g, plan, cards)

	initial := FoldState{}
	for id, c := range cards {
		if s := c.InitialState(); s != nil {
			initial[id] = s
		}
	}
	if len(initial) > 0 {
		f.initial = domain.NewCardState(initial)
	}
	return f, nil
}

type folded struct {
	meta    domain.CardMeta
	sig     domain.CardSignature
	initial *domain.CardState
	plan    *Plan
	cards   map[string]domain.Card
}

func (f *folded) Meta() domain.CardMeta           { return f.meta.Clone() }
func (f *folded) Signature() domain.CardSignature { return f.sig.Clone() }

func (f *folded) InitialState() *domain.CardState {
	if f.initial == nil {
		return nil
	}
	return domain.NewCardState(maps.Clone(f.initial.Value.(FoldState)))
}

func (f *folded) Process(input any, ctx domain.CardContext, state *domain.CardState) domain.Result {
	prev := FoldState{}
	if state == nil {
		state = f.InitialState()
	}
	if state != nil {
		if v, ok := state.Value.(FoldState); ok {
			prev = v
		}
	}

	outputs := make(map[string]any, len(f.plan.Steps))
	next := make(FoldState, len(prev))
	var errs []string
	for _, s := range f.plan.Steps {
		res := f.cards[s.NodeID].Process(GatherInput(s, input, outputs), ctx, prev[s.NodeID])
		outputs[s.NodeID] = res.Output
		if res.State != nil {
			next[s.NodeID] = res.State
		}
		for _, e := range res.Errors {
			errs = append(errs, s.NodeID+": "+e)
		}
	}

	out := domain.Result{Output: f.plan.Collect(outputs), Errors: errs}
	if len(next) > 0 {
		out.State = state.Next(next)
	}
	return out
}

func foldedIdentity(g *graph.Graph, plan *Plan, cards map[string]domain.Card) (domain.CardMeta, domain.CardSignature) {
	meta := domain.CardMeta{
		ID:       "graph(" + g.ID() + ")",
		Name:     g.ID(),
		Category: domain.CategoryCustom,
	}
	if name, ok := g.Meta()["name"].(string); ok && name != "" {
		meta.Name = name
	}

	var sig domain.CardSignature
	for _, id := range plan.Inputs {
		sig.Inputs = domain.UnionPorts(sig.Inputs, cards[id].Signature().Inputs)
	}
	for _, id := range plan.Outputs {
		sig.Outputs = domain.UnionPorts(sig.Outputs, cards[id].Signature().Outputs)
	}
	for _, s := range plan.Steps {
		c := cards[s.NodeID]
		sig.Parameters = domain.UnionParameters(sig.Parameters, c.Signature().Parameters)
		meta.SideEffects = meta.SideEffects || c.Meta().SideEffects
	}
	return meta, sig
}
