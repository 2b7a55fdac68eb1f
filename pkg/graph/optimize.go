package graph

import "github.com/aretw0/cardflow/pkg/domain"

// TrivialFunc decides whether a node may be bypassed. card is nil when the
// node's card could not be resolved.
type TrivialFunc func(n Node, card domain.Card) bool

// OptimizeOption configures Optimize.
type OptimizeOption func(*optimizeConfig)

type optimizeConfig struct {
	trivial TrivialFunc
}

// WithTrivialFunc replaces the default pass-through predicate.
func WithTrivialFunc(fn TrivialFunc) OptimizeOption {
	return func(c *optimizeConfig) { c.trivial = fn }
}

// IsPassThrough is the default predicate: a resolved card with exactly one input
// and one output of the same type and no declared side effects.
func IsPassThrough(_ Node, card domain.Card) bool {
	if card == nil || card.Meta().SideEffects {
		return false
	}
	sig := card.Signature()
	if len(sig.Inputs) != 1 || len(sig.Outputs) != 1 {
		return false
	}
	return sig.Inputs[0].Type == sig.Outputs[0].Type
}

// Optimize removes pass-through nodes that have exactly one incoming and one
// outgoing edge, splicing a bypass edge from the upstream source port to the
// downstream target port. It repeats until no node qualifies. resolver may be nil.
func Optimize(g *Graph, resolver domain.CardResolver, opts ...OptimizeOption) *Graph {
	cfg := optimizeConfig{trivial: IsPassThrough}
	for _, opt := range opts {
		opt(&cfg)
	}

	for {
		next, ok := bypassOne(g, resolver, cfg.trivial)
		if !ok {
			return g
		}
		g = next
	}
}

func bypassOne(g *Graph, resolver domain.CardResolver, trivial TrivialFunc) (*Graph, bool) {
	for _, n := range g.nodes {
		in, out := g.Incoming(n.ID), g.Outgoing(n.ID)
		if len(in) != 1 || len(out) != 1 {
			continue
		}
		if in[0].Source == n.ID || out[0].Target == n.ID {
			continue
		}
		card, _ := g.CardFor(n.ID, resolver)
		if !trivial(n.clone(), card) {
			continue
		}

		next, err := g.RemoveNode(n.ID)
		if err != nil {
			continue
		}
		next, err = next.Connect(Edge{
			Source:     in[0].Source,
			SourcePort: in[0].SourcePort,
			Target:     out[0].Target,
			TargetPort: out[0].TargetPort,
			Data:       in[0].Data,
		})
		if err != nil {
			continue
		}
		return next, true
	}
	return nil, false
}
