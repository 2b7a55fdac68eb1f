package card

import (
	"fmt"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Pair is the output of a parallel composition.
type Pair[B, C any] struct {
	First  B `json:"first"`
	Second C `json:"second"`
}

// PairState is the composite state kept by a parallel composition.
type PairState struct {
	First  *domain.CardState `json:"first,omitempty"`
	Second *domain.CardState `json:"second,omitempty"`
}

// Series runs f, then feeds its output to g with the same context.
// The incoming state is handed to both stages and only g's resulting state is kept.
// Errors from both stages are concatenated; a failing f does not stop g.
func Series[A, B, C any](f *Card[A, B], g *Card[B, C]) *Card[A, C] {
	meta := joinMeta("series", f.meta, g.meta)
	sig := f.sig.Series(g.sig)

	c := New(meta, sig, func(in A, ctx domain.CardContext, state *domain.CardState) Result[C] {
		first := f.Process(in, ctx, state)
		second := g.Process(first.Output, ctx, state)
		return Result[C]{
			Output: second.Output,
			State:  second.State,
			Errors: domain.ConcatErrors(first.Errors, second.Errors),
		}
	})
	c.initial = g.InitialState()
	return c
}

// Parallel runs f and g against the same input and context and pairs their outputs.
func Parallel[A, B, C any](f *Card[A, B], g *Card[A, C]) *Card[A, Pair[B, C]] {
	meta := joinMeta("parallel", f.meta, g.meta)
	sig := f.sig.Union(g.sig)

	c := New(meta, sig, func(in A, ctx domain.CardContext, state *domain.CardState) Result[Pair[B, C]] {
		var ps PairState
		if state != nil {
			if v, ok := state.Value.(PairState); ok {
				ps = v
			}
		}
		left := f.Process(in, ctx, ps.First)
		right := g.Process(in, ctx, ps.Second)

		res := Result[Pair[B, C]]{
			Output: Pair[B, C]{First: left.Output, Second: right.Output},
			Errors: domain.ConcatErrors(left.Errors, right.Errors),
		}
		if left.State != nil || right.State != nil {
			res.State = state.Next(PairState{First: left.State, Second: right.State})
		}
		return res
	})
	if fi, gi := f.InitialState(), g.InitialState(); fi != nil || gi != nil {
		c.initial = domain.NewCardState(PairState{First: fi, Second: gi})
	}
	return c
}

// Predicate selects the branch taken for an input.
type Predicate[A any] func(A, domain.CardContext) bool

// Branch evaluates pred once per call and routes the input to exactly one of
// ifTrue or ifFalse. The selected card receives the incoming state and its
// resulting state is kept.
func Branch[A, B any](pred Predicate[A], ifTrue, ifFalse *Card[A, B]) *Card[A, B] {
	meta := joinMeta("branch", ifTrue.meta, ifFalse.meta)
	meta.Category = domain.CategoryRouting
	sig := ifTrue.sig.Union(ifFalse.sig)

	c := New(meta, sig, func(in A, ctx domain.CardContext, state *domain.CardState) Result[B] {
		if pred(in, ctx) {
			return ifTrue.Process(in, ctx, state)
		}
		return ifFalse.Process(in, ctx, state)
	})
	c.initial = ifTrue.InitialState()
	if c.initial == nil {
		c.initial = ifFalse.InitialState()
	}
	return c
}

func joinMeta(kind string, a, b domain.CardMeta) domain.CardMeta {
	return domain.CardMeta{
		ID:          fmt.Sprintf("%s(%s,%s)", kind, a.ID, b.ID),
		Name:        fmt.Sprintf("%s + %s", a.Name, b.Name),
		Category:    a.Category,
		Description: fmt.Sprintf("%s of %s and %s", kind, a.ID, b.ID),
		SideEffects: a.SideEffects || b.SideEffects,
	}
}

func wrapMeta(kind string, m domain.CardMeta) domain.CardMeta {
	out := m.Clone()
	out.ID = fmt.Sprintf("%s(%s)", kind, m.ID)
	return out
}
