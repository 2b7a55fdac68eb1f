package card

import (
	"fmt"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Result is the typed outcome of a process call.
type Result[B any] struct {
	Output B
	State  *domain.CardState
	Errors []string
	Timing *domain.Timing
}

// Erase converts the result to its untyped form.
func (r Result[B]) Erase() domain.Result {
	return domain.Result{Output: r.Output, State: r.State, Errors: r.Errors, Timing: r.Timing}
}

// ProcessFunc is the body of a card. state is the caller's state, or the card's
// initial state when the caller supplied none.
type ProcessFunc[A, B any] func(input A, ctx domain.CardContext, state *domain.CardState) Result[B]

// Card is an immutable typed transformation unit.
type Card[A, B any] struct {
	meta    domain.CardMeta
	sig     domain.CardSignature
	initial *domain.CardState
	fn      ProcessFunc[A, B]
}

// Option configures a card at construction time.
type Option func(*options)

type options struct {
	initial    any
	hasInitial bool
}

// WithInitialState sets the value wrapped as the card's version 0 state.
func WithInitialState(value any) Option {
	return func(o *options) {
		o.initial = value
		o.hasInitial = true
	}
}

// New wraps a process function as a card.
func New[A, B any](meta domain.CardMeta, sig domain.CardSignature, fn ProcessFunc[A, B], opts ...Option) *Card[A, B] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	c := &Card[A, B]{
		meta: meta.Clone(),
		sig:  sig.Clone(),
		fn:   fn,
	}
	if o.hasInitial {
		c.initial = domain.NewCardState(o.initial)
	}
	return c
}

// Meta returns a copy of the card metadata.
func (c *Card[A, B]) Meta() domain.CardMeta { return c.meta.Clone() }

// Signature returns a copy of the card signature.
func (c *Card[A, B]) Signature() domain.CardSignature { return c.sig.Clone() }

// ID is shorthand for Meta().ID.
func (c *Card[A, B]) ID() string { return c.meta.ID }

// InitialState returns the card's version 0 state, or nil for stateless cards.
func (c *Card[A, B]) InitialState() *domain.CardState {
	if c.initial == nil {
		return nil
	}
	s := *c.initial
	return &s
}

// Process runs the card. A nil state falls back to the initial state.
// A panicking process function is reported as an advisory error.
func (c *Card[A, B]) Process(input A, ctx domain.CardContext, state *domain.CardState) (res Result[B]) {
	if state == nil {
		state = c.InitialState()
	}
	defer func() {
		if r := recover(); r != nil {
			res = Result[B]{
				State:  state,
				Errors: []string{fmt.Sprintf("%s: panic: %v", c.meta.ID, r)},
			}
		}
	}()
	return c.fn(input, ctx, state)
}

// Erase returns the card as a domain.Card.
func (c *Card[A, B]) Erase() domain.Card {
	return erased[A, B]{c: c}
}

type erased[A, B any] struct {
	c *Card[A, B]
}

func (e erased[A, B]) Meta() domain.CardMeta           { return e.c.Meta() }
func (e erased[A, B]) Signature() domain.CardSignature { return e.c.Signature() }
func (e erased[A, B]) InitialState() *domain.CardState { return e.c.InitialState() }

func (e erased[A, B]) Process(input any, ctx domain.CardContext, state *domain.CardState) domain.Result {
	var in A
	if input != nil {
		v, ok := input.(A)
		if !ok {
			return domain.Result{
				State:  state,
				Errors: []string{fmt.Sprintf("%s: expected input %T, got %T", e.c.meta.ID, in, input)},
			}
		}
		in = v
	}
	return e.c.Process(in, ctx, state).Erase()
}

// Unwrap returns the typed card behind an erased one.
func Unwrap[A, B any](c domain.Card) (*Card[A, B], bool) {
	e, ok := c.(erased[A, B])
	if !ok {
		return nil, false
	}
	return e.c, true
}

// Pure builds a stateless card from a plain function.
func Pure[A, B any](meta domain.CardMeta, sig domain.CardSignature, fn func(A, domain.CardContext) B) *Card[A, B] {
	return New(meta, sig, func(in A, ctx domain.CardContext, _ *domain.CardState) Result[B] {
		return Result[B]{Output: fn(in, ctx)}
	})
}

// Passthrough builds a card that returns its input unchanged. Catalogs use it to
// stand in for cards known only by signature.
func Passthrough(meta domain.CardMeta, sig domain.CardSignature) *Card[any, any] {
	return Pure(meta, sig, func(in any, _ domain.CardContext) any { return in })
}

// Stateful builds a card whose function receives and returns a plain state value.
// The CardState wrapper is handled here: a missing or mistyped state falls back to
// initial, and the version is bumped on every call.
func Stateful[A, B, S any](meta domain.CardMeta, sig domain.CardSignature, initial S, fn func(A, domain.CardContext, S) (B, S)) *Card[A, B] {
	return New(meta, sig, func(in A, ctx domain.CardContext, state *domain.CardState) Result[B] {
		cur := initial
		if state != nil {
			if v, ok := state.Value.(S); ok {
				cur = v
			}
		}
		out, next := fn(in, ctx, cur)
		return Result[B]{Output: out, State: state.Next(next)}
	}, WithInitialState(initial))
}
