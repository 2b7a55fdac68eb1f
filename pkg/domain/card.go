package domain

// Card is the type-erased card contract consumed by graphs, the compiler and the runner.
//
// Implementations must be immutable: Process may not mutate the card itself, and
// state is threaded by the caller through the CardState argument and Result.State.
// Process must not panic; failures are reported through Result.Errors.
type Card interface {
	Meta() CardMeta
	Signature() CardSignature
	// InitialState returns the state to use when the caller has none, or nil.
	InitialState() *CardState
	Process(input any, ctx CardContext, state *CardState) Result
}

// CardResolver materializes cards by id. Graphs hold only card ids; anything
// that needs the card itself (inspection, optimization, execution) resolves it
// through a CardResolver.
type CardResolver interface {
	Resolve(cardID string) (Card, bool)
}

// ResolverFunc adapts a function to CardResolver.
type ResolverFunc func(cardID string) (Card, bool)

// Resolve calls f.
func (f ResolverFunc) Resolve(cardID string) (Card, bool) { return f(cardID) }
