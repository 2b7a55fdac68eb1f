// Package card provides typed cards and the combinators that compose them.
//
// A Card[A, B] turns an input of type A into an output of type B under a
// domain.CardContext, optionally threading a domain.CardState supplied by the
// caller. Cards are immutable once built: every combinator returns a new card
// that references, but never mutates, its parts.
//
//	gain := card.Pure(gainMeta, gainSig, func(x float64, _ domain.CardContext) float64 { return x * 2 })
//	clip := card.Pure(clipMeta, clipSig, clipFn)
//	chain := card.Series(gain, clip)
//	res := chain.Process(0.7, ctx, nil)
//
// Graphs, the compiler and the runner work with the erased domain.Card;
// use Erase to cross that boundary.
package card
