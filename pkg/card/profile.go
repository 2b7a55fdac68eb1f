package card

import (
	"time"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Profile attaches wall-clock timing to every result of c.
// Output, state and errors are passed through untouched.
func Profile[A, B any](c *Card[A, B]) *Card[A, B] {
	out := New(wrapMeta("profile", c.meta), c.sig, func(in A, ctx domain.CardContext, state *domain.CardState) Result[B] {
		start := time.Now()
		res := c.Process(in, ctx, state)
		res.Timing = &domain.Timing{Start: start, Duration: time.Since(start)}
		return res
	})
	out.initial = c.InitialState()
	return out
}
