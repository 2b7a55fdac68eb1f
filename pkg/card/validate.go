package card

import (
	"fmt"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Check inspects a value and returns an error describing what is wrong with it, or nil.
type Check[T any] func(T) error

// Validate runs optional input and output checks around c.
// Failures become advisory errors merged after c's own; the input is still processed.
func Validate[A, B any](c *Card[A, B], in Check[A], out Check[B]) *Card[A, B] {
	id := c.meta.ID
	wrapped := New(wrapMeta("validate", c.meta), c.sig, func(input A, ctx domain.CardContext, state *domain.CardState) Result[B] {
		var inErrs, outErrs []string
		if in != nil {
			if err := safeCheck(in, input); err != nil {
				inErrs = []string{fmt.Sprintf("%s: invalid input: %v", id, err)}
			}
		}
		res := c.Process(input, ctx, state)
		if out != nil {
			if err := safeCheck(out, res.Output); err != nil {
				outErrs = []string{fmt.Sprintf("%s: invalid output: %v", id, err)}
			}
		}
		res.Errors = domain.ConcatErrors(res.Errors, inErrs, outErrs)
		return res
	})
	wrapped.initial = c.InitialState()
	return wrapped
}

func safeCheck[T any](check Check[T], v T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()
	return check(v)
}
