package card

import (
	"fmt"

	"github.com/aretw0/cardflow/pkg/domain"
)

// LoopState is the state of a feedback loop: the raw inputs of recent calls,
// oldest first, plus the wrapped card's own state.
type LoopState[A any] struct {
	History []A               `json:"history"`
	Inner   *domain.CardState `json:"inner,omitempty"`
}

// Loop delays the input by delayTicks calls and runs the delayed value through c.
//
// For the first delayTicks calls the input passes straight through. From then on
// the input recorded delayTicks calls ago is processed by c and emitted. The raw
// input, not c's output, is appended to the history, which is trimmed to
// 2*delayTicks entries. A delay below 1 calls c directly.
func Loop[A any](c *Card[A, A], delayTicks int) *Card[A, A] {
	meta := c.Meta()
	meta.ID = fmt.Sprintf("loop(%s,%d)", c.meta.ID, delayTicks)

	if delayTicks < 1 {
		direct := New(meta, c.sig, c.Process)
		direct.initial = c.InitialState()
		return direct
	}

	limit := 2 * delayTicks
	return New(meta, c.sig, func(in A, ctx domain.CardContext, state *domain.CardState) Result[A] {
		var ls LoopState[A]
		if state != nil {
			if v, ok := state.Value.(LoopState[A]); ok {
				ls = v
			}
		}

		var res Result[A]
		if len(ls.History) < delayTicks {
			res.Output = in
		} else {
			delayed := ls.History[len(ls.History)-delayTicks]
			inner := c.Process(delayed, ctx, ls.Inner)
			res.Output = inner.Output
			res.Errors = inner.Errors
			ls.Inner = inner.State
		}

		start := max(0, len(ls.History)+1-limit)
		history := make([]A, 0, len(ls.History)-start+1)
		history = append(history, ls.History[start:]...)
		ls.History = append(history, in)

		res.State = state.Next(ls)
		return res
	}, WithInitialState(LoopState[A]{Inner: c.InitialState()}))
}
