package card

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Pending is the unawaited output of an async card.
// Composition never awaits it: callers must Await before feeding a value downstream.
type Pending[B any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once

	value B
	err   error
}

// Await blocks until the value is ready or ctx is done.
func (p *Pending[B]) Await(ctx context.Context) (B, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero B
		return zero, ctx.Err()
	}
}

// Ready reports whether the value has been produced.
func (p *Pending[B]) Ready() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Cancel asks the running function to stop. It is safe to call more than once.
func (p *Pending[B]) Cancel() {
	p.once.Do(p.cancel)
}

// Resolved returns a pending value that is already complete.
func Resolved[B any](value B, err error) *Pending[B] {
	p := &Pending[B]{done: make(chan struct{}), cancel: func() {}, value: value, err: err}
	close(p.done)
	return p
}

// AsyncFunc is the body of an async card. ctx is cancelled by Pending.Cancel.
type AsyncFunc[A, B any] func(ctx context.Context, input A, cctx domain.CardContext) (B, error)

// Async builds a card whose output is produced in the background.
// Process returns immediately with a Pending value.
func Async[A, B any](meta domain.CardMeta, sig domain.CardSignature, fn AsyncFunc[A, B]) *Card[A, *Pending[B]] {
	return New(meta, sig, func(in A, cctx domain.CardContext, _ *domain.CardState) Result[*Pending[B]] {
		ctx, cancel := context.WithCancel(context.Background())
		p := &Pending[B]{done: make(chan struct{}), cancel: cancel}
		go func() {
			defer close(p.done)
			defer cancel()
			defer func() {
				if r := recover(); r != nil {
					p.err = fmt.Errorf("%s: panic: %v", meta.ID, r)
				}
			}()
			p.value, p.err = fn(ctx, in, cctx)
		}()
		return Result[*Pending[B]]{Output: p}
	})
}

// Await converts an async card back into a synchronous one by blocking on the
// pending value. A failed or cancelled value is reported as an advisory error.
func Await[A, B any](ctx context.Context, c *Card[A, *Pending[B]]) *Card[A, B] {
	meta := wrapMeta("await", c.meta)
	return New(meta, c.sig, func(in A, cctx domain.CardContext, state *domain.CardState) Result[B] {
		res := c.Process(in, cctx, state)
		out := Result[B]{State: res.State, Errors: res.Errors, Timing: res.Timing}
		if res.Output == nil {
			return out
		}
		v, err := res.Output.Await(ctx)
		if err != nil {
			out.Errors = domain.ConcatErrors(out.Errors, []string{c.meta.ID + ": " + err.Error()})
			return out
		}
		out.Output = v
		return out
	})
}
