package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/cardflow/pkg/domain"
)

// StepCall is everything a step needs to run a card.
type StepCall struct {
	NodeID  string
	Card    domain.Card
	Input   any
	Context domain.CardContext
	State   *domain.CardState
}

// StepFunc runs one step.
type StepFunc func(ctx context.Context, call StepCall) domain.Result

// Middleware intercepts step execution.
type Middleware func(next StepFunc) StepFunc

// Chain composes middleware so that the first one is the outermost.
func Chain(mw ...Middleware) Middleware {
	return func(next StepFunc) StepFunc {
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		return next
	}
}

// RecoverMiddleware turns a panicking card into an advisory error.
// Cards built with package card already do this; third-party domain.Card
// implementations may not.
func RecoverMiddleware() Middleware {
	return func(next StepFunc) StepFunc {
		return func(ctx context.Context, call StepCall) (res domain.Result) {
			defer func() {
				if r := recover(); r != nil {
					res = domain.Result{
						State:  call.State,
						Errors: []string{fmt.Sprintf("%s: panic: %v", call.Card.Meta().ID, r)},
					}
				}
			}()
			return next(ctx, call)
		}
	}
}

// SkipMiddleware bypasses the nodes for which skip returns true, passing their
// input through unchanged and keeping their state.
func SkipMiddleware(skip func(nodeID string) bool) Middleware {
	return func(next StepFunc) StepFunc {
		return func(ctx context.Context, call StepCall) domain.Result {
			if skip(call.NodeID) {
				return domain.Result{Output: call.Input, State: call.State}
			}
			return next(ctx, call)
		}
	}
}

// LoggingMiddleware logs every advisory error a card reports.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next StepFunc) StepFunc {
		return func(ctx context.Context, call StepCall) domain.Result {
			res := next(ctx, call)
			for _, e := range res.Errors {
				logger.WarnContext(ctx, "card reported error",
					"node_id", call.NodeID,
					"card_id", call.Card.Meta().ID,
					"err", e,
				)
			}
			return res
		}
	}
}
