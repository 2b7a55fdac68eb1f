package runner

import (
	"log/slog"

	"github.com/aretw0/cardflow/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithResolver configures how cards missing from the graph's side table are found.
func WithResolver(resolver domain.CardResolver) Option {
	return func(r *Runner) {
		r.Resolver = resolver
	}
}

// WithHooks configures lifecycle hooks. With concurrency above 1, step hooks
// are called from several goroutines.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.Hooks = hooks
	}
}

// WithConcurrency runs up to n independent steps at once, one plan level at a
// time. n <= 1 runs steps serially in plan order.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.Concurrency = n
	}
}

// WithMiddleware wraps every step. The first middleware is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Runner) {
		r.Middleware = append(r.Middleware, mw...)
	}
}
