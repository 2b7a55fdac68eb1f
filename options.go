package cardflow

import (
	"log/slog"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/observability"
	"github.com/aretw0/cardflow/pkg/ports"
	"github.com/aretw0/cardflow/pkg/runner"
)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCards registers cards in the engine's table. It panics on duplicates,
// like registry.Cards.MustRegister.
func WithCards(cards ...domain.Card) Option {
	return func(e *Engine) {
		e.cards.MustRegister(cards...)
	}
}

// WithResolver adds a fallback resolver consulted after the engine's table.
func WithResolver(resolver domain.CardResolver) Option {
	return func(e *Engine) {
		e.resolver = resolver
	}
}

// WithCardSource loads cards from src when the engine is created.
func WithCardSource(src ports.CardSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithMetrics records runs and compilations into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithConcurrency executes independent plan levels with up to n workers.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithRunMiddleware wraps every card invocation.
func WithRunMiddleware(mw ...runner.Middleware) Option {
	return func(e *Engine) {
		e.middleware = append(e.middleware, mw...)
	}
}

// WithLayout configures Layout.
func WithLayout(opts ...graph.LayoutOption) Option {
	return func(e *Engine) {
		e.layoutOpts = append(e.layoutOpts, opts...)
	}
}

// WithTrivialFunc overrides which nodes Optimize may bypass.
func WithTrivialFunc(fn graph.TrivialFunc) Option {
	return func(e *Engine) {
		e.trivial = fn
	}
}
