package cardflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/cardflow/internal/compiler"
	"github.com/aretw0/cardflow/internal/dto"
	"github.com/aretw0/cardflow/internal/logging"
	mermaid "github.com/aretw0/cardflow/internal/presentation/graph"
	"github.com/aretw0/cardflow/internal/validator"
	loamAdapter "github.com/aretw0/cardflow/pkg/adapters/loam"
	plan "github.com/aretw0/cardflow/pkg/compiler"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/observability"
	"github.com/aretw0/cardflow/pkg/ports"
	"github.com/aretw0/cardflow/pkg/registry"
	"github.com/aretw0/cardflow/pkg/runner"
)

// Engine is the high-level entry point for the cardflow library.
// It owns a card table and wires parsing, validation, compilation and
// execution together. An Engine holds no per-graph state.
type Engine struct {
	cards       *registry.Cards
	resolver    domain.CardResolver
	source      ports.CardSource
	parser      *compiler.Parser
	runner      *runner.Runner
	metrics     *observability.Metrics
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	concurrency int
	middleware  []runner.Middleware
	layoutOpts  []graph.LayoutOption
	trivial     graph.TrivialFunc
}

var _ ports.GraphService = (*Engine)(nil)

// New initializes an Engine. Cards from a CardSource are loaded eagerly.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{cards: registry.NewCards()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}

	if e.source != nil {
		cards, err := e.source.LoadCards(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load cards: %w", err)
		}
		for _, c := range cards {
			if err := e.cards.Register(c); err != nil {
				return nil, err
			}
		}
		e.logger.Debug("cards loaded", "count", len(cards))
	}

	// The engine's own table wins over an injected resolver.
	e.resolver = chain(e.cards, e.resolver)
	e.parser = compiler.NewParser(e.resolver)

	hooks := e.hooks
	if e.metrics != nil {
		hooks = observability.MultiHooks(hooks, e.metrics.Hooks())
	}
	e.runner = runner.New(
		runner.WithLogger(e.logger),
		runner.WithResolver(e.resolver),
		runner.WithHooks(hooks),
		runner.WithConcurrency(e.concurrency),
		runner.WithMiddleware(e.middleware...),
	)
	return e, nil
}

// Open creates an Engine whose cards come from the Loam catalog at path.
func Open(path string, opts ...Option) (*Engine, error) {
	catalog, err := loamAdapter.Open(path)
	if err != nil {
		return nil, err
	}
	return New(append([]Option{WithCardSource(catalog)}, opts...)...)
}

// Cards returns the engine's card table.
func (e *Engine) Cards() *registry.Cards { return e.cards }

// CardIDs lists the ids of the engine's own cards, sorted.
func (e *Engine) CardIDs() []string { return e.cards.IDs() }

// Resolver returns the resolver used for every operation.
func (e *Engine) Resolver() domain.CardResolver { return e.resolver }

// Parse decodes a graph document. format is "json", "yaml" or "hcl".
func (e *Engine) Parse(data []byte, format string) (*graph.Graph, error) {
	f, err := dto.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return e.parser.Parse(data, f)
}

// ParseFile reads a graph document, choosing the format from its extension.
func (e *Engine) ParseFile(path string) (*graph.Graph, error) {
	return e.parser.ParseFile(path)
}

// Validate reports structural errors, plus port and parameter mismatches
// found by inspecting the graph's cards.
func (e *Engine) Validate(g *graph.Graph) domain.ValidationResult {
	res := graph.Validate(g)
	res.Errors = append(res.Errors, graph.Inspect(g, e.resolver).Issues()...)
	res.Valid = len(res.Errors) == 0
	return res
}

// Check returns the combined validation report used by the CLI and adapters.
func (e *Engine) Check(g *graph.Graph, strict bool) validator.Report {
	var opts []validator.Option
	if strict {
		opts = append(opts, validator.Strict())
	}
	return validator.Check(g, e.resolver, opts...)
}

// Compile derives an execution plan. It fails with domain.ErrCycle on cyclic graphs.
func (e *Engine) Compile(g *graph.Graph) (*plan.Plan, error) {
	p := plan.Compile(g)
	if e.metrics != nil {
		e.metrics.ObserveCompile(p != nil)
	}
	if p == nil {
		e.logger.Debug("compile failed", "graph_id", g.ID())
		return nil, fmt.Errorf("cannot compile graph %s: %w", g.ID(), domain.ErrCycle)
	}
	return p, nil
}

// Fold compiles g into a single card.
func (e *Engine) Fold(g *graph.Graph) (domain.Card, error) {
	return plan.Fold(g, e.resolver)
}

// Inspect reports resolved ports and edge checks.
func (e *Engine) Inspect(g *graph.Graph) graph.Inspection {
	return graph.Inspect(g, e.resolver)
}

// Layout assigns layered positions.
func (e *Engine) Layout(g *graph.Graph) *graph.Graph {
	return graph.AutoLayout(g, e.layoutOpts...)
}

// Optimize removes pass-through nodes.
func (e *Engine) Optimize(g *graph.Graph) *graph.Graph {
	var opts []graph.OptimizeOption
	if e.trivial != nil {
		opts = append(opts, graph.WithTrivialFunc(e.trivial))
	}
	return graph.Optimize(g, e.resolver, opts...)
}

// Mermaid renders g as a Mermaid flowchart, marking invalid edges and cyclic nodes.
func (e *Engine) Mermaid(g *graph.Graph) string {
	return mermaid.Inspected(g, e.resolver)
}

// Run compiles g and executes it once.
func (e *Engine) Run(ctx context.Context, g *graph.Graph, req runner.Request) (*runner.Report, error) {
	p, err := e.Compile(g)
	if err != nil {
		return nil, err
	}
	logger := e.logger.With("graph_id", g.ID())
	report, err := e.runner.Run(logging.WithContext(ctx, logger), g, p, req)
	if err != nil {
		logger.Error("run failed", "err", err)
		return report, err
	}
	if errs := report.Errors(); len(errs) > 0 {
		logger.Warn("run finished with card errors", "count", len(errs))
	}
	return report, nil
}

// Watch forwards change notifications of the card source when it supports them.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.source.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, ports.ErrWatchUnsupported
}

// chain resolves through each resolver in turn, skipping nils.
func chain(resolvers ...domain.CardResolver) domain.CardResolver {
	return domain.ResolverFunc(func(cardID string) (domain.Card, bool) {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			if c, ok := r.Resolve(cardID); ok {
				return c, true
			}
		}
		return nil, false
	})
}

// LoadFile parses path with a default Engine. Nodes stay unmaterialized.
func LoadFile(path string) (*graph.Graph, error) {
	e, err := New()
	if err != nil {
		return nil, err
	}
	return e.ParseFile(path)
}
