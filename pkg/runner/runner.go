package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/aretw0/cardflow/internal/logging"
	"github.com/aretw0/cardflow/pkg/compiler"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
	"golang.org/x/sync/errgroup"
)

// ErrPlanMismatch is returned when a plan was not compiled from the graph it is run against.
var ErrPlanMismatch = errors.New("plan does not match graph")

// Runner executes plans against graphs.
// A Runner holds no per-run state and may be shared between goroutines.
type Runner struct {
	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Resolver finds cards missing from the graph's side table. May be nil.
	Resolver domain.CardResolver

	Hooks       domain.LifecycleHooks
	Concurrency int
	Middleware  []Middleware
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run executes plan against g. A nil plan is compiled from g.
//
// A node whose card cannot be resolved is recorded with a "card not found"
// error and a nil output; the run goes on. Cancellation of ctx is checked
// between steps and returns the partial report together with the context error.
func (r *Runner) Run(ctx context.Context, g *graph.Graph, plan *compiler.Plan, req Request) (*Report, error) {
	if plan == nil {
		plan = compiler.Compile(g)
		if plan == nil {
			return nil, fmt.Errorf("cannot run graph %s: %w", g.ID(), domain.ErrCycle)
		}
	}
	if err := checkPlan(g, plan); err != nil {
		return nil, err
	}

	start := time.Now()
	r.Logger.Debug("run starting", "graph_id", g.ID(), "steps", len(plan.Steps))
	if r.Hooks.OnRunStart != nil {
		r.Hooks.OnRunStart(ctx, &domain.RunEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventRunStart, GraphID: g.ID()},
			Steps:     len(plan.Steps),
		})
	}

	exec := &execution{
		runner:  r,
		graph:   g,
		plan:    plan,
		req:     req,
		step:    Chain(r.Middleware...)(invoke),
		outputs: make(map[string]any, len(plan.Steps)),
		reports: make([]*StepReport, len(plan.Steps)),
	}
	var err error
	if r.Concurrency > 1 {
		err = exec.runLevels(ctx, r.Concurrency)
	} else {
		err = exec.runSerial(ctx)
	}

	report := exec.report(time.Since(start))
	if err != nil {
		err = fmt.Errorf("run interrupted: %w", err)
		r.Logger.Debug("run interrupted", "graph_id", g.ID(), "err", err)
	}
	if r.Hooks.OnRunEnd != nil {
		r.Hooks.OnRunEnd(ctx, &domain.RunEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRunEnd, GraphID: g.ID()},
			Steps:     len(report.Steps),
			Duration:  report.Duration,
			Err:       err,
		})
	}
	return report, err
}

func checkPlan(g *graph.Graph, plan *compiler.Plan) error {
	if plan.GraphID != "" && plan.GraphID != g.ID() {
		return fmt.Errorf("%w: plan for %s, graph %s", ErrPlanMismatch, plan.GraphID, g.ID())
	}
	for _, s := range plan.Steps {
		if !g.HasNode(s.NodeID) {
			return fmt.Errorf("%w: %w: %s", ErrPlanMismatch, domain.ErrNodeNotFound, s.NodeID)
		}
	}
	return nil
}

func invoke(_ context.Context, call StepCall) domain.Result {
	return call.Card.Process(call.Input, call.Context, call.State)
}

type execution struct {
	runner  *Runner
	graph   *graph.Graph
	plan    *compiler.Plan
	req     Request
	step    StepFunc
	outputs map[string]any
	reports []*StepReport
}

func (e *execution) runSerial(ctx context.Context) error {
	for i, s := range e.plan.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		rep := e.runStep(ctx, s, GatherInput(s, e.req.Input, e.outputs))
		e.outputs[s.NodeID] = rep.Output
		e.reports[i] = &rep
	}
	return nil
}

func (e *execution) runLevels(ctx context.Context, limit int) error {
	index := make(map[string]int, len(e.plan.Steps))
	for i, s := range e.plan.Steps {
		index[s.NodeID] = i
	}

	for _, level := range e.plan.Levels() {
		if err := ctx.Err(); err != nil {
			return err
		}
		results := make([]StepReport, len(level))
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(limit)
		for i, id := range level {
			s := e.plan.Steps[index[id]]
			input := GatherInput(s, e.req.Input, e.outputs)
			eg.Go(func() error {
				results[i] = e.runStep(egCtx, s, input)
				return nil
			})
		}
		_ = eg.Wait()

		for i, id := range level {
			e.outputs[id] = results[i].Output
			e.reports[index[id]] = &results[i]
		}
	}
	return nil
}

func (e *execution) runStep(ctx context.Context, s compiler.Step, input any) StepReport {
	node, _ := e.graph.Node(s.NodeID)
	rep := StepReport{NodeID: s.NodeID, CardID: node.CardID}

	c, ok := e.graph.CardFor(s.NodeID, e.runner.Resolver)
	if !ok {
		rep.Errors = []string{fmt.Sprintf("%s: %s", domain.ErrCardNotFound, node.CardID)}
		rep.State = e.req.States[s.NodeID]
		e.runner.Logger.Debug("card not found", "node_id", s.NodeID, "card_id", node.CardID)
		return rep
	}

	state, ok := e.req.States[s.NodeID]
	if !ok {
		state = c.InitialState()
	}

	hooks := e.runner.Hooks
	if hooks.OnStepStart != nil {
		hooks.OnStepStart(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepStart, GraphID: e.graph.ID()},
			NodeID:    s.NodeID,
			CardID:    node.CardID,
		})
	}

	start := time.Now()
	res := e.step(ctx, StepCall{NodeID: s.NodeID, Card: c, Input: input, Context: e.req.Context, State: state})
	rep.Duration = time.Since(start)
	rep.Output = res.Output
	rep.State = res.State
	rep.Errors = res.Errors

	if hooks.OnStepEnd != nil {
		hooks.OnStepEnd(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepEnd, GraphID: e.graph.ID()},
			NodeID:    s.NodeID,
			CardID:    node.CardID,
			Duration:  rep.Duration,
			Errors:    rep.Errors,
		})
	}
	return rep
}

func (e *execution) report(d time.Duration) *Report {
	rep := &Report{
		GraphID:  e.graph.ID(),
		Outputs:  e.outputs,
		States:   maps.Clone(e.req.States),
		Steps:    make([]StepReport, 0, len(e.reports)),
		Duration: d,
	}
	if rep.States == nil {
		rep.States = States{}
	}
	for _, s := range e.reports {
		if s == nil {
			continue
		}
		rep.Steps = append(rep.Steps, *s)
		if s.State != nil {
			rep.States[s.NodeID] = s.State
		}
	}
	rep.Output = e.plan.Collect(e.outputs)
	return rep
}

// GatherInput is compiler.GatherInput, re-exported for middleware authors.
func GatherInput(step compiler.Step, runInput any, outputs map[string]any) any {
	return compiler.GatherInput(step, runInput, outputs)
}

// FanIn is the input of a node with several dependencies.
type FanIn = compiler.FanIn
