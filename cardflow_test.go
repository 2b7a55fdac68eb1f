package cardflow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/pkg/adapters/memory"
	"github.com/aretw0/cardflow/pkg/card"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/observability"
	"github.com/aretw0/cardflow/pkg/ports"
	"github.com/aretw0/cardflow/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var numberSig = domain.CardSignature{
	Inputs:  []domain.Port{{Name: "in", Type: domain.PortNumber}},
	Outputs: []domain.Port{{Name: "out", Type: domain.PortNumber}},
}

func scale(id string, k float64) domain.Card {
	meta := domain.CardMeta{ID: id, Name: id, Category: domain.CategoryEffects}
	return card.Pure(meta, numberSig, func(x float64, _ domain.CardContext) float64 { return x * k }).Erase()
}

const patch = `
id: patch
nodes:
  - id: osc
    cardId: double
  - id: amp
    cardId: triple
edges:
  - source: osc
    sourcePort: out
    target: amp
    targetPort: in
`

func TestEngine_ParseValidateRun(t *testing.T) {
	eng, err := cardflow.New(cardflow.WithCards(scale("double", 2), scale("triple", 3)))
	require.NoError(t, err)

	g, err := eng.Parse([]byte(patch), "yaml")
	require.NoError(t, err)
	assert.Equal(t, "patch", g.ID())

	res := eng.Validate(g)
	assert.True(t, res.Valid, "%v", res.Errors)

	report, err := eng.Run(context.Background(), g, runner.Request{Input: 2.0})
	require.NoError(t, err)
	assert.Equal(t, 12.0, report.Output)
	assert.Empty(t, report.Errors())
}

func TestEngine_ValidateReportsPortMismatch(t *testing.T) {
	eng, err := cardflow.New(cardflow.WithCards(scale("double", 2), scale("triple", 3)))
	require.NoError(t, err)

	g, err := eng.Parse([]byte(`{
  "id": "bad",
  "nodes": [{"id": "a", "cardId": "double"}, {"id": "b", "cardId": "triple"}],
  "edges": [{"id": "e1", "source": "a", "sourcePort": "out", "target": "b", "targetPort": "gain"}]
}`), "json")
	require.NoError(t, err)

	res := eng.Validate(g)
	assert.False(t, res.Valid)
	assert.True(t, res.HasKind(domain.IssueInvalidPort))
}

func TestEngine_CompileCycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	eng, err := cardflow.New(cardflow.WithMetrics(metrics))
	require.NoError(t, err)

	g, err := eng.Parse([]byte(`
nodes:
  - {id: a, cardId: a}
  - {id: b, cardId: b}
edges:
  - {source: a, sourcePort: out, target: b, targetPort: in}
  - {source: b, sourcePort: out, target: a, targetPort: in}
`), "yaml")
	require.NoError(t, err)

	_, err = eng.Compile(g)
	assert.ErrorIs(t, err, domain.ErrCycle)

	_, err = eng.Run(context.Background(), g, runner.Request{})
	assert.ErrorIs(t, err, domain.ErrCycle)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Compilations.WithLabelValues("cycle")))

	assert.Contains(t, eng.Mermaid(g), "cyclic")
}

func TestEngine_MetricsAndMissingCard(t *testing.T) {
	metrics := observability.NewMetrics(nil)
	eng, err := cardflow.New(
		cardflow.WithCardSource(memory.NewSource(scale("double", 2))),
		cardflow.WithMetrics(metrics),
	)
	require.NoError(t, err)

	g, err := eng.Parse([]byte(patch), "yaml")
	require.NoError(t, err)

	report, err := eng.Run(context.Background(), g, runner.Request{Input: 1.0})
	require.NoError(t, err, "a missing card is advisory")
	assert.Nil(t, report.Output)

	amp, ok := report.Step("amp")
	require.True(t, ok)
	assert.Equal(t, []string{"card not found: triple"}, amp.Errors)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Compilations.WithLabelValues("ok")))
}

func TestEngine_ResolverFallback(t *testing.T) {
	fallback := domain.ResolverFunc(func(id string) (domain.Card, bool) {
		if id == "triple" {
			return scale("triple", 3), true
		}
		return nil, false
	})
	eng, err := cardflow.New(cardflow.WithCards(scale("double", 2)), cardflow.WithResolver(fallback))
	require.NoError(t, err)

	_, ok := eng.Resolver().Resolve("triple")
	assert.True(t, ok)
	_, ok = eng.Resolver().Resolve("missing")
	assert.False(t, ok)
}

func TestEngine_LayoutOptimizeFold(t *testing.T) {
	eng, err := cardflow.New(cardflow.WithCards(scale("double", 2), scale("triple", 3)))
	require.NoError(t, err)

	g, err := eng.Parse([]byte(patch), "yaml")
	require.NoError(t, err)

	laid := eng.Layout(g)
	osc, _ := laid.Node("osc")
	amp, _ := laid.Node("amp")
	assert.Less(t, osc.Position.X, amp.Position.X)

	assert.Equal(t, 2, eng.Optimize(g).NodeCount(), "scaling cards are not pass-through")

	folded, err := eng.Fold(g)
	require.NoError(t, err)
	res := folded.Process(1.0, domain.CardContext{}, folded.InitialState())
	assert.Equal(t, 6.0, res.Output)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(patch), 0644))

	g, err := cardflow.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"osc", "amp"}, g.NodeIDs())

	_, err = cardflow.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEngine_WatchUnsupported(t *testing.T) {
	eng, err := cardflow.New()
	require.NoError(t, err)
	_, err = eng.Watch(context.Background())
	assert.ErrorIs(t, err, ports.ErrWatchUnsupported)
}
