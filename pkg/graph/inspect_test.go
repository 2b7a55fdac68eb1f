package graph

import (
	"testing"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	osc := newFake("osc", "", domain.PortAudio)
	filter := newFake("filter", domain.PortAudio, domain.PortAudio)
	filter.sig.Parameters = []domain.Parameter{{Name: "cutoff", Type: domain.ParamNumber, Default: 1000.0, Max: domain.Float(20000)}}
	seq := newFake("seq", "", domain.PortNotes)

	g := build(t, []string{"osc", "filter", "seq", "external"})
	var err error
	g, err = g.UpdateNodeData("filter", map[string]any{ParamsKey: map[string]any{"cutoff": 50000.0}})
	require.NoError(t, err)
	for _, e := range []Edge{
		{ID: "ok", Source: "osc", SourcePort: "out", Target: "filter", TargetPort: "in"},
		{ID: "bad-port", Source: "osc", SourcePort: "left", Target: "filter", TargetPort: "in"},
		{ID: "bad-type", Source: "seq", SourcePort: "out", Target: "filter", TargetPort: "in"},
		{ID: "unchecked", Source: "filter", SourcePort: "out", Target: "external", TargetPort: "in"},
	} {
		g, err = g.Connect(e)
		require.NoError(t, err)
	}

	in := Inspect(g, resolverOf(osc, filter, seq))

	n, ok := in.Node("filter")
	require.True(t, ok)
	assert.True(t, n.Resolved)
	assert.Equal(t, []string{"in"}, n.Inputs)
	assert.Equal(t, []string{"ok", "bad-port", "bad-type"}, n.IncomingEdges)
	assert.Equal(t, 4, n.Degree)
	require.Len(t, n.ParamErrors, 1)

	ext, _ := in.Node("external")
	assert.False(t, ext.Resolved)
	assert.Empty(t, ext.Inputs)

	e, _ := in.Edge("ok")
	assert.True(t, e.IsValid)
	assert.True(t, e.Checked)

	e, _ = in.Edge("unchecked")
	assert.True(t, e.IsValid)
	assert.False(t, e.Checked)

	invalid := in.InvalidEdges()
	require.Len(t, invalid, 2)
	assert.Equal(t, "bad-port", invalid[0].EdgeID)
	assert.Contains(t, invalid[0].Reason, `no output port "left"`)
	assert.Equal(t, "bad-type", invalid[1].EdgeID)

	assert.Len(t, in.Issues(), 3)
}

func TestCompatible(t *testing.T) {
	assert.True(t, Compatible(domain.PortAudio, domain.PortAudio))
	assert.True(t, Compatible(domain.PortAny, domain.PortMIDI))
	assert.True(t, Compatible(domain.PortControl, domain.PortAny))
	assert.False(t, Compatible(domain.PortGate, domain.PortTrigger))
}

func TestAutoLayout(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d"},
		[2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "d"})

	out := AutoLayout(g)
	pos := map[string]Position{}
	for _, n := range out.Nodes() {
		pos[n.ID] = n.Position
	}
	assert.Equal(t, Position{X: 0, Y: 0}, pos["a"])
	assert.Equal(t, Position{X: 250, Y: 0}, pos["b"])
	assert.Equal(t, Position{X: 250, Y: 120}, pos["c"])
	assert.Equal(t, Position{X: 500, Y: 0}, pos["d"])

	n, _ := g.Node("d")
	assert.Equal(t, Position{}, n.Position, "input graph untouched")

	custom := AutoLayout(g, WithSpacing(100, 10), WithOrigin(Position{X: 5, Y: 5}))
	n, _ = custom.Node("d")
	assert.Equal(t, Position{X: 205, Y: 5}, n.Position)
}

func TestAutoLayout_LongestPath(t *testing.T) {
	g := build(t, []string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "c"})
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2}, Layers(g))
}

func TestAutoLayout_Cyclic(t *testing.T) {
	g := build(t, []string{"a", "b"}, [2]string{"a", "b"}, [2]string{"b", "a"})
	assert.Same(t, g, AutoLayout(g))
	assert.Nil(t, Layers(g))
}

func TestOptimize(t *testing.T) {
	src := newFake("src", "", domain.PortAudio)
	thru := newFake("thru", domain.PortAudio, domain.PortAudio)
	meter := newFake("meter", domain.PortAudio, domain.PortAudio)
	meter.meta.SideEffects = true
	sink := newFake("sink", domain.PortAudio, "")
	res := resolverOf(src, thru, meter, sink)

	g := New()
	var err error
	for _, n := range []Node{{ID: "src", CardID: "src"}, {ID: "t1", CardID: "thru"}, {ID: "t2", CardID: "thru"}, {ID: "m", CardID: "meter"}, {ID: "sink", CardID: "sink"}} {
		g, err = g.AddNode(n)
		require.NoError(t, err)
	}
	for _, e := range []Edge{
		{Source: "src", SourcePort: "out", Target: "t1", TargetPort: "in"},
		{Source: "t1", SourcePort: "out", Target: "t2", TargetPort: "in"},
		{Source: "t2", SourcePort: "out", Target: "m", TargetPort: "in"},
		{Source: "m", SourcePort: "out", Target: "sink", TargetPort: "in"},
	} {
		g, err = g.Connect(e)
		require.NoError(t, err)
	}

	out := Optimize(g, res)
	assert.Equal(t, []string{"src", "m", "sink"}, out.NodeIDs())
	require.Equal(t, 2, out.EdgeCount())
	assert.Equal(t, []string{"m"}, out.Successors("src"))
	assert.Equal(t, "out", out.Outgoing("src")[0].SourcePort)
	assert.Equal(t, "in", out.Outgoing("src")[0].TargetPort)
	assert.Equal(t, 5, g.NodeCount())

	everything := Optimize(g, res, WithTrivialFunc(func(n Node, _ domain.Card) bool { return n.ID != "src" && n.ID != "sink" }))
	assert.Equal(t, []string{"src", "sink"}, everything.NodeIDs())

	assert.Equal(t, g.NodeIDs(), Optimize(g, nil).NodeIDs(), "unresolved cards are kept")
}

func TestOptimize_FanOutKept(t *testing.T) {
	thru := newFake("thru", domain.PortAudio, domain.PortAudio)
	g := build(t, []string{"a", "thru", "b", "c"}, [2]string{"a", "thru"}, [2]string{"thru", "b"}, [2]string{"thru", "c"})
	assert.Equal(t, 4, Optimize(g, resolverOf(thru)).NodeCount())
}
