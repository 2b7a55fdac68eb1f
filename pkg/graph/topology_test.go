package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertTopological(t *testing.T, g *Graph, order []string) {
	t.Helper()
	require.Len(t, order, g.NodeCount())
	pos := map[string]int{}
	for i, id := range order {
		pos[id] = i
	}
	for _, e := range g.Edges() {
		assert.Less(t, pos[e.Source], pos[e.Target], "edge %s", e.ID)
	}
}

func TestTopologicalSort(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges [][2]string
	}{
		{"chain", []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}}},
		{"reverse insertion", []string{"C", "B", "A"}, [][2]string{{"A", "B"}, {"B", "C"}}},
		{"diamond", []string{"s", "l", "r", "t"}, [][2]string{{"s", "l"}, {"s", "r"}, {"l", "t"}, {"r", "t"}}},
		{"forest", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"c", "d"}}},
		{"no edges", []string{"x", "y"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.nodes, tt.edges...)
			assertTopological(t, g, TopologicalSort(g))
		})
	}
}

func TestTopologicalSort_Deterministic(t *testing.T) {
	g := build(t, []string{"b", "a", "c"}, [2]string{"a", "c"})
	assert.Equal(t, []string{"b", "a", "c"}, TopologicalSort(g))
	assert.Equal(t, []string{}, TopologicalSort(New()))
}

func TestTopologicalSort_IgnoresDanglingEdges(t *testing.T) {
	g := build(t, []string{"a", "b"}, [2]string{"a", "b"})
	g, err := g.link(Edge{Source: "ghost", Target: "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, TopologicalSort(g))
}

func TestFindPath(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d", "e"},
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"},
		[2]string{"a", "d"}, [2]string{"d", "e"})

	assert.Equal(t, []string{"a", "d", "e"}, FindPath(g, "a", "e"))
	assert.Equal(t, []string{"b", "c", "d"}, FindPath(g, "b", "d"))
	assert.Equal(t, []string{"c"}, FindPath(g, "c", "c"))
	assert.Nil(t, FindPath(g, "e", "a"))
	assert.Nil(t, FindPath(g, "a", "zz"))
}

func TestFindPath_Cyclic(t *testing.T) {
	g := build(t, []string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"b", "a"}, [2]string{"b", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, FindPath(g, "a", "c"))
}

func TestComponents(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d"}, [2]string{"b", "a"}, [2]string{"c", "d"})
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, Components(g))
}
