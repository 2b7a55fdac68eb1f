package graph

// Default spacing used by AutoLayout, in canvas pixels.
const (
	DefaultLayerSpacing = 250
	DefaultNodeSpacing  = 120
)

// LayoutOption configures AutoLayout.
type LayoutOption func(*layoutConfig)

type layoutConfig struct {
	layerSpacing float64
	nodeSpacing  float64
	origin       Position
}

// WithSpacing sets the horizontal distance between layers and the vertical
// distance between nodes of the same layer.
func WithSpacing(layer, node float64) LayoutOption {
	return func(c *layoutConfig) {
		c.layerSpacing = layer
		c.nodeSpacing = node
	}
}

// WithOrigin offsets every position by origin.
func WithOrigin(origin Position) LayoutOption {
	return func(c *layoutConfig) { c.origin = origin }
}

// Layers assigns every node its layer: roots are 0, any other node sits one
// past its deepest predecessor. Nil when the graph is cyclic.
func Layers(g *Graph) map[string]int {
	order := TopologicalSort(g)
	if order == nil {
		return nil
	}
	adj := g.adjacency()
	layer := make(map[string]int, len(order))
	for _, id := range order {
		for _, next := range adj[id] {
			if l := layer[id] + 1; l > layer[next] {
				layer[next] = l
			}
		}
	}
	return layer
}

// AutoLayout places nodes in columns by layer, stacking the nodes of a layer
// top to bottom in topological order. A cyclic graph is returned unchanged.
func AutoLayout(g *Graph, opts ...LayoutOption) *Graph {
	cfg := layoutConfig{layerSpacing: DefaultLayerSpacing, nodeSpacing: DefaultNodeSpacing}
	for _, opt := range opts {
		opt(&cfg)
	}

	order := TopologicalSort(g)
	if order == nil {
		return g
	}
	layer := Layers(g)

	out := g.clone()
	rows := map[int]int{}
	for _, id := range order {
		l := layer[id]
		i := out.nodeIndex[id]
		out.nodes[i].Position = Position{
			X: cfg.origin.X + float64(l)*cfg.layerSpacing,
			Y: cfg.origin.Y + float64(rows[l])*cfg.nodeSpacing,
		}
		rows[l]++
	}
	return out
}
