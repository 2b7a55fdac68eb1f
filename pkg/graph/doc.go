// Package graph implements the copy-on-write card graph.
//
// A Graph is an immutable value: AddNode, Connect and every other edit return a
// new Graph and leave the receiver untouched, so concurrent readers holding an
// older value never observe a partial edit. Nodes reference cards by id only;
// materialized cards live in a side table on the graph (see WithCard) or are
// resolved lazily through a domain.CardResolver.
//
// Structural analysis works on ids alone:
//
//	g, _ := graph.New().AddNode(graph.Node{ID: "osc", CardID: "osc"})
//	g, _ = g.AddNode(graph.Node{ID: "out", CardID: "speaker"})
//	g, _ = g.Connect(graph.Edge{Source: "osc", SourcePort: "out", Target: "out", TargetPort: "in"})
//
//	res := graph.Validate(g)       // missing nodes, cycles, connectivity warnings
//	order := graph.TopologicalSort(g) // nil when cyclic
//
// Inspect, Optimize and AutoLayout build on top, and ToJSON / FromJSON move
// graphs in and out of their plain serialized form.
package graph
