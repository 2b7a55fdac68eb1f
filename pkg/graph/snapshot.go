package graph

import (
	"sync/atomic"
	"time"

	"github.com/aretw0/cardflow/pkg/domain"
)

var snapshotSeq atomic.Uint64

// Snapshot is an independent deep copy of a graph, tagged with a process-wide
// strictly increasing id and the capture time.
type Snapshot struct {
	ID        uint64    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Graph     *Graph    `json:"graph"`
}

// TakeSnapshot captures g. Later edits to values reachable from g's data bags
// do not affect the snapshot.
func TakeSnapshot(g *Graph) Snapshot {
	return Snapshot{
		ID:        snapshotSeq.Add(1),
		Timestamp: time.Now().UTC(),
		Graph:     deepCopy(g),
	}
}

// Restore returns a deep copy of the captured graph.
func Restore(s Snapshot) *Graph {
	if s.Graph == nil {
		return New()
	}
	return deepCopy(s.Graph)
}

// RestoreWith restores s and materializes its cards through resolver. Use it
// for snapshots that went through serialization and lost their card table.
func RestoreWith(s Snapshot, resolver domain.CardResolver) *Graph {
	return Restore(s).Materialize(resolver)
}

func deepCopy(g *Graph) *Graph {
	out := g.clone()
	out.meta = deepCopyMap(g.meta)
	for i, n := range out.nodes {
		out.nodes[i].Data = deepCopyMap(n.Data)
	}
	for i, e := range out.edges {
		out.edges[i].Data = deepCopyMap(e.Data)
	}
	return out
}
