package graph

// adjacency lists successors per node following edge insertion order.
// Edges with an endpoint outside the graph are skipped.
func (g *Graph) adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.nodes))
	for _, e := range g.edges {
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}

// TopologicalSort orders the nodes so that every edge points forward, using
// Kahn's algorithm. Ties are broken by node insertion order.
// It returns nil exactly when the graph has a cycle.
func TopologicalSort(g *Graph) []string {
	adj := g.adjacency()
	inDegree := make(map[string]int, len(g.nodes))
	for _, targets := range adj {
		for _, t := range targets {
			inDegree[t]++
		}
	}

	queue := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, t := range adj[id] {
			inDegree[t]--
			if inDegree[t] == 0 {
				queue = append(queue, t)
			}
		}
	}

	if len(order) < len(g.nodes) {
		return nil
	}
	return order
}

// FindPath returns the shortest path by edge count from one node to another,
// both ends included, or nil when to is unreachable. A path from a node to
// itself is that single node.
func FindPath(g *Graph, from, to string) []string {
	if !g.HasNode(from) || !g.HasNode(to) {
		return nil
	}
	if from == to {
		return []string{from}
	}

	adj := g.adjacency()
	parent := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj[id] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = id
			if next == to {
				return unwind(parent, from, to)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func unwind(parent map[string]string, from, to string) []string {
	var path []string
	for at := to; ; at = parent[at] {
		path = append(path, at)
		if at == from {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Components splits the graph into weakly connected components, ignoring edge
// direction. Components and their members follow node insertion order.
func Components(g *Graph) [][]string {
	neighbours := make(map[string][]string, len(g.nodes))
	for src, targets := range g.adjacency() {
		for _, t := range targets {
			neighbours[src] = append(neighbours[src], t)
			neighbours[t] = append(neighbours[t], src)
		}
	}

	seen := make(map[string]bool, len(g.nodes))
	var out [][]string
	for _, n := range g.nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		members := map[string]bool{n.ID: true}
		stack := []string{n.ID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nb := range neighbours[id] {
				if !seen[nb] {
					seen[nb] = true
					members[nb] = true
					stack = append(stack, nb)
				}
			}
		}
		comp := make([]string, 0, len(members))
		for _, m := range g.nodes {
			if members[m.ID] {
				comp = append(comp, m.ID)
			}
		}
		out = append(out, comp)
	}
	return out
}
