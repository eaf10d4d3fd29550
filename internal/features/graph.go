package features

import (
	"github.com/standardbeagle/valknut-go/internal/types"
)

// GraphFeatures holds the per-node graph metrics fixed by the Graph
// feature schema. Computed over a whole types.DependencyGraph rather than
// per-AST-node, since fan-in/fan-out/cycle membership are properties of a
// node's position in the import graph, not of any single syntax node.
type GraphFeatures struct {
	FanIn               float64
	FanOut              float64
	InCycle             float64
	BetweennessApprox   float64
	ClosenessCentrality float64
}

// graphIndex mirrors the teacher's forward/reverse adjacency-index
// pattern in UniversalSymbolGraph.updateIndexes: build both directions
// once, then every per-node query is an O(1) map lookup instead of an
// O(E) scan.
type graphIndex struct {
	forward map[string][]string
	reverse map[string][]string
	nodes   []string
}

func buildIndex(g *types.DependencyGraph) *graphIndex {
	idx := &graphIndex{
		forward: make(map[string][]string, len(g.Nodes)),
		reverse: make(map[string][]string, len(g.Nodes)),
	}
	for id := range g.Nodes {
		idx.nodes = append(idx.nodes, id)
		if _, ok := idx.forward[id]; !ok {
			idx.forward[id] = nil
		}
		if _, ok := idx.reverse[id]; !ok {
			idx.reverse[id] = nil
		}
	}
	for _, e := range g.Edges {
		idx.forward[e.From] = append(idx.forward[e.From], e.To)
		idx.reverse[e.To] = append(idx.reverse[e.To], e.From)
	}
	return idx
}

// ComputeGraphFeatures returns one GraphFeatures per node in g.
func ComputeGraphFeatures(g *types.DependencyGraph) map[string]GraphFeatures {
	idx := buildIndex(g)
	cyclic := nodesInCycle(idx)
	closeness := closenessApprox(idx)
	betweenness := betweennessApprox(idx)

	out := make(map[string]GraphFeatures, len(idx.nodes))
	for _, id := range idx.nodes {
		inCycle := 0.0
		if cyclic[id] {
			inCycle = 1.0
		}
		out[id] = GraphFeatures{
			FanIn:               float64(len(idx.reverse[id])),
			FanOut:              float64(len(idx.forward[id])),
			InCycle:             inCycle,
			BetweennessApprox:   betweenness[id],
			ClosenessCentrality: closeness[id],
		}
	}
	return out
}

// nodesInCycle finds every node reachable from itself via a forward walk,
// using plain DFS with a recursion stack (Tarjan-lite: we only need
// membership, not full SCC partition).
func nodesInCycle(idx *graphIndex) map[string]bool {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(idx.nodes))
	cyclic := make(map[string]bool)

	var visit func(start string)
	visit = func(start string) {
		onStack := map[string]bool{start: true}
		state[start] = visiting

		var path []string
		var dfs func(node string)
		dfs = func(node string) {
			path = append(path, node)
			defer func() { path = path[:len(path)-1] }()
			for _, next := range idx.forward[node] {
				if onStack[next] {
					// Every node on the stack from next down to node is
					// on the cycle closed by this back edge.
					for i := len(path) - 1; i >= 0; i-- {
						cyclic[path[i]] = true
						if path[i] == next {
							break
						}
					}
					continue
				}
				if state[next] == done {
					continue
				}
				state[next] = visiting
				onStack[next] = true
				dfs(next)
				onStack[next] = false
			}
		}
		dfs(start)
		state[start] = done
	}

	for _, n := range idx.nodes {
		if state[n] == unvisited {
			visit(n)
		}
	}
	return cyclic
}

// closenessApprox runs a bounded-depth BFS per node (depth cap keeps this
// sublinear on large graphs) and normalizes by reachable-node count,
// the standard closeness approximation used when exact all-pairs
// shortest paths are too expensive to compute per analysis run.
func closenessApprox(idx *graphIndex) map[string]float64 {
	const maxDepth = 6
	out := make(map[string]float64, len(idx.nodes))
	for _, start := range idx.nodes {
		dist := bfsDistances(idx, start, maxDepth)
		sum := 0
		reached := 0
		for _, d := range dist {
			if d > 0 {
				sum += d
				reached++
			}
		}
		if sum == 0 || reached == 0 {
			out[start] = 0
			continue
		}
		out[start] = float64(reached) / float64(sum)
	}
	return out
}

func bfsDistances(idx *graphIndex, start string, maxDepth int) map[string]int {
	dist := map[string]int{start: 0}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] >= maxDepth {
			continue
		}
		for _, next := range idx.forward[cur] {
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// betweennessApprox samples shortest paths from every node (bounded BFS)
// and counts how often each node appears as an interior hop, normalized
// to [0,1]. This is a sampling approximation, not exact Brandes
// betweenness, matching the contract's "_approx" naming.
func betweennessApprox(idx *graphIndex) map[string]float64 {
	counts := make(map[string]float64, len(idx.nodes))
	const maxDepth = 6
	for _, start := range idx.nodes {
		parent := make(map[string]string)
		dist := map[string]int{start: 0}
		queue := []string{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if dist[cur] >= maxDepth {
				continue
			}
			for _, next := range idx.forward[cur] {
				if _, seen := dist[next]; seen {
					continue
				}
				dist[next] = dist[cur] + 1
				parent[next] = cur
				queue = append(queue, next)
			}
		}
		for _, p := range parent {
			for p != start {
				counts[p]++
				p = parent[p]
				if p == "" {
					break
				}
			}
		}
	}
	maxCount := 0.0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	out := make(map[string]float64, len(idx.nodes))
	for _, id := range idx.nodes {
		if maxCount == 0 {
			out[id] = 0
			continue
		}
		out[id] = counts[id] / maxCount
	}
	return out
}
