package structure

import (
	"path"
	"sort"
	"strings"

	"github.com/standardbeagle/valknut-go/internal/config"
	"github.com/standardbeagle/valknut-go/internal/types"
)

const (
	smallGraphNodeLimit = 8
	labelPropMaxIters   = 20
	klMaxIters          = 50
)

// adjacency is an undirected, weighted view of a DependencyGraph: edge
// weights from both directions between a pair are summed, since the
// partitioner only cares about cut size, not direction.
type adjacency map[string]map[string]float64

func buildAdjacency(g *types.DependencyGraph) adjacency {
	adj := make(adjacency, len(g.Nodes))
	for id := range g.Nodes {
		adj[id] = make(map[string]float64)
	}
	for _, e := range g.Edges {
		if _, ok := adj[e.From]; !ok {
			continue
		}
		if _, ok := adj[e.To]; !ok {
			continue
		}
		adj[e.From][e.To] += e.Weight
		adj[e.To][e.From] += e.Weight
	}
	return adj
}

func sortedNodeIDs(g *types.DependencyGraph) []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Partition runs the dependency-graph community detection pipeline:
// exhaustive bipartition for small graphs, otherwise label propagation
// seeded communities refined by Kernighan-Lin swaps, adjusted to a target
// cluster count derived from total LOC.
func Partition(g *types.DependencyGraph, cfg config.StructureConfig) []types.DirectoryPartition {
	ids := sortedNodeIDs(g)
	if len(ids) == 0 {
		return nil
	}
	adj := buildAdjacency(g)

	var assignment map[string]int
	if len(ids) <= smallGraphNodeLimit {
		assignment = exhaustiveBipartition(ids, adj, g, cfg.BalanceTolerance)
	} else {
		assignment = labelPropagation(ids, adj)
		target := targetClusterCount(g, cfg)
		assignment = adjustClusterCount(assignment, ids, adj, g, target)
		assignment = kernighanLinRefine(assignment, ids, adj)
	}

	return buildPartitions(assignment, ids, g, cfg.FallbackNames)
}

// targetClusterCount computes k = clamp(round(total_loc/target_loc_per_subdir), min, max).
func targetClusterCount(g *types.DependencyGraph, cfg config.StructureConfig) int {
	totalLoc := 0
	for _, n := range g.Nodes {
		totalLoc += n.Loc
	}
	target := cfg.TargetLocPerSubdir
	if target <= 0 {
		target = 1
	}
	k := roundDiv(totalLoc, target)
	if k < cfg.MinClusters {
		k = cfg.MinClusters
	}
	if k > cfg.MaxClusters {
		k = cfg.MaxClusters
	}
	if k < 1 {
		k = 1
	}
	return k
}

func roundDiv(a, b int) int {
	if b == 0 {
		return a
	}
	q := float64(a) / float64(b)
	if q-float64(int(q)) >= 0.5 {
		return int(q) + 1
	}
	return int(q)
}

// exhaustiveBipartition enumerates every distinct 2-way split of nodes
// (node 0 fixed in side A to avoid enumerating complements twice),
// picking the minimum-cut split whose loc_balance <= balanceTolerance.
// If no split satisfies the tolerance, it falls back to the split with
// the smallest loc_balance among those with minimum cut.
func exhaustiveBipartition(ids []string, adj adjacency, g *types.DependencyGraph, balanceTolerance float64) map[string]int {
	n := len(ids)
	if n == 1 {
		return map[string]int{ids[0]: 0}
	}
	totalLoc := 0
	for _, id := range ids {
		totalLoc += g.Nodes[id].Loc
	}

	type candidate struct {
		mask    uint
		cut     float64
		balance float64
	}
	var best, bestOverall *candidate

	// mask 0 would leave side B empty, which is not a 2-way split.
	masks := uint(1) << uint(n-1)
	for mask := uint(1); mask < masks; mask++ {
		side := make([]int, n)
		side[0] = 0
		locA, locB := g.Nodes[ids[0]].Loc, 0
		for i := 1; i < n; i++ {
			if mask&(1<<uint(i-1)) != 0 {
				side[i] = 1
				locB += g.Nodes[ids[i]].Loc
			} else {
				side[i] = 0
				locA += g.Nodes[ids[i]].Loc
			}
		}
		cut := cutSize(ids, side, adj)
		balance := 0.0
		if totalLoc > 0 {
			balance = absFloat(float64(locA-locB)) / float64(totalLoc)
		}
		c := &candidate{mask: mask, cut: cut, balance: balance}

		if bestOverall == nil || c.cut < bestOverall.cut ||
			(c.cut == bestOverall.cut && c.balance < bestOverall.balance) {
			bestOverall = c
		}
		if balance <= balanceTolerance {
			if best == nil || c.cut < best.cut {
				best = c
			}
		}
	}

	chosen := best
	if chosen == nil {
		chosen = bestOverall
	}

	assignment := make(map[string]int, n)
	assignment[ids[0]] = 0
	for i := 1; i < n; i++ {
		if chosen.mask&(1<<uint(i-1)) != 0 {
			assignment[ids[i]] = 1
		} else {
			assignment[ids[i]] = 0
		}
	}
	return assignment
}

func cutSize(ids []string, side []int, adj adjacency) float64 {
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	cut := 0.0
	seen := make(map[[2]int]bool)
	for i, id := range ids {
		for nb, w := range adj[id] {
			j, ok := index[nb]
			if !ok || side[i] == side[j] {
				continue
			}
			key := [2]int{i, j}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			cut += w
		}
	}
	return cut
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// labelPropagation seeds an initial community assignment: each node
// starts in its own community, then iteratively adopts the
// weight-majority label among its neighbors (ties broken toward the
// smallest label id for determinism) until stable or a max-iteration cap.
func labelPropagation(ids []string, adj adjacency) map[string]int {
	label := make(map[string]int, len(ids))
	for i, id := range ids {
		label[id] = i
	}

	for iter := 0; iter < labelPropMaxIters; iter++ {
		changed := false
		for _, id := range ids {
			weights := make(map[int]float64)
			for nb, w := range adj[id] {
				weights[label[nb]] += w
			}
			if len(weights) == 0 {
				continue
			}
			bestLabel, bestWeight := label[id], -1.0
			var candidates []int
			for l := range weights {
				candidates = append(candidates, l)
			}
			sort.Ints(candidates)
			for _, l := range candidates {
				w := weights[l]
				if w > bestWeight {
					bestWeight = w
					bestLabel = l
				}
			}
			if bestLabel != label[id] {
				label[id] = bestLabel
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return renumberLabels(label, ids)
}

func renumberLabels(label map[string]int, ids []string) map[string]int {
	remap := make(map[int]int)
	next := 0
	out := make(map[string]int, len(ids))
	for _, id := range ids {
		l := label[id]
		nl, ok := remap[l]
		if !ok {
			nl = next
			remap[l] = nl
			next++
		}
		out[id] = nl
	}
	return out
}

// adjustClusterCount merges the two smallest communities (by total LOC)
// or splits the largest until the community count equals target.
func adjustClusterCount(assignment map[string]int, ids []string, adj adjacency, g *types.DependencyGraph, target int) map[string]int {
	for {
		communities := groupByLabel(assignment, ids)
		if len(communities) == target {
			return assignment
		}
		if len(communities) > target {
			assignment = mergeTwoSmallest(assignment, communities, g)
			continue
		}
		assignment = splitLargest(assignment, communities, ids, adj, g)
		if len(groupByLabel(assignment, ids)) == len(communities) {
			// Splitting made no progress (singleton largest community); stop.
			return assignment
		}
	}
}

func groupByLabel(assignment map[string]int, ids []string) map[int][]string {
	groups := make(map[int][]string)
	for _, id := range ids {
		l := assignment[id]
		groups[l] = append(groups[l], id)
	}
	return groups
}

func communityLoc(members []string, g *types.DependencyGraph) int {
	total := 0
	for _, id := range members {
		total += g.Nodes[id].Loc
	}
	return total
}

func mergeTwoSmallest(assignment map[string]int, communities map[int][]string, g *types.DependencyGraph) map[string]int {
	type entry struct {
		label int
		loc   int
	}
	var entries []entry
	for l, members := range communities {
		entries = append(entries, entry{label: l, loc: communityLoc(members, g)})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].loc != entries[j].loc {
			return entries[i].loc < entries[j].loc
		}
		return entries[i].label < entries[j].label
	})
	if len(entries) < 2 {
		return assignment
	}
	keep, drop := entries[0].label, entries[1].label
	for _, id := range communities[drop] {
		assignment[id] = keep
	}
	return assignment
}

func splitLargest(assignment map[string]int, communities map[int][]string, allIDs []string, adj adjacency, g *types.DependencyGraph) map[string]int {
	var largestLabel int
	largestLoc := -1
	for l, members := range communities {
		loc := communityLoc(members, g)
		if loc > largestLoc || (loc == largestLoc && l < largestLabel) {
			largestLoc = loc
			largestLabel = l
		}
	}
	members := communities[largestLabel]
	if len(members) < 2 {
		return assignment
	}
	sort.Strings(members)

	newLabel := 0
	for l := range communities {
		if l >= newLabel {
			newLabel = l + 1
		}
	}

	sub := exhaustiveOrGreedyBipartition(members, adj, g)
	for _, id := range members {
		if sub[id] == 1 {
			assignment[id] = newLabel
		}
	}
	return assignment
}

// exhaustiveOrGreedyBipartition splits a community in two, using the
// exhaustive search for small communities and a loc-sorted greedy halving
// otherwise (a full enumeration over a large community is not worth the
// cost when this is only used to hit a target cluster count).
func exhaustiveOrGreedyBipartition(members []string, adj adjacency, g *types.DependencyGraph) map[string]int {
	if len(members) <= smallGraphNodeLimit {
		return exhaustiveBipartition(members, adj, g, 1.0)
	}
	sorted := make([]string, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool {
		return g.Nodes[sorted[i]].Loc > g.Nodes[sorted[j]].Loc
	})
	out := make(map[string]int, len(sorted))
	locA, locB := 0, 0
	for _, id := range sorted {
		if locA <= locB {
			out[id] = 0
			locA += g.Nodes[id].Loc
		} else {
			out[id] = 1
			locB += g.Nodes[id].Loc
		}
	}
	return out
}

// kernighanLinRefine repeatedly looks for a node whose move to a
// different community improves total cut size (external_to_B -
// internal_to_A > 0) across all community pairs, applying the best such
// move each pass until none remains or the iteration cap is hit.
func kernighanLinRefine(assignment map[string]int, ids []string, adj adjacency) map[string]int {
	for iter := 0; iter < klMaxIters; iter++ {
		bestGain := 0.0
		bestNode := ""
		bestTarget := -1

		for _, v := range ids {
			internal := make(map[int]float64)
			for nb, w := range adj[v] {
				internal[assignment[nb]] += w
			}
			current := assignment[v]
			currentInternal := internal[current]
			for label, external := range internal {
				if label == current {
					continue
				}
				gain := external - currentInternal
				if gain > bestGain {
					bestGain = gain
					bestNode = v
					bestTarget = label
				}
			}
		}

		if bestNode == "" || bestGain <= 0 {
			break
		}
		assignment[bestNode] = bestTarget
	}
	return assignment
}

// buildPartitions converts a final label assignment into named,
// deterministic DirectoryPartitions.
func buildPartitions(assignment map[string]int, ids []string, g *types.DependencyGraph, fallbackNames []string) []types.DirectoryPartition {
	groups := groupByLabel(assignment, ids)

	var labels []int
	for l := range groups {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	partitions := make([]types.DirectoryPartition, 0, len(labels))
	usedNames := make(map[string]bool, len(labels))
	for i, l := range labels {
		members := groups[l]
		sort.Strings(members)
		name := partitionName(members, fallbackNames, i, usedNames)
		usedNames[name] = true
		partitions = append(partitions, types.DirectoryPartition{
			Name:  name,
			Files: members,
			Loc:   communityLoc(members, g),
		})
	}
	return partitions
}

// partitionName picks the most frequent meaningful token across file
// stems in the partition, falling back to a configured name list and
// finally to "partition_i", per spec.md §4.8.
func partitionName(files []string, fallbackNames []string, index int, used map[string]bool) string {
	counts := make(map[string]int)
	var order []string
	for _, f := range files {
		for _, tok := range meaningfulTokens(f) {
			if counts[tok] == 0 {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return order[i] < order[j]
	})
	for _, tok := range order {
		if !used[tok] {
			return tok
		}
	}
	for _, fallback := range fallbackNames {
		if !used[fallback] {
			return fallback
		}
	}
	return "partition_" + itoa(index)
}

var stopTokens = map[string]bool{
	"index": true, "main": true, "test": true, "tests": true, "internal": true,
	"src": true, "lib": true, "pkg": true, "util": true, "utils": true,
}

func meaningfulTokens(filePath string) []string {
	stem := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	var tokens []string
	for _, raw := range splitWords(stem) {
		lower := strings.ToLower(raw)
		if len(lower) < 3 || stopTokens[lower] {
			continue
		}
		tokens = append(tokens, lower)
	}
	return tokens
}

// splitWords breaks an identifier on underscores, dashes, dots, and
// camelCase/PascalCase boundaries.
func splitWords(s string) []string {
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.':
			flush()
		case r >= 'A' && r <= 'Z' && i > 0 && isLowerOrDigit(runes[i-1]):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return words
}

func isLowerOrDigit(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}
