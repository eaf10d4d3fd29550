package lsh

import (
	"github.com/hbollon/go-edlib"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// SimpleNode is a restricted, depth-capped tree built from a
// tree_sitter.Node subtree, the shape the verification step's tree edit
// distance operates on instead of walking live cgo nodes repeatedly.
type SimpleNode struct {
	Label    string
	Children []*SimpleNode
}

// BuildSimpleTree restricts root to its byte range and converts it into a
// SimpleNode tree, stopping once maxNodes nodes have been emitted
// (truncated reports whether any nodes beyond the cap were dropped).
func BuildSimpleTree(root tree_sitter.Node, maxNodes int) (tree *SimpleNode, nodeCount int, truncated bool) {
	count := 0
	var build func(n tree_sitter.Node) *SimpleNode
	build = func(n tree_sitter.Node) *SimpleNode {
		if count >= maxNodes {
			truncated = true
			return nil
		}
		count++
		node := &SimpleNode{Label: n.Kind()}
		childCount := int(n.ChildCount())
		for i := 0; i < childCount; i++ {
			if count >= maxNodes {
				truncated = true
				break
			}
			child := n.Child(uint(i))
			if child == nil {
				continue
			}
			if c := build(*child); c != nil {
				node.Children = append(node.Children, c)
			}
		}
		return node
	}
	tree = build(root)
	return tree, count, truncated
}

// TreeEditDistance computes an APTED-style tree edit distance between a
// and b: each node may be relabeled (cost 1 if labels differ, else 0),
// inserted, or deleted (cost 1), with optimal child-sequence alignment
// computed by a Levenshtein-style DP over child subtree costs. This is
// the standard recursive decomposition APTED accelerates; at the capped
// node counts this module verifies against, the naive recursive form is
// fast enough without APTED's path-decomposition optimization.
func TreeEditDistance(a, b *SimpleNode) int {
	memo := make(map[[2]*SimpleNode]int)
	return distance(a, b, memo)
}

func distance(a, b *SimpleNode, memo map[[2]*SimpleNode]int) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return size(b)
	}
	if b == nil {
		return size(a)
	}
	key := [2]*SimpleNode{a, b}
	if v, ok := memo[key]; ok {
		return v
	}

	relabelCost := 0
	if a.Label != b.Label {
		relabelCost = 1
	}
	childCost := alignChildren(a.Children, b.Children, memo)
	result := relabelCost + childCost
	memo[key] = result
	return result
}

// alignChildren runs a Levenshtein-style DP over the two child slices,
// where the substitution cost between child i and child j is their own
// recursively-computed tree edit distance, and insert/delete cost is
// that child's own subtree size (deleting or inserting a whole subtree).
func alignChildren(as, bs []*SimpleNode, memo map[[2]*SimpleNode]int) int {
	n, m := len(as), len(bs)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		dp[i][0] = dp[i-1][0] + size(as[i-1])
	}
	for j := 1; j <= m; j++ {
		dp[0][j] = dp[0][j-1] + size(bs[j-1])
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			sub := dp[i-1][j-1] + distance(as[i-1], bs[j-1], memo)
			del := dp[i-1][j] + size(as[i-1])
			ins := dp[i][j-1] + size(bs[j-1])
			dp[i][j] = minInt(sub, minInt(del, ins))
		}
	}
	return dp[n][m]
}

func size(n *SimpleNode) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += size(c)
	}
	return total
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// VerificationOutcome is the result of attempting to verify one
// candidate pair, per spec.md §4.6.7.
type VerificationOutcome struct {
	Similarity float64
	EditCost   int
	NodeCounts [2]int
	Truncated  bool
	Computed   bool
}

// Verify builds capped SimpleNode trees for both entities and computes
// tree edit distance, dropping the pair (Computed=false) if either side
// has fewer than minASTNodes nodes.
func Verify(a, b tree_sitter.Node, maxNodes, minASTNodes int) VerificationOutcome {
	treeA, n1, truncA := BuildSimpleTree(a, maxNodes)
	treeB, n2, truncB := BuildSimpleTree(b, maxNodes)
	if n1 < minASTNodes || n2 < minASTNodes {
		return VerificationOutcome{NodeCounts: [2]int{n1, n2}, Computed: false}
	}
	d := TreeEditDistance(treeA, treeB)
	sim := 1 - float64(d)/float64(n1+n2)
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return VerificationOutcome{
		Similarity: sim,
		EditCost:   d,
		NodeCounts: [2]int{n1, n2},
		Truncated:  truncA || truncB,
		Computed:   true,
	}
}

// LinearizedFallbackSimilarity linearizes both trees to their label
// sequence and scores them with go-edlib's Levenshtein similarity, a
// cheaper proxy that still rewards matching node-kind sequences.
// Engine.DetectClones does not call it: a pair whose tree edit distance
// is skipped carries no Verification.
func LinearizedFallbackSimilarity(a, b *SimpleNode) (float32, error) {
	la := linearize(a)
	lb := linearize(b)
	return edlib.StringsSimilarity(la, lb, edlib.Levenshtein)
}

func linearize(n *SimpleNode) string {
	if n == nil {
		return ""
	}
	out := n.Label
	for _, c := range n.Children {
		out += " " + linearize(c)
	}
	return out
}
