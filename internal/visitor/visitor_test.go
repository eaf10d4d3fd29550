package visitor

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/valknut-go/internal/types"
)

// constDetector always reports the same feature name with a fixed value,
// so two instances let us exercise the max-merge conflict rule without
// depending on internal/features.
type constDetector struct {
	name  string
	value float64
}

func (d *constDetector) Name() string { return d.name }
func (d *constDetector) BeginEntity(*types.CodeEntity) {}
func (d *constDetector) VisitNode(tree_sitter.Node, []byte, *types.CodeEntity) map[string]float64 {
	return nil
}
func (d *constDetector) EndEntity(*types.CodeEntity) map[string]float64 {
	return map[string]float64{"shared": d.value}
}

type countingDetector struct {
	calls int
}

func (d *countingDetector) Name() string { return "counter" }
func (d *countingDetector) BeginEntity(*types.CodeEntity) { d.calls = 0 }
func (d *countingDetector) VisitNode(tree_sitter.Node, []byte, *types.CodeEntity) map[string]float64 {
	d.calls++
	return nil
}
func (d *countingDetector) EndEntity(*types.CodeEntity) map[string]float64 {
	return map[string]float64{"node_count": float64(d.calls)}
}

func parseGo(t *testing.T, src []byte) tree_sitter.Node {
	t.Helper()
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_go.Language())
	require.NoError(t, parser.SetLanguage(language))
	tree := parser.Parse(src, nil)
	require.NotNil(t, tree)
	return tree.RootNode()
}

func TestVisitor_MaxMergeOnConflict(t *testing.T) {
	low := &constDetector{name: "low", value: 1}
	high := &constDetector{name: "high", value: 5}
	v := New(low, high)

	src := []byte("package main\nfunc main() {}\n")
	root := parseGo(t, src)
	entity := &types.CodeEntity{ID: "e1"}

	out := v.Walk(root, src, entity)
	assert.Equal(t, 5.0, out["shared"])
}

func TestVisitor_VisitsEachNodeOnceAcrossDetectors(t *testing.T) {
	a := &countingDetector{}
	b := &countingDetector{}
	v := New(a, b)

	src := []byte("package main\nfunc main() { x := 1; _ = x }\n")
	root := parseGo(t, src)
	entity := &types.CodeEntity{ID: "e1"}

	v.Walk(root, src, entity)
	assert.Equal(t, a.calls, b.calls)
	assert.Greater(t, a.calls, 0)
}
