package features

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/valknut-go/internal/types"
)

func TestCountNonBlankLines(t *testing.T) {
	src := "a\n\nb\n   \nc"
	assert.Equal(t, 3, countNonBlankLines(src))
}

func TestComplexityDetector_BeginResetsState(t *testing.T) {
	d := NewComplexityDetector()
	entity := &types.CodeEntity{SourceCode: "line1\nline2\n"}
	d.BeginEntity(entity)
	out := d.EndEntity(entity)
	assert.Equal(t, 1.0, out["cyclomatic"])
	assert.Equal(t, 2.0, out["lines_of_code"])
}

func TestOpportunities_LongFunctionTriggersExtractMethod(t *testing.T) {
	var lines string
	for i := 0; i < 40; i++ {
		lines += "x := 1\n"
	}
	entity := types.CodeEntity{
		ID:         "f1",
		EntityType: types.EntityFunction,
		Name:       "doStuff",
		SourceCode: lines,
	}
	ops := Opportunities(entity, nil)
	var found bool
	for _, o := range ops {
		if o.Type == types.OpExtractMethod {
			found = true
		}
	}
	assert.True(t, found)
}

func TestOpportunities_HighCyclomaticTriggersReduceComplexity(t *testing.T) {
	entity := types.CodeEntity{ID: "f2", EntityType: types.EntityFunction, Name: "complex", SourceCode: "x"}
	ops := Opportunities(entity, map[string]float64{"cyclomatic": 20})
	var found bool
	for _, o := range ops {
		if o.Type == types.OpReduceComplexity {
			found = true
		}
	}
	assert.True(t, found)
}

func TestOpportunities_ShortGenericNameTriggersImproveNaming(t *testing.T) {
	entity := types.CodeEntity{ID: "f3", EntityType: types.EntityFunction, Name: "tmp", SourceCode: "x"}
	ops := Opportunities(entity, nil)
	var found bool
	for _, o := range ops {
		if o.Type == types.OpImproveNaming {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSplitIdentifier(t *testing.T) {
	assert.Equal(t, []string{"get", "user", "name"}, splitIdentifier("getUserName"))
	assert.Equal(t, []string{"my", "var"}, splitIdentifier("my_var"))
}

func TestTfIdfCorpus_WeightsRareTermsHigher(t *testing.T) {
	corpus := NewTfIdfCorpus()
	corpus.AddDocument([]string{"common", "rare1"})
	corpus.AddDocument([]string{"common", "rare2"})
	corpus.AddDocument([]string{"common"})

	commonWeight := corpus.Weight("common", []string{"common"})
	rareWeight := corpus.Weight("rare1", []string{"common", "rare1"})
	assert.Greater(t, rareWeight, commonWeight)
}

func TestCohesionScore_IdenticalVectorsAreFullyCohesive(t *testing.T) {
	v := map[string]float64{"a": 1, "b": 2}
	score := CohesionScore([]map[string]float64{v, v, v}, 0.2)
	assert.InDelta(t, 1.0, score, 1e-6)
}

func TestComputeGraphFeatures_FanInFanOutAndCycle(t *testing.T) {
	g := types.NewDependencyGraph()
	g.AddNode("a.go", 10)
	g.AddNode("b.go", 10)
	g.AddNode("c.go", 10)
	g.AddEdge("a.go", "b.go", 1)
	g.AddEdge("b.go", "c.go", 1)
	g.AddEdge("c.go", "a.go", 1)

	feats := ComputeGraphFeatures(g)
	assert.Equal(t, 1.0, feats["a.go"].InCycle)
	assert.Equal(t, 1.0, feats["b.go"].FanIn)
	assert.Equal(t, 1.0, feats["a.go"].FanOut)
}

func TestDirectoryStructureFeatures_Aggregates(t *testing.T) {
	files := []FileStructureStats{
		{Path: "pkg/a.go", Directory: "pkg", FunctionCount: 2, ClassCount: 1, LinesOfCode: 50},
		{Path: "pkg/b.go", Directory: "pkg", FunctionCount: 4, ClassCount: 0, LinesOfCode: 30},
	}
	out := DirectoryStructureFeatures(files)
	assert.Equal(t, 2.0, out["pkg"]["files_per_directory"])
	assert.Equal(t, 3.0, out["pkg"]["functions_per_file"])
}
