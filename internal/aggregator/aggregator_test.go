package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/valknut-go/internal/config"
	"github.com/standardbeagle/valknut-go/internal/types"
)

func TestSummarize_CountsFilesEntitiesAndLanguages(t *testing.T) {
	entities := []EntityInfo{
		{ID: "a", FilePath: "x/a.go", Language: "go", LinesOfCode: 10},
		{ID: "b", FilePath: "x/a.go", Language: "go", LinesOfCode: 5},
		{ID: "c", FilePath: "y/b.py", Language: "python", LinesOfCode: 20},
	}
	scores := []types.ScoringResult{
		{EntityID: "a", Priority: types.PriorityCritical},
		{EntityID: "b", Priority: types.PriorityHigh},
	}

	summary := Summarize(entities, nil, scores)
	assert.Equal(t, 2, summary.TotalFiles)
	assert.Equal(t, 3, summary.TotalEntities)
	assert.Equal(t, 35, summary.TotalLinesOfCode)
	assert.Equal(t, []string{"go", "python"}, summary.DetectedLanguages)
	assert.Equal(t, 1, summary.CriticalIssues)
	assert.Equal(t, 1, summary.HighPriorityIssues)
}

func TestComputeHealthMetrics_AveragesCategoryScores(t *testing.T) {
	scores := []types.ScoringResult{
		{CategoryScores: map[string]float64{"maintainability": 80, "structure": 70, "complexity": 20, "technical_debt": 10, "documentation": 60}},
		{CategoryScores: map[string]float64{"maintainability": 60, "structure": 50, "complexity": 40, "technical_debt": 30, "documentation": 40}},
	}
	h := ComputeHealthMetrics(scores)
	assert.InDelta(t, 70, h.Maintainability, 1e-9)
	assert.InDelta(t, 30, h.Complexity, 1e-9)
	assert.Greater(t, h.Overall, 0.0)
}

func TestBuildHealthTree_RollsUpIntoParentDirectories(t *testing.T) {
	entities := []EntityInfo{
		{ID: "a", FilePath: "internal/auth/login.go"},
		{ID: "b", FilePath: "internal/auth/session.go"},
	}
	scores := map[string]types.ScoringResult{
		"a": {OverallScore: 10, Priority: types.PriorityNone, CategoryScores: map[string]float64{"documentation": 80}},
		"b": {OverallScore: 20, Priority: types.PriorityMedium, CategoryScores: map[string]float64{"documentation": 60}},
	}

	tree := BuildHealthTree(entities, scores, nil)
	leaf, ok := tree.Nodes["internal/auth"]
	require.True(t, ok)
	assert.Equal(t, 2, leaf.EntityCount)
	assert.Equal(t, 2, leaf.FileCount)

	mid, ok := tree.Nodes["internal"]
	require.True(t, ok)
	assert.Equal(t, 2, mid.EntityCount)

	root := tree.Nodes["."]
	assert.Equal(t, 2, root.EntityCount)
}

func TestBuildHealthTree_HealthScoreIsFileCountWeightedMeanAcrossLevels(t *testing.T) {
	entities := []EntityInfo{
		{ID: "a", FilePath: "internal/auth/login/a.go"},
		{ID: "b", FilePath: "internal/auth/session/b.go"},
	}
	scores := map[string]types.ScoringResult{
		"a": {OverallScore: 10, Priority: types.PriorityNone},
		"b": {OverallScore: 40, Priority: types.PriorityNone},
	}

	tree := BuildHealthTree(entities, scores, nil)

	login, ok := tree.Nodes["internal/auth/login"]
	require.True(t, ok)
	assert.InDelta(t, 0.9, login.HealthScore, 1e-6)

	session, ok := tree.Nodes["internal/auth/session"]
	require.True(t, ok)
	assert.InDelta(t, 0.6, session.HealthScore, 1e-6)

	// "internal/auth" has no directly-scored entities of its own: its
	// HealthScore must still come out as the file-count-weighted mean of
	// its two children rather than staying at the zero value.
	auth, ok := tree.Nodes["internal/auth"]
	require.True(t, ok)
	assert.Equal(t, 2, auth.FileCount)
	assert.InDelta(t, 0.75, auth.HealthScore, 1e-6)

	// The invariant holds transitively up to the root, which also has no
	// entities of its own.
	internal, ok := tree.Nodes["internal"]
	require.True(t, ok)
	assert.InDelta(t, 0.75, internal.HealthScore, 1e-6)

	root := tree.Nodes["."]
	assert.InDelta(t, 0.75, root.HealthScore, 1e-6)
}

func TestFlatten_OrdersByDepthThenName(t *testing.T) {
	entities := []EntityInfo{
		{ID: "a", FilePath: "b/x.go"},
		{ID: "b", FilePath: "a/x.go"},
	}
	tree := BuildHealthTree(entities, nil, nil)
	flat := Flatten(tree)
	require.True(t, len(flat) >= 3)
	assert.Equal(t, ".", flat[0].Path)
}

func TestEvaluateQualityGate_DisabledPassesTrivially(t *testing.T) {
	result := EvaluateQualityGate(config.QualityGateConfig{Enabled: false}, types.HealthMetrics{}, types.AnalysisSummary{})
	assert.True(t, result.Passed)
}

func TestEvaluateQualityGate_CriticalIssuesExceeded(t *testing.T) {
	cfg := config.QualityGateConfig{Enabled: true, MaxCriticalIssues: 0, MinMaintainability: -1, MaxComplexity: 1000, MaxTechnicalDebtRatio: 1000, MaxHighPriorityIssues: 1000, MinDocHealth: -1}
	summary := types.AnalysisSummary{CriticalIssues: 1}

	result := EvaluateQualityGate(cfg, types.HealthMetrics{}, summary)
	require.False(t, result.Passed)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "Critical issues", result.Violations[0].RuleName)
}

func TestDictionaryCode_FormatsStablePrefixAndSequence(t *testing.T) {
	assert.Equal(t, "VK-CLX-001", DictionaryCode("ReduceComplexity", 1))
	assert.Equal(t, "VK-GEN-042", DictionaryCode("Unknown", 42))
}
