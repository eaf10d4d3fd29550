package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/valknut-go/internal/config"
	"github.com/standardbeagle/valknut-go/internal/types"
)

func vectors() []types.FeatureVector {
	return []types.FeatureVector{
		{EntityID: "a", RawFeatures: map[string]float64{"complexity": 1}},
		{EntityID: "b", RawFeatures: map[string]float64{"complexity": 5}},
		{EntityID: "c", RawFeatures: map[string]float64{"complexity": 3}},
	}
}

func TestNormalizer_FitErrorsOnEmptyInput(t *testing.T) {
	n := New(config.SchemeZScore)
	err := n.Fit(nil)
	require.Error(t, err)
}

func TestNormalizer_ZScoreNormalizesAroundMean(t *testing.T) {
	n := New(config.SchemeZScore)
	vs := vectors()
	require.NoError(t, n.Fit(vs))
	n.Normalize(vs)

	stats, ok := n.Statistics("complexity")
	require.True(t, ok)
	assert.InDelta(t, 3.0, stats.Mean, 1e-9)
	assert.InDelta(t, 0, vs[2].NormalizedFeatures["complexity"], 1e-9)
}

func TestNormalizer_MinMaxZeroRangeReturnsHalf(t *testing.T) {
	n := New(config.SchemeMinMax)
	vs := []types.FeatureVector{
		{EntityID: "a", RawFeatures: map[string]float64{"x": 5}},
		{EntityID: "b", RawFeatures: map[string]float64{"x": 5}},
	}
	require.NoError(t, n.Fit(vs))
	n.Normalize(vs)
	assert.Equal(t, 0.5, vs[0].NormalizedFeatures["x"])
}

func TestNormalizer_UnseenFeatureIsIdentity(t *testing.T) {
	n := New(config.SchemeZScore)
	vs := vectors()
	require.NoError(t, n.Fit(vs))

	extra := []types.FeatureVector{{EntityID: "d", RawFeatures: map[string]float64{"never_fitted": 42}}}
	n.Normalize(extra)
	assert.Equal(t, 42.0, extra[0].NormalizedFeatures["never_fitted"])
}

func TestNormalizer_BayesianZeroVarianceUsesSignOfDeviation(t *testing.T) {
	n := New(config.SchemeBayesian)
	n.SetPrior("flat", Prior{Alpha: 2, Beta: 2, Min: 0, Max: 10})
	vs := []types.FeatureVector{
		{EntityID: "a", RawFeatures: map[string]float64{"flat": 5}},
		{EntityID: "b", RawFeatures: map[string]float64{"flat": 5}},
	}
	require.NoError(t, n.Fit(vs))
	n.Normalize(vs)
	assert.Contains(t, []float64{-0.5, 0.5}, vs[0].NormalizedFeatures["flat"])
}

func TestComposeResult_PriorityMatchesCutoffs(t *testing.T) {
	vec := types.FeatureVector{
		EntityID:           "e1",
		NormalizedFeatures: map[string]float64{"cyclomatic": 3, "cognitive": 3},
	}
	categories := map[string][]string{"complexity": {"cyclomatic", "cognitive"}}
	weights := CategoryWeights{"complexity": 1}

	result := ComposeResult(vec, categories, weights)
	assert.Equal(t, "e1", result.EntityID)
	assert.GreaterOrEqual(t, result.OverallScore, 0.0)
	assert.LessOrEqual(t, result.OverallScore, 100.0)
	assert.Equal(t, types.PriorityFromScore(result.OverallScore), result.Priority)
}
