package scoring

import (
	"math"

	"github.com/standardbeagle/valknut-go/internal/types"
)

// CategoryWeights maps a named feature group (complexity, graph, lsh, ...)
// to its contribution weight in the overall score, mirroring
// config.ScoringWeights' field set but expressed generically so this
// package doesn't need to import every weight name individually.
type CategoryWeights map[string]float64

// ComposeResult turns one entity's normalized feature vector into a
// ScoringResult: each category's mean normalized feature value is scaled
// into [0,100] via a logistic squash (normalized features are roughly
// z-scored, so this maps "average of several stddevs above the mean" onto
// a bounded severity), and overall_score is the weighted mean of those
// category scores, a category weight of 0 counting as 1.
func ComposeResult(vec types.FeatureVector, categories map[string][]string, weights CategoryWeights) types.ScoringResult {
	categoryScores := make(map[string]float64, len(categories))
	contributions := make(map[string]float64, len(vec.NormalizedFeatures))

	var weightedSum, weightTotal float64
	for category, features := range categories {
		if len(features) == 0 {
			continue
		}
		sum := 0.0
		for _, f := range features {
			v := vec.NormalizedFeatures[f]
			contributions[f] = v
			sum += v
		}
		mean := sum / float64(len(features))
		scaled := squashToPercent(mean)
		categoryScores[category] = scaled

		w := weights[category]
		if w == 0 {
			w = 1
		}
		weightedSum += scaled * w
		weightTotal += w
	}

	overall := 0.0
	if weightTotal > 0 {
		overall = weightedSum / weightTotal
	}
	overall = clamp(overall, 0, 100)

	return types.ScoringResult{
		EntityID:             vec.EntityID,
		OverallScore:         overall,
		Priority:             types.PriorityFromScore(overall),
		CategoryScores:       categoryScores,
		FeatureContributions: contributions,
		Confidence:           confidenceScore(len(vec.NormalizedFeatures)),
	}
}

// squashToPercent maps a roughly-z-scored mean (typically in [-3,3]) onto
// [0,100] via a logistic curve centered at 0.
func squashToPercent(z float64) float64 {
	return 100 / (1 + math.Exp(-z))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// confidenceScore reports how much of the fixed feature schema this
// vector actually populated, as a cheap [0,1] confidence proxy distinct
// from FeatureStatistics.Confidence (which is about the corpus, not one
// entity).
func confidenceScore(populated int) float64 {
	const expectedSchemaSize = 20
	c := float64(populated) / expectedSchemaSize
	return clamp(c, 0, 1)
}
