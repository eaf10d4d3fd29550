// Package scoring implements the Scoring & Bayesian Normalizer capability:
// per-feature statistics, a Beta-prior posterior blend, and the five
// normalization schemes spec.md §4.7 fixes. Grounded in the original
// implementation's BayesianNormalizer/FeaturePrior/FeatureStatistics
// contract (src/core/bayesian_tests.rs), reimplemented against this
// module's FeatureVector/FeatureStatistics types instead of translated.
package scoring

import (
	"fmt"
	"math"

	"github.com/standardbeagle/valknut-go/internal/config"
	"github.com/standardbeagle/valknut-go/internal/types"
	"github.com/standardbeagle/valknut-go/internal/verrors"
)

// Prior is a Beta(alpha, beta) prior scaled onto [min, max], the same
// shape FeaturePrior uses to express "what a typical value looks like"
// before any data is observed.
type Prior struct {
	Alpha, Beta float64
	Min, Max    float64
}

// Mean returns the prior's mean in [0,1] Beta space.
func (p Prior) Mean() float64 {
	if p.Alpha+p.Beta == 0 {
		return 0.5
	}
	return p.Alpha / (p.Alpha + p.Beta)
}

// ScaledMean maps Mean() onto [Min, Max].
func (p Prior) ScaledMean() float64 {
	return p.Min + p.Mean()*(p.Max-p.Min)
}

// Normalizer fits per-feature statistics over a batch of FeatureVectors
// and writes normalized_features using the configured scheme.
type Normalizer struct {
	scheme config.NormalizationScheme
	priors map[string]Prior
	stats  map[string]types.FeatureStatistics
}

func New(scheme config.NormalizationScheme) *Normalizer {
	return &Normalizer{
		scheme: scheme,
		priors: make(map[string]Prior),
		stats:  make(map[string]types.FeatureStatistics),
	}
}

// SetPrior registers a Beta prior for one feature name; features without
// a registered prior use posterior_weight=0 (pure empirical statistics).
func (n *Normalizer) SetPrior(feature string, p Prior) {
	n.priors[feature] = p
}

// Fit computes FeatureStatistics for every raw feature name observed
// across vectors. Errors if vectors is empty.
func (n *Normalizer) Fit(vectors []types.FeatureVector) error {
	if len(vectors) == 0 {
		return verrors.NewAnalysisError("scoring.fit", fmt.Errorf("no feature vectors to fit"))
	}
	byFeature := make(map[string][]float64)
	for _, v := range vectors {
		for name, val := range v.RawFeatures {
			byFeature[name] = append(byFeature[name], val)
		}
	}
	for name, values := range byFeature {
		n.stats[name] = n.computeStatistics(name, values)
	}
	return nil
}

func (n *Normalizer) computeStatistics(feature string, values []float64) types.FeatureStatistics {
	nSamples := len(values)
	mean := meanOf(values)
	variance := varianceOf(values, mean)
	stdDev := math.Sqrt(variance)
	min, max := minMaxOf(values)

	confidence := confidenceFor(nSamples, variance)
	stats := types.FeatureStatistics{
		Mean:       mean,
		Variance:   variance,
		StdDev:     stdDev,
		Min:        min,
		Max:        max,
		NSamples:   nSamples,
		Confidence: confidence,
	}

	prior, hasPrior := n.priors[feature]
	if !hasPrior {
		stats.PosteriorMean = mean
		stats.PosteriorVariance = variance
		stats.PriorWeight = 0
		return stats
	}

	weight := priorWeight(confidence, nSamples)
	stats.PriorWeight = weight
	priorMean := prior.ScaledMean()
	priorVariance := ((prior.Max - prior.Min) * (prior.Max - prior.Min)) / 12 // uniform-equivalent spread
	stats.PosteriorMean = weight*priorMean + (1-weight)*mean
	stats.PosteriorVariance = weight*priorVariance + (1-weight)*variance
	return stats
}

// priorWeight rises with low confidence/small samples and falls with
// high confidence/large samples, clamped to [0.05, 0.9] per spec.md
// §4.7's posterior-update contract.
func priorWeight(c types.Confidence, n int) float64 {
	var base float64
	switch c {
	case types.ConfidenceHigh:
		base = 0.1
	case types.ConfidenceMedium:
		base = 0.3
	case types.ConfidenceLow:
		base = 0.55
	case types.ConfidenceVeryLow:
		base = 0.75
	default:
		base = 0.9
	}
	// Large-sample decay: even a Low-confidence bucket trusts data more
	// as n grows within that bucket.
	decay := 1.0 / (1.0 + float64(n)/50.0)
	weight := base * (0.5 + 0.5*decay)
	if weight < 0.05 {
		weight = 0.05
	}
	if weight > 0.9 {
		weight = 0.9
	}
	return weight
}

func confidenceFor(n int, variance float64) types.Confidence {
	switch {
	case n >= 100 && variance > 0:
		return types.ConfidenceHigh
	case n >= 30:
		return types.ConfidenceMedium
	case n >= 10:
		return types.ConfidenceLow
	case n >= 3:
		return types.ConfidenceVeryLow
	default:
		return types.ConfidenceInsufficient
	}
}

// Normalize writes normalized_features on every vector using the fitted
// statistics and configured scheme. A feature never seen during Fit is
// written through unchanged (identity behavior per spec.md §4.7).
func (n *Normalizer) Normalize(vectors []types.FeatureVector) {
	for i := range vectors {
		v := &vectors[i]
		if v.NormalizedFeatures == nil {
			v.NormalizedFeatures = make(map[string]float64, len(v.RawFeatures))
		}
		for name, raw := range v.RawFeatures {
			stats, ok := n.stats[name]
			if !ok {
				v.NormalizedFeatures[name] = raw
				continue
			}
			v.NormalizedFeatures[name] = n.normalizeOne(raw, stats)
		}
	}
}

func (n *Normalizer) normalizeOne(x float64, s types.FeatureStatistics) float64 {
	switch n.scheme {
	case config.SchemeMinMax:
		rangeV := s.Max - s.Min
		if rangeV == 0 {
			return 0.5
		}
		return (x - s.Min) / rangeV
	case config.SchemeRobust:
		sd := math.Sqrt(s.PosteriorVariance)
		if sd == 0 {
			return 0
		}
		return (x - s.PosteriorMean) / sd
	case config.SchemeBayesian, config.SchemeZScoreBayesian, config.SchemePosteriorBayesian:
		if s.Variance == 0 {
			if x >= s.PosteriorMean {
				return 0.5
			}
			return -0.5
		}
		sd := math.Sqrt(s.PosteriorVariance)
		if sd == 0 {
			return 0
		}
		return (x - s.PosteriorMean) / sd
	default: // z_score
		sd := s.StdDev
		mean := s.Mean
		if s.PriorWeight > 0 {
			sd = math.Sqrt(s.PosteriorVariance)
			mean = s.PosteriorMean
		}
		if sd == 0 {
			return 0
		}
		return (x - mean) / sd
	}
}

// Statistics returns the fitted statistics for one feature, if present.
func (n *Normalizer) Statistics(feature string) (types.FeatureStatistics, bool) {
	s, ok := n.stats[feature]
	return s, ok
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func varianceOf(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

func minMaxOf(values []float64) (float64, float64) {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

