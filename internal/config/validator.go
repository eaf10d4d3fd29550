package config

import (
	"fmt"

	"github.com/standardbeagle/valknut-go/internal/verrors"
)

// Validate checks every invariant spec.md §6 states and returns a
// *verrors.ConfigError naming the first violation, mirroring the
// teacher's internal/config/validator.go one-section-at-a-time style.
func (c *Config) Validate() error {
	if err := validateLSH(&c.LSH); err != nil {
		return verrors.NewConfigError("lsh", "num_hashes % num_bands == 0", err)
	}
	if err := validateScoring(&c.Scoring); err != nil {
		return verrors.NewConfigError("scoring", "non-negative weights", err)
	}
	if err := validateDedupe(&c.Dedupe); err != nil {
		return verrors.NewConfigError("dedupe", "weights sum to ~1.0", err)
	}
	if err := validateStructure(&c.Structure); err != nil {
		return verrors.NewConfigError("structure", "min_clusters <= max_clusters, balance_tolerance in [0,1]", err)
	}
	if c.Analysis.ConfidenceThreshold < 0 || c.Analysis.ConfidenceThreshold > 1 {
		return verrors.NewConfigError("analysis.confidence_threshold", "[0,1]",
			fmt.Errorf("got %v", c.Analysis.ConfidenceThreshold))
	}
	if c.Analysis.MaxFiles < 0 {
		return verrors.NewConfigError("analysis.max_files", ">= 0",
			fmt.Errorf("got %d", c.Analysis.MaxFiles))
	}
	return nil
}

func validateLSH(l *LSHConfig) error {
	if l.NumHashes <= 0 {
		return fmt.Errorf("num_hashes must be positive, got %d", l.NumHashes)
	}
	if l.NumBands <= 0 {
		return fmt.Errorf("num_bands must be positive, got %d", l.NumBands)
	}
	if l.NumHashes%l.NumBands != 0 {
		return fmt.Errorf("num_hashes (%d) must be a multiple of num_bands (%d)", l.NumHashes, l.NumBands)
	}
	if l.SimilarityThreshold < 0 || l.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0,1], got %v", l.SimilarityThreshold)
	}
	if l.ShingleSize <= 0 {
		return fmt.Errorf("shingle_size must be positive, got %d", l.ShingleSize)
	}
	if l.MaxCandidates < 0 {
		return fmt.Errorf("max_candidates must be >= 0, got %d", l.MaxCandidates)
	}
	return nil
}

func validateScoring(s *ScoringConfig) error {
	switch s.NormalizationScheme {
	case SchemeZScore, SchemeMinMax, SchemeRobust, SchemeBayesian, SchemeZScoreBayesian, SchemePosteriorBayesian, "":
	default:
		return fmt.Errorf("unknown normalization_scheme %q", s.NormalizationScheme)
	}
	w := s.Weights
	for name, v := range map[string]float64{
		"complexity": w.Complexity, "graph": w.Graph, "structure": w.Structure,
		"style": w.Style, "coverage": w.Coverage,
	} {
		if v < 0 {
			return fmt.Errorf("weight %q must be non-negative, got %v", name, v)
		}
	}
	return nil
}

func validateStructure(s *StructureConfig) error {
	if s.BalanceTolerance < 0 || s.BalanceTolerance > 1 {
		return fmt.Errorf("balance_tolerance must be in [0,1], got %v", s.BalanceTolerance)
	}
	if s.TargetLocPerSubdir <= 0 {
		return fmt.Errorf("target_loc_per_subdir must be positive, got %d", s.TargetLocPerSubdir)
	}
	if s.MinClusters <= 0 {
		return fmt.Errorf("min_clusters must be positive, got %d", s.MinClusters)
	}
	if s.MaxClusters < s.MinClusters {
		return fmt.Errorf("max_clusters (%d) must be >= min_clusters (%d)", s.MaxClusters, s.MinClusters)
	}
	return nil
}

func validateDedupe(d *DedupeConfig) error {
	if !d.Enabled {
		return nil
	}
	sum := d.Weights.AST + d.Weights.PDG + d.Weights.Emb
	if sum < 0.9 || sum > 1.1 {
		return fmt.Errorf("dedupe weights (ast=%v pdg=%v emb=%v) sum to %v, want 1.0 +/- 0.1",
			d.Weights.AST, d.Weights.PDG, d.Weights.Emb, sum)
	}
	if d.Weights.AST < 0 || d.Weights.PDG < 0 || d.Weights.Emb < 0 {
		return fmt.Errorf("dedupe weights must be non-negative")
	}
	if d.Similarity < 0 || d.Similarity > 1 {
		return fmt.Errorf("similarity must be in [0,1], got %v", d.Similarity)
	}
	if d.StopMotifs.Percentile < 0 || d.StopMotifs.Percentile > 1 {
		return fmt.Errorf("stop_motifs.percentile must be in [0,1], got %v", d.StopMotifs.Percentile)
	}
	if d.StopMotifs.RefreshDays <= 0 {
		return fmt.Errorf("stop_motifs.refresh_days must be > 0, got %d", d.StopMotifs.RefreshDays)
	}
	if d.AutoCalibration.QualityTarget < 0 || d.AutoCalibration.QualityTarget > 1 {
		return fmt.Errorf("auto_calibration.quality_target must be in [0,1], got %v", d.AutoCalibration.QualityTarget)
	}
	if d.AutoCalibration.SampleSize <= 0 {
		return fmt.Errorf("auto_calibration.sample_size must be > 0, got %d", d.AutoCalibration.SampleSize)
	}
	if d.AutoCalibration.MaxIterations <= 0 {
		return fmt.Errorf("auto_calibration.max_iterations must be > 0, got %d", d.AutoCalibration.MaxIterations)
	}
	if d.Ranking.MinRarityGain < 0 {
		return fmt.Errorf("ranking.min_rarity_gain must be >= 0, got %v", d.Ranking.MinRarityGain)
	}
	return nil
}
