// Package config defines the pipeline's configuration schema and KDL file
// loader, mirroring the teacher's internal/config package: a plain struct
// tree with documented defaults (config.go), a file loader for the KDL
// format (kdl.go, backed by github.com/sblinch/kdl-go), and a
// Validate pass that turns out-of-range values into *verrors.ConfigError
// (validator.go).
package config

import (
	"os"

	"github.com/standardbeagle/valknut-go/internal/verrors"
)

// AnalysisConfig mirrors spec.md §6 "analysis".
type AnalysisConfig struct {
	EnableScoring            bool
	EnableGraphAnalysis      bool
	EnableLSHAnalysis        bool
	EnableRefactoringAnalysis bool
	EnableCoverageAnalysis   bool
	EnableStructureAnalysis  bool
	EnableNamesAnalysis      bool
	ConfidenceThreshold      float64
	MaxFiles                 int
	IncludePatterns          []string
	ExcludePatterns          []string
	IgnorePatterns           []string
	MaxFileSizeBytes         int64
}

// LSHConfig mirrors spec.md §6 "lsh". NumHashes % NumBands == 0 is an
// invariant enforced in Validate.
type LSHConfig struct {
	NumHashes               int
	NumBands                int
	ShingleSize              int
	SimilarityThreshold      float64
	MaxCandidates            int
	UseSemanticSimilarity    bool
	AptedMaxPairsPerEntity   int
	AptedMaxNodes            int
	MinASTNodes              int
}

// NormalizationScheme selects the Bayesian-normalizer formula.
type NormalizationScheme string

const (
	SchemeZScore           NormalizationScheme = "z_score"
	SchemeMinMax           NormalizationScheme = "min_max"
	SchemeRobust           NormalizationScheme = "robust"
	SchemeBayesian         NormalizationScheme = "bayesian"
	SchemeZScoreBayesian   NormalizationScheme = "z_score_bayesian"
	SchemePosteriorBayesian NormalizationScheme = "posterior_bayesian"
)

// ScoringWeights weights the scoring categories; need not sum to 1.
type ScoringWeights struct {
	Complexity float64
	Graph      float64
	Structure  float64
	Style      float64
	Coverage   float64
}

// ScoringConfig mirrors spec.md §6 "scoring".
type ScoringConfig struct {
	NormalizationScheme NormalizationScheme
	UseBayesianFallbacks bool
	ConfidenceReporting  bool
	Weights              ScoringWeights
}

// RankingBy selects the dedupe ranking metric.
type RankingBy string

const (
	RankBySavedTokens RankingBy = "saved_tokens"
	RankByFrequency   RankingBy = "frequency"
)

// DedupeWeights must sum to ~1.0 (+/- 0.1) and be non-negative.
type DedupeWeights struct {
	AST float64
	PDG float64
	Emb float64
}

// StopMotifsConfig configures boilerplate-shingle suppression.
type StopMotifsConfig struct {
	Percentile  float64
	RefreshDays int
}

// AutoCalibrationConfig configures the dedupe auto-tuning loop.
type AutoCalibrationConfig struct {
	QualityTarget float64
	SampleSize    int
	MaxIterations int
}

// RankingConfig configures how dedupe opportunities are ordered.
type RankingConfig struct {
	By             RankingBy
	MinSavedTokens int
	MinRarityGain  float64
	LiveReachBoost bool
}

// DedupeConfig mirrors spec.md §6 "dedupe / denoise".
type DedupeConfig struct {
	Enabled            bool
	Auto               bool
	MinFunctionTokens  int
	MinMatchTokens     int
	RequireBlocks      bool
	Similarity         float64
	Weights            DedupeWeights
	IOMismatchPenalty  float64
	StopMotifs         StopMotifsConfig
	AutoCalibration    AutoCalibrationConfig
	Ranking            RankingConfig
	DryRun             bool
}

// CoverageConfig mirrors spec.md §6 "coverage".
type CoverageConfig struct {
	AutoDiscover  bool
	SearchPaths   []string
	FilePatterns  []string
	MaxAgeDays    int
	CoverageFile  string
}

// StructureConfig mirrors spec.md §6 "structure" / §4.8's partitioner knobs.
type StructureConfig struct {
	BalanceTolerance   float64
	TargetLocPerSubdir int
	MinClusters        int
	MaxClusters        int
	FallbackNames      []string
}

// QualityGateConfig mirrors spec.md §4.10's configurable gate rules.
type QualityGateConfig struct {
	Enabled                bool
	MinMaintainability     float64
	MaxComplexity          float64
	MaxTechnicalDebtRatio  float64
	MaxCriticalIssues      int
	MaxHighPriorityIssues  int
	MinDocHealth           float64
}

// LanguageConfig mirrors spec.md §6 "languages.<lang>".
type LanguageConfig struct {
	Enabled             bool
	FileExtensions      []string
	TreeSitterLanguage  string
	MaxFileSizeMB       int
	ComplexityThreshold float64
	AdditionalSettings  map[string]string
}

// Config is the full, optional-everything configuration tree.
type Config struct {
	Analysis  AnalysisConfig
	LSH       LSHConfig
	Scoring   ScoringConfig
	Dedupe    DedupeConfig
	Coverage  CoverageConfig
	Structure   StructureConfig
	QualityGate QualityGateConfig
	Languages   map[string]LanguageConfig
	CacheDir    string
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			EnableScoring:             true,
			EnableGraphAnalysis:       true,
			EnableLSHAnalysis:         true,
			EnableRefactoringAnalysis: true,
			EnableCoverageAnalysis:    true,
			EnableStructureAnalysis:   true,
			EnableNamesAnalysis:       true,
			ConfidenceThreshold:       0.5,
			MaxFiles:                  0,
			MaxFileSizeBytes:          5 * 1024 * 1024,
		},
		LSH: LSHConfig{
			NumHashes:             128,
			NumBands:              32,
			ShingleSize:           3,
			SimilarityThreshold:   0.8,
			MaxCandidates:         50,
			AptedMaxPairsPerEntity: 5,
			AptedMaxNodes:         200,
			MinASTNodes:           5,
		},
		Scoring: ScoringConfig{
			NormalizationScheme:  SchemeZScore,
			UseBayesianFallbacks: true,
			ConfidenceReporting:  true,
			Weights: ScoringWeights{
				Complexity: 1.0,
				Graph:      1.0,
				Structure:  1.0,
				Style:      0.5,
				Coverage:   0.5,
			},
		},
		Dedupe: DedupeConfig{
			Enabled:           false,
			MinFunctionTokens: 20,
			MinMatchTokens:    20,
			Similarity:        0.8,
			Weights:           DedupeWeights{AST: 0.5, PDG: 0.3, Emb: 0.2},
			IOMismatchPenalty: 0.2,
			StopMotifs:        StopMotifsConfig{Percentile: 0.95, RefreshDays: 30},
			AutoCalibration:   AutoCalibrationConfig{QualityTarget: 0.9, SampleSize: 100, MaxIterations: 5},
			Ranking:           RankingConfig{By: RankBySavedTokens, MinRarityGain: 0.0},
		},
		Coverage: CoverageConfig{
			AutoDiscover: true,
			SearchPaths:  []string{".", "coverage", "target/coverage"},
			FilePatterns: []string{"*.info", "coverage*.xml", "coverage*.json"},
			MaxAgeDays:   30,
		},
		Structure: StructureConfig{
			BalanceTolerance:   0.1,
			TargetLocPerSubdir: 2000,
			MinClusters:        2,
			MaxClusters:        12,
			FallbackNames:      []string{"core", "support", "misc"},
		},
		QualityGate: QualityGateConfig{
			Enabled:               false,
			MinMaintainability:    50,
			MaxComplexity:         70,
			MaxTechnicalDebtRatio: 60,
			MaxCriticalIssues:     0,
			MaxHighPriorityIssues: 10,
			MinDocHealth:          40,
		},
		Languages: map[string]LanguageConfig{
			"python":     {Enabled: true, FileExtensions: []string{".py"}, TreeSitterLanguage: "python", MaxFileSizeMB: 5, ComplexityThreshold: 10},
			"javascript": {Enabled: true, FileExtensions: []string{".js", ".jsx"}, TreeSitterLanguage: "javascript", MaxFileSizeMB: 5, ComplexityThreshold: 10},
			"typescript": {Enabled: true, FileExtensions: []string{".ts", ".tsx"}, TreeSitterLanguage: "typescript", MaxFileSizeMB: 5, ComplexityThreshold: 10},
			"rust":       {Enabled: true, FileExtensions: []string{".rs"}, TreeSitterLanguage: "rust", MaxFileSizeMB: 5, ComplexityThreshold: 10},
			"go":         {Enabled: true, FileExtensions: []string{".go"}, TreeSitterLanguage: "go", MaxFileSizeMB: 5, ComplexityThreshold: 10},
			"java":       {Enabled: true, FileExtensions: []string{".java"}, TreeSitterLanguage: "java", MaxFileSizeMB: 5, ComplexityThreshold: 10},
			"cpp":        {Enabled: true, FileExtensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".h"}, TreeSitterLanguage: "cpp", MaxFileSizeMB: 5, ComplexityThreshold: 10},
		},
	}
}

// Load reads a KDL config file at path, falling back to Default() if the
// file does not exist (mirroring the teacher's config.Load contract: a
// missing config file is not an error, an invalid one is).
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, verrors.NewIoError("read", path, err)
	}
	if err := mergeKDL(cfg, data); err != nil {
		return nil, verrors.NewConfigError(path, "valid KDL document", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
