package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_PassesValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.kdl"))
	require.NoError(t, err)
	assert.Equal(t, Default().LSH, cfg.LSH)
}

func TestLoad_ParsesKDLOverrides(t *testing.T) {
	doc := `
analysis {
    enable_lsh_analysis false
    confidence_threshold 0.7
    max_files 500
    include_patterns "*.go" "*.py"
}
lsh {
    num_hashes 64
    num_bands 16
    similarity_threshold 0.9
}
languages {
    rust {
        enabled false
    }
}
`
	path := filepath.Join(t.TempDir(), "valknut.kdl")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Analysis.EnableLSHAnalysis)
	assert.InDelta(t, 0.7, cfg.Analysis.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 500, cfg.Analysis.MaxFiles)
	assert.Equal(t, []string{"*.go", "*.py"}, cfg.Analysis.IncludePatterns)

	assert.Equal(t, 64, cfg.LSH.NumHashes)
	assert.Equal(t, 16, cfg.LSH.NumBands)
	assert.InDelta(t, 0.9, cfg.LSH.SimilarityThreshold, 1e-9)

	assert.False(t, cfg.Languages["rust"].Enabled)
}

func TestValidate_RejectsIndivisibleBands(t *testing.T) {
	cfg := Default()
	cfg.LSH.NumHashes = 100
	cfg.LSH.NumBands = 30
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "num_hashes")
}

func TestValidate_RejectsUnbalancedDedupeWeights(t *testing.T) {
	cfg := Default()
	cfg.Dedupe.Enabled = true
	cfg.Dedupe.Weights = DedupeWeights{AST: 0.1, PDG: 0.1, Emb: 0.1}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to")
}
