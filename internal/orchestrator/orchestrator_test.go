package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/valknut-go/internal/config"
)

func writeGoFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRun_ProducesSummaryAndHealthForSmallTree(t *testing.T) {
	root := t.TempDir()
	writeGoFile(t, root, "a.go", `package sample

import "fmt"

func Greet(name string) string {
	if name == "" {
		return "hello, stranger"
	}
	return fmt.Sprintf("hello, %s", name)
}
`)
	writeGoFile(t, root, "b.go", `package sample

// Helper does a small thing.
func Helper() int {
	return 42
}
`)

	cfg := config.Default()
	result, err := Run(context.Background(), Options{Root: root, Config: cfg, BatchSize: 4})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 2, result.Summary.TotalFiles)
	assert.GreaterOrEqual(t, result.Summary.TotalEntities, 2)
	assert.NotEmpty(t, result.Scores)
	assert.NotNil(t, result.HealthTree)
	assert.NotNil(t, result.QualityGate)
	assert.False(t, result.Partial)
}

func TestRun_DisabledStagesLeaveNilResults(t *testing.T) {
	root := t.TempDir()
	writeGoFile(t, root, "a.go", "package sample\n\nfunc F() {}\n")

	cfg := config.Default()
	cfg.Analysis.EnableLSHAnalysis = false
	cfg.Analysis.EnableStructureAnalysis = false
	cfg.Analysis.EnableCoverageAnalysis = false
	cfg.Analysis.EnableGraphAnalysis = false

	result, err := Run(context.Background(), Options{Root: root, Config: cfg})
	require.NoError(t, err)
	assert.Nil(t, result.LSH)
	assert.Nil(t, result.Structure)
	assert.Nil(t, result.Coverage)
	assert.Nil(t, result.Impact)
}

func TestRun_UnknownExtensionProducesWarningNotFailure(t *testing.T) {
	root := t.TempDir()
	writeGoFile(t, root, "a.go", "package sample\n\nfunc F() {}\n")
	writeGoFile(t, root, "notes.txt", "just some notes, not source code")

	cfg := config.Default()
	result, err := Run(context.Background(), Options{Root: root, Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.TotalFiles)

	found := false
	for _, w := range result.Warnings {
		if w.Stage == "extract:notes.txt" {
			found = true
		}
	}
	assert.True(t, found)
}
