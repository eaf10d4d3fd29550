package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/valknut-go/internal/config"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestDiscover_FiltersByIncludePattern(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.go":      "package a",
		"b.py":      "x = 1",
		"README.md": "hi",
	})

	files, err := Discover(root, config.AnalysisConfig{IncludePatterns: []string{"**/*.go"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.go", files[0].Path)
}

func TestDiscover_ExcludesGitDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/HEAD": "ref: refs/heads/main",
		"a.go":      "package a",
	})

	files, err := Discover(root, config.AnalysisConfig{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.go", files[0].Path)
}

func TestDiscover_HonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "vendor/\n*.log\n",
		"a.go":       "package a",
		"vendor/b.go": "package vendor",
		"debug.log":  "log line",
	})

	files, err := Discover(root, config.AnalysisConfig{})
	require.NoError(t, err)
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, "a.go")
	assert.NotContains(t, paths, "vendor/b.go")
	assert.NotContains(t, paths, "debug.log")
}

func TestDiscover_RespectsMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"small.go": "package a",
		"big.go":   string(make([]byte, 1000)),
	})

	files, err := Discover(root, config.AnalysisConfig{MaxFileSizeBytes: 100})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "small.go", files[0].Path)
}

func TestDiscover_RespectsMaxFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.go": "package a",
		"b.go": "package a",
		"c.go": "package a",
	})

	files, err := Discover(root, config.AnalysisConfig{MaxFiles: 2})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestGitignoreMatcher_NegationUnignores(t *testing.T) {
	gm := NewGitignoreMatcher()
	gm.AddPattern("*.log")
	gm.AddPattern("!keep.log")

	assert.True(t, gm.ShouldIgnore("debug.log", false))
	assert.False(t, gm.ShouldIgnore("keep.log", false))
}
