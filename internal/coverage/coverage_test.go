package coverage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/valknut-go/internal/config"
)

func pastTime() time.Time {
	return time.Now().Add(-30 * 24 * time.Hour)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDiscover_SniffsLCOVByContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coverage.info", "TN:\nSF:main.go\nDA:1,1\nend_of_record\n")

	result, err := Discover(config.CoverageConfig{
		AutoDiscover: true,
		SearchPaths:  []string{dir},
		FilePatterns: []string{"*.info"},
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, FormatLCOV, result[0].Format)
}

func TestDiscover_SniffsCoberturaXML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coverage.xml", `<?xml version="1.0"?><coverage line-rate="0.9"></coverage>`)

	result, err := Discover(config.CoverageConfig{
		AutoDiscover: true,
		SearchPaths:  []string{dir},
		FilePatterns: []string{"*.xml"},
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, FormatCobertura, result[0].Format)
}

func TestDiscover_SniffsIstanbulJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coverage-final.json", `{"a.js":{"path":"a.js","statementMap":{}}}`)

	result, err := Discover(config.CoverageConfig{
		AutoDiscover: true,
		SearchPaths:  []string{dir},
		FilePatterns: []string{"*.json"},
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, FormatIstanbul, result[0].Format)
}

func TestDiscover_DropsStaleFiles(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "coverage.info", "TN:\nSF:main.go\n")
	require.NoError(t, os.Chtimes(p, pastTime(), pastTime()))

	result, err := Discover(config.CoverageConfig{
		AutoDiscover: true,
		SearchPaths:  []string{dir},
		FilePatterns: []string{"*.info"},
		MaxAgeDays:   1,
	})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestDiscover_AutoDiscoverDisabledUsesExplicitFileOnly(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "my.info", "TN:\nSF:main.go\n")

	result, err := Discover(config.CoverageConfig{CoverageFile: p})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, p, result[0].Path)
}
