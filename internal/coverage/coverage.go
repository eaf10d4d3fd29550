// Package coverage discovers coverage artifacts on disk and sniffs their
// format, discovery-only per spec.md §1's non-goals (no coverage data is
// ever parsed or merged into scores). Grounded in the teacher's
// doublestar-based file search (internal/indexing/pipeline_types.go) and
// generalized from a single config path to a magic-byte/content sniff
// across the LCOV/Cobertura/JaCoCo/coverage.py/Istanbul/Tarpaulin formats
// spec.md §6's coverage section names.
package coverage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/valknut-go/internal/config"
	"github.com/standardbeagle/valknut-go/internal/types"
)

// Format names mirror spec.md §6's coverage format list.
const (
	FormatLCOV        = "lcov"
	FormatCobertura   = "cobertura"
	FormatJaCoCo      = "jacoco"
	FormatCoveragePy  = "coverage_py"
	FormatIstanbul    = "istanbul"
	FormatTarpaulin   = "tarpaulin"
	FormatUnknown     = "unknown"
)

const sniffBytes = 4096

// Discover walks cfg.SearchPaths for files matching cfg.FilePatterns (or
// cfg.CoverageFile alone, when set), sniffs each candidate's format, and
// drops files older than cfg.MaxAgeDays. A disabled cfg.AutoDiscover with
// no explicit CoverageFile returns an empty, non-error result.
func Discover(cfg config.CoverageConfig) ([]types.DiscoveredCoverage, error) {
	var candidates []string

	if cfg.CoverageFile != "" {
		candidates = append(candidates, cfg.CoverageFile)
	}
	if cfg.AutoDiscover {
		found, err := searchPaths(cfg.SearchPaths, cfg.FilePatterns)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
	}

	var discovered []types.DiscoveredCoverage
	seen := make(map[string]bool)
	for _, path := range candidates {
		if seen[path] {
			continue
		}
		seen[path] = true

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		ageDays := time.Since(info.ModTime()).Hours() / 24
		if cfg.MaxAgeDays > 0 && ageDays > float64(cfg.MaxAgeDays) {
			continue
		}

		format := sniffFormat(path)
		discovered = append(discovered, types.DiscoveredCoverage{
			Path:    path,
			Format:  format,
			AgeDays: ageDays,
		})
	}
	return discovered, nil
}

func searchPaths(roots, patterns []string) ([]string, error) {
	var found []string
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			for _, pattern := range patterns {
				if ok, _ := doublestar.Match(pattern, entry.Name()); ok {
					found = append(found, filepath.Join(root, entry.Name()))
					break
				}
			}
		}
	}
	return found, nil
}

// sniffFormat identifies a coverage file's format from its name and a
// leading content sample, without parsing the full document.
func sniffFormat(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if strings.Contains(base, "tarpaulin") {
		return FormatTarpaulin
	}
	if base == ".coverage" {
		return FormatCoveragePy
	}

	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown
	}
	defer f.Close()

	buf := make([]byte, sniffBytes)
	n, _ := f.Read(buf)
	sample := buf[:n]

	switch {
	case bytes.HasPrefix(sample, []byte("SQLite format 3\x00")):
		return FormatCoveragePy
	case bytes.Contains(sample, []byte("TN:")) || bytes.Contains(sample, []byte("SF:")):
		return FormatLCOV
	case bytes.Contains(sample, []byte("<coverage")) && bytes.Contains(sample, []byte("line-rate")):
		return FormatCobertura
	case bytes.Contains(sample, []byte("<report")) && bytes.Contains(sample, []byte("jacoco")):
		return FormatJaCoCo
	case bytes.Contains(sample, []byte("statementMap")):
		return FormatIstanbul
	case bytes.Contains(sample, []byte(`"format_version"`)) || bytes.Contains(sample, []byte(`"meta"`)) && bytes.Contains(sample, []byte("coverage")):
		return FormatCoveragePy
	case strings.HasSuffix(base, ".xml"):
		return FormatCobertura
	case strings.HasSuffix(base, ".json"):
		return FormatIstanbul
	case strings.HasSuffix(base, ".info"):
		return FormatLCOV
	default:
		return FormatUnknown
	}
}
