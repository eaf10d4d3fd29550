// Package discovery walks a root directory into the file list the rest of
// the pipeline analyzes, honoring include/exclude/ignore glob patterns, a
// .gitignore fallback, and a file-size ceiling, grounded in the teacher's
// config.GitignoreParser and its doublestar-based pattern matching
// (internal/indexing/pipeline_types.go).
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/valknut-go/internal/config"
	"github.com/standardbeagle/valknut-go/internal/verrors"
)

// DiscoveredFile is one file selected for analysis.
type DiscoveredFile struct {
	Path    string // relative to root, forward slashes
	AbsPath string
	Size    int64
}

// Discover walks root and returns every file surviving the configured
// include/exclude/ignore patterns, .gitignore rules, and max-file-size
// limit, capped at cfg.MaxFiles when positive.
func Discover(root string, cfg config.AnalysisConfig) ([]DiscoveredFile, error) {
	matcher := NewGitignoreMatcher()
	if err := matcher.LoadFile(root); err != nil {
		return nil, verrors.NewIoError("read", filepath.Join(root, ".gitignore"), err)
	}

	var files []DiscoveredFile
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || matcher.ShouldIgnore(rel, true) || matchesAny(cfg.IgnorePatterns, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if cfg.MaxFiles > 0 && len(files) >= cfg.MaxFiles {
			return filepath.SkipAll
		}

		if !shouldInclude(rel, cfg, matcher) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		if cfg.MaxFileSizeBytes > 0 && info.Size() > cfg.MaxFileSizeBytes {
			return nil
		}

		files = append(files, DiscoveredFile{Path: rel, AbsPath: path, Size: info.Size()})
		return nil
	})
	if walkErr != nil && walkErr != filepath.SkipAll {
		return nil, verrors.NewIoError("walk", root, walkErr)
	}
	return files, nil
}

func shouldInclude(rel string, cfg config.AnalysisConfig, matcher *GitignoreMatcher) bool {
	if matcher.ShouldIgnore(rel, false) {
		return false
	}
	if matchesAny(cfg.ExcludePatterns, rel) || matchesAny(cfg.IgnorePatterns, rel) {
		return false
	}
	if len(cfg.IncludePatterns) == 0 {
		return true
	}
	return matchesAny(cfg.IncludePatterns, rel)
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// ReadFile is a small wrapper so callers don't need to import os directly
// when turning a DiscoveredFile into source bytes for the arena stage.
func ReadFile(f DiscoveredFile) ([]byte, error) {
	data, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return nil, verrors.NewIoError("read", f.AbsPath, err)
	}
	return data, nil
}
