package discovery

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// GitignoreMatcher parses .gitignore-style pattern files and answers
// ShouldIgnore queries, ported from the teacher's config.GitignoreParser:
// simple prefix/suffix/exact patterns are matched directly, complex glob
// patterns fall back to a cached compiled regex.
type GitignoreMatcher struct {
	patterns   []gitignorePattern
	regexCache sync.Map
}

type gitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool

	patternType patternType
	compiled    *regexp.Regexp
	prefix      string
	suffix      string
}

type patternType int

const (
	patternExact patternType = iota
	patternPrefix
	patternSuffix
	patternWildcard
	patternComplex
)

// NewGitignoreMatcher returns an empty matcher.
func NewGitignoreMatcher() *GitignoreMatcher {
	return &GitignoreMatcher{}
}

// LoadFile loads patterns from a .gitignore file at rootPath, if present.
// A missing file is not an error; a walk simply has no gitignore rules.
func (gm *GitignoreMatcher) LoadFile(rootPath string) error {
	path := filepath.Join(rootPath, ".gitignore")
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gm.AddPattern(line)
	}
	return scanner.Err()
}

// AddPattern registers a single gitignore-syntax pattern line.
func (gm *GitignoreMatcher) AddPattern(line string) {
	p := gitignorePattern{}
	line = extractModifiers(&p, line)
	p.Pattern = line
	p.patternType, p.prefix, p.suffix, p.compiled = gm.analyze(line)
	gm.patterns = append(gm.patterns, p)
}

func extractModifiers(p *gitignorePattern, line string) string {
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Absolute = true
		line = line[1:]
	}
	return line
}

func (gm *GitignoreMatcher) analyze(pattern string) (patternType, string, string, *regexp.Regexp) {
	if !strings.ContainsAny(pattern, "*?[") {
		return patternExact, pattern, pattern, nil
	}
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "?") && !strings.Contains(pattern, "[") {
		if strings.HasPrefix(pattern, "*") && !strings.Contains(pattern[1:], "*") {
			return patternSuffix, "", pattern[1:], nil
		}
		if strings.HasSuffix(pattern, "*") && !strings.Contains(pattern[:len(pattern)-1], "*") {
			return patternPrefix, pattern[:len(pattern)-1], "", nil
		}
	}

	regexPattern := globToRegex(pattern)
	if cached, ok := gm.regexCache.Load(regexPattern); ok {
		return patternComplex, "", "", cached.(*regexp.Regexp)
	}
	compiled, err := regexp.Compile(regexPattern)
	if err != nil {
		return patternWildcard, "", "", nil
	}
	gm.regexCache.Store(regexPattern, compiled)
	return patternComplex, "", "", compiled
}

func globToRegex(pattern string) string {
	regex := regexp.QuoteMeta(pattern)
	regex = strings.ReplaceAll(regex, `\*`, `.*`)
	regex = strings.ReplaceAll(regex, `\?`, `.`)
	regex = strings.ReplaceAll(regex, `\[`, `[`)
	regex = strings.ReplaceAll(regex, `\]`, `]`)
	return "^" + regex + "$"
}

// ShouldIgnore reports whether path (relative to the scanned root, forward
// slashes) is ignored, applying patterns in file order so a later negation
// pattern can un-ignore an earlier match.
func (gm *GitignoreMatcher) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	ignored := false
	for _, p := range gm.patterns {
		if gm.matches(p, path, isDir) {
			ignored = !p.Negate
		}
	}
	return ignored
}

func (gm *GitignoreMatcher) matches(p gitignorePattern, path string, isDir bool) bool {
	if p.Directory {
		if isDir {
			return gm.matchDirectory(p, path)
		}
		return gm.matchInsideDirectory(p, path)
	}
	if p.Absolute {
		return gm.fastMatch(p, path)
	}

	if gm.fastMatch(p, path) {
		return true
	}
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts); i++ {
		if gm.fastMatch(p, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func (gm *GitignoreMatcher) fastMatch(p gitignorePattern, path string) bool {
	switch p.patternType {
	case patternExact:
		return p.Pattern == path
	case patternPrefix:
		return strings.HasPrefix(path, p.prefix)
	case patternSuffix:
		return strings.HasSuffix(path, p.suffix)
	case patternComplex:
		return p.compiled.MatchString(path)
	case patternWildcard:
		matched, _ := filepath.Match(p.Pattern, path)
		return matched
	default:
		return p.Pattern == path
	}
}

func (gm *GitignoreMatcher) matchDirectory(p gitignorePattern, path string) bool {
	if gm.fastMatch(p, path) {
		return true
	}
	if strings.HasSuffix(p.Pattern, "/**") {
		base := strings.TrimSuffix(p.Pattern, "/**")
		if path == base || strings.HasPrefix(path, base+"/") {
			return true
		}
	}
	return false
}

func (gm *GitignoreMatcher) matchInsideDirectory(p gitignorePattern, path string) bool {
	if strings.HasPrefix(path, p.Pattern+"/") {
		return true
	}
	return gm.fastMatch(p, path)
}
