// Package structure builds a directed dependency graph from adapter-extracted
// imports and partitions it into directory-sized communities, grounded in
// the teacher's ImportResolver (internal/core/import_resolver.go): import
// bindings are resolved to file paths with suffix/substring matching, then
// rebuilt here as a typed, weighted graph instead of a flat binding list.
package structure

import (
	"path"
	"strings"

	"github.com/standardbeagle/valknut-go/internal/types"
)

// FileInput is one file's material for graph construction: its own path,
// its line count (for loc-balance partitioning), and its raw import
// statements as extracted by a language adapter.
type FileInput struct {
	Path    string
	Loc     int
	Imports []types.ImportStatement
}

// BuildGraph resolves each file's imports against the full file set and
// returns a DependencyGraph with one node per file and one edge per
// resolved import. Unresolved imports (external packages, stdlib, etc.)
// are silently dropped, matching the teacher's best-effort resolution
// model: import-graph construction never fails a file.
func BuildGraph(files []FileInput, extensions []string) *types.DependencyGraph {
	g := types.NewDependencyGraph()
	known := make(map[string]bool, len(files))
	for _, f := range files {
		g.AddNode(f.Path, f.Loc)
		known[f.Path] = true
	}

	for _, f := range files {
		for _, imp := range f.Imports {
			target, ok := resolveImportPath(f.Path, imp.Module, known, extensions)
			if !ok || target == f.Path {
				continue
			}
			g.AddEdge(f.Path, target, 1.0)
		}
	}
	return g
}

// resolveImportPath maps one import's module text onto a known file path,
// handling extension completion, directory index files, and Python
// relative-dot imports before falling back to the teacher's suffix/
// substring path matching (filePathMatches).
func resolveImportPath(fromFile, module string, known map[string]bool, extensions []string) (string, bool) {
	module = strings.TrimSpace(module)
	if module == "" {
		return "", false
	}

	candidate := modulePathCandidate(fromFile, module)

	if known[candidate] {
		return candidate, true
	}
	for _, ext := range extensions {
		if known[candidate+ext] {
			return candidate + ext, true
		}
		indexed := path.Join(candidate, "index"+ext)
		if known[indexed] {
			return indexed, true
		}
		indexed = path.Join(candidate, "__init__"+ext)
		if known[indexed] {
			return indexed, true
		}
	}

	return fuzzyMatch(candidate, known)
}

// modulePathCandidate turns a dotted Python module or a relative JS/TS
// import into a slash-separated path candidate relative to fromFile's
// directory. Non-relative imports (package names, Go import paths) are
// passed through unchanged and left to fuzzyMatch.
func modulePathCandidate(fromFile, module string) string {
	dir := path.Dir(fromFile)

	switch {
	case strings.HasPrefix(module, "./") || strings.HasPrefix(module, "../"):
		return path.Clean(path.Join(dir, module))

	case strings.HasPrefix(module, "."):
		// Python relative dots: leading dots count levels up from dir;
		// "." = current package, ".." = parent, etc.
		levels := 0
		rest := module
		for strings.HasPrefix(rest, ".") {
			levels++
			rest = rest[1:]
		}
		base := dir
		for i := 1; i < levels; i++ {
			base = path.Dir(base)
		}
		rest = strings.ReplaceAll(rest, ".", "/")
		if rest == "" {
			return base
		}
		return path.Join(base, rest)

	case strings.Contains(module, ".") && !strings.Contains(module, "/"):
		// Likely a dotted Python absolute module path ("pkg.sub.mod").
		return strings.ReplaceAll(module, ".", "/")

	default:
		return module
	}
}

// fuzzyMatch ports the teacher's filePathMatches suffix/substring
// heuristic: a module string that shares a path suffix, or the same
// final path component, as exactly one known file is accepted as a match.
func fuzzyMatch(candidate string, known map[string]bool) (string, bool) {
	var match string
	matches := 0
	candBase := path.Base(candidate)

	for k := range known {
		if suffixMatches(k, candidate) {
			match = k
			matches++
			continue
		}
		if path.Base(k) == candBase && candBase != "" && candBase != "." {
			match = k
			matches++
		}
	}
	if matches == 1 {
		return match, true
	}
	return "", false
}

func suffixMatches(filePath, importPath string) bool {
	if filePath == importPath {
		return true
	}
	if len(filePath) >= len(importPath) && len(importPath) > 0 {
		if strings.HasSuffix(filePath, importPath) {
			return true
		}
	}
	if len(importPath) >= len(filePath) && len(filePath) > 0 {
		if strings.HasSuffix(importPath, filePath) {
			return true
		}
	}
	return false
}
