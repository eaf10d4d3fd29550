// Package langadapter is the Language Adapter capability (spec.md §4.3):
// one implementation per supported language, each exposing entity
// extraction, structural parsing, and import extraction over a shared
// tree-sitter query engine. Grounded directly in the teacher's
// internal/parser/parser_language_setup.go, whose per-language query
// strings are reused verbatim — they already encode what "a function",
// "a method", "a class" mean in each grammar.
package langadapter

import (
	"fmt"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/valknut-go/internal/types"
	"github.com/standardbeagle/valknut-go/internal/verrors"
)

// Adapter is the per-language capability the pipeline depends on. All
// returned strings are owned by the caller (safe to intern); byte_range
// properties, when set, point inside the original source.
type Adapter interface {
	Name() string
	Extensions() []string
	ExtractCodeEntities(source []byte, filePath string) ([]types.CodeEntity, error)
	ParseSource(source []byte, filePath string) (*types.ParseIndex, error)
	ExtractImports(source []byte) ([]types.ImportStatement, error)
	NewParser() *tree_sitter.Parser
}

// captureRule maps one query capture name to the entity/import semantics
// it carries.
type captureRule struct {
	capture    string
	entityType types.EntityType
	isImport   bool
}

// treeSitterAdapter is the shared query-driven implementation every
// concrete language adapter configures via newTreeSitterAdapter.
type treeSitterAdapter struct {
	name       string
	extensions []string
	language   *tree_sitter.Language
	query      *tree_sitter.Query
	rules      []captureRule
}

func newTreeSitterAdapter(name string, extensions []string, langPtr unsafe.Pointer, queryStr string, rules []captureRule) *treeSitterAdapter {
	language := tree_sitter.NewLanguage(langPtr)
	query, _ := tree_sitter.NewQuery(language, queryStr)
	return &treeSitterAdapter{
		name:       name,
		extensions: extensions,
		language:   language,
		query:      query,
		rules:      rules,
	}
}

func (a *treeSitterAdapter) Name() string        { return a.name }
func (a *treeSitterAdapter) Extensions() []string { return a.extensions }

// NewParser returns a fresh *tree_sitter.Parser bound to this adapter's
// language, for registration with internal/astsvc.Service.
func (a *treeSitterAdapter) NewParser() *tree_sitter.Parser {
	parser := tree_sitter.NewParser()
	_ = parser.SetLanguage(a.language)
	return parser
}

func (a *treeSitterAdapter) ruleFor(capture string) (captureRule, bool) {
	for _, r := range a.rules {
		if r.capture == capture {
			return r, true
		}
	}
	return captureRule{}, false
}

// ExtractCodeEntities runs the adapter's query over freshly parsed source
// and converts each top-level capture into a types.CodeEntity. Matching
// ".name" sub-captures resolve each entity's display name, mirroring the
// teacher's capturedNames map in extractBasicSymbolsStringRef.
func (a *treeSitterAdapter) ExtractCodeEntities(source []byte, filePath string) ([]types.CodeEntity, error) {
	if a.query == nil {
		return nil, verrors.NewAdapterError(a.name, filePath, fmt.Errorf("query unavailable for %s", a.name))
	}
	parser := a.NewParser()
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, verrors.NewAdapterError(a.name, filePath, fmt.Errorf("parse returned nil"))
	}
	defer tree.Close()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	matches := qc.Matches(a.query, tree.RootNode(), source)
	captureNames := a.query.CaptureNames()

	var entities []types.CodeEntity
	seq := 0
	for {
		match := matches.Next()
		if match == nil {
			break
		}

		names := make(map[string]string, 4)
		for _, c := range match.Captures {
			cn := captureNames[c.Index]
			if hasSuffix(cn, ".name") {
				names[cn] = string(source[c.Node.StartByte():c.Node.EndByte()])
			}
		}

		for _, c := range match.Captures {
			cn := captureNames[c.Index]
			rule, ok := a.ruleFor(cn)
			if !ok || rule.isImport {
				continue
			}
			node := c.Node
			start := node.StartPosition()
			end := node.EndPosition()
			name := names[cn+".name"]
			if name == "" {
				name = fmt.Sprintf("<anonymous:%d>", seq)
			}
			seq++

			entities = append(entities, types.CodeEntity{
				ID:         fmt.Sprintf("%s:%d:%d:%s", filePath, start.Row+1, start.Column+1, name),
				EntityType: rule.entityType,
				Name:       name,
				FilePath:   filePath,
				LineRange:  &types.LineRange{Start: int(start.Row) + 1, End: int(end.Row) + 1},
				SourceCode: string(source[node.StartByte():node.EndByte()]),
				Properties: map[string]any{
					"byte_range": [2]int{int(node.StartByte()), int(node.EndByte())},
					"capture":    cn,
				},
			})
		}
	}
	return entities, nil
}

// ParseSource builds a ParseIndex with parent/child links derived from
// byte-range containment among the entities ExtractCodeEntities returns,
// so detectors that need containment (e.g. "is this method inside this
// class") have it without re-walking the tree.
func (a *treeSitterAdapter) ParseSource(source []byte, filePath string) (*types.ParseIndex, error) {
	entities, err := a.ExtractCodeEntities(source, filePath)
	if err != nil {
		return nil, err
	}
	idx := types.NewParseIndex()

	// Each entity's parent is the narrowest other entity whose byte span
	// encloses it with a different width — O(n^2) but n is the entity
	// count of one file, not the whole repo.
	byStart := a.entityStartEnd(entities)
	for i := range entities {
		e := &entities[i]
		parent := ""
		bestWidth := -1
		for j := range entities {
			if i == j {
				continue
			}
			aS, aE := byStart[i][0], byStart[i][1]
			bS, bE := byStart[j][0], byStart[j][1]
			if bS <= aS && aE <= bE && (bE-bS) != (aE-aS) {
				width := bE - bS
				if bestWidth == -1 || width < bestWidth {
					bestWidth = width
					parent = entities[j].ID
				}
			}
		}
		idx.Add(types.ParsedEntity{
			ID:       e.ID,
			Kind:     types.EntityKind(e.EntityType),
			Name:     e.Name,
			Parent:   parent,
			Location: types.NewSourceLocation(filePath, e.LineRange.Start, e.LineRange.End, 1, 1),
			Metadata: e.Properties,
		})
	}
	// Fill Children from the parent links just assigned.
	for id, pe := range idx.Entities {
		if pe.Parent == "" {
			continue
		}
		parent := idx.Entities[pe.Parent]
		parent.Children = append(parent.Children, id)
		idx.Entities[pe.Parent] = parent
	}
	return idx, nil
}

func (a *treeSitterAdapter) entityStartEnd(entities []types.CodeEntity) [][2]int {
	out := make([][2]int, len(entities))
	for i, e := range entities {
		s, end, ok := e.ByteRange()
		if !ok {
			continue
		}
		out[i] = [2]int{s, end}
	}
	return out
}

// ExtractImports runs the adapter's query restricted to import-tagged
// captures and returns one ImportStatement per match.
func (a *treeSitterAdapter) ExtractImports(source []byte) ([]types.ImportStatement, error) {
	if a.query == nil {
		return nil, nil
	}
	parser := a.NewParser()
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, verrors.NewAdapterError(a.name, "", fmt.Errorf("parse returned nil"))
	}
	defer tree.Close()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(a.query, tree.RootNode(), source)
	captureNames := a.query.CaptureNames()

	var imports []types.ImportStatement
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, c := range match.Captures {
			cn := captureNames[c.Index]
			rule, ok := a.ruleFor(cn)
			if !ok || !rule.isImport {
				continue
			}
			text := string(source[c.Node.StartByte():c.Node.EndByte()])
			imports = append(imports, types.ImportStatement{Module: cleanImportText(text)})
		}
	}
	return imports, nil
}

func hasSuffix(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	return s[len(s)-len(suffix):] == suffix
}

func cleanImportText(s string) string {
	// Strip the most common import-statement decoration (quotes, leading
	// keywords) without attempting a full per-language grammar here; the
	// module path is what downstream import resolution keys on.
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\'' || c == ';' {
			continue
		}
		out = append(out, c)
	}
	return trimSpace(string(out))
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
