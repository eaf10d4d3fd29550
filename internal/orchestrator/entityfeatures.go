package orchestrator

import (
	"context"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/standardbeagle/valknut-go/internal/features"
	"github.com/standardbeagle/valknut-go/internal/types"
	"github.com/standardbeagle/valknut-go/internal/vctx"
	"github.com/standardbeagle/valknut-go/internal/visitor"
)

// computeEntityFeatures runs the unified AST visitor (complexity
// detector) and the text-level refactoring/doc-comment checks over every
// entity, one goroutine per file (entities within a file share that
// file's re-parsed-per-entity tree-sitter parser, which is not itself
// safe for concurrent use). batchSize bounds how many files are
// in flight at once, the same cooperative-batching contract
// extractFiles uses.
func computeEntityFeatures(ctx context.Context, actx *vctx.AnalysisContext, units []fileUnit, batchSize int) (map[string]map[string]float64, []types.RefactoringOpportunity, map[string]float64) {
	var mu sync.Mutex
	complexity := make(map[string]map[string]float64)
	doc := make(map[string]float64)
	var opportunities []types.RefactoringOpportunity

	sem := semaphore.NewWeighted(int64(batchSize))
	g, gctx := errgroup.WithContext(context.Background())

	for _, u := range units {
		u := u
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			fileComplexity, fileOpportunities, fileDoc := processFileEntities(actx, u)

			mu.Lock()
			for id, fm := range fileComplexity {
				complexity[id] = fm
			}
			for id, v := range fileDoc {
				doc[id] = v
			}
			opportunities = append(opportunities, fileOpportunities...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return complexity, opportunities, doc
}

func processFileEntities(actx *vctx.AnalysisContext, u fileUnit) (map[string]map[string]float64, []types.RefactoringOpportunity, map[string]float64) {
	complexity := make(map[string]map[string]float64, len(u.Entities))
	doc := make(map[string]float64, len(u.Entities))
	var opportunities []types.RefactoringOpportunity

	ext := path.Ext(u.Path)
	adapter, ok := actx.Adapters.For(ext)
	if !ok {
		return complexity, opportunities, doc
	}
	parser := adapter.NewParser()
	v := visitor.New(features.NewComplexityDetector())
	lines := strings.Split(string(u.Content), "\n")

	for _, e := range u.Entities {
		tree := parser.Parse([]byte(e.SourceCode), nil)
		var fm map[string]float64
		if tree != nil {
			fm = v.Walk(tree.RootNode(), []byte(e.SourceCode), &e)
			tree.Close()
		}
		complexity[e.ID] = fm

		opportunities = append(opportunities, features.Opportunities(e, fm)...)

		if hasDocComment(lines, e.LineRange) {
			doc[e.ID] = 1
		} else {
			doc[e.ID] = 0
		}
	}
	return complexity, opportunities, doc
}

// hasDocComment checks the line immediately preceding an entity's span for
// a comment marker, the same "attached comment" heuristic used to decide
// whether a function/type is documented when the language adapter does not
// capture doc comments as part of the entity's own query match.
func hasDocComment(lines []string, lr *types.LineRange) bool {
	if lr == nil || lr.Start <= 1 {
		return false
	}
	idx := lr.Start - 2 // zero-based index of the line above the entity's first line
	if idx < 0 || idx >= len(lines) {
		return false
	}
	trimmed := strings.TrimSpace(lines[idx])
	return strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") ||
		strings.HasPrefix(trimmed, "///") || strings.HasPrefix(trimmed, "\"\"\"")
}
