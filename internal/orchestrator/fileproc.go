package orchestrator

import (
	"context"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/standardbeagle/valknut-go/internal/discovery"
	"github.com/standardbeagle/valknut-go/internal/types"
	"github.com/standardbeagle/valknut-go/internal/vctx"
)

// fileUnit is one discovered file's extraction result: the entities and
// imports its language adapter produced, plus enough bookkeeping for the
// structure and aggregation stages.
type fileUnit struct {
	Path     string
	Language string
	Content  []byte
	Entities []types.CodeEntity
	Imports  []types.ImportStatement
	LOC      int
}

type fileWarning struct {
	path string
	err  error
}

// extractFiles runs adapter extraction over every discovered file,
// batchSize files in flight at a time via a weighted semaphore, the
// generalized form of the teacher's channel-based worker pool
// (internal/analysis/relationship_analyzer.go). A file whose extension has
// no registered adapter, or whose read/parse fails, contributes a
// fileWarning instead of aborting the batch.
func extractFiles(ctx context.Context, actx *vctx.AnalysisContext, files []discovery.DiscoveredFile, batchSize int) ([]fileUnit, []fileWarning) {
	units := make([]fileUnit, len(files))
	warningsPerFile := make([]*fileWarning, len(files))

	sem := semaphore.NewWeighted(int64(batchSize))
	g, gctx := errgroup.WithContext(context.Background())

	for i, f := range files {
		i, f := i, f
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			select {
			case <-ctx.Done():
				warningsPerFile[i] = &fileWarning{path: f.Path, err: ctx.Err()}
				return nil
			default:
			}

			unit, err := processFile(actx, f)
			if err != nil {
				warningsPerFile[i] = &fileWarning{path: f.Path, err: err}
				return nil
			}
			units[i] = unit
			return nil
		})
	}
	_ = g.Wait()

	out := make([]fileUnit, 0, len(files))
	var warnings []fileWarning
	for i, u := range units {
		if warningsPerFile[i] != nil {
			warnings = append(warnings, *warningsPerFile[i])
			continue
		}
		out = append(out, u)
	}
	return out, warnings
}

func processFile(actx *vctx.AnalysisContext, f discovery.DiscoveredFile) (fileUnit, error) {
	ext := path.Ext(f.Path)
	adapter, ok := actx.Adapters.For(ext)
	if !ok {
		return fileUnit{}, errUnsupported(ext)
	}

	content, err := discovery.ReadFile(f)
	if err != nil {
		return fileUnit{}, err
	}

	entities, err := adapter.ExtractCodeEntities(content, f.Path)
	if err != nil {
		return fileUnit{}, err
	}
	imports, err := adapter.ExtractImports(content)
	if err != nil {
		return fileUnit{}, err
	}

	return fileUnit{
		Path:     f.Path,
		Language: adapter.Name(),
		Content:  content,
		Entities: entities,
		Imports:  imports,
		LOC:      countLines(content),
	}, nil
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := 1
	for _, b := range content {
		if b == '\n' {
			n++
		}
	}
	return n
}

type unsupportedExtError string

func (e unsupportedExtError) Error() string { return "no language adapter for extension " + string(e) }

func errUnsupported(ext string) error {
	if ext == "" {
		ext = "(none)"
	}
	return unsupportedExtError(strings.ToLower(ext))
}
