package structure

import (
	"github.com/standardbeagle/valknut-go/internal/config"
	"github.com/standardbeagle/valknut-go/internal/types"
)

// Analyze builds the dependency graph for files and partitions it,
// returning the combined StructureResult the stage orchestrator composes
// into ComprehensiveAnalysisResult.
func Analyze(files []FileInput, extensions []string, cfg config.StructureConfig) types.StructureResult {
	graph := BuildGraph(files, extensions)
	partitions := Partition(graph, cfg)
	return types.StructureResult{
		Graph:      graph,
		Partitions: partitions,
		Enabled:    true,
	}
}
