package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/valknut-go/internal/config"
	"github.com/standardbeagle/valknut-go/internal/types"
)

func TestBuildGraph_ResolvesRelativeImport(t *testing.T) {
	files := []FileInput{
		{Path: "src/a.js", Loc: 10, Imports: []types.ImportStatement{{Module: "./b"}}},
		{Path: "src/b.js", Loc: 10},
	}
	g := BuildGraph(files, []string{".js"})
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "src/a.js", g.Edges[0].From)
	assert.Equal(t, "src/b.js", g.Edges[0].To)
}

func TestBuildGraph_ResolvesPythonDottedModule(t *testing.T) {
	files := []FileInput{
		{Path: "pkg/a.py", Loc: 5, Imports: []types.ImportStatement{{Module: "pkg.sub"}}},
		{Path: "pkg/sub.py", Loc: 5},
	}
	g := BuildGraph(files, []string{".py"})
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "pkg/sub.py", g.Edges[0].To)
}

func TestBuildGraph_ResolvesPythonRelativeDot(t *testing.T) {
	files := []FileInput{
		{Path: "pkg/sub/a.py", Loc: 5, Imports: []types.ImportStatement{{Module: "..util"}}},
		{Path: "pkg/util.py", Loc: 5},
	}
	g := BuildGraph(files, []string{".py"})
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "pkg/util.py", g.Edges[0].To)
}

func TestBuildGraph_ResolvesDirectoryIndexFile(t *testing.T) {
	files := []FileInput{
		{Path: "src/a.ts", Loc: 5, Imports: []types.ImportStatement{{Module: "./widgets"}}},
		{Path: "src/widgets/index.ts", Loc: 5},
	}
	g := BuildGraph(files, []string{".ts"})
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "src/widgets/index.ts", g.Edges[0].To)
}

func TestBuildGraph_UnresolvedImportIsDropped(t *testing.T) {
	files := []FileInput{
		{Path: "src/a.go", Loc: 5, Imports: []types.ImportStatement{{Module: "fmt"}}},
	}
	g := BuildGraph(files, []string{".go"})
	assert.Empty(t, g.Edges)
}

func TestPartition_SmallGraphExhaustiveBipartition(t *testing.T) {
	g := types.NewDependencyGraph()
	g.AddNode("a.py", 100)
	g.AddNode("b.py", 100)
	g.AddNode("c.py", 100)
	g.AddNode("d.py", 100)
	g.AddEdge("a.py", "b.py", 2)
	g.AddEdge("c.py", "d.py", 2)
	g.AddEdge("a.py", "c.py", 1)

	partitions := Partition(g, config.StructureConfig{BalanceTolerance: 0.1, MinClusters: 2, MaxClusters: 2, TargetLocPerSubdir: 100})
	require.Len(t, partitions, 2)

	var sideWithA, sideWithC []string
	for _, p := range partitions {
		for _, f := range p.Files {
			if f == "a.py" {
				sideWithA = p.Files
			}
			if f == "c.py" {
				sideWithC = p.Files
			}
		}
	}
	require.NotNil(t, sideWithA)
	require.NotNil(t, sideWithC)
	assert.ElementsMatch(t, []string{"a.py", "b.py"}, sideWithA)
	assert.ElementsMatch(t, []string{"c.py", "d.py"}, sideWithC)
}

func TestPartition_EmptyGraphReturnsNoPartitions(t *testing.T) {
	g := types.NewDependencyGraph()
	partitions := Partition(g, config.StructureConfig{MinClusters: 2, MaxClusters: 4, TargetLocPerSubdir: 100})
	assert.Empty(t, partitions)
}

func TestPartition_LargeGraphRespectsTargetClusterCount(t *testing.T) {
	g := types.NewDependencyGraph()
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	for _, n := range names {
		g.AddNode(n+".go", 100)
	}
	// Two dense cliques, lightly cross-linked.
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			g.AddEdge(names[i]+".go", names[j]+".go", 1)
		}
	}
	for i := 5; i < 10; i++ {
		for j := i + 1; j < 10; j++ {
			g.AddEdge(names[i]+".go", names[j]+".go", 1)
		}
	}
	g.AddEdge("e.go", "f.go", 1)

	partitions := Partition(g, config.StructureConfig{
		BalanceTolerance:   0.2,
		MinClusters:        2,
		MaxClusters:        2,
		TargetLocPerSubdir: 500,
	})
	require.Len(t, partitions, 2)
	totalFiles := 0
	for _, p := range partitions {
		totalFiles += len(p.Files)
	}
	assert.Equal(t, 10, totalFiles)
}

func TestPartitionName_PrefersSharedMeaningfulToken(t *testing.T) {
	used := make(map[string]bool)
	name := partitionName([]string{"internal/auth/user_auth.go", "internal/auth/auth_login.go"}, nil, 0, used)
	assert.Equal(t, "auth", name)
}

func TestPartitionName_FallsBackToConfiguredList(t *testing.T) {
	used := make(map[string]bool)
	name := partitionName([]string{"x.go", "y.go"}, []string{"core", "misc"}, 0, used)
	assert.Equal(t, "core", name)
}
