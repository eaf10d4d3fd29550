package lsh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

func TestNormalizeStripsCommentsAndBlankLines(t *testing.T) {
	src := "a := 1\n\n// comment\nb := 2\n# hash comment\nc := 3"
	got := Normalize(src)
	assert.Equal(t, "a := 1\nb := 2\nc := 3", got)
}

func TestTokenizeSplitsOnWhitespace(t *testing.T) {
	toks := Tokenize("foo(bar, baz)", false)
	assert.Equal(t, []string{"foo(bar,", "baz)"}, toks)
}

func TestTokenizeAndShingles_LiteralSpecScenario(t *testing.T) {
	toks := Tokenize("def a(): return 1", false)
	assert.Equal(t, []string{"def", "a():", "return", "1"}, toks)

	shingles := Shingles(toks, 3)
	assert.Len(t, shingles, 2)
	assert.Equal(t, []string{"def a(): return", "a(): return 1"}, shingles)
}

func TestShinglesProducesKGrams(t *testing.T) {
	toks := []string{"a", "b", "c", "d"}
	shingles := Shingles(toks, 3)
	assert.Equal(t, []string{"a b c", "b c d"}, shingles)
}

func TestSignature_IdenticalTextsHaveJaccardOne(t *testing.T) {
	shingles := Shingles(Tokenize(Normalize("func f() { return 1 }"), false), 3)
	sigA := NewSignature(shingles, 64)
	sigB := NewSignature(shingles, 64)
	assert.Equal(t, 1.0, sigA.Jaccard(sigB))
}

func TestSignature_DifferentTextsHaveLowerJaccard(t *testing.T) {
	sigA := NewSignature(Shingles(Tokenize(Normalize("func f() { return 1 }"), false), 3), 64)
	sigB := NewSignature(Shingles(Tokenize(Normalize("totally unrelated text about cats and dogs"), false), 3), 64)
	assert.Less(t, sigA.Jaccard(sigB), 1.0)
}

func TestWeightedSignature_RareShinglesWeightMore(t *testing.T) {
	idf := NewIdfTable()
	idf.AddDocument([]string{"common one", "rare alpha"})
	idf.AddDocument([]string{"common one", "rare beta"})
	idf.AddDocument([]string{"common one"})

	assert.Greater(t, idf.Idf("rare alpha"), idf.Idf("common one"))
}

func TestIndex_CandidatesFindsSharedBandMembers(t *testing.T) {
	idx := NewIndex(16, 4)
	shingles := Shingles(Tokenize(Normalize("func f() { if x { return 1 } }"), false), 3)
	sig := NewSignature(shingles, 16)
	idx.Insert("a", sig)
	idx.Insert("b", sig)

	candidates := idx.Candidates("a", 0)
	require.Len(t, candidates, 1)
	assert.Equal(t, "b", candidates[0])
}

func TestIndex_BandProbabilityIncreasesWithSimilarity(t *testing.T) {
	idx := NewIndex(20, 5)
	assert.Greater(t, idx.BandProbability(0.9), idx.BandProbability(0.1))
}

func parseGoSrc(t *testing.T, src string) tree_sitter.Node {
	t.Helper()
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_go.Language())
	require.NoError(t, parser.SetLanguage(language))
	tree := parser.Parse([]byte(src), nil)
	require.NotNil(t, tree)
	return tree.RootNode()
}

func TestVerify_IdenticalSourceHasSimilarityOne(t *testing.T) {
	root := parseGoSrc(t, "package main\nfunc f() { x := 1; _ = x }\n")
	outcome := Verify(root, root, 1000, 1)
	require.True(t, outcome.Computed)
	assert.Equal(t, 1.0, outcome.Similarity)
	assert.Equal(t, 0, outcome.EditCost)
}

func TestVerify_DropsPairBelowMinASTNodes(t *testing.T) {
	root := parseGoSrc(t, "package main\n")
	outcome := Verify(root, root, 1000, 10000)
	assert.False(t, outcome.Computed)
}

func TestEngine_DetectClonesFindsNearDuplicatePair(t *testing.T) {
	cfg := Config{
		NumHashes:           32,
		NumBands:            8,
		ShingleSize:         3,
		SimilarityThreshold: 0.5,
		MaxCandidates:       0,
	}
	engine := NewEngine(cfg, 100)
	entities := []EntityInput{
		{ID: "a", FilePath: "a.go", Name: "f", Source: "func f() { x := 1; y := 2; return x + y }"},
		{ID: "b", FilePath: "b.go", Name: "g", Source: "func g() { x := 1; y := 2; return x + y }"},
		{ID: "c", FilePath: "c.go", Name: "h", Source: "totally unrelated content about rendering pipelines"},
	}
	reports := engine.DetectClones(entities)
	require.NotEmpty(t, reports)
	for _, r := range reports {
		assert.GreaterOrEqual(t, r.Similarity, 0.5)
	}
}
