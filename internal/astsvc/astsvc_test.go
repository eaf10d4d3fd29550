package astsvc

import (
	"context"
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoParser(t *testing.T) *tree_sitter.Parser {
	t.Helper()
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_go.Language())
	require.NoError(t, parser.SetLanguage(language))
	return parser
}

func TestService_GetAST_ParsesAndCaches(t *testing.T) {
	svc := New(100)
	svc.RegisterLanguage(".go", newGoParser(t))

	src := []byte("package main\n\nfunc main() {}\n")
	ct, err := svc.GetAST(context.Background(), "main.go", ".go", src)
	require.NoError(t, err)
	assert.Equal(t, "source_file", ct.RootNode().Kind())

	stats := svc.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	ct2, err := svc.GetAST(context.Background(), "main.go", ".go", src)
	require.NoError(t, err)
	assert.Same(t, ct, ct2)

	stats = svc.Stats()
	assert.Equal(t, int64(1), stats.Hits)
}

func TestService_GetAST_ContentChangeInvalidates(t *testing.T) {
	svc := New(100)
	svc.RegisterLanguage(".go", newGoParser(t))

	src1 := []byte("package main\nfunc a() {}\n")
	src2 := []byte("package main\nfunc b() {}\n")

	ct1, err := svc.GetAST(context.Background(), "f.go", ".go", src1)
	require.NoError(t, err)
	ct2, err := svc.GetAST(context.Background(), "f.go", ".go", src2)
	require.NoError(t, err)

	assert.NotEqual(t, ct1.ContentHash, ct2.ContentHash)
}

func TestService_GetAST_UnsupportedExtension(t *testing.T) {
	svc := New(10)
	_, err := svc.GetAST(context.Background(), "f.xyz", ".xyz", []byte("hello"))
	require.Error(t, err)
}

func TestService_GetAST_CancelledContext(t *testing.T) {
	svc := New(10)
	svc.RegisterLanguage(".go", newGoParser(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.GetAST(ctx, "f.go", ".go", []byte("package main"))
	require.ErrorIs(t, err, context.Canceled)
}
