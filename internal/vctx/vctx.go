// Package vctx wires the pipeline's shared registries (interner, AST
// cache/service, language adapter registry) into one explicitly-passed AnalysisContext,
// replacing the teacher's global-singleton registries (internal/core's
// package-level sync.Once caches) with a value threaded through call
// chains, per spec.md §9's re-architecture note.
package vctx

import (
	"github.com/standardbeagle/valknut-go/internal/astsvc"
	"github.com/standardbeagle/valknut-go/internal/intern"
	"github.com/standardbeagle/valknut-go/internal/langadapter"
)

// AnalysisContext bundles everything a single analysis run needs: the
// string interner, the shared AST cache/service, and the language
// adapter registry. One AnalysisContext is built per run and passed down
// explicitly rather than reached for through package globals.
type AnalysisContext struct {
	Interner  *intern.Table
	ASTs      *astsvc.Service
	Adapters  *langadapter.Registry
}

// Options configures the sizes of the shared caches; zero values fall
// back to sane defaults.
type Options struct {
	ASTCacheEntries int
}

// New builds an AnalysisContext with the default language adapter
// registry and freshly registered tree-sitter parsers for every adapter
// extension, so a single astsvc.Service instance backs the whole run.
func New(opts Options) *AnalysisContext {
	if opts.ASTCacheEntries <= 0 {
		opts.ASTCacheEntries = 512
	}
	adapters := langadapter.DefaultRegistry()
	asts := astsvc.New(opts.ASTCacheEntries)
	for _, ext := range adapters.Extensions() {
		adapter, ok := adapters.For(ext)
		if !ok {
			continue
		}
		asts.RegisterLanguage(ext, adapter.NewParser())
	}
	return &AnalysisContext{
		Interner: intern.New(),
		ASTs:     asts,
		Adapters: adapters,
	}
}
