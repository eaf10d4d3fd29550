// Package astsvc is the AST Service (spec.md §4.2): parse-and-cache for
// tree-sitter trees, keyed by (path, content hash). Adapted from the
// teacher's internal/parser.TreeSitterParser, which lazily initializes one
// *tree_sitter.Parser per language and keeps the parsed tree alive for
// reuse; here the lazy-init table is kept but the cache itself is the
// shared internal/cache.Cache so eviction policy is uniform across the
// pipeline (spec.md §5).
package astsvc

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/valknut-go/internal/cache"
	"github.com/standardbeagle/valknut-go/internal/verrors"
)

// CachedTree is the immutable, shareable parse result handed to detectors.
// Callers must not mutate the tree; go-tree-sitter trees are themselves
// read-only once parsed.
type CachedTree struct {
	Tree        *tree_sitter.Tree
	Content     []byte
	Language    string
	ContentHash uint64
}

// RootNode returns the tree's root node for traversal.
func (c *CachedTree) RootNode() tree_sitter.Node {
	return c.Tree.RootNode()
}

// inflight coalesces concurrent parses of the same (path, hash): the
// service guarantees at most one concurrent parse per key (spec.md §4.2).
type inflight struct {
	mu    sync.Mutex
	calls map[string]*flightCall
}

type flightCall struct {
	wg     sync.WaitGroup
	result *CachedTree
	err    error
}

func newInflight() *inflight {
	return &inflight{calls: make(map[string]*flightCall)}
}

func (f *inflight) do(key string, fn func() (*CachedTree, error)) (*CachedTree, error) {
	f.mu.Lock()
	if call, ok := f.calls[key]; ok {
		f.mu.Unlock()
		call.wg.Wait()
		return call.result, call.err
	}
	call := &flightCall{}
	call.wg.Add(1)
	f.calls[key] = call
	f.mu.Unlock()

	call.result, call.err = fn()
	call.wg.Done()

	f.mu.Lock()
	delete(f.calls, key)
	f.mu.Unlock()

	return call.result, call.err
}

// Service owns the per-language tree-sitter parsers and the shared AST
// cache. One Service is created per analysis run (spec.md §9: no mutable
// singletons — instances are owned by the AnalysisContext).
type Service struct {
	mu      sync.Mutex
	parsers map[string]*tree_sitter.Parser
	cache   *cache.Cache[*CachedTree]
	flight  *inflight
}

// New creates an AST service with no parsers registered and an LRU cache
// capped at maxCacheEntries; parsers are installed per extension with
// RegisterLanguage.
func New(maxCacheEntries int) *Service {
	return &Service{
		parsers: make(map[string]*tree_sitter.Parser),
		cache:   cache.New[*CachedTree](maxCacheEntries),
		flight:  newInflight(),
	}
}

// RegisterLanguage installs the parser for a file extension (e.g. ".go").
// Safe to call concurrently with GetAST; registration only ever adds.
func (s *Service) RegisterLanguage(ext string, parser *tree_sitter.Parser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parsers[ext] = parser
}

func (s *Service) parserFor(ext string) (*tree_sitter.Parser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parsers[ext]
	return p, ok
}

// GetAST returns the cached or freshly parsed tree for (path, content).
// ctx is honored only as a cancellation check before an expensive parse;
// go-tree-sitter's Parse call itself is not cancellable mid-flight.
func (s *Service) GetAST(ctx context.Context, path, ext string, content []byte) (*CachedTree, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	hash := xxhash.Sum64(content)
	key := path + "#" + ext + "#" + uint64ToString(hash)

	// The cache is consulted once, inside the inflight call, so a call
	// that parses records one miss, and a goroutine arriving after
	// another finished the parse finds the tree in the cache.
	return s.flight.do(key, func() (*CachedTree, error) {
		if ct, ok := s.cache.Get(key); ok && ct.ContentHash == hash {
			return ct, nil
		}

		parser, ok := s.parserFor(ext)
		if !ok {
			return nil, verrors.NewParseError(path, errUnsupportedExt(ext))
		}

		tree := parser.Parse(content, nil)
		if tree == nil {
			return nil, verrors.NewParseError(path, errParseFailed(ext))
		}

		ct := &CachedTree{Tree: tree, Content: content, Language: ext, ContentHash: hash}
		s.cache.Put(key, ct)
		return ct, nil
	})
}

// Stats exposes the underlying cache's hit/miss/eviction counters.
func (s *Service) Stats() cache.Stats {
	return s.cache.Stats()
}

func uint64ToString(v uint64) string {
	const digits = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf)
}

type extError string

func (e extError) Error() string { return string(e) }

func errUnsupportedExt(ext string) error { return extError("no parser registered for extension " + ext) }
func errParseFailed(ext string) error    { return extError("tree-sitter parse returned nil for " + ext) }
