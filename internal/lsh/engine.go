package lsh

import (
	"strconv"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/valknut-go/internal/cache"
	"github.com/standardbeagle/valknut-go/internal/types"
	"github.com/standardbeagle/valknut-go/internal/vlog"
)

// Config mirrors internal/config.LSHConfig's numeric knobs, kept as an
// independent struct here so this package has no import-cycle dependency
// on internal/config.
type Config struct {
	NumHashes              int
	NumBands               int
	ShingleSize            int
	SimilarityThreshold    float64
	MaxCandidates          int
	UseWeighted            bool
	CaseInsensitive        bool
	APTEDMaxNodes          int
	MinASTNodes            int
	APTEDMaxPairsPerEntity int
}

// EntityInput is one entity's material for clone detection: its source
// text for shingling/signing and, optionally, its parsed root node for
// APTED verification (nil skips verification for that entity).
type EntityInput struct {
	ID       string
	FilePath string
	Name     string
	Source   string
	ASTRoot  *tree_sitter.Node
}

// Engine runs the full pipeline: shingle -> sign -> band -> candidate
// search -> Jaccard score -> optional APTED verify -> dedup.
type Engine struct {
	cfg        Config
	sigCache   *cache.Cache[Signature]
}

// NewEngine returns an Engine backed by a signature cache keyed by
// (content_hash, num_hashes, shingle_size), per spec.md §4.6.2.
func NewEngine(cfg Config, sigCacheSize int) *Engine {
	if cfg.ShingleSize <= 0 {
		cfg.ShingleSize = DefaultShingleSize
	}
	return &Engine{cfg: cfg, sigCache: cache.New[Signature](sigCacheSize)}
}

// signatureFor returns the cached or freshly-computed MinHash signature
// for one entity's source text.
func (e *Engine) signatureFor(contentHash string, source string) (Signature, error) {
	key := contentHash
	return e.sigCache.GetOrCompute(key, func() (Signature, error) {
		normalized := Normalize(source)
		tokens := Tokenize(normalized, e.cfg.CaseInsensitive)
		shingles := Shingles(tokens, e.cfg.ShingleSize)
		return NewSignature(shingles, e.cfg.NumHashes), nil
	})
}

// DetectClones runs the full pipeline over entities and returns
// deduplicated ClonePairReports above the similarity threshold.
func (e *Engine) DetectClones(entities []EntityInput) []types.ClonePairReport {
	idx := NewIndex(e.cfg.NumHashes, e.cfg.NumBands)
	sigs := make(map[string]Signature, len(entities))
	byID := make(map[string]EntityInput, len(entities))

	for _, ent := range entities {
		byID[ent.ID] = ent
		sig, err := e.signatureFor(e.cacheKeyFor(ent.Source), ent.Source)
		if err != nil {
			vlog.Warnf("lsh: signature generation failed for %s: %v", ent.ID, err)
			continue
		}
		sigs[ent.ID] = sig
		idx.Insert(ent.ID, sig)
	}

	seenPairs := make(map[[2]string]bool)
	verifyBudget := make(map[string]int)
	var reports []types.ClonePairReport

	for _, ent := range entities {
		sig, ok := sigs[ent.ID]
		if !ok {
			continue
		}
		candidates := idx.Candidates(ent.ID, e.cfg.MaxCandidates)
		for _, candID := range candidates {
			pairKey := orderedPair(ent.ID, candID)
			if seenPairs[pairKey] {
				continue
			}
			candSig, ok := sigs[candID]
			if !ok {
				continue
			}
			similarity := sig.Jaccard(candSig)
			if similarity < e.cfg.SimilarityThreshold {
				continue
			}
			seenPairs[pairKey] = true

			report := types.ClonePairReport{
				Source:     cloneEndpoint(ent),
				Target:     cloneEndpoint(byID[candID]),
				Similarity: similarity,
			}

			other := byID[candID]
			if e.cfg.APTEDMaxNodes > 0 && ent.ASTRoot != nil && other.ASTRoot != nil &&
				verifyBudget[ent.ID] < e.cfg.APTEDMaxPairsPerEntity {
				verifyBudget[ent.ID]++
				outcome := Verify(*ent.ASTRoot, *other.ASTRoot, e.cfg.APTEDMaxNodes, e.cfg.MinASTNodes)
				if outcome.Computed {
					report.Verification = &types.VerificationResult{
						Similarity: outcome.Similarity,
						EditCost:   outcome.EditCost,
						NodeCountA: outcome.NodeCounts[0],
						NodeCountB: outcome.NodeCounts[1],
						Truncated:  outcome.Truncated,
					}
				}
			}
			reports = append(reports, report)
		}
	}
	return reports
}

func cloneEndpoint(e EntityInput) types.CloneEndpoint {
	return types.CloneEndpoint{EntityID: e.ID, FilePath: e.FilePath, Name: e.Name}
}

func orderedPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// cacheKeyFor builds the cache key spec.md §4.6.2 specifies:
// (content_hash, num_hashes, shingle_size).
func (e *Engine) cacheKeyFor(source string) string {
	h := xxhash.Sum64String(source)
	return strconv.FormatUint(h, 16) + "#" + strconv.Itoa(e.cfg.NumHashes) + "#" + strconv.Itoa(e.cfg.ShingleSize)
}
