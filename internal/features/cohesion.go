package features

import (
	"math"
	"sort"
	"strings"

	"github.com/standardbeagle/valknut-go/internal/types"
)

// SymbolBag is the token multiset one entity contributes to cohesion
// analysis: name tokens, signature tokens, and referenced symbols,
// mirroring the original implementation's ExtractedSymbols three-part
// text build (kind, qualified name, tokenized name, referenced symbols).
type SymbolBag struct {
	EntityID string
	Tokens   []string
}

// TfIdfCorpus accumulates document frequencies across entities so it can
// weight each entity's symbols by how distinctive they are, the same
// two-phase add-then-query shape as the original TfIdfCalculator.
type TfIdfCorpus struct {
	docFreq   map[string]int
	totalDocs int
}

func NewTfIdfCorpus() *TfIdfCorpus {
	return &TfIdfCorpus{docFreq: make(map[string]int)}
}

// AddDocument registers one entity's unique token set for IDF purposes.
func (c *TfIdfCorpus) AddDocument(tokens []string) {
	c.totalDocs++
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		c.docFreq[t]++
	}
}

func (c *TfIdfCorpus) termFrequency(term string, document []string) float64 {
	count := 0
	for _, t := range document {
		if t == term {
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return 1 + logApprox(float64(count))
}

func (c *TfIdfCorpus) inverseDocFrequency(term string) float64 {
	df := float64(c.docFreq[term])
	n := float64(c.totalDocs)
	return logApprox((n + 1) / (df + 1))
}

// Weight returns the TF-IDF weight of term within document.
func (c *TfIdfCorpus) Weight(term string, document []string) float64 {
	return c.termFrequency(term, document) * c.inverseDocFrequency(term)
}

// SelectTopSymbols keeps the document's unique tokens in descending
// weight order, up to cumMassThreshold of total weight mass, the same
// cumulative-mass selection rule the original implementation uses before
// an embedding call (dropped here — no embedding model is available per
// non-goals, so selected symbols feed term-vector cohesion directly).
func (c *TfIdfCorpus) SelectTopSymbols(document []string, cumMassThreshold float64) []string {
	if len(document) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	type weighted struct {
		term   string
		weight float64
	}
	var uniq []weighted
	for _, t := range document {
		if seen[t] {
			continue
		}
		seen[t] = true
		uniq = append(uniq, weighted{term: t, weight: c.Weight(t, document)})
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].weight > uniq[j].weight })

	total := 0.0
	for _, u := range uniq {
		total += u.weight
	}
	if total <= 0 {
		out := make([]string, len(uniq))
		for i, u := range uniq {
			out[i] = u.term
		}
		return out
	}
	var out []string
	cum := 0.0
	for _, u := range uniq {
		out = append(out, u.term)
		cum += u.weight
		if cum/total >= cumMassThreshold {
			break
		}
	}
	return out
}

// termVector builds a sparse term-frequency vector used as this module's
// stand-in for a dense embedding (no embedding model is wired per
// non-goals): cosine similarity over TF-IDF-weighted term counts plays
// the same role the original's cosine-over-embeddings does.
func termVector(tokens []string, corpus *TfIdfCorpus) map[string]float64 {
	v := make(map[string]float64)
	for _, t := range tokens {
		v[t] += corpus.Weight(t, tokens)
	}
	return v
}

func cosineSimilarity(a, b map[string]float64) float64 {
	var dot, na, nb float64
	for k, av := range a {
		na += av * av
		if bv, ok := b[k]; ok {
			dot += av * bv
		}
	}
	for _, bv := range b {
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// RobustCentroid computes a trimmed-mean term-vector centroid: an initial
// centroid from all vectors, similarities to it, then a re-centroid over
// the kept subset after dropping the lowest-similarity trimPercent
// fraction, ported from the original's two-pass robust_centroid.
func RobustCentroid(vectors []map[string]float64, trimPercent float64) map[string]float64 {
	if len(vectors) == 0 {
		return nil
	}
	if len(vectors) == 1 {
		return vectors[0]
	}
	initial := meanVector(vectors)

	type sim struct {
		idx   int
		score float64
	}
	sims := make([]sim, len(vectors))
	for i, v := range vectors {
		sims[i] = sim{idx: i, score: cosineSimilarity(v, initial)}
	}
	sort.Slice(sims, func(i, j int) bool { return sims[i].score < sims[j].score })

	trimCount := int(float64(len(vectors)) * trimPercent)
	keepCount := len(vectors) - trimCount
	if keepCount < 1 {
		keepCount = 1
	}
	kept := make([]map[string]float64, 0, keepCount)
	for _, s := range sims[len(sims)-keepCount:] {
		kept = append(kept, vectors[s.idx])
	}
	return meanVector(kept)
}

func meanVector(vectors []map[string]float64) map[string]float64 {
	sum := make(map[string]float64)
	for _, v := range vectors {
		for k, val := range v {
			sum[k] += val
		}
	}
	n := float64(len(vectors))
	for k := range sum {
		sum[k] /= n
	}
	return sum
}

// CohesionScore is the mean cosine similarity of each vector to the
// robust centroid of the group, matching the original's
// ||S||/n-equivalent mean-to-centroid definition.
func CohesionScore(vectors []map[string]float64, trimPercent float64) float64 {
	if len(vectors) < 2 {
		return 1.0
	}
	centroid := RobustCentroid(vectors, trimPercent)
	sum := 0.0
	for _, v := range vectors {
		sum += cosineSimilarity(v, centroid)
	}
	return sum / float64(len(vectors))
}

// BuildSymbolBag tokenizes one entity's name and referenced-import
// symbols into the document TfIdfCorpus consumes; signature/doc tokens
// are intentionally omitted since ParsedEntity carries no signature
// text separate from SourceCode.
func BuildSymbolBag(entity types.CodeEntity, referenced []string) SymbolBag {
	tokens := []string{strings.ToLower(string(entity.EntityType))}
	tokens = append(tokens, splitIdentifier(entity.Name)...)
	for _, r := range referenced {
		tokens = append(tokens, strings.ToLower(r))
	}
	return SymbolBag{EntityID: entity.ID, Tokens: tokens}
}

// splitIdentifier breaks camelCase/snake_case/PascalCase names into
// lowercase word tokens, the same name-tokenization the original
// performs before TF-IDF weighting ("getUserName" -> "get","user","name").
func splitIdentifier(name string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.':
			flush()
		case r >= 'A' && r <= 'Z' && i > 0 && !(runes[i-1] >= 'A' && runes[i-1] <= 'Z'):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

// DocCodeAlignment scores how much of a doc comment's vocabulary appears
// in the entity's own name/referenced-symbol tokens, a cheap proxy for
// the original's doc-summary-in-embedding signal that needs no model.
func DocCodeAlignment(docComment string, codeTokens []string) float64 {
	docTokens := strings.Fields(strings.ToLower(docComment))
	if len(docTokens) == 0 {
		return 0
	}
	codeSet := make(map[string]bool, len(codeTokens))
	for _, t := range codeTokens {
		codeSet[strings.ToLower(t)] = true
	}
	matches := 0
	for _, t := range docTokens {
		if codeSet[t] {
			matches++
		}
	}
	return float64(matches) / float64(len(docTokens))
}
