package lsh

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// Signature is a fixed-length MinHash signature over u64 cells, each
// initialized to math.MaxUint64 and only ever lowered.
type Signature []uint64

// NewSignature builds a seeded-hash MinHash signature over shingles.
// Each hash lane i is an independent xxhash run seeded by i (xxhash has
// no native seed parameter, so the seed is folded into the digest input
// the way a salted hash construction would), matching spec.md's
// `h_i(s)` family of distinct seeded 64-bit hashes.
func NewSignature(shingles []string, numHashes int) Signature {
	sig := make(Signature, numHashes)
	for i := range sig {
		sig[i] = math.MaxUint64
	}
	if len(shingles) == 0 {
		return sig
	}

	var lane4 [4]uint64
	i := 0
	for ; i+4 <= numHashes; i += 4 {
		lane4[0], lane4[1], lane4[2], lane4[3] = 0, 1, 2, 3
		for _, s := range shingles {
			h0 := seededHash(s, uint64(i+0))
			h1 := seededHash(s, uint64(i+1))
			h2 := seededHash(s, uint64(i+2))
			h3 := seededHash(s, uint64(i+3))
			if h0 < sig[i+0] {
				sig[i+0] = h0
			}
			if h1 < sig[i+1] {
				sig[i+1] = h1
			}
			if h2 < sig[i+2] {
				sig[i+2] = h2
			}
			if h3 < sig[i+3] {
				sig[i+3] = h3
			}
		}
	}
	for ; i < numHashes; i++ {
		for _, s := range shingles {
			h := seededHash(s, uint64(i))
			if h < sig[i] {
				sig[i] = h
			}
		}
	}
	return sig
}

// seededHash derives h_i(s) by hashing the seed and the shingle bytes
// together through one xxhash digest, giving num_hashes independent
// functions from a single fast hash primitive.
func seededHash(s string, seed uint64) uint64 {
	d := xxhash.New()
	var seedBuf [8]byte
	for i := 0; i < 8; i++ {
		seedBuf[i] = byte(seed >> (8 * i))
	}
	_, _ = d.Write(seedBuf[:])
	_, _ = d.Write([]byte(s))
	return d.Sum64()
}

// Jaccard estimates similarity as the fraction of equal signature cells.
// Two signatures must share length (spec.md §3's comparison contract).
func (s Signature) Jaccard(other Signature) float64 {
	if len(s) != len(other) || len(s) == 0 {
		return 0
	}
	equal := 0
	for i := range s {
		if s[i] == other[i] {
			equal++
		}
	}
	return float64(equal) / float64(len(s))
}

// WeightedSignature is the TF-IDF-denoised MinHash variant: f64 cells,
// compared by approximate equality rather than exact match.
type WeightedSignature []float64

const weightedEqEpsilon = 1e-6

// IdfTable accumulates shingle document frequencies across an entity
// corpus to compute idf(g) = ln((1+N)/(1+df(g))) + 1 per spec.md §4.6.3.
type IdfTable struct {
	docFreq map[string]int
	n       int
}

func NewIdfTable() *IdfTable {
	return &IdfTable{docFreq: make(map[string]int)}
}

// AddDocument registers one entity's unique shingle set.
func (t *IdfTable) AddDocument(shingles []string) {
	t.n++
	seen := make(map[string]bool, len(shingles))
	for _, g := range shingles {
		if seen[g] {
			continue
		}
		seen[g] = true
		t.docFreq[g]++
	}
}

// Idf returns idf(g) for shingle g.
func (t *IdfTable) Idf(g string) float64 {
	df := float64(t.docFreq[g])
	n := float64(t.n)
	return math.Log((1+n)/(1+df)) + 1
}

// NewWeightedSignature computes the TF-IDF weighted MinHash: for each
// shingle g, weight(g) is the sum of idf(g) over its occurrences in this
// entity, and lane i is the minimum over g of hash_i(g)/max(weight(g), 1e-8).
func NewWeightedSignature(shingles []string, idf *IdfTable, numHashes int) WeightedSignature {
	sig := make(WeightedSignature, numHashes)
	for i := range sig {
		sig[i] = math.Inf(1)
	}
	if len(shingles) == 0 {
		return sig
	}

	weight := make(map[string]float64, len(shingles))
	for _, g := range shingles {
		weight[g] += idf.Idf(g)
	}

	for g, w := range weight {
		if w < 1e-8 {
			w = 1e-8
		}
		for i := 0; i < numHashes; i++ {
			h := float64(seededHash(g, uint64(i))) / w
			if h < sig[i] {
				sig[i] = h
			}
		}
	}
	return sig
}

// Similarity is the fraction of lanes equal within weightedEqEpsilon.
func (s WeightedSignature) Similarity(other WeightedSignature) float64 {
	if len(s) != len(other) || len(s) == 0 {
		return 0
	}
	equal := 0
	for i := range s {
		if math.Abs(s[i]-other[i]) <= weightedEqEpsilon {
			equal++
		}
	}
	return float64(equal) / float64(len(s))
}

