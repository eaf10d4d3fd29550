package lsh

import "math"

// Index is the banded LSH structure: num_bands independent hash maps,
// each keyed by the hash of one band's signature slice, per spec.md
// §4.6.4.
type Index struct {
	numBands int
	rows     int
	bands    []map[uint64][]string
	entities map[string]Signature
}

// NewIndex builds an empty index for signatures of length numHashes,
// banded into numBands groups of numHashes/numBands rows each.
func NewIndex(numHashes, numBands int) *Index {
	if numBands <= 0 {
		numBands = 1
	}
	rows := numHashes / numBands
	if rows <= 0 {
		rows = numHashes
		numBands = 1
	}
	bands := make([]map[uint64][]string, numBands)
	for i := range bands {
		bands[i] = make(map[uint64][]string)
	}
	return &Index{numBands: numBands, rows: rows, bands: bands, entities: make(map[string]Signature)}
}

// Insert adds entityID's signature to every band bucket it falls into.
func (idx *Index) Insert(entityID string, sig Signature) {
	idx.entities[entityID] = sig
	for b := 0; b < idx.numBands; b++ {
		start := b * idx.rows
		end := start + idx.rows
		if end > len(sig) {
			end = len(sig)
		}
		if start >= end {
			continue
		}
		h := hashBand(sig[start:end])
		idx.bands[b][h] = append(idx.bands[b][h], entityID)
	}
}

// Candidates returns the union of bucket members across every band
// entityID falls into, minus entityID itself, capped at maxCandidates
// (0 = unlimited).
func (idx *Index) Candidates(entityID string, maxCandidates int) []string {
	sig, ok := idx.entities[entityID]
	if !ok {
		return nil
	}
	seen := map[string]bool{entityID: true}
	var out []string
	for b := 0; b < idx.numBands; b++ {
		start := b * idx.rows
		end := start + idx.rows
		if end > len(sig) {
			end = len(sig)
		}
		if start >= end {
			continue
		}
		h := hashBand(sig[start:end])
		for _, id := range idx.bands[b][h] {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
			if maxCandidates > 0 && len(out) >= maxCandidates {
				return out
			}
		}
	}
	return out
}

// hashBand folds a signature slice into one u64 via xxhash over its raw
// bytes, so two entities with an identical band slice land in the same
// bucket regardless of slice length.
func hashBand(slice Signature) uint64 {
	buf := make([]byte, len(slice)*8)
	for i, v := range slice {
		for j := 0; j < 8; j++ {
			buf[i*8+j] = byte(v >> (8 * j))
		}
	}
	return seededHash(string(buf), 0)
}

// BandProbability returns the probability two entities with true
// Jaccard similarity j share at least one band, 1-(1-j^rows)^numBands,
// the S-curve spec.md §4.6.4 uses to justify (num_bands, rows) choices.
func (idx *Index) BandProbability(j float64) float64 {
	pRow := math.Pow(j, float64(idx.rows))
	return 1 - math.Pow(1-pRow, float64(idx.numBands))
}
