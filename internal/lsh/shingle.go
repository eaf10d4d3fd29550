// Package lsh implements the LSH Engine capability: shingling, MinHash
// and TF-IDF-weighted MinHash signatures, banded LSH candidate search,
// and APTED-verified clone-pair reporting. Normalization strips
// comment/blank lines the way the teacher's DuplicateDetector.normalizeCode
// (internal/analysis/duplicate_detector.go) does, but tokenization follows
// original_source's create_shingles (src/detectors/lsh.rs): split on
// whitespace only, so punctuation stays attached to its word instead of
// becoming its own token.
package lsh

import "strings"

// DefaultShingleSize matches spec.md's k-gram default.
const DefaultShingleSize = 3

// Normalize strips comment-only and blank lines and returns the
// remaining lines joined back with "\n", the same two-line filter the
// teacher's normalizeCode applies before tokenization.
func Normalize(source string) string {
	lines := strings.Split(source, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n")
}

// Tokenize splits normalized source into tokens in reading order,
// lowercasing when caseInsensitive is set. Splitting is whitespace-only,
// matching original_source's create_shingles (split_whitespace): a word
// keeps any attached punctuation (e.g. "a():" stays one token), so
// "def a(): return 1" tokenizes to ["def", "a():", "return", "1"].
func Tokenize(normalized string, caseInsensitive bool) []string {
	tokens := strings.Fields(normalized)
	if caseInsensitive {
		for i, t := range tokens {
			tokens[i] = strings.ToLower(t)
		}
	}
	return tokens
}

// Shingles produces k-grams of size shingleSize over tokens, joined by a
// single space, in reading order (the set is what MinHash consumes, so
// callers dedupe if needed).
func Shingles(tokens []string, shingleSize int) []string {
	if shingleSize <= 0 {
		shingleSize = DefaultShingleSize
	}
	if len(tokens) < shingleSize {
		if len(tokens) == 0 {
			return nil
		}
		return []string{strings.Join(tokens, " ")}
	}
	out := make([]string, 0, len(tokens)-shingleSize+1)
	for i := 0; i+shingleSize <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+shingleSize], " "))
	}
	return out
}
