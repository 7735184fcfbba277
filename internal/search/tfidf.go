package search

import (
	"math"
	"sort"
)

// Space is a TF-IDF vector space fitted on a fixed set of documents.
// Terms are kept sorted so that every vector built from the same space has
// the same coordinate order, which keeps dot products bit-for-bit symmetric.
type Space struct {
	Terms []string
	IDF   []float64
	index map[string]int
}

// FitSpace builds the vocabulary and smoothed inverse document frequencies
// over docs: idf(t) = ln((1+n)/(1+df(t))) + 1.
func FitSpace(docs ...[]string) *Space {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	space := &Space{
		Terms: terms,
		IDF:   make([]float64, len(terms)),
		index: make(map[string]int, len(terms)),
	}
	for i, term := range terms {
		space.index[term] = i
		space.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return space
}

// Transform returns the L2-normalized TF-IDF vector of tokens. Terms outside
// the vocabulary are ignored; a document with no known terms maps to the zero
// vector.
func (s *Space) Transform(tokens []string) []float64 {
	vec := make([]float64, len(s.Terms))
	for _, term := range tokens {
		if i, ok := s.index[term]; ok {
			vec[i]++
		}
	}

	var norm float64
	for i := range vec {
		vec[i] *= s.IDF[i]
		norm += vec[i] * vec[i]
	}
	if norm == 0 {
		return vec
	}

	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Cosine returns the cosine similarity of two equal-length vectors, or 0 when
// either is the zero vector or the lengths differ.
func Cosine(u, v []float64) float64 {
	if len(u) != len(v) {
		return 0
	}

	var dot, nu, nv float64
	for i := range u {
		dot += u[i] * v[i]
		nu += u[i] * u[i]
		nv += v[i] * v[i]
	}
	if nu == 0 || nv == 0 {
		return 0
	}
	return dot / (math.Sqrt(nu) * math.Sqrt(nv))
}

// Similarity scores two free-text descriptions in [0, 1].
//
// The IDF weights are fitted on exactly the two inputs, so a score is only
// meaningful for its own pair: two scores computed from different pairs live
// in different vector spaces and are not comparable. Empty or untokenizable
// input scores 0.
func Similarity(a, b string) float64 {
	ta, tb := Tokenize(a), Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	space := FitSpace(ta, tb)
	sim := Cosine(space.Transform(ta), space.Transform(tb))

	// float error can push identical documents a hair past 1
	return math.Max(0, math.Min(1, sim))
}
