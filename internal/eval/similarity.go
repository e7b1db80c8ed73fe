package eval

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var unicodeWordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "for", "to", "of", "in", "on", "at", "by", "with", "as",
		"is", "are", "was", "were", "be", "been", "it", "this", "that", "these", "those", "from", "into", "about",
		"than", "so", "such", "can", "will", "which", "where", "when", "also", "has", "have", "had", "not", "no",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// LexicalOverlap is the Ochiai coefficient |A∩B| / sqrt(|A||B|) between the
// word sets of a and b. It needs no model call.
func LexicalOverlap(a, b string) float64 {
	aset := toTokenSet(a)
	bset := toTokenSet(b)
	if len(aset) == 0 || len(bset) == 0 {
		return 0
	}
	inter := 0
	for t := range bset {
		if _, ok := aset[t]; ok {
			inter++
		}
	}
	return float64(inter) / (math.Sqrt(float64(len(aset))) * math.Sqrt(float64(len(bset))))
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// TFIDF weighs terms by their rarity across the reference answers, so that
// agreement on "linear" counts for more than agreement on "model".
type TFIDF struct {
	vocabulary map[string]int
	idf        []float64
}

// FitTFIDF builds the vocabulary and smoothed IDF values from corpus.
func FitTFIDF(corpus []string) *TFIDF {
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range contentTokens(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	t := &TFIDF{vocabulary: make(map[string]int, len(terms)), idf: make([]float64, len(terms))}
	n := float64(len(corpus))
	for i, term := range terms {
		t.vocabulary[term] = i
		t.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return t
}

// Similarity is the cosine between the TF-IDF vectors of a and b. Terms
// outside the fitted vocabulary are ignored.
func (t *TFIDF) Similarity(a, b string) float64 {
	va, vb := t.vector(a), t.vector(b)
	dot := 0.0
	for idx, x := range va {
		dot += x * vb[idx]
	}
	return dot
}

// vector is sparse and L2-normalised.
func (t *TFIDF) vector(text string) map[int]float64 {
	tf := make(map[int]float64)
	total := 0
	for _, tok := range contentTokens(text) {
		if idx, ok := t.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return tf
	}
	norm := 0.0
	for idx, count := range tf {
		w := count / float64(total) * t.idf[idx]
		tf[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for idx := range tf {
		tf[idx] /= norm
	}
	return tf
}

func contentTokens(text string) []string {
	raw := unicodeWordRe.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := stopwords[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}
