// Package bm25 implements the BM25-Okapi sparse scoring algorithm used
// by the Hybrid Retriever's sparse path (spec §4.3). An Index is built
// once from a pre-tokenized corpus and is safe for unsynchronized
// concurrent reads afterward — it never mutates (spec §9 "Concurrent
// BM25"), so, unlike the BM25 index the example pack ships
// (teilomillet-raggo/rag/sparse_index.go), this one carries no mutex.
package bm25

import "math"

// Parameters controls BM25 term-frequency saturation (K1) and
// document-length normalization (B). nlpaueb/legal-bert-style corpora
// in the source material don't document tuned values, so this follows
// the pack's own BM25 implementation's documented defaults.
type Parameters struct {
	K1 float64
	B  float64
}

// DefaultParameters returns K1=1.5, B=0.75, the values the example
// pack's BM25 index (teilomillet-raggo/rag/sparse_index.go,
// DefaultBM25Parameters) documents as standard.
func DefaultParameters() Parameters {
	return Parameters{K1: 1.5, B: 0.75}
}

// Index is an immutable BM25-Okapi scorer over a fixed, pre-tokenized
// corpus, built once at collection-load time.
type Index struct {
	params       Parameters
	docFreq      map[string]int
	termFreq     []map[string]int
	docLength    []int
	avgDocLength float64
	n            int
}

// NewIndex builds a BM25 index over corpus, a sequence of
// pre-tokenized documents aligned by position with the rest of the
// collection (spec §3, §4.1).
func NewIndex(corpus [][]string, params Parameters) *Index {
	idx := &Index{
		params:    params,
		docFreq:   make(map[string]int),
		termFreq:  make([]map[string]int, len(corpus)),
		docLength: make([]int, len(corpus)),
		n:         len(corpus),
	}

	var totalLength int
	for i, doc := range corpus {
		tf := make(map[string]int, len(doc))
		for _, term := range doc {
			tf[term]++
		}
		idx.termFreq[i] = tf
		idx.docLength[i] = len(doc)
		totalLength += len(doc)
		for term := range tf {
			idx.docFreq[term]++
		}
	}
	if idx.n > 0 {
		idx.avgDocLength = float64(totalLength) / float64(idx.n)
	}
	return idx
}

// Len returns the number of documents in the corpus.
func (idx *Index) Len() int {
	return idx.n
}

// Scores computes the BM25 score of every document against the given
// (already-tokenized) query terms. The returned slice is positional,
// aligned with the corpus passed to NewIndex.
func (idx *Index) Scores(queryTerms []string) []float64 {
	scores := make([]float64, idx.n)
	if idx.n == 0 || idx.avgDocLength == 0 {
		return scores
	}

	for _, term := range queryTerms {
		df, ok := idx.docFreq[term]
		if !ok {
			continue
		}
		idf := math.Log(1 + (float64(idx.n)-float64(df)+0.5)/(float64(df)+0.5))

		for docID, tf := range idx.termFreq {
			freq, present := tf[term]
			if !present {
				continue
			}
			docLen := float64(idx.docLength[docID])
			numerator := float64(freq) * (idx.params.K1 + 1)
			denominator := float64(freq) + idx.params.K1*(1-idx.params.B+idx.params.B*docLen/idx.avgDocLength)
			scores[docID] += idf * numerator / denominator
		}
	}
	return scores
}
