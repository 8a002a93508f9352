package index

import (
	"math"
	"sort"
)

// DenseIndex is a flat, in-memory table of fixed-width vectors
// (spec §4.2 "Dense index representation"). No pack example ships a
// pure-Go FAISS file-format reader, so vectors are loaded from a
// sidecar JSON manifest written with a `.faiss` extension rather than
// a true FAISS binary — linear-scan L2 search over `[]float32` is
// plain arithmetic, grounded on teilomillet-raggo/rag/memory.go's
// in-memory vector store shape.
type DenseIndex struct {
	Vectors   [][]float32
	Dimension int
}

// DenseHit is one nearest-neighbor result: the corpus position and its
// L2 distance from the query.
type DenseHit struct {
	Index    int
	Distance float64
}

// Search returns the k nearest neighbors to query by ascending L2
// distance. Invalid (out-of-range) positions are never produced since
// the table is built from its own vector set.
func (d *DenseIndex) Search(query []float32, k int) []DenseHit {
	if d == nil || len(d.Vectors) == 0 || k <= 0 {
		return nil
	}
	hits := make([]DenseHit, 0, len(d.Vectors))
	for i, v := range d.Vectors {
		hits = append(hits, DenseHit{Index: i, Distance: euclidean(query, v)})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Index < hits[j].Index
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

func euclidean(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
