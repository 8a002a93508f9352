package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDenseIndex_SearchOrdersByAscendingDistance(t *testing.T) {
	idx := &DenseIndex{
		Dimension: 2,
		Vectors: [][]float32{
			{0, 0},
			{10, 10},
			{1, 0},
		},
	}
	hits := idx.Search([]float32{0, 0}, 2)
	assert.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Index)
	assert.Equal(t, 2, hits[1].Index)
	assert.Less(t, hits[0].Distance, hits[1].Distance)
}

func TestDenseIndex_KLargerThanCorpus_ReturnsAll(t *testing.T) {
	idx := &DenseIndex{Dimension: 1, Vectors: [][]float32{{1}, {2}}}
	hits := idx.Search([]float32{0}, 10)
	assert.Len(t, hits, 2)
}

func TestDenseIndex_EmptyIndex_ReturnsNil(t *testing.T) {
	idx := &DenseIndex{}
	assert.Nil(t, idx.Search([]float32{1}, 5))
}
