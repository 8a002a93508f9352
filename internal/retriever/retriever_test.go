package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.legalrag.engine/internal/bm25"
	"dev.legalrag.engine/internal/document"
	"dev.legalrag.engine/internal/errs"
	"dev.legalrag.engine/internal/index"
)

type fakeStore struct {
	collections map[string]*index.Collection
}

func (f *fakeStore) Collections() map[string]*index.Collection { return f.collections }

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

func tokenizeForBM25(docs []string) [][]string {
	corpus := make([][]string, len(docs))
	for i, d := range docs {
		corpus[i] = tokenize(d)
	}
	return corpus
}

// Scenario 1 (spec §8 end-to-end #1): cold retrieval ranks the
// higher-overlap document first.
func TestRetrieve_ColdRetrieval_OrdersByFusedScore(t *testing.T) {
	contents := []string{
		"Urban Council budget passes within two weeks.",
		"Municipal composition amended.",
	}
	docs := make([]document.Document, len(contents))
	for i, c := range contents {
		docs[i] = document.Document{Content: c, Name: "doc" + string(rune('0'+i)), Type: "bills", CollectionKey: "bills"}
	}
	sparse := bm25.NewIndex(tokenizeForBM25(contents), bm25.DefaultParameters())
	// doc0 is nearer the query vector than doc1 so both paths agree;
	// doc1's presence in the dense top-k is what keeps it in the
	// result set despite having zero sparse overlap.
	dense := &index.DenseIndex{Dimension: 1, Vectors: [][]float32{{1}, {5}}}
	collection := &index.Collection{Key: "bills", Dense: dense, Sparse: sparse, Documents: docs}

	r := New(&fakeStore{collections: map[string]*index.Collection{"bills": collection}}, &fakeEmbedder{vector: []float32{1}})

	hits, err := r.Retrieve(context.Background(), "Urban Council budget deadline", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc0", hits[0].Document.Name)
	assert.Equal(t, "doc1", hits[1].Document.Name)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

// Scenario 2 (spec §8 end-to-end #2): the same document, surfacing as
// rank 1 of both dense and sparse in two different collections,
// accumulates an RRF score of 4/61 and ranks first in the merged
// output.
func TestRetrieve_CrossCollectionFusion_ExactScore(t *testing.T) {
	sharedContent := "Urban Council budget passes within two weeks, exactly as proposed."
	otherContent := "An unrelated municipal notice about road maintenance."

	buildCollection := func(key string) *index.Collection {
		docs := []document.Document{
			{Content: sharedContent, Type: "acts", CollectionKey: key}, // Name empty: identity by content fingerprint
			{Content: otherContent, Type: "acts", CollectionKey: key},
		}
		dense := &index.DenseIndex{Dimension: 2, Vectors: [][]float32{{1, 0}, {0, 5}}}
		sparse := bm25.NewIndex(tokenizeForBM25([]string{sharedContent, otherContent}), bm25.DefaultParameters())
		return &index.Collection{Key: key, Dense: dense, Sparse: sparse, Documents: docs}
	}

	collections := map[string]*index.Collection{
		"acts":  buildCollection("acts"),
		"bills": buildCollection("bills"),
	}

	r := New(&fakeStore{collections: collections}, &fakeEmbedder{vector: []float32{1, 0}})

	hits, err := r.Retrieve(context.Background(), "urban council budget", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.InDelta(t, 4.0/61.0, hits[0].Score, 1e-9)
}

func TestRetrieve_EmptyQuery_ReturnsEmptyWithoutEmbedding(t *testing.T) {
	called := false
	emb := &recordingEmbedder{called: &called}
	r := New(&fakeStore{collections: map[string]*index.Collection{}}, emb)

	hits, err := r.Retrieve(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.False(t, called)
}

type recordingEmbedder struct {
	called *bool
}

func (r *recordingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	*r.called = true
	return nil, nil
}

func TestRetrieve_UnusableCollectionSkippedSilently(t *testing.T) {
	// a collection with documents but no retrieval path is not usable.
	collection := &index.Collection{Key: "empty", Documents: []document.Document{{Content: "x", CollectionKey: "empty"}}}
	r := New(&fakeStore{collections: map[string]*index.Collection{"empty": collection}}, &fakeEmbedder{})

	hits, err := r.Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRetrieve_EmptyTokenSetSkipsSparsePathOnly(t *testing.T) {
	docs := []document.Document{{Content: "alpha beta", Name: "d0", CollectionKey: "c"}}
	dense := &index.DenseIndex{Dimension: 1, Vectors: [][]float32{{1}}}
	sparse := bm25.NewIndex(tokenizeForBM25([]string{"alpha beta"}), bm25.DefaultParameters())
	collection := &index.Collection{Key: "c", Dense: dense, Sparse: sparse, Documents: docs}

	r := New(&fakeStore{collections: map[string]*index.Collection{"c": collection}}, &fakeEmbedder{vector: []float32{1}})

	// A query with no word characters after normalization (punctuation only).
	hits, err := r.Retrieve(context.Background(), "???", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1) // dense path still ran
}

func TestRetrieveDoc_LegacySurface_RendersTypedFilenames(t *testing.T) {
	docs := []document.Document{
		{Content: "act text", Name: "act-1", Type: "acts", CollectionKey: "acts"},
	}
	sparse := bm25.NewIndex(tokenizeForBM25([]string{"act text"}), bm25.DefaultParameters())
	collection := &index.Collection{Key: "acts", Sparse: sparse, Documents: docs}
	r := New(&fakeStore{collections: map[string]*index.Collection{"acts": collection}}, &fakeEmbedder{})

	contents, filenames, err := r.RetrieveDoc(context.Background(), "act text", 1)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	require.Len(t, filenames, 1)
	assert.Equal(t, "acts/act-1", filenames[0])
}

// spec §8 scenario 5 ("Degraded startup"): a dense-only collection
// with no sparse fallback surfaces the embedder's failure as a hard
// error instead of silently returning no results.
func TestRetrieve_EmbedderUnavailable_DenseOnlyCollection_ReturnsError(t *testing.T) {
	docs := []document.Document{{Content: "act text", Name: "act-1", CollectionKey: "acts"}}
	dense := &index.DenseIndex{Dimension: 1, Vectors: [][]float32{{1}}}
	collection := &index.Collection{Key: "acts", Dense: dense, Documents: docs}

	embedErr := errs.New(errs.ModelUnavailable, "embedder.Embed", nil)
	r := New(&fakeStore{collections: map[string]*index.Collection{"acts": collection}}, &fakeEmbedder{err: embedErr})

	hits, err := r.Retrieve(context.Background(), "act text", 5)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ModelUnavailable))
	assert.Empty(t, hits)
}

// A collection with a sparse fallback still serves results even when
// the embedder is unavailable, so Retrieve degrades rather than fails.
func TestRetrieve_EmbedderUnavailable_SparseFallbackStillServes(t *testing.T) {
	contents := []string{"act text about budgets"}
	docs := []document.Document{{Content: contents[0], Name: "act-1", CollectionKey: "acts"}}
	dense := &index.DenseIndex{Dimension: 1, Vectors: [][]float32{{1}}}
	sparse := bm25.NewIndex(tokenizeForBM25(contents), bm25.DefaultParameters())
	collection := &index.Collection{Key: "acts", Dense: dense, Sparse: sparse, Documents: docs}

	embedErr := errs.New(errs.ModelUnavailable, "embedder.Embed", nil)
	r := New(&fakeStore{collections: map[string]*index.Collection{"acts": collection}}, &fakeEmbedder{err: embedErr})

	hits, err := r.Retrieve(context.Background(), "act text about budgets", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestMinMaxNormalize_RescalesIntoUnitRange(t *testing.T) {
	items := []scoredCandidate{{index: 0, score: 10}, {index: 1, score: 5}, {index: 2, score: 0}}
	minMaxNormalize(items)
	assert.InDelta(t, 1.0, items[0].score, 1e-9)
	assert.InDelta(t, 0.5, items[1].score, 1e-9)
	assert.InDelta(t, 0.0, items[2].score, 1e-9)
}

func TestMinMaxNormalize_ConstantScores_AllOne(t *testing.T) {
	items := []scoredCandidate{{index: 0, score: 3}, {index: 1, score: 3}}
	minMaxNormalize(items)
	assert.InDelta(t, 1.0, items[0].score, 1e-9)
	assert.InDelta(t, 1.0, items[1].score, 1e-9)
}

func TestTypeOrPluralized(t *testing.T) {
	assert.Equal(t, "bills", typeOrPluralized("bills"))
	assert.Equal(t, "constitution", typeOrPluralized("constitution"))
	assert.Equal(t, "acts", typeOrPluralized("act"))
}
