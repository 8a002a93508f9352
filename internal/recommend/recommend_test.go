package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.legalrag.engine/internal/document"
	"dev.legalrag.engine/internal/llmgateway"
)

type fakeRetriever struct {
	hits      []document.Scored
	lastQuery string
	lastK     int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, k int) ([]document.Scored, error) {
	f.lastQuery = query
	f.lastK = k
	return f.hits, nil
}

type fakeGateway struct {
	response string
	err      error
}

func (f *fakeGateway) Chat(ctx context.Context, messages []llmgateway.Message, opts llmgateway.Options) (string, error) {
	return f.response, f.err
}

func hitsOfLen(n int) []document.Scored {
	hits := make([]document.Scored, n)
	for i := range hits {
		hits[i] = document.Scored{Document: document.Document{Name: "doc"}, Score: float64(n - i)}
	}
	return hits
}

func TestRecommend_UsesGatewaySynthesizedQueryAndRetrieveK(t *testing.T) {
	retriever := &fakeRetriever{hits: hitsOfLen(2)}
	gateway := &fakeGateway{response: "municipal law governance"}
	r := New(retriever, gateway)

	_, err := r.Recommend(context.Background(), []string{"Urban Council budget"})
	require.NoError(t, err)
	assert.Equal(t, "municipal law governance", retriever.lastQuery)
	assert.Equal(t, retrieveK, retriever.lastK)
}

func TestRecommend_TrimsToTopN(t *testing.T) {
	retriever := &fakeRetriever{hits: hitsOfLen(10)}
	gateway := &fakeGateway{response: "q"}
	r := New(retriever, gateway)

	docs, err := r.Recommend(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Len(t, docs, topN)
}

func TestRecommend_GatewayFailure_FallsBackToHistoryJoin(t *testing.T) {
	retriever := &fakeRetriever{hits: nil}
	gateway := &fakeGateway{err: assertErr{}}
	r := New(retriever, gateway)

	_, err := r.Recommend(context.Background(), []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	assert.Equal(t, "a b c", retriever.lastQuery)
}

func TestRecommend_NoHistoryNoGateway_UsesGenericFallback(t *testing.T) {
	retriever := &fakeRetriever{hits: nil}
	r := New(retriever, nil)

	_, err := r.Recommend(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Sri Lankan legal documents regulations", retriever.lastQuery)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
