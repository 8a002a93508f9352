package embedder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.legalrag.engine/internal/errs"
)

func TestEmbedder_MissingModelDir_ReturnsModelUnavailable(t *testing.T) {
	e := New(filepath.Join(t.TempDir(), "does-not-exist"), 16, nil)
	_, err := e.Embed(context.Background(), "urban council budget")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ModelUnavailable))
	assert.False(t, e.Cached())
}

func TestEmbedder_PresentModelDir_EmbedsDeterministically(t *testing.T) {
	e := New(t.TempDir(), 16, nil)
	require.NoError(t, e.Initialize(context.Background()))
	assert.True(t, e.Cached())

	v1, err := e.Embed(context.Background(), "urban council budget")
	require.NoError(t, err)
	v2, err := e.Embed(context.Background(), "urban council budget")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Len(t, v1, 16)
}

func TestEmbedder_DistinctTextsYieldDistinctVectors(t *testing.T) {
	e := New(t.TempDir(), 16, nil)
	require.NoError(t, e.Initialize(context.Background()))

	v1, err := e.Embed(context.Background(), "urban council budget")
	require.NoError(t, err)
	v2, err := e.Embed(context.Background(), "gazette notification withdrawn")
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
}

func TestEmbedder_EmbedBatch_MatchesIndividualEmbed(t *testing.T) {
	e := New(t.TempDir(), 8, nil)
	require.NoError(t, e.Initialize(context.Background()))

	texts := []string{"alpha beta", "gamma delta"}
	batch, err := e.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	for i, text := range texts {
		single, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}

func TestEmbedder_LazyLoad_WithoutExplicitInitialize(t *testing.T) {
	e := New(t.TempDir(), 4, nil)
	assert.False(t, e.Cached())
	v, err := e.Embed(context.Background(), "lazy load")
	require.NoError(t, err)
	assert.Len(t, v, 4)
	assert.True(t, e.Cached())
}
