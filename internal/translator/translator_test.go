package translator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate_ModelUnavailable_IsIdentity(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "absent"), nil)
	require.NoError(t, tr.Initialize(context.Background()))
	assert.False(t, tr.Cached())

	out := tr.Translate(context.Background(), "hello", "si", "en")
	assert.Equal(t, "hello", out)
}

func TestTranslate_SameLanguage_IsIdentity(t *testing.T) {
	tr := New(t.TempDir(), nil)
	require.NoError(t, tr.Initialize(context.Background()))
	assert.True(t, tr.Cached())

	out := tr.Translate(context.Background(), "hello", "en", "en")
	assert.Equal(t, "hello", out)
}

func TestTranslate_InvalidLanguageTag_FallsBackToIdentity(t *testing.T) {
	tr := New(t.TempDir(), nil)
	require.NoError(t, tr.Initialize(context.Background()))

	out := tr.Translate(context.Background(), "hello", "not-a-tag-!!", "en")
	assert.Equal(t, "hello", out)
}

func TestTranslate_ConcurrentCallsAreSafe(t *testing.T) {
	tr := New(t.TempDir(), nil)
	require.NoError(t, tr.Initialize(context.Background()))

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func() {
			tr.Translate(context.Background(), "budget proposal", "si", "en")
			done <- struct{}{}
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}
}
