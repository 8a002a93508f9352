package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dev.legalrag.engine/internal/llmgateway"
)

func messageFixture(role llmgateway.Role, content string) llmgateway.Message {
	return llmgateway.Message{Role: role, Content: content}
}

func TestShouldTranslate_NonEnglishDispatchesToTranslate(t *testing.T) {
	assert.Equal(t, Translate, shouldTranslate("si"))
	assert.Equal(t, Translate, shouldTranslate("ta"))
}

func TestShouldTranslate_EnglishOrEmptyDispatchesToRetrieve(t *testing.T) {
	assert.Equal(t, Retrieve, shouldTranslate("en"))
	assert.Equal(t, Retrieve, shouldTranslate(""))
}

func TestNext_FollowsFixedEdgeTable(t *testing.T) {
	assert.Equal(t, Retrieve, next(Translate))
	assert.Equal(t, Generate, next(Retrieve))
	assert.Equal(t, End, next(Generate))
	assert.Equal(t, End, next(End))
}

func TestCheckpointStore_LoadAppendRoundTrip(t *testing.T) {
	c := NewCheckpointStore()
	assert.Empty(t, c.Load("s1"))

	c.Append("s1", messageFixture("user", "hi"))
	got := c.Load("s1")
	assert.Len(t, got, 1)

	c.Append("s1", messageFixture("assistant", "hello"))
	got = c.Load("s1")
	assert.Len(t, got, 2)

	// a different session is unaffected.
	assert.Empty(t, c.Load("s2"))
}
