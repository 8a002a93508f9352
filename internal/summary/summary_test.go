package summary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.legalrag.engine/internal/document"
	"dev.legalrag.engine/internal/llmgateway"
)

type fakeGateway struct {
	response     string
	err          error
	lastMessages []llmgateway.Message
	lastOpts     llmgateway.Options
}

func (f *fakeGateway) Chat(ctx context.Context, messages []llmgateway.Message, opts llmgateway.Options) (string, error) {
	f.lastMessages = messages
	f.lastOpts = opts
	return f.response, f.err
}

func TestSummarize_UsesFixedLowTemperature(t *testing.T) {
	gw := &fakeGateway{response: "a summary"}
	s := New(gw)

	text, err := s.Summarize(context.Background(), document.Document{Name: "doc1", Content: "body"}, "en")
	require.NoError(t, err)
	assert.Equal(t, "a summary", text)
	assert.Equal(t, 0.2, gw.lastOpts.Temperature)
}

func TestSummarize_DefaultsLanguageToEnglish(t *testing.T) {
	gw := &fakeGateway{response: "x"}
	s := New(gw)

	_, err := s.Summarize(context.Background(), document.Document{Name: "doc1"}, "")
	require.NoError(t, err)
	require.NotEmpty(t, gw.lastMessages)
	assert.Contains(t, gw.lastMessages[0].Content, "Respond in en.")
}

func TestSummarize_PropagatesGatewayFailure(t *testing.T) {
	gw := &fakeGateway{response: llmgateway.FallbackText, err: assertErr{}}
	s := New(gw)

	text, err := s.Summarize(context.Background(), document.Document{Name: "doc1"}, "si")
	require.Error(t, err)
	assert.Equal(t, llmgateway.FallbackText, text)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
