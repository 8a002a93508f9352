package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// spec §9 "Prompt as data": tests assert the rendered prompt contains
// the citation rule and follow-up-question requirement verbatim.
func TestRenderSystemPrompt_ContainsRequiredElements(t *testing.T) {
	rendered := renderSystemPrompt("some context", []string{"doc-1", "doc-2"}, "en")

	assert.Contains(t, rendered, "[name] format")
	assert.Contains(t, rendered, "follow-up question")
	assert.Contains(t, rendered, "some context")
	assert.Contains(t, rendered, "doc-1, doc-2")
	assert.Contains(t, rendered, "Provide your answer in en.")
}

func TestRenderSystemPrompt_EmptyCitationsRendersEmptyList(t *testing.T) {
	rendered := renderSystemPrompt("", nil, "en")
	assert.Contains(t, rendered, "Citations available: ")
}
