// Package summary implements the one-shot document summarization
// operation (SPEC_FULL.md §1), grounded on
// original_source/Backend/routers/generate_summary.py's
// generate_document_summary.
package summary

import (
	"context"
	"fmt"

	"dev.legalrag.engine/internal/document"
	"dev.legalrag.engine/internal/llmgateway"
)

// summaryTemperature is the fixed, low generation temperature used for
// summaries: factual recall over creative completion.
const summaryTemperature = 0.2

const systemPrompt = `You are an expert legal analyst summarizing Sri Lankan legal documents.
Provide a comprehensive summary covering:
1. A brief overview of the document's purpose
2. Key legal provisions and requirements
3. Important procedural information
4. Compliance or regulatory aspects
5. Any significant implications for citizens or businesses
Respond in %s. Format the response in a clear, structured manner.`

// Gateway is the subset of the LLM Gateway Summarize depends on.
type Gateway interface {
	Chat(ctx context.Context, messages []llmgateway.Message, opts llmgateway.Options) (string, error)
}

// Summarizer wraps a Gateway with the fixed summarization prompt.
type Summarizer struct {
	gateway Gateway
}

// New constructs a Summarizer.
func New(gateway Gateway) *Summarizer {
	return &Summarizer{gateway: gateway}
}

// Summarize produces a structured summary of doc in the requested
// language. It never returns the gateway's raw error: on failure it
// returns the gateway's fixed fallback text alongside the classified
// error, matching the Gateway's own contract (spec §4.5).
func (s *Summarizer) Summarize(ctx context.Context, doc document.Document, language string) (string, error) {
	if language == "" {
		language = "en"
	}

	messages := []llmgateway.Message{
		{Role: llmgateway.RoleSystem, Content: fmt.Sprintf(systemPrompt, language)},
		{Role: llmgateway.RoleUser, Content: fmt.Sprintf("Document %q:\n\n%s", doc.Name, doc.Content)},
	}

	return s.gateway.Chat(ctx, messages, llmgateway.DefaultOptions(summaryTemperature))
}
