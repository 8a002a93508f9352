// Package recommend implements the "related documents" operation
// (SPEC_FULL.md §1): it re-uses the Hybrid Retriever with the
// caller's own recent session messages as probe text, grounded on
// original_source/Backend/services/langgraph_recommendations_agent.py.
package recommend

import (
	"context"
	"strings"

	"dev.legalrag.engine/internal/document"
	"dev.legalrag.engine/internal/llmgateway"
)

// queryTemperature mirrors the original agent's interest-analysis
// step: creative enough to broaden a narrow history into a useful
// probe query, but still grounded in the literal terms supplied.
const queryTemperature = 0.5

// retrieveK is the candidate pool size before ranking trims it down,
// matching the original agent's retriever k=10.
const retrieveK = 10

// topN is the number of recommendations returned after ranking,
// matching the original agent's rank_recommendations_node.
const topN = 5

const querySystemPrompt = `You are an expert at understanding user interests in legal topics.
Analyze the user's query history to generate a single, comprehensive search query
that will retrieve relevant legal documents. Identify the main legal topics, include
relevant legal terminology, and cover related subtopics. Generate ONLY the search query, nothing else.`

// Gateway is the subset of the LLM Gateway used to synthesize a probe
// query from session history.
type Gateway interface {
	Chat(ctx context.Context, messages []llmgateway.Message, opts llmgateway.Options) (string, error)
}

// Retriever is the subset of the Hybrid Retriever Recommend depends
// on.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]document.Scored, error)
}

// Recommender produces related-document suggestions from a user's
// recent session history. It has no persistence, no HTTP surface, and
// no user model: it is a pure function over whatever messages the
// caller hands it.
type Recommender struct {
	retriever Retriever
	gateway   Gateway
}

// New constructs a Recommender.
func New(retriever Retriever, gateway Gateway) *Recommender {
	return &Recommender{retriever: retriever, gateway: gateway}
}

// Recommend analyzes sessionHistory (the caller's recent query texts,
// oldest first) into a single probe query, retrieves a candidate pool
// with it, then trims the pool to the top-ranked documents.
func (r *Recommender) Recommend(ctx context.Context, sessionHistory []string) ([]document.Document, error) {
	query := r.analyzeInterests(ctx, sessionHistory)

	hits, err := r.retriever.Retrieve(ctx, query, retrieveK)
	if err != nil {
		return nil, err
	}

	docs := rank(hits)
	return docs, nil
}

// analyzeInterests synthesizes a probe query via the gateway. On
// gateway failure it falls back to joining the first three history
// entries with spaces, or a fixed generic query when there is no history at all (mirrors
// analyze_interests_node's except branch).
func (r *Recommender) analyzeInterests(ctx context.Context, sessionHistory []string) string {
	if r.gateway == nil {
		return fallbackQuery(sessionHistory)
	}

	messages := []llmgateway.Message{
		{Role: llmgateway.RoleSystem, Content: querySystemPrompt},
		{Role: llmgateway.RoleUser, Content: "Query History:\n" + strings.Join(sessionHistory, "\n")},
	}

	query, err := r.gateway.Chat(ctx, messages, llmgateway.DefaultOptions(queryTemperature))
	if err != nil || strings.TrimSpace(query) == "" {
		return fallbackQuery(sessionHistory)
	}
	return strings.TrimSpace(query)
}

func fallbackQuery(sessionHistory []string) string {
	if len(sessionHistory) == 0 {
		return "Sri Lankan legal documents regulations"
	}
	limit := len(sessionHistory)
	if limit > 3 {
		limit = 3
	}
	return strings.Join(sessionHistory[:limit], " ")
}

// rank trims the retrieved candidate pool to the top-N documents,
// already ordered by fused score (spec §4.3); no additional LLM-based
// re-ranking is applied, matching rank_recommendations_node.
func rank(hits []document.Scored) []document.Document {
	n := topN
	if n > len(hits) {
		n = len(hits)
	}
	docs := make([]document.Document, 0, n)
	for _, hit := range hits[:n] {
		docs = append(docs, hit.Document)
	}
	return docs
}
