package llmgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"dev.legalrag.engine/internal/errs"
)

// openAICompatBackend models the teacher's OpenRouter provider: an
// OpenAI-compatible /chat/completions endpoint with the standard
// {model, messages, temperature, max_tokens} body and
// choices[0].message.content response shape.
type openAICompatBackend struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type openAICompatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAICompatRequest struct {
	Model       string                 `json:"model"`
	Messages    []openAICompatMessage  `json:"messages"`
	Temperature float64                `json:"temperature"`
	MaxTokens   int                    `json:"max_tokens"`
}

type openAICompatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (b *openAICompatBackend) chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	reqBody := openAICompatRequest{
		Model:       b.model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, openAICompatMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", errs.New(errs.ProviderInvalidOutput, "openai_compat.chat", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", errs.New(errs.ProviderTransient, "openai_compat.chat", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", classifyNetworkError("openai_compat.chat", err)
	}
	defer resp.Body.Close()

	var parsed openAICompatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errs.New(errs.ProviderInvalidOutput, "openai_compat.chat", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := ""
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", classifyStatusError("openai_compat.chat", resp.StatusCode, msg)
	}

	if len(parsed.Choices) == 0 {
		return "", errs.New(errs.ProviderInvalidOutput, "openai_compat.chat", nil)
	}
	return parsed.Choices[0].Message.Content, nil
}
