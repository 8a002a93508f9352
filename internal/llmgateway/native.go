package llmgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"dev.legalrag.engine/internal/errs"
)

// nativeBackend models the teacher's Claude provider request/response
// shape: {model, messages, max_tokens, temperature} in, content out.
type nativeBackend struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type nativeChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type nativeChatRequest struct {
	Model       string              `json:"model"`
	Messages    []nativeChatMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
}

type nativeChatResponse struct {
	Content string `json:"content"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (b *nativeBackend) chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	reqBody := nativeChatRequest{
		Model:       b.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, nativeChatMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", errs.New(errs.ProviderInvalidOutput, "native.chat", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", errs.New(errs.ProviderTransient, "native.chat", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", classifyNetworkError("native.chat", err)
	}
	defer resp.Body.Close()

	var parsed nativeChatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatusError("native.chat", resp.StatusCode, parsed.errorMessage())
	}
	if decodeErr != nil {
		return "", errs.New(errs.ProviderInvalidOutput, "native.chat", decodeErr)
	}

	return parsed.Content, nil
}

func (r nativeChatResponse) errorMessage() string {
	if r.Error != nil {
		return r.Error.Message
	}
	return fmt.Sprintf("unexpected response")
}
