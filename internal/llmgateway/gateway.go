// Package llmgateway provides the Provider-abstracted LLM Gateway
// (spec §4.5): a single Generate/Chat contract backed by one of two
// interchangeable HTTP backends, selected by configuration. Grounded
// on the now-superseded Toolkit/pkg/toolkit/interfaces.go Provider
// interface and the Toolkit/providers/claude, Toolkit/providers/openrouter
// request/response shapes (see DESIGN.md).
package llmgateway

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"dev.legalrag.engine/internal/config"
	"dev.legalrag.engine/internal/errs"
)

// Role is a chat message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation (spec §4.5).
type Message struct {
	Role    Role
	Content string
}

// Options controls generation parameters (spec §4.5).
type Options struct {
	Temperature float64
	MaxTokens   int
}

// DefaultOptions returns MaxTokens=512 with the given temperature;
// call sites (Q&A, recommend, summary) each fix their own temperature
// per spec §4.5.
func DefaultOptions(temperature float64) Options {
	return Options{Temperature: temperature, MaxTokens: 512}
}

// FallbackText is the fixed, user-facing string returned on any
// provider failure (spec §4.5 "Failure policy"). It is never
// parameterized with provider internals.
const FallbackText = "I'm unable to generate a response right now. Please try again shortly."

// backend is the interface each concrete provider implements.
type backend interface {
	chat(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Gateway is the process-wide LLM Gateway singleton.
type Gateway struct {
	backend backend
	logger  *logrus.Entry
}

// New constructs a Gateway for the configured provider. Missing
// credentials are already rejected by config.Load, but construction
// re-validates defensively (spec §4.5 "construction fails immediately").
func New(cfg config.LLMConfig, logger *logrus.Entry) (*Gateway, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	logger = logger.WithField("component", "llm_gateway")

	if cfg.APIKey == "" {
		return nil, errs.New(errs.ConfigMissing, "llmgateway.New", nil)
	}

	client := &http.Client{Timeout: 30 * time.Second}

	var b backend
	switch cfg.Provider {
	case config.ProviderNative:
		b = &nativeBackend{client: client, baseURL: cfg.BaseURL, apiKey: cfg.APIKey, model: cfg.Model}
	case config.ProviderOpenAICompat:
		b = &openAICompatBackend{client: client, baseURL: cfg.BaseURL, apiKey: cfg.APIKey, model: cfg.Model}
	default:
		return nil, errs.New(errs.ConfigMissing, "llmgateway.New", nil)
	}

	return &Gateway{backend: b, logger: logger}, nil
}

// Generate is the single-shot completion operation (spec §4.5).
func (g *Gateway) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	return g.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, opts)
}

// Chat is the multi-turn operation (spec §4.5). On provider failure it
// returns FallbackText alongside a non-nil, classified error for the
// caller to log — the raw provider error is never part of the
// returned text.
func (g *Gateway) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	text, err := g.backend.chat(ctx, messages, opts)
	if err != nil {
		g.logger.WithError(err).Warn("llm gateway: provider call failed, returning fallback")
		return FallbackText, err
	}
	if text == "" {
		wrapped := errs.New(errs.ProviderInvalidOutput, "llmgateway.Chat", nil)
		g.logger.WithError(wrapped).Warn("llm gateway: provider returned empty content")
		return FallbackText, wrapped
	}
	return text, nil
}
