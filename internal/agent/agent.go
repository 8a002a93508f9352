package agent

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"dev.legalrag.engine/internal/document"
	"dev.legalrag.engine/internal/errs"
	"dev.legalrag.engine/internal/llmgateway"
)

// Frame is the per-request working state owned by a single request
// (spec §3 "Ownership"). It flows through translate_node,
// retrieve_node, and generate_node.
type Frame struct {
	SessionID string
	Query     string
	Language  string

	Context   string
	Citations []document.Citation
	Documents []document.Document

	Response string
}

// Retriever is the subset of the Hybrid Retriever the runtime depends
// on.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]document.Scored, error)
}

// Translator is the subset of the Translator the runtime depends on.
type Translator interface {
	Translate(ctx context.Context, text, srcLang, tgtLang string) string
}

// Gateway is the subset of the LLM Gateway the runtime depends on.
type Gateway interface {
	Chat(ctx context.Context, messages []llmgateway.Message, opts llmgateway.Options) (string, error)
}

// retrieveK is the constant top-k used by retrieve_node (spec §4.6).
const retrieveK = 5

// qaTemperature is the fixed Q&A generation temperature (spec §4.5).
const qaTemperature = 0.3

// Runtime is the Agent Graph Runtime: the compiled state machine plus
// its collaborators.
type Runtime struct {
	retriever  Retriever
	translator Translator
	gateway    Gateway
	checkpoint *CheckpointStore
	logger     *logrus.Entry
}

// New constructs a Runtime over its collaborators.
func New(retriever Retriever, translator Translator, gateway Gateway, checkpoint *CheckpointStore, logger *logrus.Entry) *Runtime {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if checkpoint == nil {
		checkpoint = NewCheckpointStore()
	}
	return &Runtime{
		retriever:  retriever,
		translator: translator,
		gateway:    gateway,
		checkpoint: checkpoint,
		logger:     logger.WithField("component", "agent_runtime"),
	}
}

// Run executes one full turn of the graph for frame, merging
// caller-supplied history ahead of the checkpointed session messages
// (spec §4.7 "History-merge policy", resolved PREPEND).
func (r *Runtime) Run(ctx context.Context, frame *Frame, history []llmgateway.Message) (*Frame, error) {
	var runErr error
	r.checkpoint.WithSessionLock(frame.SessionID, func(load func() []llmgateway.Message, appendMsgs func(...llmgateway.Message)) {
		checkpointed := load()
		working := make([]llmgateway.Message, 0, len(history)+len(checkpointed)+2)
		working = append(working, history...)
		working = append(working, checkpointed...)

		state := shouldTranslate(frame.Language)
		for state != End {
			switch state {
			case Translate:
				r.translateNode(ctx, frame)
			case Retrieve:
				if err := r.retrieveNode(ctx, frame); err != nil {
					runErr = err
					state = End
					continue
				}
			case Generate:
				runErr = r.generateNode(ctx, frame, working, appendMsgs)
			}
			state = next(state)
		}
	})
	return frame, runErr
}

func (r *Runtime) translateNode(ctx context.Context, frame *Frame) {
	if frame.Language == "" || frame.Language == "en" {
		return
	}
	frame.Query = r.translator.Translate(ctx, frame.Query, frame.Language, "en")
}

func (r *Runtime) retrieveNode(ctx context.Context, frame *Frame) error {
	hits, err := r.retriever.Retrieve(ctx, frame.Query, retrieveK)
	if err != nil {
		if errs.Is(err, errs.ModelUnavailable) {
			r.logger.WithError(err).Warn("agent: retrieval blocked, embedder unavailable")
			return err
		}
		r.logger.WithError(err).Warn("agent: retrieval failed, proceeding with empty context")
		return nil
	}
	if len(hits) == 0 {
		r.logger.WithField("query", frame.Query).Info("agent: retrieval empty, proceeding with empty context")
		return nil
	}

	contents := make([]string, 0, len(hits))
	seenNames := map[string]bool{}
	citations := make([]document.Citation, 0, len(hits))
	docs := make([]document.Document, 0, len(hits))

	for _, hit := range hits {
		contents = append(contents, hit.Document.Content)
		docs = append(docs, hit.Document)
		if !seenNames[hit.Document.Name] {
			seenNames[hit.Document.Name] = true
			citations = append(citations, document.Citation{Type: hit.Document.Type, Name: hit.Document.Name})
		}
	}

	frame.Context = strings.Join(contents, "\n\n")
	frame.Citations = citations
	frame.Documents = docs
	return nil
}

func (r *Runtime) generateNode(ctx context.Context, frame *Frame, history []llmgateway.Message, appendMsgs func(...llmgateway.Message)) error {
	citationNames := make([]string, len(frame.Citations))
	for i, c := range frame.Citations {
		citationNames[i] = c.Name
	}
	system := renderSystemPrompt(frame.Context, citationNames, frame.Language)

	messages := make([]llmgateway.Message, 0, len(history)+2)
	messages = append(messages, llmgateway.Message{Role: llmgateway.RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, llmgateway.Message{Role: llmgateway.RoleUser, Content: frame.Query})

	userTurn := llmgateway.Message{Role: llmgateway.RoleUser, Content: frame.Query}

	response, err := r.gateway.Chat(ctx, messages, llmgateway.DefaultOptions(qaTemperature))
	if err != nil {
		// Generation failure: the user turn is still checkpointed, the
		// assistant turn is not (spec §4.6 "Failure semantics").
		appendMsgs(userTurn)
		frame.Response = response // the gateway's fixed fallback text
		return err
	}

	frame.Response = response
	appendMsgs(userTurn, llmgateway.Message{Role: llmgateway.RoleAssistant, Content: response})
	return nil
}
