// Package qa implements the Q&A Facade (spec §4.7): the single
// external entry point wrapping the Agent Graph Runtime, grounded on
// original_source/Backend/routers/get_ai_response.py and
// Backend/services/get_relevant_docs.py's get_pdfs.
package qa

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/sirupsen/logrus"

	"dev.legalrag.engine/internal/agent"
	"dev.legalrag.engine/internal/citation"
	"dev.legalrag.engine/internal/document"
	"dev.legalrag.engine/internal/errs"
	"dev.legalrag.engine/internal/llmgateway"
)

// Request is the external Q&A request shape (spec §4.7).
type Request struct {
	Query     string
	Language  string
	History   []llmgateway.Message
	SessionID string // optional; defaults to a deterministic hash of Query
}

// Response is the external Q&A response shape (spec §4.7). The
// facade never throws: on failure Success is false and Error carries
// a diagnostic string (spec §7).
type Response struct {
	Success   bool
	Response  string
	Citations []document.Citation
	Files     []string
	SessionID string
	Error     string
	ErrorKind errs.Kind
}

// Facade wraps the Agent Graph Runtime behind the external contract.
type Facade struct {
	runtime *agent.Runtime
	logger  *logrus.Entry
}

// New constructs a Facade over an already-constructed Runtime.
func New(runtime *agent.Runtime, logger *logrus.Entry) *Facade {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Facade{runtime: runtime, logger: logger.WithField("component", "qa_facade")}
}

// Ask runs one full Q&A turn (spec §4.7).
func (f *Facade) Ask(ctx context.Context, req Request) Response {
	if req.Query == "" {
		return Response{Success: false, Error: "query must not be empty"}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = deterministicSessionID(req.Query)
	}

	frame := &agent.Frame{
		SessionID: sessionID,
		Query:     req.Query,
		Language:  req.Language,
	}

	result, err := f.runtime.Run(ctx, frame, req.History)
	if err != nil {
		f.logger.WithError(err).Warn("qa: turn completed with a degraded outcome")
		return Response{
			Success:   false,
			Response:  result.Response,
			Citations: result.Citations,
			Files:     toFiles(result.Citations),
			SessionID: sessionID,
			Error:     "the assistant could not complete this request",
			ErrorKind: kindOf(err),
		}
	}

	return Response{
		Success:   true,
		Response:  result.Response,
		Citations: result.Citations,
		Files:     toFiles(result.Citations),
		SessionID: sessionID,
	}
}

func toFiles(cits []document.Citation) []string {
	files := make([]string, len(cits))
	for i, c := range cits {
		files[i] = citation.URL(c.Type, c.Name)
	}
	return files
}

func kindOf(err error) errs.Kind {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return errs.ProviderTransient
}

// deterministicSessionID hashes the query's leading bytes into a
// stable session key for callers who never supply one (spec §4.7).
func deterministicSessionID(query string) string {
	prefixLen := 64
	if len(query) < prefixLen {
		prefixLen = len(query)
	}
	sum := sha256.Sum256([]byte(query[:prefixLen]))
	return hex.EncodeToString(sum[:])[:16]
}
