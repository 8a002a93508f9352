// Package health assembles the external health-surface status struct
// (spec §6) from the process's singleton collaborators, grounded on
// original_source/Backend/routers/health.py.
package health

import (
	"context"

	"dev.legalrag.engine/internal/config"
	"dev.legalrag.engine/internal/index"
)

// Status is the external health-surface contract (spec §6).
type Status struct {
	DatabaseReachable bool   `json:"database_reachable"`
	LLMProvider       string `json:"llm_provider"`
	LLMModel          string `json:"llm_model"`
	RetrieverCached   bool   `json:"retriever_cached"`
	EmbedderCached    bool   `json:"embedder_cached"`
	UsableCollections int    `json:"usable_collections"`
}

// DatabasePinger is the thin collaborator the core depends on to
// report DatabaseReachable without importing a DB driver itself
// (spec §6: this is opaque to the core).
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// Cacheable reports whether a singleton has finished loading its
// on-disk artifacts. The Embedder satisfies this via its Cached()
// method.
type Cacheable interface {
	Cached() bool
}

// Checker assembles a Status snapshot on demand.
type Checker struct {
	llm      config.LLMConfig
	db       DatabasePinger
	store    *index.Store
	embedder Cacheable
}

// New constructs a Checker. db may be nil, in which case
// DatabaseReachable is reported as false without attempting a ping.
func New(llm config.LLMConfig, db DatabasePinger, store *index.Store, embedder Cacheable) *Checker {
	return &Checker{llm: llm, db: db, store: store, embedder: embedder}
}

// Check assembles the current Status. It never returns an error: a
// failed database ping is reported as DatabaseReachable=false, not
// propagated.
func (c *Checker) Check(ctx context.Context) Status {
	status := Status{
		LLMProvider: string(c.llm.Provider),
		LLMModel:    c.llm.Model,
	}

	if c.db != nil {
		status.DatabaseReachable = c.db.Ping(ctx) == nil
	}
	if c.store != nil {
		s := c.store.Status()
		status.UsableCollections = s.UsableCollections
		status.RetrieverCached = s.UsableCollections > 0
	}
	if c.embedder != nil {
		status.EmbedderCached = c.embedder.Cached()
	}

	return status
}
