package agent

import (
	"sync"

	"dev.legalrag.engine/internal/llmgateway"
)

// CheckpointStore is the process-local, keyed session memory (spec
// §4.6 "Checkpointing"). Per-session access is serialized by a
// sync.Map-backed table of per-key mutexes, generalized from the
// teacher's sharded-lock cache idiom (see DESIGN.md), so concurrent
// turns on the SAME session never interleave their read-modify-write
// of the message list, while turns on different sessions never
// contend with each other.
type CheckpointStore struct {
	messages sync.Map // session_id -> []llmgateway.Message
	locks    sync.Map // session_id -> *sync.Mutex
}

// NewCheckpointStore constructs an empty checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{}
}

func (c *CheckpointStore) lockFor(sessionID string) *sync.Mutex {
	actual, _ := c.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// Load returns a copy of the messages checkpointed for sessionID, or
// nil if none (spec §7 "SessionNotFound: create implicitly").
func (c *CheckpointStore) Load(sessionID string) []llmgateway.Message {
	mu := c.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()
	return c.loadLocked(sessionID)
}

func (c *CheckpointStore) loadLocked(sessionID string) []llmgateway.Message {
	v, ok := c.messages.Load(sessionID)
	if !ok {
		return nil
	}
	existing := v.([]llmgateway.Message)
	out := make([]llmgateway.Message, len(existing))
	copy(out, existing)
	return out
}

// Append persists additional messages under sessionID.
func (c *CheckpointStore) Append(sessionID string, msgs ...llmgateway.Message) {
	if len(msgs) == 0 {
		return
	}
	mu := c.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()
	c.appendLocked(sessionID, msgs...)
}

func (c *CheckpointStore) appendLocked(sessionID string, msgs ...llmgateway.Message) {
	var existing []llmgateway.Message
	if v, ok := c.messages.Load(sessionID); ok {
		existing = v.([]llmgateway.Message)
	}
	updated := make([]llmgateway.Message, 0, len(existing)+len(msgs))
	updated = append(updated, existing...)
	updated = append(updated, msgs...)
	c.messages.Store(sessionID, updated)
}

// WithSessionLock runs fn, which receives load/append helpers that do
// NOT re-acquire the lock, while holding sessionID's serialization
// lock for the whole call — so a full translate→retrieve→generate
// turn for one session never interleaves with another concurrent turn
// on the same session.
func (c *CheckpointStore) WithSessionLock(sessionID string, fn func(load func() []llmgateway.Message, append func(...llmgateway.Message))) {
	mu := c.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()
	fn(
		func() []llmgateway.Message { return c.loadLocked(sessionID) },
		func(msgs ...llmgateway.Message) { c.appendLocked(sessionID, msgs...) },
	)
}
