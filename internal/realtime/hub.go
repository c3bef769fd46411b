// Package realtime turns committed writes into snapshot pushes.
//
// A Hub fans change notifications out per collection. Each Subscription owns
// one goroutine that re-runs its query when a watched collection changes and
// hands the fully materialised result to its callback. Snapshots that hash
// the same as the previous delivery are skipped, so callers only see real
// changes, and every callback supersedes the one before it.
package realtime

import (
	"io"
	"log/slog"
	"sync"
)

// Collection names a logical document collection.
type Collection string

const (
	CollectionPlans          Collection = "plans"
	CollectionTasks          Collection = "tasks"
	CollectionChangeRequests Collection = "change_requests"
	CollectionSession        Collection = "session"
)

// AllCollections is every collection a Watcher may report as changed.
var AllCollections = []Collection{
	CollectionPlans,
	CollectionTasks,
	CollectionChangeRequests,
	CollectionSession,
}

// Hub is an in-memory change broker: fan-out on publish, coalescing per
// subscriber.
type Hub struct {
	mu     sync.RWMutex
	topics map[Collection]map[*Subscription]struct{}
	logger *slog.Logger
}

// NewHub creates a hub. A nil logger discards hub diagnostics.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{
		topics: make(map[Collection]map[*Subscription]struct{}),
		logger: logger,
	}
}

func (h *Hub) add(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range sub.collections {
		if h.topics[c] == nil {
			h.topics[c] = make(map[*Subscription]struct{})
		}
		h.topics[c][sub] = struct{}{}
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range sub.collections {
		if subs := h.topics[c]; subs != nil {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.topics, c)
			}
		}
	}
}

// Publish marks the given collections as changed. It never blocks: a
// subscription that already has a pending notification absorbs the new one.
func (h *Hub) Publish(collections ...Collection) {
	h.mu.RLock()
	seen := make(map[*Subscription]struct{})
	for _, c := range collections {
		for sub := range h.topics[c] {
			seen[sub] = struct{}{}
		}
	}
	h.mu.RUnlock()

	for sub := range seen {
		sub.poke()
	}
}

// PublishAll marks every collection as changed.
func (h *Hub) PublishAll() {
	h.Publish(AllCollections...)
}

// SubscriberCount returns the number of live subscriptions watching c.
func (h *Hub) SubscriberCount(c Collection) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[c])
}
