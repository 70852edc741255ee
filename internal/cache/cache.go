// Package cache holds the raw rows of the most recent scan so view edits
// can re-render without touching the filesystem. The record set is replaced
// wholesale by each scan and is read-only for render.
package cache

import (
	"sync"

	"github.com/google/uuid"
	cache_pkg "github.com/patrickmn/go-cache"

	"github.com/logview-dev/logview/internal/model"
)

// Handler wraps the backing cache and tracks the current scan session.
type Handler struct {
	client *cache_pkg.Cache

	mu      sync.Mutex
	session string
}

// New builds an empty cache. Entries never expire; the only eviction is the
// wholesale replacement performed by the next scan.
func New() *Handler {
	return &Handler{
		client: cache_pkg.New(cache_pkg.NoExpiration, 0),
	}
}

// Replace swaps in a fresh record set and returns the new session id.
func (h *Handler) Replace(records []model.Record) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session != "" {
		h.client.Delete(h.session)
	}
	h.session = uuid.New().String()
	h.client.Set(h.session, records, cache_pkg.NoExpiration)
	return h.session
}

// Records returns the cached rows and their session id. The bool is false
// until the first scan has populated the cache.
func (h *Handler) Records() ([]model.Record, string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session == "" {
		return nil, "", false
	}
	raw, found := h.client.Get(h.session)
	if !found {
		return nil, "", false
	}
	records, ok := raw.([]model.Record)
	if !ok {
		return nil, "", false
	}
	return records, h.session, true
}

// Clear drops the cached rows.
func (h *Handler) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session != "" {
		h.client.Delete(h.session)
		h.session = ""
	}
}
