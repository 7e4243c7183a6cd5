package sse

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type registryEntry struct {
	channel      Channel
	registeredAt time.Time
}

// Registry maps each user to at most one live push channel. It is a plain
// injected value; callers share one instance through construction, and all
// operations are linearizable per user.
type Registry struct {
	mu      sync.Mutex
	entries map[uuid.UUID]registryEntry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[uuid.UUID]registryEntry)}
}

// Put installs ch as the user's live channel. Any superseded channel is
// force-closed so its watcher can release server-side resources.
func (r *Registry) Put(userID uuid.UUID, ch Channel) {
	r.mu.Lock()
	prev, had := r.entries[userID]
	r.entries[userID] = registryEntry{channel: ch, registeredAt: time.Now()}
	r.mu.Unlock()

	if had && prev.channel != nil && prev.channel != ch {
		prev.channel.Close()
	}
}

// Get returns the user's live channel if one is registered.
func (r *Registry) Get(userID uuid.UUID) (Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return entry.channel, true
}

// Remove drops the user's entry. Removing an absent user is a no-op.
func (r *Registry) Remove(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
}

// RemoveChannel drops the user's entry only while ch is still the registered
// channel. A watcher for a superseded stream must not evict its replacement.
func (r *Registry) RemoveChannel(userID uuid.UUID, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[userID]; ok && entry.channel == ch {
		delete(r.entries, userID)
	}
}

// Len reports the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
