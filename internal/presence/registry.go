package presence

import (
	"sync"

	"messenger-service/internal/models"
)

// Handle is an active, authenticated connection able to receive events.
type Handle interface {
	Send(event models.Envelope) error
}

// Registry maps a user identity to its live connection handle. It is the
// single authoritative presence table for the process: no persistence, rebuilt
// from empty on restart. A lookup miss means "recipient offline", never an
// error.
type Registry struct {
	mu      sync.RWMutex
	handles map[int64]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[int64]Handle)}
}

// Register binds the identity to the handle, replacing any previous handle
// for the same identity (a reconnect supersedes the old connection).
func (r *Registry) Register(userID int64, handle Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[userID] = handle
}

// Unregister removes the entry currently bound to the given handle, if any.
// A stale handle (already replaced by a reconnect) removes nothing. Returns
// the identity that was removed and whether a removal happened.
func (r *Registry) Unregister(handle Handle) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, h := range r.handles {
		if h == handle {
			delete(r.handles, userID)
			return userID, true
		}
	}
	return 0, false
}

// Lookup returns the handle registered for the identity, if online.
func (r *Registry) Lookup(userID int64) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.handles[userID]
	return handle, ok
}

// Online reports how many identities are currently registered.
func (r *Registry) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Snapshot lists the identities currently registered.
func (r *Registry) Snapshot() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.handles))
	for userID := range r.handles {
		ids = append(ids, userID)
	}
	return ids
}
