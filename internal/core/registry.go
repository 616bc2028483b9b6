package core

import "sync"

// Registry tracks live connections.
type Registry struct {
	mu        sync.RWMutex
	clients   map[string]*Client
	directory *Directory
}

// NewRegistry creates a registry that cleans up dir on unregister.
func NewRegistry(dir *Directory) *Registry {
	return &Registry{
		clients:   make(map[string]*Client),
		directory: dir,
	}
}

// Register admits a connection. Returns false if the ID is already taken.
func (r *Registry) Register(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[c.ID]; exists {
		return false
	}
	r.clients[c.ID] = c
	return true
}

// Unregister removes a connection, aborts deliveries to it and drops it from
// its room. Returns false for unknown IDs, so double unregister is a no-op.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	c, ok := r.clients[id]
	delete(r.clients, id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	c.Close()
	// Runs after the delete above; Membership.Join re-checks registration
	// after AddMember, so a racing join cannot leave a stale member behind.
	r.directory.RemoveConnectionEverywhere(id)
	return true
}

// IsRegistered reports whether id is a live connection.
func (r *Registry) IsRegistered(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[id]
	return ok
}

// Get returns the connection with the given id.
func (r *Registry) Get(id string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	return c, ok
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// IDs returns a snapshot of live connection IDs.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	return ids
}
