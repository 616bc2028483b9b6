package core

import "sync"

// room is the member set of one broadcast group.
type room struct {
	mu      sync.RWMutex
	members map[string]struct{}
}

func newRoom() *room {
	return &room{members: make(map[string]struct{})}
}

// add inserts a connection. Returns true if newly added.
func (r *room) add(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.members[connID]; exists {
		return false
	}
	r.members[connID] = struct{}{}
	return true
}

// remove deletes a connection. Returns true if removed.
func (r *room) remove(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.members[connID]; !exists {
		return false
	}
	delete(r.members, connID)
	return true
}

func (r *room) has(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[connID]
	return ok
}

// snapshot copies the member set.
func (r *room) snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	return out
}

func (r *room) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
