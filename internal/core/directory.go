package core

import "sync"

// Directory maps room identifiers to their member connections.
//
// Each room guards its own member set, so snapshot reads of one room never
// contend with another. Membership changes additionally go through mu, which
// owns the connection -> room index and keeps a connection in at most one
// room at a time. Rooms are created on first join and never removed.
type Directory struct {
	rooms sync.Map // room id -> *room

	mu    sync.Mutex
	index map[string]string // connection id -> room id
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{index: make(map[string]string)}
}

func (d *Directory) lookup(roomID string) *room {
	if r, ok := d.rooms.Load(roomID); ok {
		return r.(*room)
	}
	return nil
}

func (d *Directory) getOrCreate(roomID string) *room {
	if r := d.lookup(roomID); r != nil {
		return r
	}
	r, _ := d.rooms.LoadOrStore(roomID, newRoom())
	return r.(*room)
}

// AddMember puts connID into roomID, leaving its previous room first.
func (d *Directory) AddMember(roomID, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.index[connID]; ok && prev != roomID {
		if r := d.lookup(prev); r != nil {
			r.remove(connID)
		}
	}
	d.getOrCreate(roomID).add(connID)
	d.index[connID] = roomID
}

// RemoveMember removes connID from roomID. Returns false if it was not a member.
func (d *Directory) RemoveMember(roomID, connID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	r := d.lookup(roomID)
	if r == nil || !r.remove(connID) {
		return false
	}
	if d.index[connID] == roomID {
		delete(d.index, connID)
	}
	return true
}

// RemoveConnectionEverywhere drops connID from whatever room it is in.
func (d *Directory) RemoveConnectionEverywhere(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev, ok := d.index[connID]
	if !ok {
		return
	}
	if r := d.lookup(prev); r != nil {
		r.remove(connID)
	}
	delete(d.index, connID)
}

// MembersOf returns a copy of the room's member set.
func (d *Directory) MembersOf(roomID string) []string {
	r := d.lookup(roomID)
	if r == nil {
		return []string{}
	}
	return r.snapshot()
}

// MemberCount returns the number of connections in roomID.
func (d *Directory) MemberCount(roomID string) int {
	r := d.lookup(roomID)
	if r == nil {
		return 0
	}
	return r.len()
}

// IsMember reports whether connID is currently in roomID.
func (d *Directory) IsMember(roomID, connID string) bool {
	r := d.lookup(roomID)
	return r != nil && r.has(connID)
}

// RoomOf returns the room connID currently belongs to.
func (d *Directory) RoomOf(connID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	roomID, ok := d.index[connID]
	return roomID, ok
}

// RoomCount returns the number of rooms ever created.
func (d *Directory) RoomCount() int {
	n := 0
	d.rooms.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
