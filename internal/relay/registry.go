package relay

import "fmt"

// Registry tracks live connections and the room each one occupies.
// An empty RoomID means the connection is not in any room.
//
// Registry is not safe for concurrent use; Relay serializes access.
type Registry struct {
	rooms map[ConnID]RoomID
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[ConnID]RoomID)}
}

// Add registers a live connection with no room.
func (r *Registry) Add(conn ConnID) error {
	if _, ok := r.rooms[conn]; ok {
		return fmt.Errorf("add %s: %w", conn, ErrDuplicateConnection)
	}
	r.rooms[conn] = ""
	return nil
}

// Remove discards the connection's entry.
func (r *Registry) Remove(conn ConnID) error {
	if _, ok := r.rooms[conn]; !ok {
		return fmt.Errorf("remove %s: %w", conn, ErrUnknownConnection)
	}
	delete(r.rooms, conn)
	return nil
}

// Room returns the connection's current room and whether it has one.
func (r *Registry) Room(conn ConnID) (RoomID, bool, error) {
	room, ok := r.rooms[conn]
	if !ok {
		return "", false, fmt.Errorf("room of %s: %w", conn, ErrUnknownConnection)
	}
	return room, room != "", nil
}

// SetRoom records room as the connection's current room.
func (r *Registry) SetRoom(conn ConnID, room RoomID) error {
	if _, ok := r.rooms[conn]; !ok {
		return fmt.Errorf("set room of %s: %w", conn, ErrUnknownConnection)
	}
	r.rooms[conn] = room
	return nil
}

// ClearRoom leaves the connection registered but in no room.
func (r *Registry) ClearRoom(conn ConnID) error {
	return r.SetRoom(conn, "")
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	return len(r.rooms)
}
