package relay

// Disconnect forgets conn. If it was in a room it is removed from that
// room and the remaining members receive a leave notice. Nothing is sent to
// conn itself.
func (r *Relay) Disconnect(conn ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, inRoom, err := r.registry.Room(conn)
	if err != nil {
		return r.check(err)
	}
	if inRoom {
		r.leave(conn, room)
	}
	return r.check(r.registry.Remove(conn))
}
