package relay

import "fmt"

// Join moves conn into room. If conn occupies a different room it leaves
// that room first and the remaining members are notified. The other members
// of room are then told about the newcomer and conn receives its own
// self-join notice.
//
// Joining the room conn already occupies skips the leave step but still
// re-sends both notifications.
func (r *Relay) Join(conn ConnID, room RoomID) (JoinAck, error) {
	if err := r.validate.Struct(JoinRequest{Room: room}); err != nil {
		return JoinAck{}, fmt.Errorf("join %s: %w", conn, ErrInvalidRoomID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, inRoom, err := r.registry.Room(conn)
	if err != nil {
		return JoinAck{}, r.check(err)
	}

	if inRoom && previous != room {
		r.leave(conn, previous)
	}

	r.directory.AddMember(room, conn)
	if err := r.registry.SetRoom(conn, room); err != nil {
		return JoinAck{}, r.check(err)
	}

	r.sendToRoom(room, joinNotice(conn, room), conn)
	r.sendTo(conn, selfJoinNotice(room))

	r.log.Debug("joined room", "conn", conn, "room", room, "previous", previous)
	return welcomeAck(room), nil
}

// leave removes conn from room and notifies the members left behind.
// The caller holds r.mu and updates the registry.
func (r *Relay) leave(conn ConnID, room RoomID) {
	r.directory.RemoveMember(room, conn)
	r.sendToRoom(room, leaveNotice(conn, room), conn)
	r.log.Debug("left room", "conn", conn, "room", room)
}
