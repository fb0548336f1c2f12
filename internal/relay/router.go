package relay

import "fmt"

// Route delivers a chat message from conn to every member of req.Room,
// the sender included. The message is dropped with ErrMalformedMessage when
// the room or text is missing, and with ErrRoomMismatch when conn is not
// currently in req.Room. Nothing is sent to anyone for a dropped message.
func (r *Relay) Route(conn ConnID, req ChatRequest) error {
	if err := r.validate.Struct(req); err != nil {
		return fmt.Errorf("route from %s: %w", conn, ErrMalformedMessage)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, inRoom, err := r.registry.Room(conn)
	if err != nil {
		return r.check(err)
	}
	if !inRoom || current != req.Room {
		return fmt.Errorf("route from %s to %q: %w", conn, req.Room, ErrRoomMismatch)
	}

	msg := ChatMessage{Message: req.Message, Sender: conn, Room: req.Room}
	r.sendToRoom(req.Room, Outbound{Event: EventChatMessage, Payload: msg}, "")
	return nil
}
