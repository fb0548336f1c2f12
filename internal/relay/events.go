package relay

import "fmt"

// ConnID identifies one live transport session.
type ConnID string

// Short returns the abbreviated form used in room notifications.
func (c ConnID) Short() string {
	if len(c) <= 5 {
		return string(c)
	}
	return string(c[:5])
}

// RoomID identifies a room. Rooms are never declared; any non-empty string
// names one.
type RoomID string

// Outbound event names, matching the events clients subscribe to.
const (
	EventRoomNotification = "room notification"
	EventChatMessage      = "chat message"
)

// EventKind tags an inbound event.
type EventKind int

const (
	EventConnect EventKind = iota + 1
	EventJoin
	EventChat
	EventDisconnect
)

func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventJoin:
		return "join"
	case EventChat:
		return "chat"
	case EventDisconnect:
		return "disconnect"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is an inbound event originating from one connection. Room is used
// by join and chat events, Message only by chat events.
type Event struct {
	Kind    EventKind
	Conn    ConnID
	Room    RoomID
	Message string
}

// JoinRequest is the validated payload of a join event.
type JoinRequest struct {
	Room RoomID `validate:"required"`
}

// ChatRequest is the validated payload of a chat event.
type ChatRequest struct {
	Room    RoomID `json:"room" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// JoinAck is returned to a successful joiner through the transport's direct
// reply channel.
type JoinAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ChatMessage is the payload delivered to every member of a room when a
// chat message is routed.
type ChatMessage struct {
	Message string `json:"message"`
	Sender  ConnID `json:"sender"`
	Room    RoomID `json:"room"`
}

// Outbound is one event handed to the transport for a single connection.
type Outbound struct {
	Event   string
	Payload any
}

// Sender delivers outbound events to one connection. Implementations must
// not block and must not call back into the Relay.
type Sender interface {
	Send(conn ConnID, out Outbound) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(conn ConnID, out Outbound) error

// Send calls f(conn, out).
func (f SenderFunc) Send(conn ConnID, out Outbound) error {
	return f(conn, out)
}

func selfJoinNotice(room RoomID) Outbound {
	return Outbound{Event: EventRoomNotification, Payload: fmt.Sprintf("You joined room '%s'.", room)}
}

func joinNotice(conn ConnID, room RoomID) Outbound {
	return Outbound{Event: EventRoomNotification, Payload: fmt.Sprintf("User %s... joined room '%s'.", conn.Short(), room)}
}

func leaveNotice(conn ConnID, room RoomID) Outbound {
	return Outbound{Event: EventRoomNotification, Payload: fmt.Sprintf("User %s... left room '%s'.", conn.Short(), room)}
}

func welcomeAck(room RoomID) JoinAck {
	return JoinAck{Success: true, Message: fmt.Sprintf("Welcome to room '%s'!", room)}
}
