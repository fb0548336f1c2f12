// Package server defines the JSON envelope exchanged with WebSocket clients
// and the helpers that translate it to and from relay events.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Tyrowin/roomchat/internal/relay"
)

// Inbound and outbound event names on the wire.
const (
	EventJoinRoom = "join room"
	EventChat     = relay.EventChatMessage
	EventNotice   = relay.EventRoomNotification
	EventAck      = "ack"
)

var (
	// ErrInvalidFrame is returned for frames that are not a JSON envelope.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrUnsupportedEvent is returned for envelopes naming an unknown event.
	ErrUnsupportedEvent = errors.New("unsupported event")
	// ErrClientGone is returned when sending to a client that has unregistered.
	ErrClientGone = errors.New("client not registered")
	// ErrSendBufferFull is returned when a client's send buffer is full.
	ErrSendBufferFull = errors.New("send buffer full")
)

// Envelope is the JSON frame exchanged with clients in both directions.
// Ack carries the client's callback id on requests and echoes it on the
// matching reply.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   *int64          `json:"ack,omitempty"`
}

// decodeInbound parses a client frame into a relay event. Payloads of the
// wrong shape decode to empty fields so the relay rejects them by its own rules.
func decodeInbound(conn relay.ConnID, raw []byte) (relay.Event, *int64, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return relay.Event{}, nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	switch env.Event {
	case EventJoinRoom:
		var room string
		_ = json.Unmarshal(env.Data, &room)
		return relay.Event{Kind: relay.EventJoin, Conn: conn, Room: relay.RoomID(room)}, env.Ack, nil
	case EventChat:
		var chat relay.ChatRequest
		_ = json.Unmarshal(env.Data, &chat)
		return relay.Event{Kind: relay.EventChat, Conn: conn, Room: chat.Room, Message: chat.Message}, env.Ack, nil
	default:
		return relay.Event{}, nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, env.Event)
	}
}

// encodeOutbound renders one outbound frame.
func encodeOutbound(event string, payload any, ack *int64) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data, Ack: ack})
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
