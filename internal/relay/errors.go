package relay

import "errors"

var (
	// ErrInvalidRoomID is returned by Join when the room identifier is empty.
	ErrInvalidRoomID = errors.New("invalid room id")
	// ErrMalformedMessage is returned by Route when the room or text is missing.
	ErrMalformedMessage = errors.New("malformed chat message")
	// ErrRoomMismatch is returned by Route when the sender is not a member
	// of the room it targets.
	ErrRoomMismatch = errors.New("sender is not in target room")
	// ErrUnknownConnection signals an operation on a connection that is not
	// registered. The transport guarantees liveness, so this is an internal
	// consistency violation.
	ErrUnknownConnection = errors.New("unknown connection")
	// ErrDuplicateConnection is returned by Connect for an id already registered.
	ErrDuplicateConnection = errors.New("connection already registered")
	// ErrUnknownEvent is returned by Dispatch for an unsupported event kind.
	ErrUnknownEvent = errors.New("unknown event kind")
)

// IsDropped reports whether err is a user-input error that the relay handles
// by silently discarding the offending event.
func IsDropped(err error) bool {
	return errors.Is(err, ErrInvalidRoomID) ||
		errors.Is(err, ErrMalformedMessage) ||
		errors.Is(err, ErrRoomMismatch)
}
