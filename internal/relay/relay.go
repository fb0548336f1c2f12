package relay

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Stats is a point-in-time count of live connections and non-empty rooms.
type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

// Option configures a Relay.
type Option func(*Relay)

// WithStrict makes the Relay panic on internal consistency violations such
// as an operation on an unregistered connection.
func WithStrict(strict bool) Option {
	return func(r *Relay) { r.strict = strict }
}

// WithLogger sets the logger used for delivery failures and dropped events.
func WithLogger(log *slog.Logger) Option {
	return func(r *Relay) {
		if log != nil {
			r.log = log
		}
	}
}

// Relay owns the connection registry and room directory and serializes every
// operation that reads or mutates them.
type Relay struct {
	mu        sync.Mutex
	registry  *Registry
	directory *Directory
	sender    Sender
	validate  *validator.Validate
	log       *slog.Logger
	strict    bool
}

// New creates a Relay that delivers outbound events through sender.
func New(sender Sender, opts ...Option) *Relay {
	r := &Relay{
		registry:  NewRegistry(),
		directory: NewDirectory(),
		sender:    sender,
		validate:  validator.New(),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("component", "relay")
	return r
}

// Connect registers a new live connection with no room.
func (r *Relay) Connect(conn ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.check(r.registry.Add(conn))
}

// Dispatch runs the operation matching ev.Kind. The returned JoinAck is
// non-nil only for a successful join.
func (r *Relay) Dispatch(ev Event) (*JoinAck, error) {
	switch ev.Kind {
	case EventConnect:
		return nil, r.Connect(ev.Conn)
	case EventJoin:
		ack, err := r.Join(ev.Conn, ev.Room)
		if err != nil {
			return nil, err
		}
		return &ack, nil
	case EventChat:
		return nil, r.Route(ev.Conn, ChatRequest{Room: ev.Room, Message: ev.Message})
	case EventDisconnect:
		return nil, r.Disconnect(ev.Conn)
	default:
		return nil, fmt.Errorf("dispatch %s: %w", ev.Kind, ErrUnknownEvent)
	}
}

// Stats reports the current number of connections and rooms.
func (r *Relay) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Stats{Connections: r.registry.Len(), Rooms: r.directory.Len()}
}

// Members returns a snapshot of the members of room.
func (r *Relay) Members(room RoomID) []ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.directory.Members(room)
}

// RoomOf returns the room conn currently occupies, if any.
func (r *Relay) RoomOf(conn ConnID) (RoomID, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok, err := r.registry.Room(conn)
	return room, ok, r.check(err)
}

// check escalates consistency violations in strict mode.
func (r *Relay) check(err error) error {
	if err != nil && r.strict && errors.Is(err, ErrUnknownConnection) {
		panic(err)
	}
	return err
}

func (r *Relay) sendTo(conn ConnID, out Outbound) {
	if err := r.sender.Send(conn, out); err != nil {
		r.log.Warn("delivery failed", "conn", conn, "event", out.Event, "err", err)
	}
}

// sendToRoom delivers out to every current member of room except excluding,
// in directory order.
func (r *Relay) sendToRoom(room RoomID, out Outbound, excluding ConnID) {
	for _, member := range r.directory.Members(room) {
		if member == excluding {
			continue
		}
		r.sendTo(member, out)
	}
}
