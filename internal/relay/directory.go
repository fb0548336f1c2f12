package relay

import (
	"slices"

	"github.com/samber/lo"
)

type memberSet map[ConnID]struct{}

// Directory maps room identifiers to their member connections. A room has
// an entry exactly when it has at least one member.
//
// Directory is not safe for concurrent use; Relay serializes access.
type Directory struct {
	rooms map[RoomID]memberSet
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{rooms: make(map[RoomID]memberSet)}
}

// AddMember adds conn to room, creating the room entry on first member.
func (d *Directory) AddMember(room RoomID, conn ConnID) {
	members, ok := d.rooms[room]
	if !ok {
		members = make(memberSet)
		d.rooms[room] = members
	}
	members[conn] = struct{}{}
}

// RemoveMember removes conn from room and deletes the entry once it is empty.
func (d *Directory) RemoveMember(room RoomID, conn ConnID) {
	members, ok := d.rooms[room]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(d.rooms, room)
	}
}

// Members returns a sorted snapshot of the room's members. Unknown rooms
// have no members.
func (d *Directory) Members(room RoomID) []ConnID {
	members := lo.Keys(d.rooms[room])
	slices.Sort(members)
	return members
}

// IsMember reports whether conn belongs to room.
func (d *Directory) IsMember(room RoomID, conn ConnID) bool {
	_, ok := d.rooms[room][conn]
	return ok
}

// Has reports whether room currently has an entry.
func (d *Directory) Has(room RoomID) bool {
	_, ok := d.rooms[room]
	return ok
}

// Len returns the number of non-empty rooms.
func (d *Directory) Len() int {
	return len(d.rooms)
}
