package relay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectory_RoomLifecycle(t *testing.T) {
	req := require.New(t)
	d := NewDirectory()

	d.AddMember("r", "c2")
	d.AddMember("r", "c1")
	req.True(d.Has("r"))
	req.Equal([]ConnID{"c1", "c2"}, d.Members("r"))

	d.RemoveMember("r", "c1")
	req.Equal([]ConnID{"c2"}, d.Members("r"))

	d.RemoveMember("r", "c2")
	req.False(d.Has("r"))
	req.Zero(d.Len())
	req.Empty(d.Members("r"))

	// Removing from an unknown room is harmless.
	d.RemoveMember("nowhere", "c1")
	req.Zero(d.Len())
}

func TestRegistry_Bookkeeping(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	req.NoError(reg.Add("c1"))
	room, ok, err := reg.Room("c1")
	req.NoError(err)
	req.False(ok)
	req.Empty(room)

	req.NoError(reg.SetRoom("c1", "r"))
	room, ok, err = reg.Room("c1")
	req.NoError(err)
	req.True(ok)
	req.Equal(RoomID("r"), room)

	req.NoError(reg.ClearRoom("c1"))
	_, ok, _ = reg.Room("c1")
	req.False(ok)

	req.NoError(reg.Remove("c1"))
	_, _, err = reg.Room("c1")
	req.ErrorIs(err, ErrUnknownConnection)
	req.ErrorIs(reg.SetRoom("c1", "r"), ErrUnknownConnection)
	req.ErrorIs(reg.Remove("c1"), ErrUnknownConnection)
}

func TestConnID_Short(t *testing.T) {
	require.Equal(t, "abcde", ConnID("abcdefgh").Short())
	require.Equal(t, "ab", ConnID("ab").Short())
}
