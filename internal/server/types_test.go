package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/relay"
)

func TestDecodeInbound(t *testing.T) {
	ack := int64(9)
	cases := []struct {
		name    string
		raw     string
		want    relay.Event
		wantAck *int64
		wantErr error
	}{
		{
			name:    "join with ack",
			raw:     `{"event":"join room","data":"lobby","ack":9}`,
			want:    relay.Event{Kind: relay.EventJoin, Conn: "c", Room: "lobby"},
			wantAck: &ack,
		},
		{
			name: "join with non-string room",
			raw:  `{"event":"join room","data":{"room":"lobby"}}`,
			want: relay.Event{Kind: relay.EventJoin, Conn: "c"},
		},
		{
			name: "chat message",
			raw:  `{"event":"chat message","data":{"room":"r","message":"hi"}}`,
			want: relay.Event{Kind: relay.EventChat, Conn: "c", Room: "r", Message: "hi"},
		},
		{
			name: "chat message without data",
			raw:  `{"event":"chat message"}`,
			want: relay.Event{Kind: relay.EventChat, Conn: "c"},
		},
		{
			name:    "unknown event",
			raw:     `{"event":"leave room","data":"r"}`,
			wantErr: ErrUnsupportedEvent,
		},
		{
			name:    "not json",
			raw:     `hello`,
			wantErr: ErrInvalidFrame,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, gotAck, err := decodeInbound("c", []byte(tc.raw))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, ev)
			require.Equal(t, tc.wantAck, gotAck)
		})
	}
}

func TestEncodeOutbound(t *testing.T) {
	ack := int64(1)

	raw, err := encodeOutbound(EventAck, relay.JoinAck{Success: true, Message: "ok"}, &ack)
	require.NoError(t, err)
	require.JSONEq(t, `{"event":"ack","ack":1,"data":{"success":true,"message":"ok"}}`, string(raw))

	raw, err = encodeOutbound(EventNotice, "You joined room 'r'.", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"event":"room notification","data":"You joined room 'r'."}`, string(raw))

	_, err = encodeOutbound(EventChat, make(chan int), nil)
	require.Error(t, err)
}
