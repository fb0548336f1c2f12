package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/roomchat/internal/relay"
	"github.com/Tyrowin/roomchat/internal/server"
)

const (
	testOrigin  = "http://localhost:8080"
	readTimeout = 2 * time.Second
)

// startTestServer runs a hub and the full router behind an httptest server.
func startTestServer(t *testing.T) (*server.Hub, *httptest.Server) {
	t.Helper()

	hub := server.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), relay.WithStrict(true))
	server.StartHub(hub)
	ts := httptest.NewServer(server.SetupRoutes(hub))

	t.Cleanup(func() {
		if err := hub.Shutdown(2 * time.Second); err != nil {
			t.Logf("hub shutdown: %v", err)
		}
	})
	t.Cleanup(ts.Close)
	return hub, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

// testClient reads newline-batched envelopes from one WebSocket connection.
type testClient struct {
	t       *testing.T
	conn    *websocket.Conn
	pending []server.Envelope
	nextAck int64
}

func dial(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()

	conn, resp, err := dialWithOrigin(wsURL(ts), testOrigin)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	c := &testClient{t: t, conn: conn}
	t.Cleanup(func() { _ = conn.Close() })
	return c
}

func dialWithOrigin(url, origin string) (*websocket.Conn, *http.Response, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	headers.Set("Origin", origin)
	return dialer.Dial(url, headers)
}

func (c *testClient) emit(event string, data any, ack *int64) {
	c.t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	frame, err := json.Marshal(server.Envelope{Event: event, Data: raw, Ack: ack})
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, frame))
}

// join joins room with an ack id and consumes the self-join notice and ack.
func (c *testClient) join(room string) relay.JoinAck {
	c.t.Helper()

	c.nextAck++
	id := c.nextAck
	c.emit(server.EventJoinRoom, room, &id)

	c.expectNotice("You joined room '" + room + "'.")

	env := c.next()
	require.Equal(c.t, server.EventAck, env.Event)
	require.NotNil(c.t, env.Ack)
	require.Equal(c.t, id, *env.Ack)

	var ack relay.JoinAck
	require.NoError(c.t, json.Unmarshal(env.Data, &ack))
	return ack
}

func (c *testClient) chat(room, message string) {
	c.t.Helper()
	c.emit(server.EventChat, relay.ChatRequest{Room: relay.RoomID(room), Message: message}, nil)
}

// next returns the next envelope, failing the test after readTimeout.
func (c *testClient) next() server.Envelope {
	c.t.Helper()

	for len(c.pending) == 0 {
		require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(readTimeout)))
		_, raw, err := c.conn.ReadMessage()
		require.NoError(c.t, err)
		for _, line := range bytes.Split(raw, []byte("\n")) {
			if len(line) == 0 {
				continue
			}
			var env server.Envelope
			require.NoError(c.t, json.Unmarshal(line, &env))
			c.pending = append(c.pending, env)
		}
	}

	env := c.pending[0]
	c.pending = c.pending[1:]
	return env
}

func (c *testClient) nextNotice() string {
	c.t.Helper()

	env := c.next()
	require.Equal(c.t, server.EventNotice, env.Event)
	var text string
	require.NoError(c.t, json.Unmarshal(env.Data, &text))
	return text
}

func (c *testClient) expectNotice(want string) {
	c.t.Helper()
	require.Equal(c.t, want, c.nextNotice())
}

func (c *testClient) nextChat() relay.ChatMessage {
	c.t.Helper()

	env := c.next()
	require.Equal(c.t, server.EventChat, env.Event)
	var msg relay.ChatMessage
	require.NoError(c.t, json.Unmarshal(env.Data, &msg))
	return msg
}

// expectClosed reads until the server closes the connection.
func (c *testClient) expectClosed() {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(readTimeout)))
	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			c.t.Fatalf("connection still open after %s", readTimeout)
		}
		return
	}
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.String()
}
