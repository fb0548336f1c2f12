// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, relay stats, and the built-in chat page.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketHandler returns a handler that upgrades GET requests to WebSocket,
// creates a Client with a fresh connection id and registers it with hub.
func WebSocketHandler(hub *Hub) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(hub.log),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warn("websocket upgrade failed", "addr", r.RemoteAddr, "err", err)
			return
		}

		client := NewClient(conn, hub, r.RemoteAddr)

		// The hub launches the pump goroutines once the client is registered.
		if !hub.Register(client) {
			_ = conn.Close()
		}
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "RoomChat server is running!")
}

// StatsHandler reports the relay's connection and room counts as JSON.
func StatsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(hub.Relay().Stats()); err != nil {
			hub.log.Warn("error writing stats response", "err", err)
		}
	}
}

// TestPageHandler serves an HTML page for trying rooms by hand: join a room,
// send messages, and watch room notifications arrive.
func TestPageHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := fmt.Fprint(w, testPage); err != nil {
			hub.log.Warn("error writing HTML response", "err", err)
		}
	}
}

const testPage = `<!DOCTYPE html>
<html>
<head>
    <title>RoomChat</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { width: 240px; padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
        button:hover { background-color: #005a87; }
        .notice { color: gray; font-style: italic; }
        .chat { color: green; }
    </style>
</head>
<body>
    <h1>RoomChat</h1>
    <div id="status">Connecting...</div>
    <div>
        <input type="text" id="roomInput" placeholder="Room name">
        <button onclick="joinRoom()">Join</button>
    </div>
    <div>
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
    </div>
    <div id="messages"></div>

    <script>
        const messagesDiv = document.getElementById('messages');
        const roomInput = document.getElementById('roomInput');
        const messageInput = document.getElementById('messageInput');
        const sendButton = document.getElementById('sendButton');
        const statusDiv = document.getElementById('status');
        const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
        const ws = new WebSocket(scheme + location.host + '/ws');
        let currentRoom = null;
        let nextAck = 1;
        const pending = {};

        function addLine(text, cls) {
            const el = document.createElement('div');
            el.className = cls;
            el.textContent = text;
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function emit(event, data, callback) {
            const frame = { event: event, data: data };
            if (callback) {
                frame.ack = nextAck++;
                pending[frame.ack] = callback;
            }
            ws.send(JSON.stringify(frame));
        }

        function handle(frame) {
            if (frame.event === 'ack' && pending[frame.ack]) {
                pending[frame.ack](frame.data);
                delete pending[frame.ack];
            } else if (frame.event === 'room notification') {
                addLine(frame.data, 'notice');
            } else if (frame.event === 'chat message') {
                const m = frame.data;
                addLine(m.sender.substring(0, 5) + '...: ' + m.message, 'chat');
            }
        }

        ws.onopen = function() { statusDiv.textContent = 'Connected'; };
        ws.onclose = function() {
            statusDiv.textContent = 'Disconnected';
            messageInput.disabled = true;
            sendButton.disabled = true;
        };
        ws.onmessage = function(event) {
            event.data.split('\n').forEach(function(line) {
                if (line) { handle(JSON.parse(line)); }
            });
        };

        function joinRoom() {
            const room = roomInput.value.trim();
            if (!room) { return; }
            emit('join room', room, function(res) {
                if (res.success) {
                    currentRoom = room;
                    addLine(res.message, 'notice');
                    messageInput.disabled = false;
                    sendButton.disabled = false;
                }
            });
        }

        function sendMessage() {
            const message = messageInput.value.trim();
            if (message && currentRoom) {
                emit('chat message', { room: currentRoom, message: message });
                messageInput.value = '';
            }
        }

        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') { sendMessage(); }
        });
    </script>
</body>
</html>`
