// Package server coordinates client registration, inbound event dispatch, and
// connection cleanup for the RoomChat WebSocket system via the Hub type.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/roomchat/internal/relay"
)

// inbound is one decoded client event waiting for the hub loop.
type inbound struct {
	client *Client
	event  relay.Event
	ack    *int64
}

// Hub owns every registered client and is the only caller of the relay.
// Registration, unregistration and inbound events are processed one at a
// time by Run, so relay operations observe a single global order.
type Hub struct {
	clients    map[relay.ConnID]*Client
	relay      *relay.Relay
	inbound    chan inbound
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	log        *slog.Logger
	metrics    *Metrics

	failedMu sync.Mutex
	failed   []*Client
}

// NewHub creates a Hub whose relay delivers through the hub's clients.
// The returned Hub is ready to run.
func NewHub(log *slog.Logger, opts ...relay.Option) *Hub {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:    make(map[relay.ConnID]*Client),
		inbound:    make(chan inbound),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        log.With("component", "hub"),
	}
	h.relay = relay.New(h, append([]relay.Option{relay.WithLogger(log)}, opts...)...)
	h.metrics = newMetrics(h.relay)
	return h
}

// Relay returns the relay driven by this hub.
func (h *Hub) Relay() *relay.Relay {
	return h.relay
}

// Metrics returns the hub's Prometheus collectors.
func (h *Hub) Metrics() *Metrics {
	return h.metrics
}

// Register hands a client to the hub loop. It returns false if the hub has
// shut down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Send implements relay.Sender by queueing one frame on the client's send
// buffer. Clients whose buffer is full are dropped after the current event.
func (h *Hub) Send(id relay.ConnID, out relay.Outbound) error {
	payload, err := encodeOutbound(out.Event, out.Payload, nil)
	if err != nil {
		return err
	}

	h.mutex.RLock()
	client, ok := h.clients[id]
	h.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("send %q to %s: %w", out.Event, id, ErrClientGone)
	}

	if !h.safeSend(client, payload) {
		h.markFailed(client)
		h.metrics.deliveryFailures.Inc()
		return fmt.Errorf("send %q to %s: %w", out.Event, id, ErrSendBufferFull)
	}
	return nil
}

func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("recovered from panic in safeSend", "panic", r)
		}
	}()

	// Hold the lock during the entire send operation to prevent race conditions
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if _, exists := h.clients[client.id]; !exists || client.closed {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

func (h *Hub) markFailed(client *Client) {
	h.failedMu.Lock()
	h.failed = append(h.failed, client)
	h.failedMu.Unlock()
}

// Run starts the hub's main event loop, handling client registration,
// unregistration and inbound events. It returns after Shutdown is called and
// should run in its own goroutine.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case in := <-h.inbound:
			h.handleInbound(in)
		}

		h.removeFailedClients()
	}
}

func (h *Hub) handleRegister(client *Client) {
	if client == nil {
		h.log.Warn("received nil client registration; skipping")
		return
	}

	h.mutex.Lock()
	client.closed = false
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()

	if err := h.relay.Connect(client.id); err != nil {
		h.log.Error("relay rejected connection", "conn", client.id, "err", err)
	}
	h.log.Info("client registered", "conn", client.id, "addr", client.addr, "clients", clientCount)

	if client.conn == nil {
		return
	}

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

func (h *Hub) handleUnregister(client *Client) {
	if !h.detach(client) {
		return
	}
	h.disconnect(client)
	h.log.Info("client unregistered", "conn", client.id, "addr", client.addr)
}

// detach removes client from the hub and closes its send channel. It reports
// false if the client was already gone.
func (h *Hub) detach(client *Client) bool {
	h.mutex.Lock()
	if current, ok := h.clients[client.id]; !ok || current != client {
		h.mutex.Unlock()
		return false
	}
	delete(h.clients, client.id)
	client.closed = true
	h.mutex.Unlock()

	// Close the channel after releasing the lock
	close(client.send)
	return true
}

func (h *Hub) disconnect(client *Client) {
	if err := h.relay.Disconnect(client.id); err != nil {
		h.log.Error("relay disconnect failed", "conn", client.id, "err", err)
	}
}

func (h *Hub) handleInbound(in inbound) {
	h.mutex.RLock()
	_, registered := h.clients[in.client.id]
	h.mutex.RUnlock()
	if !registered {
		h.log.Debug("event from unregistered client dropped", "conn", in.client.id, "kind", in.event.Kind)
		return
	}

	ack, err := h.relay.Dispatch(in.event)
	switch {
	case err == nil:
		h.metrics.observe(in.event.Kind)
	case relay.IsDropped(err):
		h.log.Debug("event dropped", "conn", in.client.id, "kind", in.event.Kind, "err", err)
		h.metrics.dropped(err)
	default:
		h.log.Error("event failed", "conn", in.client.id, "kind", in.event.Kind, "err", err)
	}

	if ack == nil || in.ack == nil {
		return
	}
	payload, err := encodeOutbound(EventAck, ack, in.ack)
	if err != nil {
		h.log.Error("encode join ack", "conn", in.client.id, "err", err)
		return
	}
	if !h.safeSend(in.client, payload) {
		h.markFailed(in.client)
	}
}

// removeFailedClients drops clients that could not take a frame and runs the
// disconnect transition for each of them.
func (h *Hub) removeFailedClients() {
	h.failedMu.Lock()
	failed := h.failed
	h.failed = nil
	h.failedMu.Unlock()

	for _, client := range failed {
		if h.detach(client) {
			h.log.Warn("client removed due to full send buffer", "conn", client.id, "addr", client.addr)
			h.disconnect(client)
		}
	}
}

// shutdownClients detaches every client. Closing a client's send channel
// makes its write pump send a close frame and drop the connection, which in
// turn ends its read pump.
func (h *Hub) shutdownClients() {
	h.log.Info("shutting down all client connections")

	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	closed := 0
	for _, client := range clients {
		if h.detach(client) {
			closed++
		}
	}

	h.log.Info("closed client connections", "count", closed)
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("initiating hub shutdown")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.log.Warn("hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
