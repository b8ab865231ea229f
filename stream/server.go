// Package stream broadcasts read-only simulation snapshots to websocket clients.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Message is the envelope written to clients.
type Message struct {
	Type string `json:"type"`
	Tick int    `json:"tick,omitempty"`
	Data any    `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub fans snapshots out to connected clients. Publish never blocks the caller:
// when the queue is full the message is dropped.
type Hub struct {
	hello Message

	mu      sync.Mutex
	clients map[*client]struct{}

	queue   chan Message
	done    chan struct{}
	dropped int
}

// NewHub creates a hub that greets each new client with hello and queues up
// to buffer pending messages.
func NewHub(hello Message, buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	h := &Hub{
		hello:   hello,
		clients: make(map[*client]struct{}),
		queue:   make(chan Message, buffer),
		done:    make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.done)
	for msg := range h.queue {
		h.Broadcast(msg)
	}
}

// Publish queues msg for broadcast.
func (h *Hub) Publish(msg Message) {
	select {
	case h.queue <- msg:
	default:
		h.mu.Lock()
		h.dropped++
		h.mu.Unlock()
	}
}

// Broadcast writes v to every client synchronously, dropping clients whose
// write fails. It returns the number of successful writes.
func (h *Hub) Broadcast(v any) int {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	sent := 0
	for _, c := range list {
		if err := c.send(v); err != nil {
			slog.Debug("stream client dropped", "remote", c.conn.RemoteAddr().String(), "error", err)
			h.remove(c)
			continue
		}
		sent++
	}
	return sent
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many published messages were discarded.
func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

// ServeHTTP upgrades the request and keeps the client registered until its
// connection fails. Incoming messages are read and discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}
	if err := c.send(h.hello); err != nil {
		conn.Close()
		return
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

// Close stops the broadcast loop and disconnects all clients.
func (h *Hub) Close() {
	close(h.queue)
	<-h.done

	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()
	for _, c := range list {
		h.remove(c)
	}
}

// Server serves a Hub at /ws.
type Server struct {
	Hub *Hub
	ln  net.Listener
	srv *http.Server
}

// Listen starts serving hub on addr in the background.
func Listen(addr string, hub *Hub) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	s := &Server{Hub: hub, ln: ln, srv: &http.Server{Handler: mux}}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("stream server stopped", "error", err)
		}
	}()
	slog.Info("stream listening", "addr", ln.Addr().String())
	return s, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops accepting connections and closes the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	s.Hub.Close()
	return err
}
