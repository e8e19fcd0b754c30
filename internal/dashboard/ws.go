package dashboard

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fundingboard/internal/view"
	"fundingboard/logger"
)

const (
	// writeWait bounds how long a single frame write may take before the
	// connection is considered dead.
	writeWait = 5 * time.Second

	// sendBuffer is the per-connection backlog of pending page updates. A
	// client that falls further behind than this is dropped.
	sendBuffer = 16
)

// wsHub fans the formatted page model out to every connected dashboard page
// whenever the view state changes. Each connection has its own writer
// goroutine fed by a buffered channel; broadcast never performs network
// writes itself, so a stalled client cannot block the state listeners.
type wsHub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]chan []byte
	closed   bool
	upgrader websocket.Upgrader
	log      *logger.Log
}

func newWSHub(log *logger.Log) *wsHub {
	return &wsHub{
		conns: make(map[*websocket.Conn]chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The dashboard is same-origin only in practice but may sit
			// behind a proxy, so origin checking is left to the deployment.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *wsHub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithComponent("dashboard").WithError(err).Warn("websocket upgrade failed")
		return
	}

	send := make(chan []byte, sendBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.conns[conn] = send
	h.mu.Unlock()

	go h.writeLoop(conn, send)

	// Drain client messages so pings are answered and closes are noticed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

// writeLoop is the only goroutine that writes to its connection. Every write
// carries a deadline; a write failure drops the connection, which closes the
// send channel and ends the loop.
func (h *wsHub) writeLoop(conn *websocket.Conn, send <-chan []byte) {
	for payload := range send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.drop(conn)
		}
	}
	_ = conn.Close()
}

// broadcast queues the page on every connection without blocking. A
// connection whose backlog is full is dropped rather than waited on.
func (h *wsHub) broadcast(page view.Page) {
	payload, err := json.Marshal(page)
	if err != nil {
		h.log.WithComponent("dashboard").WithError(err).Warn("failed to encode page update")
		return
	}

	var stale []*websocket.Conn

	h.mu.Lock()
	for conn, send := range h.conns {
		select {
		case send <- payload:
		default:
			stale = append(stale, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range stale {
		h.drop(conn)
	}
}

// drop removes the connection and closes its send channel. It is safe to call
// more than once for the same connection.
func (h *wsHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	send, ok := h.conns[conn]
	if ok {
		delete(h.conns, conn)
		close(send)
	}
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *wsHub) close() {
	h.mu.Lock()
	h.closed = true
	conns := h.conns
	h.conns = make(map[*websocket.Conn]chan []byte)
	h.mu.Unlock()

	for conn, send := range conns {
		close(send)
		_ = conn.Close()
	}
}
