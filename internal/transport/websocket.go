// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	applog "visualizer/internal/log"
)

// WebSocketTransport serves rendered output to browser clients: binary
// frame packets and JSON beat events, broadcast to every connection on
// /stream.
//
// Send writes synchronously under the client lock. Frame payloads alias a
// buffer the caller reuses on the next tick, so queueing them would race;
// a slow client therefore backpressures the render loop rather than
// corrupting frames. The per-client write deadline bounds that stall.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	server    *http.Server
}

const clientWriteTimeout = 200 * time.Millisecond

// NewWebSocketTransport creates the transport and starts its HTTP server
// on the given address.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local tool; any origin may view the stream.
			},
		},
		clients: make(map[*websocket.Conn]bool),
	}
	wst.start()
	return wst
}

func (wst *WebSocketTransport) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", wst.handleStream)

	wst.server = &http.Server{
		Addr:    wst.addr,
		Handler: mux,
	}

	go func() {
		applog.Infof("WebSocketTransport: Serving stream on ws://%s/stream", wst.addr)
		if err := wst.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("WebSocketTransport: Server error: %v", err)
		}
	}()
}

// handleStream upgrades HTTP connections and registers them for broadcast.
func (wst *WebSocketTransport) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("WebSocketTransport: Upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("WebSocketTransport: Client connected (%s), total: %d", conn.RemoteAddr(), total)

	// Drain reads so close frames and errors are noticed, then deregister.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		wst.clientsMu.Lock()
		delete(wst.clients, conn)
		total := len(wst.clients)
		wst.clientsMu.Unlock()
		conn.Close()
		applog.Infof("WebSocketTransport: Client disconnected, total: %d", total)
	}()
}

// Send broadcasts to all connected clients. A []byte goes out as a binary
// message (frame packets); anything else is marshaled to JSON (beat
// events). Clients that fail to accept the write are dropped.
func (wst *WebSocketTransport) Send(data any) error {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()

	for client := range wst.clients {
		client.SetWriteDeadline(time.Now().Add(clientWriteTimeout))

		var err error
		switch payload := data.(type) {
		case []byte:
			err = client.WriteMessage(websocket.BinaryMessage, payload)
		default:
			err = client.WriteJSON(data)
		}
		if err != nil {
			applog.Warnf("WebSocketTransport: Dropping client %s: %v", client.RemoteAddr(), err)
			client.Close()
			delete(wst.clients, client)
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (wst *WebSocketTransport) ClientCount() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// Close drops all clients and shuts down the HTTP server.
func (wst *WebSocketTransport) Close() error {
	applog.Infof("WebSocketTransport: Closing server")

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	if wst.server != nil {
		return wst.server.Close()
	}
	return nil
}

var _ Transport = (*WebSocketTransport)(nil)

// Addr returns the configured listen address, for logging and the TUI.
func (wst *WebSocketTransport) Addr() string {
	return fmt.Sprintf("ws://%s/stream", wst.addr)
}
