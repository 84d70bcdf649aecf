package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"stockpredictions/internal/metrics"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub manages WebSocket clients and fans Redis-published signal batches out
// to them. One goroutine runs the PubSub loop; each client has its own
// read/write pumps.
type Hub struct {
	rdb     *goredis.Client
	log     *slog.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[*Client]bool
	latest  map[string]json.RawMessage // symbol -> last published envelope
}

// NewHub creates a Hub backed by the given Redis client. m may be nil.
func NewHub(rdb *goredis.Client, log *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		rdb:     rdb,
		log:     log,
		metrics: m,
		clients: make(map[*Client]bool),
		latest:  make(map[string]json.RawMessage),
	}
}

// Run subscribes to every symbol's signal channel and routes published
// batches to connected clients. Blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	pubsub := h.rdb.PSubscribe(ctx, "pub:signals:*")
	defer pubsub.Close()

	h.log.Info("signal stream subscribed", "pattern", "pub:signals:*")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(msg.Channel, []byte(msg.Payload))
		}
	}
}

// broadcast wraps a published payload in an envelope and fans it out to
// every client subscribed to the symbol. Slow clients are dropped-from, not
// waited-for.
func (h *Hub) broadcast(channel string, payload []byte) {
	symbol := symbolFromChannel(channel)
	if symbol == "" {
		return
	}

	envelope, err := json.Marshal(map[string]interface{}{
		"type":   "signals",
		"symbol": symbol,
		"data":   json.RawMessage(payload),
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}

	h.mu.Lock()
	h.latest[symbol] = envelope
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.wantsSymbol(symbol) {
			continue
		}
		select {
		case client.send <- envelope:
		default:
			if h.metrics != nil {
				h.metrics.StreamDropped.Inc()
			}
		}
	}
}

// symbolFromChannel extracts "AAPL" from "pub:signals:AAPL".
func symbolFromChannel(channel string) string {
	const prefix = "pub:signals:"
	if len(channel) <= len(prefix) || channel[:len(prefix)] != prefix {
		return ""
	}
	return channel[len(prefix):]
}

// ServeWS upgrades the HTTP connection and registers the client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}

	client := &Client{
		conn:    conn,
		send:    make(chan []byte, 64),
		hub:     h,
		symbols: make(map[string]bool),
	}
	conn.EnableWriteCompression(true)

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.StreamClients.Set(float64(count))
	}
	h.log.Info("ws client connected", "clients", count)

	go client.writePump()
	go client.readPump()
}

// RemoveClient unregisters a client and closes its send channel.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	close(c.send)
	if h.metrics != nil {
		h.metrics.StreamClients.Set(float64(count))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// latestFor returns the last published envelopes for the given symbols, or
// for all symbols when the filter is empty.
func (h *Hub) latestFor(symbols map[string]bool) []json.RawMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []json.RawMessage
	for sym, env := range h.latest {
		if len(symbols) > 0 && !symbols[sym] {
			continue
		}
		out = append(out, env)
	}
	return out
}
