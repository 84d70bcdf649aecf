package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client represents a single WebSocket peer. A client with no subscriptions
// receives every symbol's signals.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	subMu   sync.RWMutex
	symbols map[string]bool
}

// subscribeMsg is the client -> server control message.
type subscribeMsg struct {
	Type    string   `json:"type"` // "subscribe", "unsubscribe", "ping"
	Symbols []string `json:"symbols,omitempty"`
	Ping    int64    `json:"ping,omitempty"`
}

func (c *Client) wantsSymbol(symbol string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	if len(c.symbols) == 0 {
		return true
	}
	return c.symbols[symbol]
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			// Write coalescing: batch queued messages into a single frame
			// with newline separators
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.RemoveClient(c)
		c.conn.Close()
		c.hub.log.Info("ws client disconnected")
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var req subscribeMsg
		if json.Unmarshal(msg, &req) != nil {
			continue
		}

		switch req.Type {
		case "subscribe":
			c.handleSubscribe(req.Symbols)
		case "unsubscribe":
			c.handleUnsubscribe(req.Symbols)
		case "ping":
			pong, _ := json.Marshal(map[string]interface{}{
				"type":      "pong",
				"ping":      req.Ping,
				"server_ts": time.Now().UnixMilli(),
			})
			select {
			case c.send <- pong:
			default:
			}
		}
	}
}

// handleSubscribe adds symbols to the client's filter and replays the last
// published batch for each so a fresh subscriber is never blank.
func (c *Client) handleSubscribe(symbols []string) {
	if len(symbols) == 0 {
		return
	}
	c.subMu.Lock()
	for _, s := range symbols {
		c.symbols[s] = true
	}
	filter := make(map[string]bool, len(c.symbols))
	for s := range c.symbols {
		filter[s] = true
	}
	c.subMu.Unlock()

	for _, env := range c.hub.latestFor(filter) {
		select {
		case c.send <- env:
		default:
		}
	}
}

func (c *Client) handleUnsubscribe(symbols []string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, s := range symbols {
		delete(c.symbols, s)
	}
}
