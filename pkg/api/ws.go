// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
	readTimeout  = 60 * time.Second
)

// Message is the envelope of everything sent on the websocket stream.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub fans messages out to the connected websocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	log     zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{clients: make(map[*wsClient]struct{}), log: log}
}

// Broadcast sends a message to every client. Clients whose buffer is full
// are dropped.
func (h *Hub) Broadcast(msgType string, data any) {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("failed to encode broadcast")
		return
	}

	var full []*wsClient
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			full = append(full, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range full {
		h.unregister(c)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug().Int("clients", n).Msg("websocket client connected")
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug().Int("clients", n).Msg("websocket client disconnected")
}

// serve runs a client until its connection fails. welcome is queued first.
func (h *Hub) serve(conn *websocket.Conn, welcome []byte) {
	c := &wsClient{conn: conn, send: make(chan []byte, 64), hub: h}
	if welcome != nil {
		c.send <- welcome
	}
	h.register(c)

	go c.writePump()
	c.readPump()
}

// readPump discards client input; it only keeps the read deadline alive and
// notices the close.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
