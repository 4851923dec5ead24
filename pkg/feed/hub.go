// Package feed pushes world events to connected players over websockets.
package feed

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"planetfall/pkg/types"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sendBuffer   = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	player  string
	conn    *websocket.Conn
	msgpack bool
	send    chan types.Event
}

// Hub fans events out to every connection of the event's player.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]bool
	log     *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hub{clients: make(map[string]map[*client]bool), log: logger}
}

// Publish never blocks; a connection with a full buffer misses the event.
func (h *Hub) Publish(ev types.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[ev.PlayerID] {
		select {
		case c.send <- ev:
		default:
			h.log.Printf("Feed buffer full for %s, dropping %s", c.player, ev.Type)
		}
	}
}

// Count returns the number of open connections for a player.
func (h *Hub) Count(player string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[player])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.player] == nil {
		h.clients[c.player] = make(map[*client]bool)
	}
	h.clients[c.player][c] = true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.player]; ok && set[c] {
		delete(set, c)
		close(c.send)
		if len(set) == 0 {
			delete(h.clients, c.player)
		}
	}
}

// ServeWS upgrades the request and streams the player's events until the
// connection drops. ?format=msgpack switches to binary msgpack frames.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, player string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Printf("Feed upgrade failed: %v", err)
		return
	}
	c := &client{
		player:  player,
		conn:    conn,
		msgpack: r.URL.Query().Get("format") == "msgpack",
		send:    make(chan types.Event, sendBuffer),
	}
	h.register(c)
	go h.writePump(c)
	h.readPump(c)
}

// readPump only watches for close and pong frames; clients do not send commands.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			kind, data, err := encode(ev, c.msgpack)
			if err != nil {
				h.log.Printf("Feed encode %s: %v", ev.Type, err)
				continue
			}
			if err := c.conn.WriteMessage(kind, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encode(ev types.Event, binary bool) (int, []byte, error) {
	if binary {
		data, err := msgpack.Marshal(&ev)
		return websocket.BinaryMessage, data, err
	}
	data, err := json.Marshal(ev)
	return websocket.TextMessage, data, err
}
