package brackets

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one websocket subscriber attached to a single room.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Room     string
	isClosed bool
	mu       sync.Mutex
}

// Hub fans domain events out to websocket clients grouped by room. Rooms are
// keyed by entity ("tournament:4", "season:2"); delivery is best effort, slow
// clients are skipped.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.logger.Info("websocket client registered",
				slog.String("room", client.Room),
				slog.Int("clients_in_room", len(h.rooms[client.Room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if roomClients, ok := h.rooms[client.Room]; ok {
				if _, okClient := roomClients[client]; okClient {
					client.mu.Lock()
					if !client.isClosed {
						close(client.Send)
						client.isClosed = true
					}
					client.mu.Unlock()
					delete(roomClients, client)
					if len(roomClients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom marshals message and sends it to every client in the room.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message",
			slog.String("room", roomID), slog.Any("error", err))
		return
	}

	for client := range roomClients {
		client.mu.Lock()
		if client.isClosed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			// Channel full; drop rather than block the broadcaster.
		}
		client.mu.Unlock()
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Inbound messages are ignored; the read loop only detects closure.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush whatever queued up behind this message.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
