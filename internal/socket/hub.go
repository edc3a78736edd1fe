// server/internal/socket/hub.go
package socket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sppg-kitchen-api-server/internal/store"
)

const (
	writeWait = 10 * time.Second
	// queued change notifications; further events are dropped until Run catches up
	feedBuffer = 256
)

// Message is the envelope pushed to every client.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type client struct {
	userID string
	conn   *websocket.Conn
	// gorilla allows one concurrent writer per connection.
	writeMu sync.Mutex
}

// Hub tracks open websocket connections and fans out change notifications.
type Hub struct {
	clients map[string]*client
	mu      sync.RWMutex
	feed    chan Message
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		feed:    make(chan Message, feedBuffer),
		log:     log.Named("ws"),
	}
}

// Change is the payload of a "<collection>.<op>" event. Only ids travel;
// clients refetch the records they display.
type Change struct {
	Collection string   `json:"collection"`
	Op         store.Op `json:"op"`
	IDs        []string `json:"ids"`
}

// Observe queues a change notification for every committed mutation. It
// never blocks: the repository lock is held while it runs.
func (h *Hub) Observe(_ context.Context, ev store.Event) {
	if ev.Op == store.OpReplace {
		return
	}
	ids := append([]string(nil), ev.IDs...)
	for _, row := range ev.Rows {
		ids = append(ids, row.EntityID())
	}
	msg := Message{
		Event: ev.Collection + "." + string(ev.Op),
		Data:  Change{Collection: ev.Collection, Op: ev.Op, IDs: ids},
	}
	select {
	case h.feed <- msg:
	default:
		h.log.Warn("change feed full, event dropped", zap.String("event", msg.Event))
	}
}

// Run delivers queued change notifications until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.feed:
			h.Broadcast(msg.Event, msg.Data)
		}
	}
}

// Register adds a connection under connID.
func (h *Hub) Register(connID, userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[connID] = &client{userID: userID, conn: conn}
	h.log.Debug("client registered", zap.String("conn", connID), zap.String("user", userID))
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		h.log.Debug("client unregistered", zap.String("conn", connID))
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends event to every connected client. Slow or broken clients
// are logged and skipped; their read loop will unregister them.
func (h *Hub) Broadcast(event string, data any) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		h.log.Error("encode broadcast", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := c.conn.WriteMessage(websocket.TextMessage, payload)
		c.writeMu.Unlock()
		if err != nil {
			h.log.Debug("broadcast write failed", zap.String("user", c.userID), zap.Error(err))
		}
	}
}
