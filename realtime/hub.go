package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Event types
const (
	EventOrderCreated   = "order_created"
	EventOrderUpdate    = "order_update"
	EventTableUpdate    = "table_update"
	EventBillCreated    = "bill_created"
	EventBillPrinted    = "bill_printed"
	EventStockLow       = "stock_low"
	EventCustomerUpdate = "customer_update"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Mirror receives a copy of every broadcast, e.g. a message broker.
type Mirror interface {
	Publish(msg Message) error
}

// Hub tracks websocket clients (tagged with the role of the logged in user)
// and fans messages out to them. mu guards the client set and the mirror only;
// each client serializes its own writes.
type Hub struct {
	clients map[*websocket.Conn]*client
	mu      sync.Mutex
	mirror  Mirror
}

type client struct {
	conn    *websocket.Conn
	role    string
	writeMu sync.Mutex
}

func (c *client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

var defaultHub = NewHub()

// Default returns the process wide hub used by controllers.
func Default() *Hub {
	return defaultHub
}

func (h *Hub) SetMirror(m Mirror) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mirror = m
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = &client{conn: conn, role: role}
	utils.InfoLogger.Printf("Realtime client registered (role=%s, total=%d)", role, len(h.clients))
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast is best-effort: failing clients are dropped and errors logged.
// No hub lock is held while writing to sockets or the mirror.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling %s message: %v", msg.Event, err)
		return
	}

	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	mirror := h.mirror
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.write(data); err != nil {
			utils.ErrorLogger.Printf("Dropping %s client after write error: %v", c.role, err)
			h.Unregister(c.conn)
		}
	}

	if mirror != nil {
		if err := mirror.Publish(msg); err != nil {
			utils.ErrorLogger.Printf("Error mirroring %s message: %v", msg.Event, err)
		}
	}
}

func Broadcast(event string, data interface{}) {
	defaultHub.Broadcast(Message{Event: event, Data: data})
}
