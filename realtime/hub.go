package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// Event types
const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventBookingDeleted   = "booking_deleted"
	EventTableCreate      = "table_create"
	EventTableUpdate      = "table_update"
	EventTableDelete      = "table_delete"
	EventRestaurantCreate = "restaurant_create"
	EventRestaurantDelete = "restaurant_delete"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds the connected front-of-house screens (staff, admin).
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

// Register -> adds a connection with its role
func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
	utils.InfoLogger.Printf("Realtime client connected (role=%s, total=%d)", role, len(h.clients))
}

// Unregister -> drops and closes a connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.drop(conn)
}

func (h *Hub) drop(conn *websocket.Conn) {
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast sends msg to every client. A nil hub discards the message.
func (h *Hub) Broadcast(msg Message) {
	if h == nil {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling %s message: %v", msg.Event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, role := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to %s client: %v", msg.Event, role, err)
			h.drop(conn)
		}
	}
}
