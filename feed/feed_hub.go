package feed

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Event types pushed to connected admin consoles.
const (
	EventOrderUpdate   = "order_update"
	EventCompanyUpdate = "company_update"
	EventNoticeUpdate  = "notice_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected admin console and fans events out to them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> admin username
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RegisterClient adds a console connection to the broadcast set.
func RegisterClient(conn *websocket.Conn, username string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = username
}

// UnregisterClient drops a console connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// Handler upgrades an authenticated admin request and parks it in the hub.
// The feed is one-way; inbound frames are read only to detect disconnects.
func Handler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	username := c.GetString("admin_username")
	RegisterClient(conn, username)

	go func() {
		defer UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// BroadcastOrderUpdate notifies consoles that a company's order for a day
// changed (created, replaced or cleared).
func BroadcastOrderUpdate(companyName, orderDate string, lineCount int) {
	broadcast(Message{
		Event: EventOrderUpdate,
		Data: gin.H{
			"company_name": companyName,
			"order_date":   orderDate,
			"line_count":   lineCount,
		},
	})
}

// BroadcastCompanyUpdate notifies consoles of approval/blocking changes.
func BroadcastCompanyUpdate(companyID uint, name, status string, blocked bool) {
	broadcast(Message{
		Event: EventCompanyUpdate,
		Data: gin.H{
			"company_id": companyID,
			"name":       name,
			"status":     status,
			"blocked":    blocked,
		},
	})
}

// BroadcastNoticeUpdate notifies consoles that the notice list changed.
func BroadcastNoticeUpdate(publicID string, active bool) {
	broadcast(Message{
		Event: EventNoticeUpdate,
		Data: gin.H{
			"public_id": publicID,
			"active":    active,
		},
	})
}

func broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(hub.clients, conn)
			conn.Close()
		}
	}
}
