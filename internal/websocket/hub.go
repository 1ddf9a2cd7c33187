package websocket

import (
	"encoding/json"
	"sync"

	"taskman/internal/models"
	"taskman/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Client is one connected WebSocket consumer.
type Client struct {
	Conn *websocket.Conn
	Mu   sync.Mutex
}

// TaskEvent is what subscribers of /ws/tasks receive whenever a task
// is mutated.
type TaskEvent struct {
	Action string      `json:"action"`
	Task   models.Task `json:"task"`
}

// Hub fans task events out to connected clients.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Notify publishes a task event without blocking the request path. If
// the hub is backed up the event is dropped.
func (h *Hub) Notify(action string, task models.Task) {
	if h == nil {
		return
	}
	data, err := json.Marshal(TaskEvent{Action: action, Task: task})
	if err != nil {
		logger.ErrorLogger.Error("Error encoding task event", zap.Error(err))
		return
	}
	select {
	case h.Broadcast <- data:
	default:
	}
}

// Run manages register, unregister, and broadcast for the hub.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.Conn.Close()
			}
		case message := <-h.Broadcast:
			for client := range h.Clients {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, message)
				client.Mu.Unlock()
				if err != nil {
					// Drop dead clients inline; Unregister is for the
					// connection handler goroutine.
					delete(h.Clients, client)
					client.Conn.Close()
				}
			}
		}
	}
}
