package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"oftisoft/pkg/logger"
)

// Client is one connected websocket peer. OnMessage, when set, receives
// every inbound text frame; outbound frames go through Send.
type Client struct {
	UserID    string
	Conn      *websocket.Conn
	Send      chan []byte
	OnMessage func([]byte)
	OnClose   func()
}

// Manager tracks active websocket connections and answers presence queries.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's registration loop until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				logger.Info("Client connected: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if current, ok := m.clients[client.UserID]; ok && current == client {
					delete(m.clients, client.UserID)
				}
				m.mutex.Unlock()
				close(client.Send)
				logger.Info("Client disconnected: %s", client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// SendToUser delivers a frame to the user's active connection, if any.
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if ok {
		select {
		case client.Send <- message:
		default:
			logger.Warn("Dropping frame for slow client %s", userID)
		}
	}
}

// IsOnline reports whether the user currently has a connection.
func (m *Manager) IsOnline(userID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// OnlineCount returns the number of connected clients.
func (m *Manager) OnlineCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// ReadPump reads frames from the connection and dispatches them until the
// peer disconnects, then unregisters the client.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		if c.OnClose != nil {
			c.OnClose()
		}
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Websocket read error for %s: %v", c.UserID, err)
			}
			break
		}
		if c.OnMessage != nil {
			c.OnMessage(message)
		}
	}
}

// WritePump forwards queued frames to the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Warn("Websocket write error for %s: %v", c.UserID, err)
			return
		}
	}
}
