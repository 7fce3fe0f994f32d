package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"oftisoft/internal/adapter/api/middleware"
	ws "oftisoft/internal/infrastructure/websocket"
	"oftisoft/internal/usecase"
	"oftisoft/pkg/errors"
	"oftisoft/pkg/logger"
)

// WebSocketHandler upgrades authenticated connections into live chat
// sessions. Each connection owns one ChatSession; the session's notifier,
// sound, and location collaborators are all frames sent back to the client.
type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
	chatUseCase    *usecase.ChatUseCase
	userUseCase    *usecase.UserUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the site origins before exposing publicly
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware, chatUseCase *usecase.ChatUseCase, userUseCase *usecase.UserUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
		chatUseCase:    chatUseCase,
		userUseCase:    userUseCase,
	}
}

// clientFrame is an inbound frame from the browser.
type clientFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	RecipientID    string `json:"recipient_id,omitempty"`
	Content        string `json:"content,omitempty"`
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	// Browsers cannot set headers on websocket upgrades, so the ID token
	// arrives as a query parameter.
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		token := c.QueryParam("token")
		if token == "" {
			return errors.Unauthorized("Authentication required", nil)
		}
		uid, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
		if err != nil {
			return errors.Unauthorized("Invalid or expired token", err)
		}
		userID = uid
	}

	user, err := h.userUseCase.GetUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	port := &clientPort{
		client:   client,
		selector: c.QueryParam("chat"),
	}

	session := usecase.NewChatSession(h.chatUseCase, user, port, port, port)
	session.OnConversations = func(conversations []*usecase.ConversationView) {
		port.push(map[string]interface{}{
			"type":          "conversation_list",
			"conversations": conversations,
		})
	}
	session.OnMessages = func(messages []*usecase.MessageView) {
		port.push(map[string]interface{}{
			"type":     "messages",
			"messages": messages,
		})
	}

	// The session outlives the upgrade request; its subscriptions are torn
	// down by session.Close when the peer disconnects.
	sessionCtx := context.Background()

	client.OnMessage = func(raw []byte) {
		h.dispatch(sessionCtx, session, raw)
	}
	client.OnClose = session.Close

	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	session.Start(sessionCtx)

	return nil
}

func (h *WebSocketHandler) dispatch(ctx context.Context, session *usecase.ChatSession, raw []byte) {
	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		logger.Warn("Discarding malformed client frame: %v", err)
		return
	}

	switch frame.Type {
	case "select_chat":
		if frame.ConversationID == "" {
			session.SetSelectedChat(nil)
			return
		}
		for _, conversation := range session.Conversations() {
			if conversation.ID == frame.ConversationID {
				session.SetSelectedChat(conversation)
				return
			}
		}
	case "send_message":
		session.SendMessage(ctx, frame.Content)
	case "start_conversation":
		session.StartConversation(ctx, frame.RecipientID, nil)
	case "start_support_chat":
		session.StartSupportChat(ctx)
	default:
		logger.Debug("Ignoring unknown client frame type %q", frame.Type)
	}
}

// clientPort adapts one websocket connection into the session's Notifier,
// SoundPlayer, and Locator collaborators.
type clientPort struct {
	client *ws.Client

	mu       sync.Mutex
	selector string
}

func (p *clientPort) push(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Warn("Failed to marshal server frame: %v", err)
		return
	}
	select {
	case p.client.Send <- payload:
	default:
		logger.Warn("Dropping frame for slow client %s", p.client.UserID)
	}
}

func (p *clientPort) Notify(level, message string) {
	p.push(map[string]string{
		"type":    "toast",
		"level":   level,
		"message": message,
	})
}

func (p *clientPort) PlayNotification() error {
	p.push(map[string]string{
		"type": "sound",
		"name": "notification",
	})
	return nil
}

func (p *clientPort) Selector() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selector
}

func (p *clientPort) ReplaceSelector(value string) {
	p.mu.Lock()
	p.selector = value
	p.mu.Unlock()

	p.push(map[string]string{
		"type": "location_replace",
		"chat": value,
	})
}
