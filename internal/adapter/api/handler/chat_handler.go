package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"oftisoft/internal/usecase"
	"oftisoft/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
	userUseCase *usecase.UserUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, userUseCase *usecase.UserUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		userUseCase: userUseCase,
	}
}

type startConversationRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// StartConversation creates or resumes the direct conversation between the
// caller and the recipient.
func (h *ChatHandler) StartConversation(c echo.Context) error {
	var req startConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	current, err := h.userUseCase.GetUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	recipient, err := h.chatUseCase.ResolveRecipient(c.Request().Context(), req.RecipientID, nil)
	if err != nil {
		return response.Error(c, err)
	}

	conversation, err := h.chatUseCase.StartConversation(c.Request().Context(), current, recipient)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, conversation)
}

// StartSupportChat creates or resumes the caller's conversation with the
// support identity.
func (h *ChatHandler) StartSupportChat(c echo.Context) error {
	userID := c.Get("uid").(string)

	current, err := h.userUseCase.GetUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	conversation, err := h.chatUseCase.StartSupportChat(c.Request().Context(), current)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, conversation)
}

// GetConversations lists the caller's conversations, most recent first.
func (h *ChatHandler) GetConversations(c echo.Context) error {
	userID := c.Get("uid").(string)
	limit, offset := pagination(c, 20)

	conversations, total, err := h.chatUseCase.ListConversations(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, conversations, total, limit, offset)
}

// GetMessages pages through a conversation's messages in creation order.
func (h *ChatHandler) GetMessages(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)
	limit, offset := pagination(c, 50)

	messages, total, err := h.chatUseCase.ListMessages(c.Request().Context(), userID, conversationID, limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, messages, total, limit, offset)
}

// SendMessage appends a message to the conversation.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	sender, err := h.userUseCase.GetUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), sender, conversationID, req.Content)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// MarkRead flags the conversation's last message as read for the caller.
func (h *ChatHandler) MarkRead(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.chatUseCase.MarkRead(c.Request().Context(), userID, conversationID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}

func pagination(c echo.Context, defaultLimit int) (int, int) {
	limit := defaultLimit
	offset := 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}
