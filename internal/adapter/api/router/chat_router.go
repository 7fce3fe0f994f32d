package router

import (
	"github.com/labstack/echo/v4"

	"oftisoft/internal/adapter/api/handler"
	"oftisoft/internal/adapter/api/middleware"
)

// SetupChatRouter registers the conversation and message endpoints.
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/v1/conversations")
	group.Use(authMiddleware.Authenticate)

	group.POST("", chatHandler.StartConversation)
	group.GET("", chatHandler.GetConversations)
	group.POST("/support", chatHandler.StartSupportChat)
	group.PUT("/:id/read", chatHandler.MarkRead)

	group.POST("/:id/messages", chatHandler.SendMessage)
	group.GET("/:id/messages", chatHandler.GetMessages)
}
