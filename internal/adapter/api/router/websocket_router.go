package router

import (
	"github.com/labstack/echo/v4"

	"oftisoft/internal/adapter/api/handler"
)

// SetupWebSocketRouter registers the live chat session endpoint. The
// handler verifies the token itself: browsers cannot attach headers to
// websocket upgrades, so it arrives as a query parameter.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/v1/ws", wsHandler.HandleWebSocket)
}
