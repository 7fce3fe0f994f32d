package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	ws "oftisoft/internal/infrastructure/websocket"
)

type HealthHandler struct {
	wsManager *ws.Manager
}

func NewHealthHandler(wsManager *ws.Manager) *HealthHandler {
	return &HealthHandler{
		wsManager: wsManager,
	}
}

func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"online": h.wsManager.OnlineCount(),
	})
}
