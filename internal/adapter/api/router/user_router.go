package router

import (
	"github.com/labstack/echo/v4"

	"oftisoft/internal/adapter/api/handler"
	"oftisoft/internal/adapter/api/middleware"
)

// SetupUserRouter registers the user directory endpoints.
func SetupUserRouter(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/v1/users")
	group.Use(authMiddleware.Authenticate)

	group.POST("", userHandler.CreateUser)
	group.GET("/me", userHandler.GetMe)
	group.GET("/:id", userHandler.GetUser)
}
