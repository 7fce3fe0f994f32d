package router

import (
	"github.com/labstack/echo/v4"

	"oftisoft/internal/adapter/api/handler"
)

// SetupFormRouter registers the public marketing-site form endpoints.
// These are unauthenticated by design.
func SetupFormRouter(e *echo.Echo, formHandler *handler.FormHandler) {
	e.POST("/v1/contact", formHandler.SubmitContact)
	e.POST("/v1/newsletter", formHandler.SubscribeNewsletter)
}
