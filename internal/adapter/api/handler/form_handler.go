package handler

import (
	"github.com/labstack/echo/v4"

	"oftisoft/internal/usecase"
	"oftisoft/pkg/response"
)

type FormHandler struct {
	formUseCase *usecase.FormUseCase
}

func NewFormHandler(formUseCase *usecase.FormUseCase) *FormHandler {
	return &FormHandler{
		formUseCase: formUseCase,
	}
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required,min=10"`
}

type newsletterRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SubmitContact stores a contact-form submission.
func (h *FormHandler) SubmitContact(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	submission, err := h.formUseCase.SubmitContact(c.Request().Context(), usecase.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, submission)
}

// SubscribeNewsletter records a newsletter signup. Idempotent per email.
func (h *FormHandler) SubscribeNewsletter(c echo.Context) error {
	var req newsletterRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	signup, err := h.formUseCase.SubscribeNewsletter(c.Request().Context(), req.Email)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, signup)
}
