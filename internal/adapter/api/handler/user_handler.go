package handler

import (
	"github.com/labstack/echo/v4"

	"oftisoft/internal/usecase"
	"oftisoft/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type createUserRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"omitempty,oneof=user admin support"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// CreateUser provisions a profile document for the authenticated identity.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	user, err := h.userUseCase.CreateUser(c.Request().Context(), usecase.CreateUserInput{
		ID:        userID,
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, user)
}

// GetMe returns the caller's profile.
func (h *UserHandler) GetMe(c echo.Context) error {
	userID := c.Get("uid").(string)

	user, err := h.userUseCase.GetUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// GetUser returns a directory profile by id.
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userUseCase.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
