package usecase

import (
	"context"

	"github.com/google/uuid"

	"oftisoft/internal/domain/entity"
	"oftisoft/internal/domain/repository"
	"oftisoft/pkg/errors"
	"oftisoft/pkg/logger"
)

type UserUseCase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
	}
}

type CreateUserInput struct {
	ID        string
	Name      string
	Email     string
	Role      string
	AvatarURL string
}

func (uc *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*entity.User, error) {
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	if input.Role == "" {
		input.Role = "user"
	}

	if existing, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, errors.BadRequest("A user with this email already exists", nil)
	}

	user := &entity.User{
		ID:        input.ID,
		Name:      input.Name,
		Email:     input.Email,
		Role:      input.Role,
		IsActive:  true,
		AvatarURL: input.AvatarURL,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		logger.Error("CreateUser failed for %s: %v", input.Email, err)
		return nil, err
	}

	return user, nil
}

func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}
