package repository

import (
	"context"

	"oftisoft/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error

	// GetSupportBot resolves the well-known support identity.
	GetSupportBot(ctx context.Context) (*entity.User, error)
}
