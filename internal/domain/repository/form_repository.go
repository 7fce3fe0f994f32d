package repository

import (
	"context"

	"oftisoft/internal/domain/entity"
)

type FormRepository interface {
	CreateContactSubmission(ctx context.Context, submission *entity.ContactSubmission) error
	CreateNewsletterSignup(ctx context.Context, signup *entity.NewsletterSignup) error
}
