package usecase

import (
	"context"

	"oftisoft/internal/domain/entity"
	"oftisoft/internal/domain/repository"
	"oftisoft/pkg/logger"
)

type FormUseCase struct {
	formRepo repository.FormRepository
}

func NewFormUseCase(formRepo repository.FormRepository) *FormUseCase {
	return &FormUseCase{
		formRepo: formRepo,
	}
}

type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func (uc *FormUseCase) SubmitContact(ctx context.Context, input ContactInput) (*entity.ContactSubmission, error) {
	submission := &entity.ContactSubmission{
		Name:    input.Name,
		Email:   input.Email,
		Subject: input.Subject,
		Message: input.Message,
	}

	if err := uc.formRepo.CreateContactSubmission(ctx, submission); err != nil {
		logger.Error("Contact submission failed for %s: %v", input.Email, err)
		return nil, err
	}

	return submission, nil
}

func (uc *FormUseCase) SubscribeNewsletter(ctx context.Context, email string) (*entity.NewsletterSignup, error) {
	signup := &entity.NewsletterSignup{
		Email: email,
	}

	if err := uc.formRepo.CreateNewsletterSignup(ctx, signup); err != nil {
		logger.Error("Newsletter signup failed for %s: %v", email, err)
		return nil, err
	}

	return signup, nil
}
