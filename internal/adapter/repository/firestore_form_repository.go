package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"oftisoft/internal/domain/entity"
	"oftisoft/internal/domain/repository"
	"oftisoft/pkg/errors"
)

type firestoreFormRepository struct {
	client *firestore.Client
}

func NewFirestoreFormRepository(client *firestore.Client) repository.FormRepository {
	return &firestoreFormRepository{
		client: client,
	}
}

func (r *firestoreFormRepository) CreateContactSubmission(ctx context.Context, submission *entity.ContactSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.New().String()
	}
	submission.CreatedAt = time.Now()

	_, err := r.client.Collection("contactSubmissions").Doc(submission.ID).Set(ctx, submission)
	if err != nil {
		return errors.Internal("Failed to store contact submission", err)
	}

	return nil
}

func (r *firestoreFormRepository) CreateNewsletterSignup(ctx context.Context, signup *entity.NewsletterSignup) error {
	if signup.ID == "" {
		signup.ID = uuid.New().String()
	}
	signup.CreatedAt = time.Now()

	// Keyed by email so repeat signups overwrite instead of duplicating.
	_, err := r.client.Collection("newsletterSignups").Doc(signup.Email).Set(ctx, signup)
	if err != nil {
		return errors.Internal("Failed to store newsletter signup", err)
	}

	return nil
}
