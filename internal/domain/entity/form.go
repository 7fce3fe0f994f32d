package entity

import "time"

type ContactSubmission struct {
	ID        string    `json:"id" firestore:"id"`
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email" firestore:"email"`
	Subject   string    `json:"subject,omitempty" firestore:"subject,omitempty"`
	Message   string    `json:"message" firestore:"message"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

type NewsletterSignup struct {
	ID        string    `json:"id" firestore:"id"`
	Email     string    `json:"email" firestore:"email"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
