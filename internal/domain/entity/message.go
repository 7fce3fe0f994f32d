package entity

import "time"

// Message is an immutable, append-only unit of conversation content. The
// server assigns CreatedAt; a zero CreatedAt means the timestamp has not
// resolved yet.
type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderID       string    `json:"sender_id" firestore:"senderId"`
	SenderName     string    `json:"sender_name" firestore:"senderName"`
	Content        string    `json:"content" firestore:"content"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}
