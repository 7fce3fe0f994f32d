package repository

import (
	"context"

	"oftisoft/internal/domain/entity"
)

// ConversationRepository is the realtime document store boundary. Subscribe
// methods register a live query and invoke the callback with every snapshot
// batch until the returned unsubscribe function is called; a non-nil error in
// the callback reports a failed batch without ending the subscription.
type ConversationRepository interface {
	// SubscribeConversations watches all conversations whose userIds contain
	// userID, ordered by most-recent-update descending.
	SubscribeConversations(ctx context.Context, userID string, fn func([]*entity.Conversation, error)) func()

	// SubscribeMessages watches the message subcollection of one
	// conversation, ordered by creation time ascending.
	SubscribeMessages(ctx context.Context, conversationID string, fn func([]*entity.Message, error)) func()

	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error)
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)

	// CreateOrTouch updates the conversation's timestamp if the document
	// exists, and creates it with the given participant snapshots otherwise.
	// Both parties of a pair may call this concurrently with the same
	// derived id; either order converges on one document.
	CreateOrTouch(ctx context.Context, conversation *entity.Conversation) error

	// AppendMessage appends to the conversation's message subcollection with
	// a server-assigned creation time. It does not update the parent
	// document; callers follow up with UpdateLastMessage.
	AppendMessage(ctx context.Context, message *entity.Message) error

	// UpdateLastMessage replaces the conversation's denormalized last-message
	// snapshot and bumps updatedAt.
	UpdateLastMessage(ctx context.Context, conversationID string, last *entity.LastMessage) error

	// SendMessageTransactional covers AppendMessage and UpdateLastMessage in
	// a single transaction for callers that cannot accept the two-step
	// consistency window.
	SendMessageTransactional(ctx context.Context, message *entity.Message) error

	// MarkRead flags the conversation's last message as read on behalf of
	// userID. A no-op when userID authored the last message.
	MarkRead(ctx context.Context, conversationID, userID string) error
}
