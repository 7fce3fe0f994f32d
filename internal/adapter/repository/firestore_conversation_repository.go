package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"oftisoft/internal/domain/entity"
	"oftisoft/internal/domain/repository"
	"oftisoft/pkg/errors"
	"oftisoft/pkg/logger"
)

type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

func (r *firestoreConversationRepository) conversations() *firestore.CollectionRef {
	return r.client.Collection("conversations")
}

func (r *firestoreConversationRepository) messages(conversationID string) *firestore.CollectionRef {
	return r.conversations().Doc(conversationID).Collection("messages")
}

func (r *firestoreConversationRepository) SubscribeConversations(ctx context.Context, userID string, fn func([]*entity.Conversation, error)) func() {
	ctx, cancel := context.WithCancel(ctx)

	query := r.conversations().
		Where("userIds", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc)
	snaps := query.Snapshots(ctx)

	go func() {
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				fn(nil, errors.Internal("Conversation subscription failed", err))
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				fn(nil, errors.Internal("Failed to read conversation snapshot", err))
				continue
			}

			conversations := make([]*entity.Conversation, 0, len(docs))
			for _, doc := range docs {
				var conversation entity.Conversation
				if err := doc.DataTo(&conversation); err != nil {
					logger.Warn("Skipping malformed conversation %s: %v", doc.Ref.ID, err)
					continue
				}
				conversation.ID = doc.Ref.ID
				conversations = append(conversations, &conversation)
			}
			fn(conversations, nil)
		}
	}()

	return cancel
}

func (r *firestoreConversationRepository) SubscribeMessages(ctx context.Context, conversationID string, fn func([]*entity.Message, error)) func() {
	ctx, cancel := context.WithCancel(ctx)

	query := r.messages(conversationID).OrderBy("createdAt", firestore.Asc)
	snaps := query.Snapshots(ctx)

	go func() {
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				fn(nil, errors.Internal("Message subscription failed", err))
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				fn(nil, errors.Internal("Failed to read message snapshot", err))
				continue
			}

			messages := make([]*entity.Message, 0, len(docs))
			for _, doc := range docs {
				var message entity.Message
				if err := doc.DataTo(&message); err != nil {
					logger.Warn("Skipping malformed message %s in conversation %s: %v", doc.Ref.ID, conversationID, err)
					continue
				}
				message.ID = doc.Ref.ID
				message.ConversationID = conversationID
				messages = append(messages, &message)
			}
			fn(messages, nil)
		}
	}()

	return cancel
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.conversations().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conversation entity.Conversation
	if err := doc.DataTo(&conversation); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}
	conversation.ID = doc.Ref.ID

	return &conversation, nil
}

func (r *firestoreConversationRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	query := r.conversations().
		Where("userIds", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Failed to fetch conversations for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to fetch conversations", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var conversations []*entity.Conversation
	for _, doc := range allDocs[start:end] {
		var conversation entity.Conversation
		if err := doc.DataTo(&conversation); err != nil {
			logger.Warn("Skipping malformed conversation %s: %v", doc.Ref.ID, err)
			continue
		}
		conversation.ID = doc.Ref.ID
		conversations = append(conversations, &conversation)
	}

	return conversations, total, nil
}

func (r *firestoreConversationRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.messages(conversationID).OrderBy("createdAt", firestore.Asc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Failed to fetch messages for conversation %s: %v", conversationID, err)
		return nil, 0, errors.Internal("Failed to fetch messages", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var messages []*entity.Message
	for _, doc := range allDocs[start:end] {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message %s in conversation %s: %v", doc.Ref.ID, conversationID, err)
			continue
		}
		message.ID = doc.Ref.ID
		message.ConversationID = conversationID
		messages = append(messages, &message)
	}

	return messages, total, nil
}

// CreateOrTouch tries the update first and creates only when the document is
// missing. Both parties of a pair derive the same document id, so concurrent
// bootstraps either touch the winner or write equivalent participant data.
func (r *firestoreConversationRepository) CreateOrTouch(ctx context.Context, conversation *entity.Conversation) error {
	docRef := r.conversations().Doc(conversation.ID)

	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return errors.Internal("Failed to touch conversation", err)
	}

	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now

	if _, err := docRef.Set(ctx, conversation); err != nil {
		return errors.Internal("Failed to create conversation", err)
	}

	return nil
}

func (r *firestoreConversationRepository) AppendMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	// Zero CreatedAt plus the serverTimestamp tag lets Firestore assign it.
	_, err := r.messages(message.ConversationID).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to append message", err)
	}

	return nil
}

func (r *firestoreConversationRepository) UpdateLastMessage(ctx context.Context, conversationID string, last *entity.LastMessage) error {
	_, err := r.conversations().Doc(conversationID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: last},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return errors.Internal("Failed to update conversation summary", err)
	}

	return nil
}

func (r *firestoreConversationRepository) SendMessageTransactional(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	msgRef := r.messages(message.ConversationID).Doc(message.ID)
	convRef := r.conversations().Doc(message.ConversationID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(msgRef, message); err != nil {
			return err
		}
		return tx.Update(convRef, []firestore.Update{
			{Path: "lastMessage", Value: &entity.LastMessage{
				MessageID: message.ID,
				Content:   message.Content,
				SenderID:  message.SenderID,
				CreatedAt: time.Now(),
				Read:      false,
			}},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		return errors.Internal("Failed to send message", err)
	}

	return nil
}

func (r *firestoreConversationRepository) MarkRead(ctx context.Context, conversationID, userID string) error {
	conversation, err := r.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}

	if conversation.LastMessage == nil || conversation.LastMessage.SenderID == userID || conversation.LastMessage.Read {
		return nil
	}

	_, err = r.conversations().Doc(conversationID).Update(ctx, []firestore.Update{
		{Path: "lastMessage.read", Value: true},
	})
	if err != nil {
		return errors.Internal("Failed to mark conversation as read", err)
	}

	return nil
}
