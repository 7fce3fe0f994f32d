package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"oftisoft/internal/domain/entity"
	"oftisoft/internal/domain/repository"
	"oftisoft/internal/infrastructure/ratelimit"
	"oftisoft/pkg/errors"
	"oftisoft/pkg/logger"
	"oftisoft/pkg/pairkey"
)

// ChatUseCase holds the shared messaging operations: conversation bootstrap,
// message send, and list/read access. Live sessions (ChatSession) layer
// subscriptions and client side effects on top of it.
type ChatUseCase struct {
	conversationRepo repository.ConversationRepository
	userRepo         repository.UserRepository
	rateLimiter      *ratelimit.RateLimiter
}

func NewChatUseCase(conversationRepo repository.ConversationRepository, userRepo repository.UserRepository) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		rateLimiter:      rateLimiter,
	}
}

// ConversationView is the display record derived from a conversation
// document for one viewer: the other side of the chat and the simplified
// unread indicator.
type ConversationView struct {
	*entity.Conversation
	RecipientID string `json:"recipient_id"`
	UnreadCount int    `json:"unread_count"`
}

// MessageView tags a message for one viewer. TimeLabel is a human-readable
// clock label, or "Sending..." while the server timestamp is unresolved.
type MessageView struct {
	*entity.Message
	IsMe      bool   `json:"is_me"`
	TimeLabel string `json:"time_label"`
}

func (uc *ChatUseCase) viewOf(conversation *entity.Conversation, userID string) *ConversationView {
	other, ok := conversation.OtherParticipant(userID)
	if !ok {
		logger.Warn("Conversation %s has degenerate participants for user %s", conversation.ID, userID)
	}
	return &ConversationView{
		Conversation: conversation,
		RecipientID:  other.ID,
		UnreadCount:  conversation.UnreadFor(userID),
	}
}

func (uc *ChatUseCase) viewsOf(conversations []*entity.Conversation, userID string) []*ConversationView {
	views := make([]*ConversationView, 0, len(conversations))
	for _, conversation := range conversations {
		views = append(views, uc.viewOf(conversation, userID))
	}
	return views
}

func messageViewOf(message *entity.Message, userID string) *MessageView {
	label := "Sending..."
	if !message.CreatedAt.IsZero() {
		label = message.CreatedAt.Format("3:04 PM")
	}
	return &MessageView{
		Message:   message,
		IsMe:      message.SenderID == userID,
		TimeLabel: label,
	}
}

func messageViewsOf(messages []*entity.Message, userID string) []*MessageView {
	views := make([]*MessageView, 0, len(messages))
	for _, message := range messages {
		views = append(views, messageViewOf(message, userID))
	}
	return views
}

// ListConversations returns the viewer's conversations, most recently
// updated first, as display records.
func (uc *ChatUseCase) ListConversations(ctx context.Context, userID string, limit, offset int) ([]*ConversationView, int64, error) {
	conversations, total, err := uc.conversationRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return uc.viewsOf(conversations, userID), total, nil
}

// ListMessages returns a conversation's messages in creation-time order.
// Only participants may read them.
func (uc *ChatUseCase) ListMessages(ctx context.Context, userID, conversationID string, limit, offset int) ([]*MessageView, int64, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, 0, err
	}
	if !containsString(conversation.UserIDs, userID) {
		return nil, 0, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	messages, total, err := uc.conversationRepo.ListMessages(ctx, conversationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return messageViewsOf(messages, userID), total, nil
}

// ResolveRecipient returns the provided profile when the caller already has
// one, otherwise looks the user up in the directory.
func (uc *ChatUseCase) ResolveRecipient(ctx context.Context, recipientID string, provided *entity.User) (*entity.User, error) {
	if provided != nil && provided.ID == recipientID {
		return provided, nil
	}
	recipient, err := uc.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		logger.Error("Recipient %s lookup failed: %v", recipientID, err)
		return nil, errors.NotFound("User", err)
	}
	return recipient, nil
}

func participantOf(user *entity.User) entity.Participant {
	return entity.Participant{
		ID:        user.ID,
		Name:      user.Name,
		Role:      user.Role,
		Email:     user.Email,
		IsActive:  user.IsActive,
		AvatarURL: user.AvatarURL,
	}
}

// StartConversation creates or resumes the 1:1 conversation between the two
// users. The conversation id is derived from the sorted pair of ids, so
// repeated or concurrent calls from either side converge on one document.
func (uc *ChatUseCase) StartConversation(ctx context.Context, current *entity.User, recipient *entity.User) (*ConversationView, error) {
	if current.ID == recipient.ID {
		return nil, errors.BadRequest("You cannot start a conversation with yourself", nil)
	}

	if allowed, _ := uc.rateLimiter.Allow(current.ID, "create_chat"); !allowed {
		logger.Warn("StartConversation rate limited for user %s", current.ID)
		return nil, errors.TooManyRequests("Too many new conversations. Please wait a moment")
	}

	conversation := &entity.Conversation{
		ID:           pairkey.Join(current.ID, recipient.ID),
		Participants: []entity.Participant{participantOf(current), participantOf(recipient)},
		UserIDs:      []string{current.ID, recipient.ID},
		LastMessage:  nil,
	}

	if err := uc.conversationRepo.CreateOrTouch(ctx, conversation); err != nil {
		logger.Error("StartConversation failed for pair %s: %v", conversation.ID, err)
		return nil, err
	}

	return uc.viewOf(conversation, current.ID), nil
}

// StartSupportChat resolves the well-known support identity and delegates to
// StartConversation.
func (uc *ChatUseCase) StartSupportChat(ctx context.Context, current *entity.User) (*ConversationView, error) {
	bot, err := uc.userRepo.GetSupportBot(ctx)
	if err != nil {
		logger.Error("Support identity lookup failed: %v", err)
		return nil, errors.ServiceUnavailable("Support system is synchronizing, please try again", err)
	}
	return uc.StartConversation(ctx, current, bot)
}

// SendMessage appends a message and then refreshes the conversation's
// denormalized summary. The two writes are deliberately separate: a crash in
// between leaves the message persisted and the summary stale, which the next
// send repairs.
func (uc *ChatUseCase) SendMessage(ctx context.Context, sender *entity.User, conversationID, content string) (*entity.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.BadRequest("Message content is required", nil)
	}
	if sender == nil || sender.ID == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}

	if allowed, _ := uc.rateLimiter.Allow(sender.ID, "send_message"); !allowed {
		logger.Warn("SendMessage rate limited for user %s", sender.ID)
		return nil, errors.TooManyRequests("You are sending messages too quickly. Please slow down")
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !containsString(conversation.UserIDs, sender.ID) {
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	message := &entity.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       sender.ID,
		SenderName:     sender.Name,
		Content:        content,
	}

	if err := uc.conversationRepo.AppendMessage(ctx, message); err != nil {
		logger.Error("SendMessage failed to append to conversation %s: %v", conversationID, err)
		return nil, err
	}

	last := &entity.LastMessage{
		MessageID: message.ID,
		Content:   content,
		SenderID:  sender.ID,
		CreatedAt: time.Now(),
		Read:      false,
	}
	if err := uc.conversationRepo.UpdateLastMessage(ctx, conversationID, last); err != nil {
		logger.Error("SendMessage failed to update summary for conversation %s: %v", conversationID, err)
		return nil, err
	}

	return message, nil
}

// MarkRead flags the conversation's last message as read for the viewer.
func (uc *ChatUseCase) MarkRead(ctx context.Context, userID, conversationID string) error {
	return uc.conversationRepo.MarkRead(ctx, conversationID, userID)
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
