package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"oftisoft/internal/domain/entity"
	apperrors "oftisoft/pkg/errors"
	"oftisoft/pkg/logger"
)

// Notifier surfaces transient, user-visible notices (toasts).
type Notifier interface {
	Notify(level, message string)
}

// SoundPlayer plays the fixed inbound-message notification sound. Playback
// failures are logged and never surfaced.
type SoundPlayer interface {
	PlayNotification() error
}

// Locator mirrors the active conversation into the client's navigable
// location (a query parameter). ReplaceSelector replaces history rather than
// pushing, so back-navigation does not step through chat selections.
type Locator interface {
	Selector() string
	ReplaceSelector(value string)
}

// ChatSession is the conversation sync controller for one connected user: a
// live, ordered view of their conversations and of the selected
// conversation's messages, plus the send/start operations and the
// new-inbound-message sound side effect.
type ChatSession struct {
	uc       *ChatUseCase
	user     *entity.User
	notifier Notifier
	sound    SoundPlayer
	locator  Locator

	// OnConversations and OnMessages push state changes to the client.
	// Either may be nil.
	OnConversations func([]*ConversationView)
	OnMessages      func([]*MessageView)

	mu            sync.Mutex
	ctx           context.Context
	conversations []*ConversationView
	messages      []*MessageView
	selected      *ConversationView
	loading       bool
	reconciled    bool
	unsubList     func()
	unsubMessages func()
}

func NewChatSession(uc *ChatUseCase, user *entity.User, notifier Notifier, sound SoundPlayer, locator Locator) *ChatSession {
	return &ChatSession{
		uc:       uc,
		user:     user,
		notifier: notifier,
		sound:    sound,
		locator:  locator,
		ctx:      context.Background(),
		loading:  true,
	}
}

// Start establishes the conversation-list subscription. Without a current
// user there is nothing to subscribe to: the list stays empty and loading is
// cleared immediately.
func (s *ChatSession) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx

	if s.user == nil || s.user.ID == "" {
		s.conversations = nil
		s.loading = false
		return
	}

	s.unsubList = s.uc.conversationRepo.SubscribeConversations(ctx, s.user.ID, s.handleConversationBatch)
}

// Close releases every active subscription. Safe to call more than once.
func (s *ChatSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubList != nil {
		s.unsubList()
		s.unsubList = nil
	}
	if s.unsubMessages != nil {
		s.unsubMessages()
		s.unsubMessages = nil
	}
}

func (s *ChatSession) handleConversationBatch(conversations []*entity.Conversation, err error) {
	s.mu.Lock()

	if err != nil {
		// Keep the last-known list; just stop showing a spinner.
		logger.Error("Conversation subscription error for user %s: %v", s.user.ID, err)
		s.loading = false
		s.mu.Unlock()
		return
	}

	next := s.uc.viewsOf(conversations, s.user.ID)
	playSound := isGenuineNewInboundTopMessage(s.conversations, next, s.user.ID)
	s.conversations = next
	s.loading = false
	s.reconcileSelectionLocked()

	push := s.OnConversations
	s.mu.Unlock()

	if playSound {
		if err := s.sound.PlayNotification(); err != nil {
			logger.Warn("Notification sound playback failed: %v", err)
		}
	}
	if push != nil {
		push(next)
	}
}

// isGenuineNewInboundTopMessage reports whether the top-of-list conversation
// is unchanged but now carries a different last message that the viewer did
// not author. Deliberately positional and id-based: a different conversation
// moving to the top, or the viewer's own outgoing message, does not count.
func isGenuineNewInboundTopMessage(prev, next []*ConversationView, userID string) bool {
	if len(prev) == 0 || len(next) == 0 {
		return false
	}
	top, was := next[0], prev[0]
	if top.ID != was.ID {
		return false
	}
	if top.LastMessage == nil || top.LastMessage.SenderID == userID {
		return false
	}
	return was.LastMessage == nil || was.LastMessage.MessageID != top.LastMessage.MessageID
}

// reconcileSelectionLocked applies the location's conversation-selector
// parameter once the list has loaded and nothing is selected yet. A stale
// selector that matches nothing leaves the selection empty.
func (s *ChatSession) reconcileSelectionLocked() {
	if s.reconciled || s.selected != nil || s.locator == nil {
		return
	}
	selector := s.locator.Selector()
	if selector == "" {
		s.reconciled = true
		return
	}
	for _, conversation := range s.conversations {
		if conversation.ID == selector || conversation.RecipientID == selector {
			s.selectLocked(conversation, false)
			break
		}
	}
	s.reconciled = true
}

// SetSelectedChat makes the conversation the active one (nil clears the
// selection) and mirrors it into the location.
func (s *ChatSession) SetSelectedChat(conversation *ConversationView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectLocked(conversation, true)
}

func (s *ChatSession) selectLocked(conversation *ConversationView, updateLocation bool) {
	if s.unsubMessages != nil {
		s.unsubMessages()
		s.unsubMessages = nil
	}

	s.selected = conversation
	s.messages = nil

	if conversation == nil {
		if updateLocation && s.locator != nil {
			s.locator.ReplaceSelector("")
		}
		if s.OnMessages != nil {
			s.OnMessages(nil)
		}
		return
	}

	if updateLocation && s.locator != nil {
		selector := conversation.ID
		if selector == "" {
			selector = conversation.RecipientID
		}
		s.locator.ReplaceSelector(selector)
	}

	if conversation.ID != "" {
		s.unsubMessages = s.uc.conversationRepo.SubscribeMessages(s.ctx, conversation.ID, s.handleMessageBatch)
	}
}

func (s *ChatSession) handleMessageBatch(messages []*entity.Message, err error) {
	s.mu.Lock()

	if err != nil {
		logger.Error("Message subscription error for user %s: %v", s.user.ID, err)
		s.mu.Unlock()
		return
	}

	next := messageViewsOf(messages, s.user.ID)
	s.messages = next

	push := s.OnMessages
	s.mu.Unlock()

	if push != nil {
		push(next)
	}
}

// SendMessage appends content to the active conversation. Returns false
// without writing when there is no active conversation, no user, or the
// trimmed content is empty; write failures are reported via the notifier.
func (s *ChatSession) SendMessage(ctx context.Context, content string) bool {
	s.mu.Lock()
	selected := s.selected
	s.mu.Unlock()

	if selected == nil || s.user == nil || s.user.ID == "" || strings.TrimSpace(content) == "" {
		return false
	}

	if _, err := s.uc.SendMessage(ctx, s.user, selected.ID, content); err != nil {
		s.notifier.Notify("error", userMessage(err))
		return false
	}
	return true
}

// StartConversation starts (or resumes) a direct conversation with the
// recipient. An already-loaded conversation with that recipient is selected
// and returned without any lookup or write.
func (s *ChatSession) StartConversation(ctx context.Context, recipientID string, profile *entity.User) *ConversationView {
	s.mu.Lock()
	for _, conversation := range s.conversations {
		if conversation.RecipientID == recipientID {
			s.selectLocked(conversation, true)
			s.mu.Unlock()
			return conversation
		}
	}
	s.mu.Unlock()

	recipient, err := s.uc.ResolveRecipient(ctx, recipientID, profile)
	if err != nil {
		s.notifier.Notify("error", "User not found")
		return nil
	}

	view, err := s.uc.StartConversation(ctx, s.user, recipient)
	if err != nil {
		s.notifier.Notify("error", userMessage(err))
		return nil
	}

	// Optimistic selection; the live subscription reconciles shortly after.
	s.mu.Lock()
	s.selectLocked(view, true)
	s.mu.Unlock()

	return view
}

// StartSupportChat resolves the support identity and delegates to
// StartConversation. No fallback identity is attempted on failure.
func (s *ChatSession) StartSupportChat(ctx context.Context) *ConversationView {
	bot, err := s.uc.userRepo.GetSupportBot(ctx)
	if err != nil {
		logger.Error("Support identity lookup failed: %v", err)
		s.notifier.Notify("error", "Support system is synchronizing, please try again")
		return nil
	}
	return s.StartConversation(ctx, bot.ID, bot)
}

// Conversations returns the current list snapshot.
func (s *ChatSession) Conversations() []*ConversationView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversations
}

// Messages returns the active conversation's message snapshot.
func (s *ChatSession) Messages() []*MessageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages
}

// Selected returns the active conversation, nil when none is selected.
func (s *ChatSession) Selected() *ConversationView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Loading reports whether the first conversation batch is still pending.
func (s *ChatSession) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong, please try again"
}
