package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"oftisoft/internal/domain/entity"
	"oftisoft/pkg/errors"
)

// fakeStore is an in-memory ConversationRepository. Unlike the Firestore
// adapter it does not emit an initial snapshot on subscribe; tests drive
// emission explicitly (emitConversations / emitMessages) or through writes.
type fakeStore struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	messages      map[string][]*entity.Message
	convSubs      []*fakeConvSub
	msgSubs       []*fakeMsgSub
	clock         time.Time

	appendCalls int
	touchCalls  int
}

type fakeConvSub struct {
	userID string
	fn     func([]*entity.Conversation, error)
	active bool
}

type fakeMsgSub struct {
	conversationID string
	fn             func([]*entity.Message, error)
	active         bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
		clock:         time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) SubscribeConversations(ctx context.Context, userID string, fn func([]*entity.Conversation, error)) func() {
	f.mu.Lock()
	sub := &fakeConvSub{userID: userID, fn: fn, active: true}
	f.convSubs = append(f.convSubs, sub)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		sub.active = false
		f.mu.Unlock()
	}
}

func (f *fakeStore) SubscribeMessages(ctx context.Context, conversationID string, fn func([]*entity.Message, error)) func() {
	f.mu.Lock()
	sub := &fakeMsgSub{conversationID: conversationID, fn: fn, active: true}
	f.msgSubs = append(f.msgSubs, sub)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		sub.active = false
		f.mu.Unlock()
	}
}

func (f *fakeStore) conversationsFor(userID string) []*entity.Conversation {
	var out []*entity.Conversation
	for _, c := range f.conversations {
		for _, id := range c.UserIDs {
			if id == userID {
				out = append(out, c)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

func (f *fakeStore) messagesFor(conversationID string) []*entity.Message {
	out := append([]*entity.Message(nil), f.messages[conversationID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// emitConversations pushes the current state to every live conversation
// subscription.
func (f *fakeStore) emitConversations() {
	f.mu.Lock()
	type emission struct {
		fn    func([]*entity.Conversation, error)
		batch []*entity.Conversation
	}
	var emissions []emission
	for _, sub := range f.convSubs {
		if sub.active {
			emissions = append(emissions, emission{sub.fn, f.conversationsFor(sub.userID)})
		}
	}
	f.mu.Unlock()

	for _, e := range emissions {
		e.fn(e.batch, nil)
	}
}

// emitConversationError simulates a failed snapshot batch.
func (f *fakeStore) emitConversationError(err error) {
	f.mu.Lock()
	var fns []func([]*entity.Conversation, error)
	for _, sub := range f.convSubs {
		if sub.active {
			fns = append(fns, sub.fn)
		}
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(nil, err)
	}
}

func (f *fakeStore) emitMessages(conversationID string) {
	f.mu.Lock()
	type emission struct {
		fn    func([]*entity.Message, error)
		batch []*entity.Message
	}
	var emissions []emission
	for _, sub := range f.msgSubs {
		if sub.active && sub.conversationID == conversationID {
			emissions = append(emissions, emission{sub.fn, f.messagesFor(conversationID)})
		}
	}
	f.mu.Unlock()

	for _, e := range emissions {
		e.fn(e.batch, nil)
	}
}

func (f *fakeStore) activeSubs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, sub := range f.convSubs {
		if sub.active {
			n++
		}
	}
	for _, sub := range f.msgSubs {
		if sub.active {
			n++
		}
	}
	return n
}

// seedConversation installs a conversation without counting as a write.
func (f *fakeStore) seedConversation(c *entity.Conversation) {
	f.mu.Lock()
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = f.tick()
	}
	f.conversations[c.ID] = c
	f.mu.Unlock()
}

// seedMessage installs a message with an explicit server timestamp.
func (f *fakeStore) seedMessage(m *entity.Message) {
	f.mu.Lock()
	f.messages[m.ConversationID] = append(f.messages[m.ConversationID], m)
	f.mu.Unlock()
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return c, nil
}

func (f *fakeStore) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	f.mu.Lock()
	out := f.conversationsFor(userID)
	f.mu.Unlock()
	return out, int64(len(out)), nil
}

func (f *fakeStore) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	f.mu.Lock()
	out := f.messagesFor(conversationID)
	f.mu.Unlock()
	return out, int64(len(out)), nil
}

func (f *fakeStore) CreateOrTouch(ctx context.Context, conversation *entity.Conversation) error {
	f.mu.Lock()
	f.touchCalls++
	if existing, ok := f.conversations[conversation.ID]; ok {
		existing.UpdatedAt = f.tick()
	} else {
		now := f.tick()
		conversation.CreatedAt = now
		conversation.UpdatedAt = now
		f.conversations[conversation.ID] = conversation
	}
	f.mu.Unlock()

	f.emitConversations()
	return nil
}

func (f *fakeStore) AppendMessage(ctx context.Context, message *entity.Message) error {
	f.mu.Lock()
	f.appendCalls++
	message.CreatedAt = f.tick()
	f.messages[message.ConversationID] = append(f.messages[message.ConversationID], message)
	f.mu.Unlock()

	f.emitMessages(message.ConversationID)
	return nil
}

func (f *fakeStore) UpdateLastMessage(ctx context.Context, conversationID string, last *entity.LastMessage) error {
	f.mu.Lock()
	c, ok := f.conversations[conversationID]
	if !ok {
		f.mu.Unlock()
		return errors.NotFound("Conversation", nil)
	}
	c.LastMessage = last
	c.UpdatedAt = f.tick()
	f.mu.Unlock()

	f.emitConversations()
	return nil
}

func (f *fakeStore) SendMessageTransactional(ctx context.Context, message *entity.Message) error {
	if err := f.AppendMessage(ctx, message); err != nil {
		return err
	}
	return f.UpdateLastMessage(ctx, message.ConversationID, &entity.LastMessage{
		MessageID: message.ID,
		Content:   message.Content,
		SenderID:  message.SenderID,
		CreatedAt: message.CreatedAt,
	})
}

func (f *fakeStore) MarkRead(ctx context.Context, conversationID, userID string) error {
	f.mu.Lock()
	c, ok := f.conversations[conversationID]
	if ok && c.LastMessage != nil && c.LastMessage.SenderID != userID {
		c.LastMessage.Read = true
	}
	f.mu.Unlock()

	f.emitConversations()
	return nil
}

// fakeDirectory is an in-memory UserRepository that counts lookups.
type fakeDirectory struct {
	mu          sync.Mutex
	users       map[string]*entity.User
	lookupCalls int
}

func newFakeDirectory(users ...*entity.User) *fakeDirectory {
	d := &fakeDirectory{users: make(map[string]*entity.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) Create(ctx context.Context, user *entity.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = user
	return nil
}

func (d *fakeDirectory) GetByID(ctx context.Context, id string) (*entity.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookupCalls++
	if u, ok := d.users[id]; ok {
		return u, nil
	}
	return nil, errors.NotFound("User", nil)
}

func (d *fakeDirectory) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (d *fakeDirectory) Update(ctx context.Context, user *entity.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = user
	return nil
}

func (d *fakeDirectory) GetSupportBot(ctx context.Context) (*entity.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Role == "support" {
			return u, nil
		}
	}
	return nil, errors.NotFound("Support identity", nil)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, level+": "+message)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type recordingSound struct {
	mu    sync.Mutex
	plays int
	fail  error
}

func (s *recordingSound) PlayNotification() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays++
	return s.fail
}

func (s *recordingSound) playCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays
}

type fakeLocator struct {
	mu       sync.Mutex
	selector string
	replaces []string
}

func (l *fakeLocator) Selector() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selector
}

func (l *fakeLocator) ReplaceSelector(value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selector = value
	l.replaces = append(l.replaces, value)
}

func (l *fakeLocator) replaceCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.replaces)
}
