package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oftisoft/internal/domain/entity"
	"oftisoft/pkg/errors"
)

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	store := newFakeStore()
	uc := NewChatUseCase(store, newFakeDirectory(u1))

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := uc.SendMessage(context.Background(), u1, "u1_u2", content)
		assert.True(t, errors.Is(err, "BAD_REQUEST"), "content %q", content)
	}
	assert.Zero(t, store.appendCalls)
}

func TestSendMessageTrimsContent(t *testing.T) {
	store := newFakeStore()
	uc := NewChatUseCase(store, newFakeDirectory(u1, u2))

	seedDirect(store, "u1_u2", u1, u2, nil)

	message, err := uc.SendMessage(context.Background(), u1, "u1_u2", "  hi  ")
	require.NoError(t, err)
	assert.Equal(t, "hi", message.Content)
	assert.Equal(t, "Ann", message.SenderName)
	assert.False(t, message.CreatedAt.IsZero(), "fake store assigns the server timestamp")
}

func TestSendMessageRateLimited(t *testing.T) {
	store := newFakeStore()
	uc := NewChatUseCase(store, newFakeDirectory(u1, u2))
	seedDirect(store, "u1_u2", u1, u2, nil)

	var limited bool
	for i := 0; i < 11; i++ {
		if _, err := uc.SendMessage(context.Background(), u1, "u1_u2", "spam"); errors.Is(err, "TOO_MANY_REQUESTS") {
			limited = true
			break
		}
	}
	assert.True(t, limited, "11th rapid send should be limited")
}

func TestStartConversationWithSelf(t *testing.T) {
	uc := NewChatUseCase(newFakeStore(), newFakeDirectory(u1))

	_, err := uc.StartConversation(context.Background(), u1, u1)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestStartConversationIsIdempotent(t *testing.T) {
	store := newFakeStore()
	uc := NewChatUseCase(store, newFakeDirectory(u1, u2))

	first, err := uc.StartConversation(context.Background(), u1, u2)
	require.NoError(t, err)
	second, err := uc.StartConversation(context.Background(), u2, u1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.conversations, 1)
	assert.Equal(t, "u2", first.RecipientID)
	assert.Equal(t, "u1", second.RecipientID)
}

func TestResolveRecipientPrefersProvidedProfile(t *testing.T) {
	dir := newFakeDirectory()
	uc := NewChatUseCase(newFakeStore(), dir)

	profile := &entity.User{ID: "u9", Name: "Pat"}
	got, err := uc.ResolveRecipient(context.Background(), "u9", profile)
	require.NoError(t, err)
	assert.Equal(t, profile, got)
	assert.Zero(t, dir.lookupCalls)
}

func TestResolveRecipientFallsBackToDirectory(t *testing.T) {
	dir := newFakeDirectory(u2)
	uc := NewChatUseCase(newFakeStore(), dir)

	got, err := uc.ResolveRecipient(context.Background(), "u2", &entity.User{ID: "someone-else"})
	require.NoError(t, err)
	assert.Equal(t, "u2", got.ID)
	assert.Equal(t, 1, dir.lookupCalls)
}

func TestSendMessageRequiresMembership(t *testing.T) {
	store := newFakeStore()
	uc := NewChatUseCase(store, newFakeDirectory(u1, u2))
	seedDirect(store, "u1_u2", u1, u2, nil)

	intruder := &entity.User{ID: "intruder", Name: "Mal"}
	_, err := uc.SendMessage(context.Background(), intruder, "u1_u2", "hi")
	assert.True(t, errors.Is(err, "FORBIDDEN"))
	assert.Zero(t, store.appendCalls)
}

func TestListMessagesRequiresMembership(t *testing.T) {
	store := newFakeStore()
	uc := NewChatUseCase(store, newFakeDirectory(u1, u2))
	seedDirect(store, "u1_u2", u1, u2, nil)

	_, _, err := uc.ListMessages(context.Background(), "intruder", "u1_u2", 50, 0)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestMarkReadFlipsInboundLastMessage(t *testing.T) {
	store := newFakeStore()
	uc := NewChatUseCase(store, newFakeDirectory(u1, u2))
	c := seedDirect(store, "u1_u2", u1, u2, &entity.LastMessage{MessageID: "m1", SenderID: "u2", Read: false})

	require.NoError(t, uc.MarkRead(context.Background(), "u1", "u1_u2"))
	assert.True(t, c.LastMessage.Read)

	view := uc.viewOf(c, "u1")
	assert.Zero(t, view.UnreadCount)
}

func TestConversationViewDerivation(t *testing.T) {
	store := newFakeStore()
	uc := NewChatUseCase(store, newFakeDirectory(u1, u2))
	c := seedDirect(store, "u1_u2", u1, u2, &entity.LastMessage{MessageID: "m1", SenderID: "u2", Read: false})

	view := uc.viewOf(c, "u1")
	assert.Equal(t, "u2", view.RecipientID)
	assert.Equal(t, 1, view.UnreadCount)

	peer := uc.viewOf(c, "u2")
	assert.Equal(t, "u1", peer.RecipientID)
	assert.Zero(t, peer.UnreadCount, "own unread message does not count for the sender")
}
