package entity

import "time"

// Participant is a denormalized profile snapshot stored on the conversation
// document so the list can render without reading the users collection.
type Participant struct {
	ID        string `json:"id" firestore:"id"`
	Name      string `json:"name" firestore:"name"`
	Role      string `json:"role" firestore:"role"`
	Email     string `json:"email,omitempty" firestore:"email,omitempty"`
	IsActive  bool   `json:"is_active" firestore:"isActive"`
	AvatarURL string `json:"avatar_url,omitempty" firestore:"avatarURL,omitempty"`
}

// LastMessage is a cached copy of the most recent message's fields, kept on
// the conversation record to avoid reading the message subcollection for
// list rendering.
type LastMessage struct {
	MessageID string    `json:"message_id" firestore:"messageId"`
	Content   string    `json:"content" firestore:"content"`
	SenderID  string    `json:"sender_id" firestore:"senderId"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	Read      bool      `json:"read" firestore:"read"`
}

// Conversation is a two-party chat session. Its document id is derived from
// the sorted pair of participant ids (pkg/pairkey), which makes bootstrap
// idempotent: both parties compute the same id.
type Conversation struct {
	ID           string        `json:"id" firestore:"id"`
	Participants []Participant `json:"participants" firestore:"participants"`
	UserIDs      []string      `json:"user_ids" firestore:"userIds"`
	LastMessage  *LastMessage  `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	CreatedAt    time.Time     `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time     `json:"updated_at" firestore:"updatedAt"`
}

// OtherParticipant resolves the participant that is not userID. The second
// result reports a clean resolution; it is false when the data is degenerate
// (no participants, or userID appears twice or not at all), in which case the
// first participant is returned as a fallback. Callers should log the
// degenerate case: it indicates a data invariant violation.
func (c *Conversation) OtherParticipant(userID string) (Participant, bool) {
	if len(c.Participants) == 0 {
		return Participant{}, false
	}
	for _, p := range c.Participants {
		if p.ID != userID {
			return p, true
		}
	}
	return c.Participants[0], false
}

// UnreadFor derives the unread indicator for userID: 1 if the last message
// exists, is unread, and was not authored by userID, else 0. This reflects
// only the single most recent message, not a cumulative tally.
func (c *Conversation) UnreadFor(userID string) int {
	if c.LastMessage != nil && !c.LastMessage.Read && c.LastMessage.SenderID != userID {
		return 1
	}
	return 0
}
