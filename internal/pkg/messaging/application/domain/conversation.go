package messaging

import "time"

// ConversationType selects which message table a conversation routes into.
type ConversationType string

const (
	ConversationTypeGroup   ConversationType = "group"
	ConversationTypePrivate ConversationType = "private"
)

// Conversation is a thread of messages between staff and administrators.
//
// A private conversation holds exactly two participants for its entire
// lifetime and carries a PairKey so the pair is unique-indexed; a group
// conversation holds one or more participants and is never deduplicated.
type Conversation struct {
	ID        string           `db:"id"`
	Name      string           `db:"name"` // display label; derived at read time for private threads
	Type      ConversationType `db:"type"`
	PairKey   *string          `db:"pair_key"` // set only for private conversations
	CreatedBy ActorRef
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (c Conversation) IsPrivate() bool {
	return c.Type == ConversationTypePrivate
}
