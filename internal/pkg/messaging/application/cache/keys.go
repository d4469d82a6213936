package cache

import (
	"time"

	messaging "backchat/internal/pkg/messaging/application/domain"
)

// Cache key schema and TTLs for every derived view the messaging core serves.
// The TTLs bound staleness if an invalidation is ever skipped; they are a
// deliberate freshness/read-load trade-off and must not be removed.
const (
	ConversationListTTL = 30 * time.Second
	LastMessageTTL      = 60 * time.Second
	MessageListTTL      = 8 * time.Second
	ParticipantsTTL     = time.Hour
	UnreadCountTTL      = 10 * time.Second
)

func ConversationListKey(ref messaging.ActorRef) string {
	return "msg:convlist:" + ref.String()
}

func LastMessageKey(conversationID string) string {
	return "msg:lastmsg:" + conversationID
}

// MessageListKey covers only the default first page; other pages always read
// through to the store, keeping invalidation a single-key eviction.
func MessageListKey(conversationID string) string {
	return "msg:msglist:" + conversationID
}

func ParticipantsKey(conversationID string) string {
	return "msg:participants:" + conversationID
}

func UnreadCountKey(conversationID string, ref messaging.ActorRef) string {
	return "msg:unread:" + conversationID + ":" + ref.String()
}
