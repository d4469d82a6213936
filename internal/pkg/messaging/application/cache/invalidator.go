package cache

import (
	"context"

	"go.uber.org/zap"

	"backchat/internal/infrastructure/cache/port"
	messaging "backchat/internal/pkg/messaging/application/domain"
)

// Invalidator owns the eviction fan-out triggered by every mutation, one
// method per mutation type, so the full list of affected keys is auditable
// in one place. Calls run synchronously at the end of each write path;
// eviction failures are logged and swallowed because the TTLs bound any
// resulting staleness.
type Invalidator struct {
	cache port.Cache
	log   *zap.Logger
}

func NewInvalidator(cache port.Cache, log *zap.Logger) *Invalidator {
	return &Invalidator{cache: cache, log: log}
}

// MessageSent evicts everything a new message can stale: the conversation's
// last-message and message-list views, and every participant's conversation
// list and unread count, not only the sender's.
func (i *Invalidator) MessageSent(ctx context.Context, conversationID string, participants []messaging.ActorRef) {
	keys := []string{
		LastMessageKey(conversationID),
		MessageListKey(conversationID),
	}
	for _, ref := range participants {
		keys = append(keys,
			ConversationListKey(ref),
			UnreadCountKey(conversationID, ref),
		)
	}
	i.evict(ctx, keys)
}

// ConversationRead evicts everything mark-as-read can stale: the reader's
// conversation list, the pair's unread count, the cached roster (it carries
// the reader's LastReadAt watermark that unread recomputes from), and the
// conversation's message-list view (private rows flip is_read/read_at).
func (i *Invalidator) ConversationRead(ctx context.Context, conversationID string, reader messaging.ActorRef) {
	i.evict(ctx, []string{
		ConversationListKey(reader),
		UnreadCountKey(conversationID, reader),
		ParticipantsKey(conversationID),
		MessageListKey(conversationID),
	})
}

// RosterChanged evicts the conversation's participant view and every affected
// actor's conversation list. Used for both creation and later additions.
func (i *Invalidator) RosterChanged(ctx context.Context, conversationID string, participants []messaging.ActorRef) {
	keys := []string{ParticipantsKey(conversationID)}
	for _, ref := range participants {
		keys = append(keys, ConversationListKey(ref))
	}
	i.evict(ctx, keys)
}

func (i *Invalidator) evict(ctx context.Context, keys []string) {
	if i == nil || i.cache == nil {
		return
	}
	if _, err := i.cache.Del(ctx, keys...); err != nil {
		i.log.Warn("cache eviction failed; TTLs bound the staleness window",
			zap.Strings("keys", keys), zap.Error(err))
	}
}
