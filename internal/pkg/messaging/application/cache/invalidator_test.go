package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	cacheAdapter "backchat/internal/infrastructure/cache/adapter"
	"backchat/internal/infrastructure/cache/port"
	messaging "backchat/internal/pkg/messaging/application/domain"
)

var (
	reader = messaging.ActorRef{Kind: messaging.ActorKindEmployee, ID: "7"}
	other  = messaging.ActorRef{Kind: messaging.ActorKindAdmin, ID: "1"}
)

func seededCache(t *testing.T, keys ...string) *cacheAdapter.MemoryCache {
	t.Helper()
	c := cacheAdapter.NewMemoryAdapter()
	for _, k := range keys {
		if err := c.Set(context.Background(), k, "cached", time.Minute); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}
	return c
}

func assertEvicted(t *testing.T, c *cacheAdapter.MemoryCache, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if _, err := c.Get(context.Background(), k); !errors.Is(err, port.ErrMiss) {
			t.Errorf("key %s survived eviction (err=%v)", k, err)
		}
	}
}

func assertPresent(t *testing.T, c *cacheAdapter.MemoryCache, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if _, err := c.Get(context.Background(), k); err != nil {
			t.Errorf("key %s unexpectedly evicted: %v", k, err)
		}
	}
}

func TestMessageSentEvictsAllAffectedViews(t *testing.T) {
	t.Parallel()
	const conv = "c1"
	affected := []string{
		LastMessageKey(conv),
		MessageListKey(conv),
		ConversationListKey(reader),
		ConversationListKey(other),
		UnreadCountKey(conv, reader),
		UnreadCountKey(conv, other),
	}
	untouched := []string{
		ParticipantsKey(conv),
		LastMessageKey("c2"),
		UnreadCountKey("c2", reader),
	}
	c := seededCache(t, append(append([]string{}, affected...), untouched...)...)

	inv := NewInvalidator(c, zap.NewNop())
	inv.MessageSent(context.Background(), conv, []messaging.ActorRef{reader, other})

	assertEvicted(t, c, affected...)
	assertPresent(t, c, untouched...)
}

func TestConversationReadEvictionScope(t *testing.T) {
	t.Parallel()
	const conv = "c1"
	c := seededCache(t,
		ConversationListKey(reader),
		UnreadCountKey(conv, reader),
		// The roster carries the reader's watermark and the message list
		// carries per-row read flags; both go stale on mark-as-read.
		ParticipantsKey(conv),
		MessageListKey(conv),
		ConversationListKey(other),
		UnreadCountKey(conv, other),
		LastMessageKey(conv),
	)

	inv := NewInvalidator(c, zap.NewNop())
	inv.ConversationRead(context.Background(), conv, reader)

	assertEvicted(t, c,
		ConversationListKey(reader),
		UnreadCountKey(conv, reader),
		ParticipantsKey(conv),
		MessageListKey(conv),
	)
	assertPresent(t, c, ConversationListKey(other), UnreadCountKey(conv, other), LastMessageKey(conv))
}

func TestRosterChangedEvictsParticipantViews(t *testing.T) {
	t.Parallel()
	const conv = "c1"
	c := seededCache(t,
		ParticipantsKey(conv),
		ConversationListKey(reader),
		ConversationListKey(other),
		LastMessageKey(conv),
	)

	inv := NewInvalidator(c, zap.NewNop())
	inv.RosterChanged(context.Background(), conv, []messaging.ActorRef{reader, other})

	assertEvicted(t, c, ParticipantsKey(conv), ConversationListKey(reader), ConversationListKey(other))
	assertPresent(t, c, LastMessageKey(conv))
}

func TestNilInvalidatorIsSafe(t *testing.T) {
	t.Parallel()
	var inv *Invalidator
	inv.MessageSent(context.Background(), "c1", []messaging.ActorRef{reader})
	inv.ConversationRead(context.Background(), "c1", reader)
	inv.RosterChanged(context.Background(), "c1", nil)
}
