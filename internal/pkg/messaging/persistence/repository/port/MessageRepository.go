package repository

import (
	"context"
	"time"

	messaging "backchat/internal/pkg/messaging/application/domain"
)

// MessageRepository defines persistence for the two parallel message tables.
// Group and private messages never share a table; the router decides which
// side a send lands on based on the conversation's type.
//
// Insert operations also advance the owning conversation's updated_at inside
// the same transaction, which is what keeps listing order correct.
type MessageRepository interface {
	InsertGroup(ctx context.Context, m messaging.GroupMessage) (string, error)
	InsertPrivate(ctx context.Context, m messaging.PrivateMessage) (string, error)

	// List* return messages newest first, honoring limit/offset.
	ListGroup(ctx context.Context, conversationID string, limit, offset int) ([]messaging.GroupMessage, error)
	ListPrivate(ctx context.Context, conversationID string, limit, offset int) ([]messaging.PrivateMessage, error)

	// Latest* return (nil, nil) for an empty conversation.
	LatestGroup(ctx context.Context, conversationID string) (*messaging.GroupMessage, error)
	LatestPrivate(ctx context.Context, conversationID string) (*messaging.PrivateMessage, error)

	// CountGroupUnread counts messages sent by anyone but the given actor after since.
	CountGroupUnread(ctx context.Context, conversationID string, reader messaging.ActorRef, since time.Time) (int, error)

	// CountPrivateUnread counts unread messages whose sender is not the given actor.
	CountPrivateUnread(ctx context.Context, conversationID string, reader messaging.ActorRef) (int, error)

	// MarkPrivateRead flags every unread message not sent by the reader and
	// returns the number of rows updated.
	MarkPrivateRead(ctx context.Context, conversationID string, reader messaging.ActorRef, at time.Time) (int64, error)
}
