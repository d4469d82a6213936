package repository

import (
	"context"
	"time"

	messaging "backchat/internal/pkg/messaging/application/domain"
)

// ConversationRepository defines persistence operations for conversations and
// their participant rosters.
//
// CreateWithParticipants must persist the conversation and every participant
// row as one atomic unit; a storage uniqueness violation surfaces as
// messaging.ErrConflict so the resolver can retry its lookup.
type ConversationRepository interface {
	CreateWithParticipants(ctx context.Context, c messaging.Conversation, participants []messaging.Participant) error

	// GetByID returns messaging.ErrConversationNotFound when absent.
	GetByID(ctx context.Context, id string) (*messaging.Conversation, error)

	// FindPrivateByPairKey returns (nil, nil) when no conversation exists for the pair.
	FindPrivateByPairKey(ctx context.Context, pairKey string) (*messaging.Conversation, error)

	// ListForActor returns the actor's conversations, most recently updated first.
	ListForActor(ctx context.Context, ref messaging.ActorRef) ([]messaging.Conversation, error)

	ListParticipants(ctx context.Context, conversationID string) ([]messaging.Participant, error)

	// GetParticipant returns (nil, nil) when the actor is not a member.
	GetParticipant(ctx context.Context, conversationID string, ref messaging.ActorRef) (*messaging.Participant, error)

	AddParticipants(ctx context.Context, conversationID string, participants []messaging.Participant) error

	SetLastReadAt(ctx context.Context, conversationID string, ref messaging.ActorRef, at time.Time) error
}
