package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	appcache "backchat/internal/pkg/messaging/application/cache"
	messaging "backchat/internal/pkg/messaging/application/domain"
	repository "backchat/internal/pkg/messaging/persistence/repository/port"
)

type MarkConversationReadInput struct {
	ConversationID string
	Actor          messaging.ActorRef
}

// MarkConversationReadUseCase advances the actor's read watermark. For
// private conversations it additionally flags every unread message from the
// other party as read; for group conversations the watermark alone redefines
// "unread" for subsequent queries.
type MarkConversationReadUseCase struct {
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
	Invalidator   *appcache.Invalidator
}

func NewMarkConversationReadUseCase(conversations repository.ConversationRepository, messages repository.MessageRepository, inv *appcache.Invalidator) *MarkConversationReadUseCase {
	return &MarkConversationReadUseCase{Conversations: conversations, Messages: messages, Invalidator: inv}
}

func (uc *MarkConversationReadUseCase) Execute(ctx context.Context, in MarkConversationReadInput) error {
	if in.ConversationID == "" || in.Actor.ID == "" {
		return fmt.Errorf("conversationId and actor are required")
	}

	conv, err := uc.Conversations.GetByID(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, messaging.ErrConversationNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	participant, err := uc.Conversations.GetParticipant(ctx, conv.ID, in.Actor)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if participant == nil {
		return messaging.ErrActorNotFound
	}

	now := time.Now().UTC()
	if err := uc.Conversations.SetLastReadAt(ctx, conv.ID, in.Actor, now); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if conv.IsPrivate() {
		if _, err := uc.Messages.MarkPrivateRead(ctx, conv.ID, in.Actor, now); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	uc.Invalidator.ConversationRead(ctx, conv.ID, in.Actor)
	return nil
}
