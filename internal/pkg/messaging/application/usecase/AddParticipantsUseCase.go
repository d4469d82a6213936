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

type AddParticipantsInput struct {
	ConversationID string
	Actor          messaging.ActorRef
	Members        []messaging.ActorRef
}

// AddParticipantsUseCase grows a group conversation's roster. Private
// conversations keep exactly two participants for their whole lifetime, so
// additions to them are rejected.
type AddParticipantsUseCase struct {
	Conversations repository.ConversationRepository
	Invalidator   *appcache.Invalidator
}

func NewAddParticipantsUseCase(repo repository.ConversationRepository, inv *appcache.Invalidator) *AddParticipantsUseCase {
	return &AddParticipantsUseCase{Conversations: repo, Invalidator: inv}
}

func (uc *AddParticipantsUseCase) Execute(ctx context.Context, in AddParticipantsInput) error {
	if in.ConversationID == "" || in.Actor.ID == "" {
		return fmt.Errorf("conversationId and actor are required")
	}
	if len(in.Members) == 0 {
		return fmt.Errorf("members must include at least one actor")
	}

	conv, err := uc.Conversations.GetByID(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, messaging.ErrConversationNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if conv.IsPrivate() {
		return messaging.ErrPrivateRoster
	}

	actor, err := uc.Conversations.GetParticipant(ctx, conv.ID, in.Actor)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if actor == nil {
		return messaging.ErrNotParticipant
	}

	now := time.Now().UTC()
	additions := make([]messaging.Participant, 0, len(in.Members))
	for _, ref := range in.Members {
		if ref.ID == "" {
			continue
		}
		additions = append(additions, messaging.Participant{ConversationID: conv.ID, Ref: ref, JoinedAt: now})
	}
	if len(additions) == 0 {
		return fmt.Errorf("members must include at least one actor")
	}

	if err := uc.Conversations.AddParticipants(ctx, conv.ID, additions); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// The whole roster's conversation lists may now show a changed member set.
	all, err := uc.Conversations.ListParticipants(ctx, conv.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	refs := make([]messaging.ActorRef, 0, len(all))
	for _, p := range all {
		refs = append(refs, p.Ref)
	}
	uc.Invalidator.RosterChanged(ctx, conv.ID, refs)
	return nil
}
