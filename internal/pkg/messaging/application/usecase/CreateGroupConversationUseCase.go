package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	appcache "backchat/internal/pkg/messaging/application/cache"
	messaging "backchat/internal/pkg/messaging/application/domain"
	repository "backchat/internal/pkg/messaging/persistence/repository/port"
)

// CreateGroupConversationInput carries the data to open a new group thread.
// The creator joins as the admin participant; members join as employees.
type CreateGroupConversationInput struct {
	Name      string
	CreatorID string
	MemberIDs []string
}

// CreateGroupConversationUseCase creates a group conversation with its full
// roster in one atomic unit. Group conversations are never deduplicated.
type CreateGroupConversationUseCase struct {
	Conversations repository.ConversationRepository
	Invalidator   *appcache.Invalidator
}

func NewCreateGroupConversationUseCase(repo repository.ConversationRepository, inv *appcache.Invalidator) *CreateGroupConversationUseCase {
	return &CreateGroupConversationUseCase{Conversations: repo, Invalidator: inv}
}

func (uc *CreateGroupConversationUseCase) Execute(ctx context.Context, in CreateGroupConversationInput) (*messaging.Conversation, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if in.CreatorID == "" {
		return nil, fmt.Errorf("creatorId is required")
	}

	now := time.Now().UTC()
	creator := messaging.ActorRef{Kind: messaging.ActorKindAdmin, ID: in.CreatorID}
	conv := messaging.Conversation{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Type:      messaging.ConversationTypeGroup,
		CreatedBy: creator,
		CreatedAt: now,
		UpdatedAt: now,
	}

	participants := []messaging.Participant{
		{ConversationID: conv.ID, Ref: creator, JoinedAt: now},
	}
	seen := map[string]struct{}{creator.String(): {}}
	for _, id := range in.MemberIDs {
		if id == "" {
			continue
		}
		ref := messaging.ActorRef{Kind: messaging.ActorKindEmployee, ID: id}
		if _, dup := seen[ref.String()]; dup {
			continue
		}
		seen[ref.String()] = struct{}{}
		participants = append(participants, messaging.Participant{ConversationID: conv.ID, Ref: ref, JoinedAt: now})
	}

	if err := uc.Conversations.CreateWithParticipants(ctx, conv, participants); err != nil {
		if errors.Is(err, messaging.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	refs := make([]messaging.ActorRef, 0, len(participants))
	for _, p := range participants {
		refs = append(refs, p.Ref)
	}
	uc.Invalidator.RosterChanged(ctx, conv.ID, refs)

	return &conv, nil
}
