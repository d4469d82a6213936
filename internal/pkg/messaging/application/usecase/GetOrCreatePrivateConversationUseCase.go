package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	directory "backchat/internal/pkg/directory/port"
	appcache "backchat/internal/pkg/messaging/application/cache"
	messaging "backchat/internal/pkg/messaging/application/domain"
	repository "backchat/internal/pkg/messaging/persistence/repository/port"
)

// GetOrCreatePrivateConversationInput identifies the calling actor and the
// counterparty token: either messaging.SentinelAdmin ("the" administrative
// side) or a concrete employee ID.
type GetOrCreatePrivateConversationInput struct {
	Actor        messaging.ActorRef
	Counterparty string
}

// GetOrCreatePrivateConversationUseCase resolves the counterparty and returns
// the pair's private conversation, creating it on first contact. The pair key
// unique index makes the operation idempotent even under concurrent callers:
// the loser of a create race re-reads and converges on the winner's row.
type GetOrCreatePrivateConversationUseCase struct {
	Conversations repository.ConversationRepository
	Directory     directory.Directory
	Invalidator   *appcache.Invalidator
}

func NewGetOrCreatePrivateConversationUseCase(repo repository.ConversationRepository, dir directory.Directory, inv *appcache.Invalidator) *GetOrCreatePrivateConversationUseCase {
	return &GetOrCreatePrivateConversationUseCase{Conversations: repo, Directory: dir, Invalidator: inv}
}

func (uc *GetOrCreatePrivateConversationUseCase) Execute(ctx context.Context, in GetOrCreatePrivateConversationInput) (*messaging.Conversation, error) {
	if in.Actor.ID == "" {
		return nil, fmt.Errorf("actor is required")
	}

	counterparty, err := uc.resolveCounterparty(ctx, in.Counterparty)
	if err != nil {
		return nil, err
	}
	if counterparty.Equal(in.Actor) {
		return nil, fmt.Errorf("%w: cannot open a private conversation with oneself", messaging.ErrInvalidParticipant)
	}

	pairKey := messaging.PairKey(in.Actor, counterparty)

	existing, err := uc.Conversations.FindPrivateByPairKey(ctx, pairKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	conv := messaging.Conversation{
		ID:        uuid.NewString(),
		Type:      messaging.ConversationTypePrivate,
		PairKey:   &pairKey,
		CreatedBy: in.Actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	participants := []messaging.Participant{
		{ConversationID: conv.ID, Ref: in.Actor, JoinedAt: now},
		{ConversationID: conv.ID, Ref: counterparty, JoinedAt: now},
	}

	err = uc.Conversations.CreateWithParticipants(ctx, conv, participants)
	if errors.Is(err, messaging.ErrConflict) {
		// A concurrent call created the pair's conversation first.
		winner, ferr := uc.Conversations.FindPrivateByPairKey(ctx, pairKey)
		if ferr != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, ferr)
		}
		if winner == nil {
			return nil, err
		}
		return winner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.Invalidator.RosterChanged(ctx, conv.ID, []messaging.ActorRef{in.Actor, counterparty})
	return &conv, nil
}

func (uc *GetOrCreatePrivateConversationUseCase) resolveCounterparty(ctx context.Context, token string) (messaging.ActorRef, error) {
	if token == messaging.SentinelAdmin {
		adminID, err := uc.Directory.FindDefaultAdmin(ctx)
		if err != nil {
			if errors.Is(err, messaging.ErrActorNotFound) {
				return messaging.ActorRef{}, err
			}
			return messaging.ActorRef{}, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return messaging.ActorRef{Kind: messaging.ActorKindAdmin, ID: adminID}, nil
	}

	if token == "" {
		return messaging.ActorRef{}, fmt.Errorf("%w: empty counterparty token", messaging.ErrInvalidParticipant)
	}
	exists, err := uc.Directory.EmployeeExists(ctx, token)
	if err != nil {
		return messaging.ActorRef{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !exists {
		return messaging.ActorRef{}, fmt.Errorf("%w: no employee %q", messaging.ErrInvalidParticipant, token)
	}
	return messaging.ActorRef{Kind: messaging.ActorKindEmployee, ID: token}, nil
}
