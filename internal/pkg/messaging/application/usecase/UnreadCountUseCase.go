package usecase

import (
	"context"
	"fmt"

	messaging "backchat/internal/pkg/messaging/application/domain"
	repository "backchat/internal/pkg/messaging/persistence/repository/port"
)

// UnreadCountUseCase computes how many messages a participant has not seen.
//
// Group conversations count messages from others newer than the participant's
// LastReadAt watermark (epoch when never read). Private conversations count
// per-message unread flags on rows the participant did not send; the
// "sender is not me" filter covers the recipient check without a dedicated
// recipient column.
type UnreadCountUseCase struct {
	Messages repository.MessageRepository
}

func NewUnreadCountUseCase(messages repository.MessageRepository) *UnreadCountUseCase {
	return &UnreadCountUseCase{Messages: messages}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, conv messaging.Conversation, p messaging.Participant) (int, error) {
	switch conv.Type {
	case messaging.ConversationTypeGroup:
		n, err := uc.Messages.CountGroupUnread(ctx, conv.ID, p.Ref, p.LastReadOrEpoch())
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return n, nil
	case messaging.ConversationTypePrivate:
		n, err := uc.Messages.CountPrivateUnread(ctx, conv.ID, p.Ref)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return n, nil
	}
	return 0, messaging.ErrTypeMismatch
}
