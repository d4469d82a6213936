package usecase

import (
	"context"
	"errors"
	"fmt"

	appcache "backchat/internal/pkg/messaging/application/cache"
	messaging "backchat/internal/pkg/messaging/application/domain"
	repository "backchat/internal/pkg/messaging/persistence/repository/port"
)

const defaultPageSize = 50

// GetMessagesInput fetches a page of a conversation's history for a
// participant. Limit defaults to 50, newest first.
type GetMessagesInput struct {
	ConversationID string
	Requester      messaging.ActorRef
	Limit          int
	Offset         int
}

// GetMessagesUseCase reads from the type-appropriate message table. Messages
// sent into a group conversation are only ever visible through the group
// path, and vice versa. The default first page is served through the
// short-TTL message-list cache.
type GetMessagesUseCase struct {
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
	Views         *appcache.ViewStore
}

func NewGetMessagesUseCase(conversations repository.ConversationRepository, messages repository.MessageRepository, views *appcache.ViewStore) *GetMessagesUseCase {
	return &GetMessagesUseCase{Conversations: conversations, Messages: messages, Views: views}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) ([]MessageView, error) {
	if in.ConversationID == "" {
		return nil, fmt.Errorf("conversationId is required")
	}
	if in.Limit <= 0 {
		in.Limit = defaultPageSize
	}
	if in.Offset < 0 {
		in.Offset = 0
	}

	conv, err := uc.Conversations.GetByID(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, messaging.ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	participant, err := uc.Conversations.GetParticipant(ctx, conv.ID, in.Requester)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if participant == nil {
		return nil, messaging.ErrNotParticipant
	}

	cacheable := in.Limit == defaultPageSize && in.Offset == 0
	if cacheable {
		var cached []MessageView
		if uc.Views.Get(ctx, appcache.MessageListKey(conv.ID), &cached) {
			return cached, nil
		}
	}

	var views []MessageView
	switch conv.Type {
	case messaging.ConversationTypeGroup:
		msgs, err := uc.Messages.ListGroup(ctx, conv.ID, in.Limit, in.Offset)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		views = make([]MessageView, 0, len(msgs))
		for _, m := range msgs {
			views = append(views, groupMessageView(m))
		}
	case messaging.ConversationTypePrivate:
		msgs, err := uc.Messages.ListPrivate(ctx, conv.ID, in.Limit, in.Offset)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		views = make([]MessageView, 0, len(msgs))
		for _, m := range msgs {
			views = append(views, privateMessageView(m))
		}
	default:
		return nil, messaging.ErrTypeMismatch
	}

	if cacheable {
		uc.Views.Put(ctx, appcache.MessageListKey(conv.ID), views, appcache.MessageListTTL)
	}
	return views, nil
}
