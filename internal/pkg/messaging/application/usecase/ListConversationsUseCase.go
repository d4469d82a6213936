package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	directory "backchat/internal/pkg/directory/port"
	appcache "backchat/internal/pkg/messaging/application/cache"
	messaging "backchat/internal/pkg/messaging/application/domain"
	repository "backchat/internal/pkg/messaging/persistence/repository/port"
)

type ListConversationsInput struct {
	Actor messaging.ActorRef
}

// ListConversationsUseCase assembles the enriched per-actor listing: last
// message, unread count, derived display name and roster for every
// conversation the actor participates in, most recently updated first.
//
// Each enrichment layer reads through its own cache key so one stale layer
// never pins the others; the assembled list itself is cached per actor.
type ListConversationsUseCase struct {
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
	Directory     directory.Directory
	Unread        *UnreadCountUseCase
	Views         *appcache.ViewStore
	Log           *zap.Logger
}

func NewListConversationsUseCase(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	dir directory.Directory,
	unread *UnreadCountUseCase,
	views *appcache.ViewStore,
	log *zap.Logger,
) *ListConversationsUseCase {
	return &ListConversationsUseCase{
		Conversations: conversations,
		Messages:      messages,
		Directory:     dir,
		Unread:        unread,
		Views:         views,
		Log:           log,
	}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]ConversationView, error) {
	if in.Actor.ID == "" {
		return nil, fmt.Errorf("actor is required")
	}

	listKey := appcache.ConversationListKey(in.Actor)
	var cached []ConversationView
	if uc.Views.Get(ctx, listKey, &cached) {
		return cached, nil
	}

	convs, err := uc.Conversations.ListForActor(ctx, in.Actor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	views := make([]ConversationView, 0, len(convs))
	for _, conv := range convs {
		view, err := uc.enrich(ctx, conv, in.Actor)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	uc.Views.Put(ctx, listKey, views, appcache.ConversationListTTL)
	return views, nil
}

func (uc *ListConversationsUseCase) enrich(ctx context.Context, conv messaging.Conversation, actor messaging.ActorRef) (ConversationView, error) {
	participants, err := uc.participants(ctx, conv.ID)
	if err != nil {
		return ConversationView{}, err
	}

	view := ConversationView{
		ID:        conv.ID,
		Name:      conv.Name,
		Type:      string(conv.Type),
		UpdatedAt: conv.UpdatedAt,
	}

	var self *messaging.Participant
	for i := range participants {
		view.Members = append(view.Members, participants[i].Ref.String())
		if participants[i].Ref.Equal(actor) {
			self = &participants[i]
		}
	}

	if conv.IsPrivate() {
		view.Name, view.ImageURL = uc.privateDisplay(ctx, participants, actor)
	}

	last, err := uc.lastMessage(ctx, conv)
	if err != nil {
		return ConversationView{}, err
	}
	view.LastMessage = last

	if self != nil {
		unreadKey := appcache.UnreadCountKey(conv.ID, actor)
		var unread int
		if !uc.Views.Get(ctx, unreadKey, &unread) {
			unread, err = uc.Unread.Execute(ctx, conv, *self)
			if err != nil {
				return ConversationView{}, err
			}
			uc.Views.Put(ctx, unreadKey, unread, appcache.UnreadCountTTL)
		}
		view.UnreadCount = unread
	}

	return view, nil
}

func (uc *ListConversationsUseCase) participants(ctx context.Context, conversationID string) ([]messaging.Participant, error) {
	key := appcache.ParticipantsKey(conversationID)
	var cached []messaging.Participant
	if uc.Views.Get(ctx, key, &cached) {
		return cached, nil
	}
	participants, err := uc.Conversations.ListParticipants(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	uc.Views.Put(ctx, key, participants, appcache.ParticipantsTTL)
	return participants, nil
}

func (uc *ListConversationsUseCase) lastMessage(ctx context.Context, conv messaging.Conversation) (*LastMessageView, error) {
	key := appcache.LastMessageKey(conv.ID)
	var cached *LastMessageView
	if uc.Views.Get(ctx, key, &cached) {
		return cached, nil
	}

	var last *LastMessageView
	switch conv.Type {
	case messaging.ConversationTypeGroup:
		m, err := uc.Messages.LatestGroup(ctx, conv.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if m != nil {
			last = &LastMessageView{Content: m.Content, SenderID: m.Sender.ID, SenderName: m.SenderName, CreatedAt: m.CreatedAt}
		}
	case messaging.ConversationTypePrivate:
		m, err := uc.Messages.LatestPrivate(ctx, conv.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if m != nil {
			last = &LastMessageView{Content: m.Content, SenderID: m.Sender.ID, SenderName: m.SenderName, CreatedAt: m.CreatedAt}
		}
	}

	uc.Views.Put(ctx, key, last, appcache.LastMessageTTL)
	return last, nil
}

// privateDisplay derives a private thread's label from the other participant:
// the fixed admin label, or the employee's resolved name and profile image.
// Lookup failures degrade to the generic placeholder rather than failing the list.
func (uc *ListConversationsUseCase) privateDisplay(ctx context.Context, participants []messaging.Participant, actor messaging.ActorRef) (string, string) {
	for _, p := range participants {
		if p.Ref.Equal(actor) {
			continue
		}
		profile, err := uc.Directory.ResolveActor(ctx, p.Ref)
		if err != nil {
			if !errors.Is(err, messaging.ErrActorNotFound) {
				uc.Log.Warn("counterparty lookup failed", zap.String("actor", p.Ref.String()), zap.Error(err))
			}
			return "Team Member", ""
		}
		return profile.DisplayName, profile.ProfileImageRef
	}
	return "", ""
}
