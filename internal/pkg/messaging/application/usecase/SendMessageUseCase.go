package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	directory "backchat/internal/pkg/directory/port"
	appcache "backchat/internal/pkg/messaging/application/cache"
	messaging "backchat/internal/pkg/messaging/application/domain"
	repository "backchat/internal/pkg/messaging/persistence/repository/port"
)

// previewLimit caps the content preview carried in notifications.
const previewLimit = 120

// SendMessageInput carries the data to send a message into an existing
// conversation. ExpectType, when set, rejects conversations of any other type.
type SendMessageInput struct {
	ConversationID string
	Sender         messaging.ActorRef
	Content        string
	Attachments    []messaging.Attachment
	ExpectType     messaging.ConversationType
}

// SendMessageUseCase is the message router: it validates participation,
// resolves the sender's display name, dispatches to the type-appropriate
// message table, then fans out cache invalidation and notification.
type SendMessageUseCase struct {
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
	Directory     directory.Directory
	Notifier      Notifier
	Invalidator   *appcache.Invalidator
	Log           *zap.Logger
}

func NewSendMessageUseCase(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	dir directory.Directory,
	notifier Notifier,
	inv *appcache.Invalidator,
	log *zap.Logger,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		Conversations: conversations,
		Messages:      messages,
		Directory:     dir,
		Notifier:      notifier,
		Invalidator:   inv,
		Log:           log,
	}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*MessageView, error) {
	if in.ConversationID == "" || in.Sender.ID == "" {
		return nil, fmt.Errorf("conversationId and sender are required")
	}

	conv, err := uc.Conversations.GetByID(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, messaging.ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if in.ExpectType != "" && conv.Type != in.ExpectType {
		return nil, messaging.ErrTypeMismatch
	}

	participants, err := uc.Conversations.ListParticipants(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !containsActor(participants, in.Sender) {
		return nil, messaging.ErrNotParticipant
	}

	senderName := uc.resolveSenderName(ctx, in.Sender)

	var view MessageView
	switch conv.Type {
	case messaging.ConversationTypeGroup:
		draft, err := messaging.NewGroupMessage(messaging.GroupMessage{
			ID:             uuid.NewString(),
			ConversationID: conv.ID,
			Sender:         in.Sender,
			SenderName:     senderName,
			Content:        in.Content,
			Attachments:    in.Attachments,
		})
		if err != nil {
			return nil, err
		}
		id, err := uc.Messages.InsertGroup(ctx, *draft)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		draft.ID = id
		view = groupMessageView(*draft)

	case messaging.ConversationTypePrivate:
		draft, err := messaging.NewPrivateMessage(messaging.PrivateMessage{
			ID:             uuid.NewString(),
			ConversationID: conv.ID,
			Sender:         in.Sender,
			SenderName:     senderName,
			Content:        in.Content,
			Attachments:    in.Attachments,
		})
		if err != nil {
			return nil, err
		}
		id, err := uc.Messages.InsertPrivate(ctx, *draft)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		draft.ID = id
		view = privateMessageView(*draft)

	default:
		return nil, messaging.ErrTypeMismatch
	}

	refs := make([]messaging.ActorRef, 0, len(participants))
	recipients := make([]string, 0, len(participants)-1)
	for _, p := range participants {
		refs = append(refs, p.Ref)
		if !p.Ref.Equal(in.Sender) {
			recipients = append(recipients, p.Ref.String())
		}
	}

	uc.Invalidator.MessageSent(ctx, conv.ID, refs)

	if uc.Notifier != nil && len(recipients) > 0 {
		err := uc.Notifier.Notify(ctx, MessageNotification{
			Recipients:     recipients,
			ConversationID: conv.ID,
			MessageID:      view.ID,
			SenderName:     senderName,
			Preview:        preview(view.Content),
		})
		if err != nil {
			uc.Log.Warn("notification dispatch failed",
				zap.String("conversationId", conv.ID),
				zap.String("messageId", view.ID),
				zap.Error(err))
		}
	}

	return &view, nil
}

// resolveSenderName never fails the send: a directory outage degrades to the
// generic placeholder, which is also the directory's own final fallback.
func (uc *SendMessageUseCase) resolveSenderName(ctx context.Context, sender messaging.ActorRef) string {
	profile, err := uc.Directory.ResolveActor(ctx, sender)
	if err != nil {
		uc.Log.Warn("sender name lookup failed", zap.String("sender", sender.String()), zap.Error(err))
		return "Team Member"
	}
	return profile.DisplayName
}

func containsActor(participants []messaging.Participant, ref messaging.ActorRef) bool {
	for _, p := range participants {
		if p.Ref.Equal(ref) {
			return true
		}
	}
	return false
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit])
}
