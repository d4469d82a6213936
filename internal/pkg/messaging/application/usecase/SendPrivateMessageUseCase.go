package usecase

import (
	"context"

	messaging "backchat/internal/pkg/messaging/application/domain"
)

// SendPrivateMessageInput addresses a message by counterparty token rather
// than conversation ID; the conversation is resolved or created on the way.
type SendPrivateMessageInput struct {
	Actor        messaging.ActorRef
	Counterparty string
	Content      string
	Attachments  []messaging.Attachment
}

// SendPrivateMessageOutput returns the message plus the (possibly newly
// created) conversation ID so the caller can address the thread directly.
type SendPrivateMessageOutput struct {
	ConversationID string
	Message        MessageView
}

// SendPrivateMessageUseCase chains get-or-create-private with the router.
type SendPrivateMessageUseCase struct {
	Resolve *GetOrCreatePrivateConversationUseCase
	Send    *SendMessageUseCase
}

func NewSendPrivateMessageUseCase(resolve *GetOrCreatePrivateConversationUseCase, send *SendMessageUseCase) *SendPrivateMessageUseCase {
	return &SendPrivateMessageUseCase{Resolve: resolve, Send: send}
}

func (uc *SendPrivateMessageUseCase) Execute(ctx context.Context, in SendPrivateMessageInput) (*SendPrivateMessageOutput, error) {
	conv, err := uc.Resolve.Execute(ctx, GetOrCreatePrivateConversationInput{
		Actor:        in.Actor,
		Counterparty: in.Counterparty,
	})
	if err != nil {
		return nil, err
	}

	msg, err := uc.Send.Execute(ctx, SendMessageInput{
		ConversationID: conv.ID,
		Sender:         in.Actor,
		Content:        in.Content,
		Attachments:    in.Attachments,
		ExpectType:     messaging.ConversationTypePrivate,
	})
	if err != nil {
		return nil, err
	}

	return &SendPrivateMessageOutput{ConversationID: conv.ID, Message: *msg}, nil
}
