package usecase

import "context"

// MessageNotification is the fire-and-forget payload handed to the external
// notification collaborator after every successful send.
type MessageNotification struct {
	Recipients     []string `json:"recipients"` // actor refs, "kind:id"
	ConversationID string   `json:"conversationId"`
	MessageID      string   `json:"messageId"`
	SenderName     string   `json:"senderName"`
	Preview        string   `json:"preview"`
}

// Notifier dispatches a notification to every recipient. Failures must never
// fail the parent send; callers log and swallow them.
type Notifier interface {
	Notify(ctx context.Context, n MessageNotification) error
}
