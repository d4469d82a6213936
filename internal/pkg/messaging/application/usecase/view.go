package usecase

import (
	"time"

	messaging "backchat/internal/pkg/messaging/application/domain"
)

// MessageView is the canonical JSON shape for a message regardless of which
// table it came from. IsRead/ReadAt are only set for private messages.
type MessageView struct {
	ID             string                 `json:"id"`
	ConversationID string                 `json:"conversationId"`
	SenderID       string                 `json:"senderId"`
	SenderRole     string                 `json:"senderRole"`
	SenderName     string                 `json:"senderName"`
	Content        string                 `json:"content"`
	Attachments    []messaging.Attachment `json:"attachments,omitempty"`
	HasAttachments bool                   `json:"hasAttachments"`
	IsRead         *bool                  `json:"isRead,omitempty"`
	ReadAt         *time.Time             `json:"readAt,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// LastMessageView is the trimmed message summary shown on conversation lists.
type LastMessageView struct {
	Content    string    `json:"content"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ConversationView is the enriched per-actor listing entry.
type ConversationView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Members     []string         `json:"members"`
	LastMessage *LastMessageView `json:"lastMessage"`
	UnreadCount int              `json:"unreadCount"`
	ImageURL    string           `json:"imageUrl,omitempty"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func groupMessageView(m messaging.GroupMessage) MessageView {
	return MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.Sender.ID,
		SenderRole:     string(m.Sender.Kind),
		SenderName:     m.SenderName,
		Content:        m.Content,
		Attachments:    m.Attachments,
		HasAttachments: m.HasAttachments,
		CreatedAt:      m.CreatedAt,
	}
}

func privateMessageView(m messaging.PrivateMessage) MessageView {
	isRead := m.IsRead
	return MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.Sender.ID,
		SenderRole:     string(m.Sender.Kind),
		SenderName:     m.SenderName,
		Content:        m.Content,
		Attachments:    m.Attachments,
		HasAttachments: m.HasAttachments,
		IsRead:         &isRead,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
}
