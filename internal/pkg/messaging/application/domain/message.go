package messaging

import (
	"strings"
	"time"
)

// Attachment is an opaque descriptor for a stored file. The core never opens
// or validates the content behind it.
type Attachment struct {
	Path     string `json:"path"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// GroupMessage is an immutable log entry in a group conversation. Group
// threads carry no per-message read flag; the participant's LastReadAt alone
// defines what is unread.
type GroupMessage struct {
	ID             string `db:"id"`
	ConversationID string `db:"conversation_id"`
	Sender         ActorRef
	SenderName     string       `db:"sender_name"` // captured at send time so history survives renames
	Content        string       `db:"content"`
	Attachments    []Attachment `db:"attachments"`
	HasAttachments bool         `db:"has_attachments"`
	CreatedAt      time.Time    `db:"created_at"`
}

// PrivateMessage mirrors GroupMessage and adds per-message read tracking.
// The two-party cardinality of private threads makes the per-row flag cheap
// and lets the unread count reflect exactly which messages were seen.
type PrivateMessage struct {
	ID             string `db:"id"`
	ConversationID string `db:"conversation_id"`
	Sender         ActorRef
	SenderName     string       `db:"sender_name"`
	Content        string       `db:"content"`
	Attachments    []Attachment `db:"attachments"`
	HasAttachments bool         `db:"has_attachments"`
	IsRead         bool         `db:"is_read"`
	ReadAt         *time.Time   `db:"read_at"`
	CreatedAt      time.Time    `db:"created_at"`
}

// NewGroupMessage validates and normalizes a draft group message.
func NewGroupMessage(m GroupMessage) (*GroupMessage, error) {
	content, has, err := normalizeBody(m.Content, m.Attachments)
	if err != nil {
		return nil, err
	}
	m.Content = content
	m.HasAttachments = has
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return &m, nil
}

// NewPrivateMessage validates and normalizes a draft private message.
// New private messages always start unread for the recipient.
func NewPrivateMessage(m PrivateMessage) (*PrivateMessage, error) {
	content, has, err := normalizeBody(m.Content, m.Attachments)
	if err != nil {
		return nil, err
	}
	m.Content = content
	m.HasAttachments = has
	m.IsRead = false
	m.ReadAt = nil
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return &m, nil
}

func normalizeBody(content string, attachments []Attachment) (string, bool, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" && len(attachments) == 0 {
		return "", false, ErrEmptyMessage
	}
	return trimmed, len(attachments) > 0, nil
}
