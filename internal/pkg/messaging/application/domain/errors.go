package messaging

import "errors"

// Domain-level errors for messaging behaviors
var (
	ErrConversationNotFound = errors.New("messaging: conversation not found")
	ErrActorNotFound        = errors.New("messaging: actor not found")
	ErrNotParticipant       = errors.New("messaging: actor is not a participant in the conversation")
	ErrInvalidParticipant   = errors.New("messaging: invalid counterparty")
	ErrConflict             = errors.New("messaging: conflicting conversation state")
	ErrTypeMismatch         = errors.New("messaging: conversation type does not match the requested operation")
	ErrEmptyMessage         = errors.New("messaging: empty message (no content or attachments)")
	ErrPrivateRoster        = errors.New("messaging: private conversations keep exactly two participants")
)
