package messaging

import "time"

// Participant captures an actor's membership in a conversation.
// Primary key: (ConversationID, Ref.Kind, Ref.ID).
//
// LastReadAt is the sole read-state signal for group conversations; private
// conversations additionally track read state per message (see PrivateMessage).
type Participant struct {
	ConversationID string `db:"conversation_id"`
	Ref            ActorRef
	JoinedAt       time.Time  `db:"joined_at"`
	LastReadAt     *time.Time `db:"last_read_at"`
}

// LastReadOrEpoch treats a never-read participant as having read at epoch,
// so every message counts as unread.
func (p Participant) LastReadOrEpoch() time.Time {
	if p.LastReadAt == nil {
		return time.Time{}
	}
	return *p.LastReadAt
}
