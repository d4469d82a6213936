package messaging

import (
	"fmt"
	"strings"
)

// ActorKind distinguishes the two identity spaces that share conversations.
// Employee and admin IDs are opaque and may collide across kinds, so an actor
// is only fully identified by the (kind, id) pair.
type ActorKind string

const (
	ActorKindEmployee ActorKind = "employee"
	ActorKindAdmin    ActorKind = "admin"
)

// SentinelAdmin is the counterparty token that means "the administrative side"
// of a private conversation; it is resolved to a concrete admin at creation time.
const SentinelAdmin = "admin"

// ParseActorKind validates a wire-level kind string.
func ParseActorKind(s string) (ActorKind, error) {
	switch ActorKind(strings.ToLower(strings.TrimSpace(s))) {
	case ActorKindEmployee:
		return ActorKindEmployee, nil
	case ActorKindAdmin:
		return ActorKindAdmin, nil
	}
	return "", fmt.Errorf("%w: unknown actor type %q", ErrInvalidParticipant, s)
}

// ActorRef is the tagged identity pair used everywhere an actor is referenced.
type ActorRef struct {
	Kind ActorKind
	ID   string
}

func (a ActorRef) String() string {
	return string(a.Kind) + ":" + a.ID
}

func (a ActorRef) Equal(b ActorRef) bool {
	return a.Kind == b.Kind && a.ID == b.ID
}

// PairKey derives the order-independent identity of a private conversation's
// participant pair. It backs the unique index that prevents two concurrent
// get-or-create calls from minting two conversations for the same pair.
func PairKey(a, b ActorRef) string {
	x, y := a.String(), b.String()
	if x > y {
		x, y = y, x
	}
	return x + "|" + y
}
