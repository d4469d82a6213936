package directory

import (
	"context"

	messaging "backchat/internal/pkg/messaging/application/domain"
)

// Profile is what the messaging core needs to render an actor: a display name
// and an opaque reference to a profile image in external storage.
type Profile struct {
	DisplayName     string
	ProfileImageRef string
}

// Directory is the narrow contract against the back office's identity tables.
// The messaging core never reads employee or admin rows directly.
type Directory interface {
	// ResolveActor returns messaging.ErrActorNotFound for an unknown actor.
	ResolveActor(ctx context.Context, ref messaging.ActorRef) (Profile, error)

	// FindDefaultAdmin picks the admin that sentinel counterparty tokens
	// resolve to; messaging.ErrActorNotFound when no active admin exists.
	FindDefaultAdmin(ctx context.Context) (string, error)

	EmployeeExists(ctx context.Context, id string) (bool, error)
}
