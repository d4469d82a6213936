package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	directory "backchat/internal/pkg/directory/port"
	messaging "backchat/internal/pkg/messaging/application/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// AdminDisplayName is the fixed label every admin renders as; individual
	// admin identities are not exposed to staff.
	AdminDisplayName = "Management"

	// employeeFallbackName is used when neither the employee row nor its
	// profile blob yields a usable name.
	employeeFallbackName = "Team Member"
)

// PgDirectory resolves actors against the back office's own identity tables.
type PgDirectory struct {
	pool *pgxpool.Pool
}

func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

var _ directory.Directory = (*PgDirectory)(nil)

func (d *PgDirectory) ResolveActor(ctx context.Context, ref messaging.ActorRef) (directory.Profile, error) {
	if d == nil || d.pool == nil {
		return directory.Profile{}, errors.New("PgDirectory: nil pool")
	}
	if ref.Kind == messaging.ActorKindAdmin {
		return directory.Profile{DisplayName: AdminDisplayName}, nil
	}

	var (
		firstName   *string
		lastName    *string
		profileData *string
		imageRef    *string
	)
	err := d.pool.QueryRow(ctx, `
		SELECT first_name, last_name, profile_data, profile_image
		FROM backoffice.employee
		WHERE id = $1
	`, ref.ID).Scan(&firstName, &lastName, &profileData, &imageRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return directory.Profile{}, messaging.ErrActorNotFound
	}
	if err != nil {
		return directory.Profile{}, err
	}

	p := directory.Profile{DisplayName: employeeDisplayName(firstName, lastName, profileData)}
	if imageRef != nil {
		p.ProfileImageRef = *imageRef
	}
	return p, nil
}

func (d *PgDirectory) FindDefaultAdmin(ctx context.Context) (string, error) {
	if d == nil || d.pool == nil {
		return "", errors.New("PgDirectory: nil pool")
	}
	var id string
	err := d.pool.QueryRow(ctx, `
		SELECT id
		FROM backoffice.admin_user
		WHERE is_active = TRUE
		ORDER BY created_at
		LIMIT 1
	`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", messaging.ErrActorNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (d *PgDirectory) EmployeeExists(ctx context.Context, id string) (bool, error) {
	if d == nil || d.pool == nil {
		return false, errors.New("PgDirectory: nil pool")
	}
	var exists bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM backoffice.employee WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

// employeeDisplayName applies the display-name fallback chain: direct
// first/last columns, then the profile-data blob, then the generic label.
func employeeDisplayName(firstName, lastName, profileData *string) string {
	if name := joinName(deref(firstName), deref(lastName)); name != "" {
		return name
	}
	if profileData != nil {
		var blob struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		}
		if err := json.Unmarshal([]byte(*profileData), &blob); err == nil {
			if name := joinName(blob.FirstName, blob.LastName); name != "" {
				return name
			}
		}
	}
	return employeeFallbackName
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
