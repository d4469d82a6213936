package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	messaging "backchat/internal/pkg/messaging/application/domain"
	repository "backchat/internal/pkg/messaging/persistence/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres SQLSTATE for unique-index conflicts.
const uniqueViolation = "23505"

type PgConversationRepository struct {
	pool *pgxpool.Pool
}

func NewPgConversationRepository(pool *pgxpool.Pool) *PgConversationRepository {
	return &PgConversationRepository{pool: pool}
}

var _ repository.ConversationRepository = (*PgConversationRepository)(nil)

func (r *PgConversationRepository) CreateWithParticipants(ctx context.Context, c messaging.Conversation, participants []messaging.Participant) error {
	if r == nil || r.pool == nil {
		return errors.New("PgConversationRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO messaging.conversation (id, name, type, pair_key, created_by_id, created_by_type, created_at, updated_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, c.Type, c.PairKey, c.CreatedBy.ID, c.CreatedBy.Kind, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return translateConflict(err)
	}

	for _, p := range participants {
		_, err = tx.Exec(ctx, `
			INSERT INTO messaging.participant (conversation_id, participant_id, participant_type, joined_at, last_read_at)
			VALUES ($1::uuid, $2, $3, $4, $5)
		`, p.ConversationID, p.Ref.ID, p.Ref.Kind, p.JoinedAt, p.LastReadAt)
		if err != nil {
			return translateConflict(err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PgConversationRepository) GetByID(ctx context.Context, id string) (*messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgConversationRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, name, type, pair_key, created_by_id, created_by_type, created_at, updated_at
		FROM messaging.conversation
		WHERE id = $1::uuid
	`, id)
	c, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, messaging.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PgConversationRepository) FindPrivateByPairKey(ctx context.Context, pairKey string) (*messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgConversationRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, name, type, pair_key, created_by_id, created_by_type, created_at, updated_at
		FROM messaging.conversation
		WHERE type = 'private' AND pair_key = $1
	`, pairKey)
	c, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PgConversationRepository) ListForActor(ctx context.Context, ref messaging.ActorRef) ([]messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgConversationRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.name, c.type, c.pair_key, c.created_by_id, c.created_by_type, c.created_at, c.updated_at
		FROM messaging.conversation c
		JOIN messaging.participant p ON p.conversation_id = c.id
		WHERE p.participant_id = $1 AND p.participant_type = $2
		ORDER BY c.updated_at DESC
	`, ref.ID, ref.Kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []messaging.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *c)
	}
	return convs, rows.Err()
}

func (r *PgConversationRepository) ListParticipants(ctx context.Context, conversationID string) ([]messaging.Participant, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgConversationRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT conversation_id::text, participant_id, participant_type, joined_at, last_read_at
		FROM messaging.participant
		WHERE conversation_id = $1::uuid
		ORDER BY joined_at
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []messaging.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, *p)
	}
	return parts, rows.Err()
}

func (r *PgConversationRepository) GetParticipant(ctx context.Context, conversationID string, ref messaging.ActorRef) (*messaging.Participant, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgConversationRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT conversation_id::text, participant_id, participant_type, joined_at, last_read_at
		FROM messaging.participant
		WHERE conversation_id = $1::uuid AND participant_id = $2 AND participant_type = $3
	`, conversationID, ref.ID, ref.Kind)
	p, err := scanParticipant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PgConversationRepository) AddParticipants(ctx context.Context, conversationID string, participants []messaging.Participant) error {
	if r == nil || r.pool == nil {
		return errors.New("PgConversationRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, p := range participants {
		_, err = tx.Exec(ctx, `
			INSERT INTO messaging.participant (conversation_id, participant_id, participant_type, joined_at, last_read_at)
			VALUES ($1::uuid, $2, $3, $4, NULL)
			ON CONFLICT (conversation_id, participant_id, participant_type) DO NOTHING
		`, conversationID, p.Ref.ID, p.Ref.Kind, p.JoinedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PgConversationRepository) SetLastReadAt(ctx context.Context, conversationID string, ref messaging.ActorRef, at time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New("PgConversationRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE messaging.participant
		SET last_read_at = $4
		WHERE conversation_id = $1::uuid AND participant_id = $2 AND participant_type = $3
	`, conversationID, ref.ID, ref.Kind, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanConversation(row pgx.Row) (*messaging.Conversation, error) {
	var (
		c       messaging.Conversation
		pairKey *string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Type, &pairKey, &c.CreatedBy.ID, &c.CreatedBy.Kind, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.PairKey = pairKey
	return &c, nil
}

func scanParticipant(row pgx.Row) (*messaging.Participant, error) {
	var p messaging.Participant
	err := row.Scan(&p.ConversationID, &p.Ref.ID, &p.Ref.Kind, &p.JoinedAt, &p.LastReadAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func translateConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %v", messaging.ErrConflict, err)
	}
	return err
}
