package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	messaging "backchat/internal/pkg/messaging/application/domain"
	repository "backchat/internal/pkg/messaging/persistence/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgMessageRepository persists the two parallel message tables. Each insert
// also bumps the owning conversation's updated_at in the same transaction so
// listing order tracks activity.
type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

var _ repository.MessageRepository = (*PgMessageRepository)(nil)

func (r *PgMessageRepository) InsertGroup(ctx context.Context, m messaging.GroupMessage) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgMessageRepository: nil pool")
	}
	attachments, err := marshalAttachments(m.Attachments)
	if err != nil {
		return "", err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO messaging.group_message (
			id, conversation_id, sender_id, sender_type, sender_name, content, attachments, has_attachments, created_at
		) VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7::jsonb, $8, $9)
		RETURNING id::text
	`, m.ID, m.ConversationID, m.Sender.ID, m.Sender.Kind, m.SenderName, m.Content, attachments, m.HasAttachments, m.CreatedAt).Scan(&id)
	if err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE messaging.conversation SET updated_at = $2 WHERE id = $1::uuid`,
		m.ConversationID, m.CreatedAt,
	); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (r *PgMessageRepository) InsertPrivate(ctx context.Context, m messaging.PrivateMessage) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgMessageRepository: nil pool")
	}
	attachments, err := marshalAttachments(m.Attachments)
	if err != nil {
		return "", err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO messaging.private_message (
			id, conversation_id, sender_id, sender_type, sender_name, content, attachments, has_attachments, is_read, read_at, created_at
		) VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11)
		RETURNING id::text
	`, m.ID, m.ConversationID, m.Sender.ID, m.Sender.Kind, m.SenderName, m.Content, attachments, m.HasAttachments, m.IsRead, m.ReadAt, m.CreatedAt).Scan(&id)
	if err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE messaging.conversation SET updated_at = $2 WHERE id = $1::uuid`,
		m.ConversationID, m.CreatedAt,
	); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (r *PgMessageRepository) ListGroup(ctx context.Context, conversationID string, limit, offset int) ([]messaging.GroupMessage, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	limit, offset = clampPage(limit, offset)
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id, sender_type, sender_name, content, attachments, has_attachments, created_at
		FROM messaging.group_message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []messaging.GroupMessage
	for rows.Next() {
		m, err := scanGroupMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

func (r *PgMessageRepository) ListPrivate(ctx context.Context, conversationID string, limit, offset int) ([]messaging.PrivateMessage, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	limit, offset = clampPage(limit, offset)
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id, sender_type, sender_name, content, attachments, has_attachments, is_read, read_at, created_at
		FROM messaging.private_message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []messaging.PrivateMessage
	for rows.Next() {
		m, err := scanPrivateMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

func (r *PgMessageRepository) LatestGroup(ctx context.Context, conversationID string) (*messaging.GroupMessage, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, conversation_id::text, sender_id, sender_type, sender_name, content, attachments, has_attachments, created_at
		FROM messaging.group_message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at DESC
		LIMIT 1
	`, conversationID)
	m, err := scanGroupMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *PgMessageRepository) LatestPrivate(ctx context.Context, conversationID string) (*messaging.PrivateMessage, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessageRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, conversation_id::text, sender_id, sender_type, sender_name, content, attachments, has_attachments, is_read, read_at, created_at
		FROM messaging.private_message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at DESC
		LIMIT 1
	`, conversationID)
	m, err := scanPrivateMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *PgMessageRepository) CountGroupUnread(ctx context.Context, conversationID string, reader messaging.ActorRef, since time.Time) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageRepository: nil pool")
	}
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messaging.group_message
		WHERE conversation_id = $1::uuid
		  AND NOT (sender_id = $2 AND sender_type = $3)
		  AND created_at > $4
	`, conversationID, reader.ID, reader.Kind, since).Scan(&n)
	return n, err
}

func (r *PgMessageRepository) CountPrivateUnread(ctx context.Context, conversationID string, reader messaging.ActorRef) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageRepository: nil pool")
	}
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messaging.private_message
		WHERE conversation_id = $1::uuid
		  AND is_read = FALSE
		  AND NOT (sender_id = $2 AND sender_type = $3)
	`, conversationID, reader.ID, reader.Kind).Scan(&n)
	return n, err
}

func (r *PgMessageRepository) MarkPrivateRead(ctx context.Context, conversationID string, reader messaging.ActorRef, at time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessageRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE messaging.private_message
		SET is_read = TRUE, read_at = $4
		WHERE conversation_id = $1::uuid
		  AND is_read = FALSE
		  AND NOT (sender_id = $2 AND sender_type = $3)
	`, conversationID, reader.ID, reader.Kind, at)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func marshalAttachments(attachments []messaging.Attachment) (*string, error) {
	if len(attachments) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(attachments)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func scanGroupMessage(row pgx.Row) (*messaging.GroupMessage, error) {
	var (
		m           messaging.GroupMessage
		attachments *string
	)
	err := row.Scan(&m.ID, &m.ConversationID, &m.Sender.ID, &m.Sender.Kind, &m.SenderName, &m.Content, &attachments, &m.HasAttachments, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if attachments != nil {
		if err := json.Unmarshal([]byte(*attachments), &m.Attachments); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func scanPrivateMessage(row pgx.Row) (*messaging.PrivateMessage, error) {
	var (
		m           messaging.PrivateMessage
		attachments *string
	)
	err := row.Scan(&m.ID, &m.ConversationID, &m.Sender.ID, &m.Sender.Kind, &m.SenderName, &m.Content, &attachments, &m.HasAttachments, &m.IsRead, &m.ReadAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if attachments != nil {
		if err := json.Unmarshal([]byte(*attachments), &m.Attachments); err != nil {
			return nil, err
		}
	}
	return &m, nil
}
