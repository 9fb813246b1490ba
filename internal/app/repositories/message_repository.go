package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/domain"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/dberrors"
)

// MessageRepository handles database operations for direct messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

var messageColumns = []string{"id", "sender_id", "receiver_id", "message_type", "text", "image_url", "created_at", "is_read"}

func scanMessage(row pgx.Row) (domain.Message, error) {
	var m domain.Message
	var createdAt *time.Time
	if err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Type, &m.Text, &m.ImageURL, &createdAt, &m.IsRead); err != nil {
		return domain.Message{}, err
	}
	if createdAt != nil {
		m.CreatedAt = *createdAt
	}
	return m, nil
}

func (r *MessageRepository) query(ctx context.Context, builder squirrel.SelectBuilder) ([]domain.Message, error) {
	sqlStr, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Direction returns every message sent from sender to receiver, oldest first
func (r *MessageRepository) Direction(ctx context.Context, senderID, receiverID string) ([]domain.Message, error) {
	return r.query(ctx, squirrel.Select(messageColumns...).
		From("messages").
		Where(squirrel.Eq{"sender_id": senderID, "receiver_id": receiverID}).
		OrderBy("created_at ASC NULLS LAST", "id"))
}

// Inbound returns every message addressed to receiver
func (r *MessageRepository) Inbound(ctx context.Context, receiverID string) ([]domain.Message, error) {
	return r.query(ctx, squirrel.Select(messageColumns...).
		From("messages").
		Where(squirrel.Eq{"receiver_id": receiverID}).
		OrderBy("created_at DESC NULLS FIRST", "id"))
}

// Create inserts m and fills its id and server timestamp
func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, message_type, text, image_url, created_at, is_read)
		VALUES ($1, $2, $3, $4, $5, NOW(), FALSE)
		RETURNING id, created_at`,
		m.SenderID, m.ReceiverID, string(m.Type), m.Text, m.ImageURL,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating message: %w", err)
	}
	m.IsRead = false
	return nil
}

// GetByID retrieves a message by its ID
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	sqlStr, args, err := squirrel.Select(messageColumns...).From("messages").
		Where(squirrel.Eq{"id": id}).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, err
	}
	m, err := scanMessage(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if dberrors.IsNoRows(err) || dberrors.IsInvalidText(err) {
			return nil, apperrors.NewResourceNotFoundError("message not found")
		}
		return nil, fmt.Errorf("error retrieving message: %w", err)
	}
	return &m, nil
}

// Delete removes a message sent by senderID; false when none matched
func (r *MessageRepository) Delete(ctx context.Context, id, senderID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1 AND sender_id = $2`, id, senderID)
	if err != nil {
		return false, fmt.Errorf("error deleting message: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkRead flags the given messages read when they were sent by senderID to
// readerID, and returns the ids actually changed.
func (r *MessageRepository) MarkRead(ctx context.Context, readerID, senderID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE AND id = ANY($3::uuid[])
		RETURNING id`,
		readerID, senderID, ids)
	if err != nil {
		return nil, fmt.Errorf("error marking messages read: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// MarkThreadRead flags every unread message from senderID to readerID read
func (r *MessageRepository) MarkThreadRead(ctx context.Context, readerID, senderID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE
		RETURNING id`,
		readerID, senderID)
	if err != nil {
		return nil, fmt.Errorf("error marking thread read: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
