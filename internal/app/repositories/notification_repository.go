package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/db"
	"github.com/yigit/unilink/internal/pkg/helpers"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func insertNotification(ctx context.Context, q db.Querier, n *models.Notification) error {
	var studentID, relatedID *string
	if n.StudentID != "" {
		studentID = &n.StudentID
	}
	if n.RelatedID != "" {
		relatedID = &n.RelatedID
	}

	err := q.QueryRow(ctx, `
		INSERT INTO notifications (recipient_type, lecturer_id, student_id, message_text,
			message_description, related_type, related_id, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, timestamp`,
		string(n.RecipientType), n.LecturerID, studentID, n.MessageText,
		n.MessageDescription, n.RelatedType, relatedID, n.IsRead,
	).Scan(&n.ID, &n.Timestamp)
	if err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// Create inserts a notification and fills its id and timestamp
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return insertNotification(ctx, r.db, n)
}

func (r *NotificationRepository) lecturerScope() squirrel.Eq {
	return squirrel.Eq{"recipient_type": string(models.RecipientLecturer)}
}

// ListForLecturer returns a page of the lecturer's notifications, newest first, and the total count
func (r *NotificationRepository) ListForLecturer(ctx context.Context, lecturerID string, page helpers.Page) ([]models.Notification, int64, error) {
	where := squirrel.And{r.lecturerScope(), squirrel.Eq{"lecturer_id": lecturerID}}

	countSQL, countArgs, err := squirrel.Select("COUNT(*)").From("notifications").Where(where).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting notifications: %w", err)
	}
	if total == 0 {
		return []models.Notification{}, 0, nil
	}

	sqlStr, args, err := squirrel.Select(
		"id", "recipient_type", "lecturer_id", "COALESCE(student_id::text, '')", "message_text",
		"message_description", "related_type", "COALESCE(related_id::text, '')", "is_read", "timestamp",
	).
		From("notifications").
		Where(where).
		OrderBy("timestamp DESC", "id").
		Limit(page.Limit()).
		Offset(page.Offset()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	out := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientType, &n.LecturerID, &n.StudentID, &n.MessageText,
			&n.MessageDescription, &n.RelatedType, &n.RelatedID, &n.IsRead, &n.Timestamp); err != nil {
			return nil, 0, fmt.Errorf("error scanning notification: %w", err)
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// CountUnread returns the number of unread notifications for the lecturer
func (r *NotificationRepository) CountUnread(ctx context.Context, lecturerID string) (int, error) {
	sqlStr, args, err := squirrel.Select("COUNT(*)").From("notifications").
		Where(r.lecturerScope()).
		Where(squirrel.Eq{"lecturer_id": lecturerID, "is_read": false}).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead marks one of the lecturer's notifications read; false when none matched
func (r *NotificationRepository) MarkRead(ctx context.Context, id, lecturerID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND lecturer_id = $2 AND recipient_type = $3`,
		id, lecturerID, string(models.RecipientLecturer))
	if err != nil {
		return false, fmt.Errorf("error marking notification read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAllRead marks every unread notification of the lecturer read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, lecturerID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE lecturer_id = $1 AND recipient_type = $2 AND is_read = FALSE`,
		lecturerID, string(models.RecipientLecturer))
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes one of the lecturer's notifications; false when none matched
func (r *NotificationRepository) Delete(ctx context.Context, id, lecturerID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM notifications
		WHERE id = $1 AND lecturer_id = $2 AND recipient_type = $3`,
		id, lecturerID, string(models.RecipientLecturer))
	if err != nil {
		return false, fmt.Errorf("error deleting notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
