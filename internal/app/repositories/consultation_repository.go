package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/db"
	"github.com/yigit/unilink/internal/domain"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/dberrors"
	"github.com/yigit/unilink/internal/pkg/logger"
)

// ConsultationQuery filters a lecturer's consultation list
type ConsultationQuery struct {
	Status *domain.Status
	Search string // matched against student name, student institutional id and topic
	Limit  uint64
}

// ConsultationWithStudent is a consultation joined with its requesting student
type ConsultationWithStudent struct {
	domain.Consultation
	Student *models.Student
}

// ConsultationRepository handles database operations for consultations
type ConsultationRepository struct {
	db *pgxpool.Pool
}

// NewConsultationRepository creates a new ConsultationRepository
func NewConsultationRepository(db *pgxpool.Pool) *ConsultationRepository {
	return &ConsultationRepository{db: db}
}

var consultationColumns = []string{
	"c.id", "c.student_id", "c.lecturer_id", "c.topic", "c.description", "c.meeting_type",
	"c.preferred_dates", "c.priority", "c.status", "c.session_status", "c.scheduled_date_time",
	"c.location", "c.lecturer_notes", "c.decline_reason", "c.created_at", "c.accepted_at",
	"c.session_start_time", "c.session_end_time",
}

var studentColumns = []string{
	"s.id", "s.email", "s.name", "s.institutional_id", "s.degree", "s.profile_image", "s.created_at",
}

func consultationDest(c *domain.Consultation) []any {
	return []any{
		&c.ID, &c.StudentID, &c.LecturerID, &c.Topic, &c.Description, &c.Mode,
		&c.PreferredDates, &c.Priority, &c.Status, &c.SessionStatus, &c.ScheduledAt,
		&c.Location, &c.LecturerNotes, &c.DeclineReason, &c.CreatedAt, &c.AcceptedAt,
		&c.StartedAt, &c.EndedAt,
	}
}

// nullableStudent scans a LEFT JOINed student row
type nullableStudent struct {
	ID, Email, Name, InstitutionalID, Degree, ProfileImage *string
	CreatedAt                                               *time.Time
}

func (n *nullableStudent) dest() []any {
	return []any{&n.ID, &n.Email, &n.Name, &n.InstitutionalID, &n.Degree, &n.ProfileImage, &n.CreatedAt}
}

func (n *nullableStudent) model() *models.Student {
	if n.ID == nil {
		return nil
	}
	s := &models.Student{ID: *n.ID}
	if n.Email != nil {
		s.Email = *n.Email
	}
	if n.Name != nil {
		s.Name = *n.Name
	}
	if n.InstitutionalID != nil {
		s.InstitutionalID = *n.InstitutionalID
	}
	if n.Degree != nil {
		s.Degree = *n.Degree
	}
	if n.ProfileImage != nil {
		s.ProfileImage = *n.ProfileImage
	}
	if n.CreatedAt != nil {
		s.CreatedAt = *n.CreatedAt
	}
	return s
}

func (r *ConsultationRepository) selectWithStudent() squirrel.SelectBuilder {
	cols := append(append([]string{}, consultationColumns...), studentColumns...)
	return squirrel.Select(cols...).
		From("consultations c").
		LeftJoin("students s ON s.id = c.student_id").
		PlaceholderFormat(squirrel.Dollar)
}

// ListForLecturer returns the lecturer's consultations, newest first
func (r *ConsultationRepository) ListForLecturer(ctx context.Context, lecturerID string, q ConsultationQuery) ([]ConsultationWithStudent, error) {
	builder := r.selectWithStudent().
		Where(squirrel.Eq{"c.lecturer_id": lecturerID}).
		OrderBy("c.created_at DESC", "c.id")

	if q.Status != nil {
		builder = builder.Where(squirrel.Eq{"c.status": string(*q.Status)})
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"s.name": pattern},
			squirrel.ILike{"s.institutional_id": pattern},
			squirrel.ILike{"c.topic": pattern},
		})
	}
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit)
	}

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building consultation list SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing consultations: %w", err)
	}
	defer rows.Close()

	out := make([]ConsultationWithStudent, 0)
	for rows.Next() {
		var item ConsultationWithStudent
		var student nullableStudent
		if err := rows.Scan(append(consultationDest(&item.Consultation), student.dest()...)...); err != nil {
			return nil, fmt.Errorf("error scanning consultation: %w", err)
		}
		item.Student = student.model()
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error: %w", err)
	}
	return out, nil
}

// CountByStatus returns the number of the lecturer's consultations per status
func (r *ConsultationRepository) CountByStatus(ctx context.Context, lecturerID string) (map[domain.Status]int, error) {
	sqlStr, args, err := squirrel.Select("status", "COUNT(*)").
		From("consultations").
		Where(squirrel.Eq{"lecturer_id": lecturerID}).
		GroupBy("status").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting consultations: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int, len(domain.Statuses))
	for _, s := range domain.Statuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status domain.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("error scanning consultation count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// GetByID returns a consultation with its student
func (r *ConsultationRepository) GetByID(ctx context.Context, id string) (*ConsultationWithStudent, error) {
	sqlStr, args, err := r.selectWithStudent().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var item ConsultationWithStudent
	var student nullableStudent
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(append(consultationDest(&item.Consultation), student.dest()...)...)
	if err != nil {
		if dberrors.IsNoRows(err) || dberrors.IsInvalidText(err) {
			return nil, apperrors.NewResourceNotFoundError("consultation not found")
		}
		return nil, fmt.Errorf("error getting consultation: %w", err)
	}
	item.Student = student.model()
	return &item, nil
}

// Transition persists next if the stored status still equals from. When
// notification is non-nil it is inserted in the same transaction. A status
// that moved underneath the caller yields ErrConflict.
func (r *ConsultationRepository) Transition(ctx context.Context, from domain.Status, next domain.Consultation, notification *models.Notification) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sqlStr, args, err := squirrel.Update("consultations").
			Set("status", string(next.Status)).
			Set("session_status", string(next.Session())).
			Set("meeting_type", string(next.Mode)).
			Set("scheduled_date_time", next.ScheduledAt).
			Set("location", next.Location).
			Set("lecturer_notes", next.LecturerNotes).
			Set("decline_reason", next.DeclineReason).
			Set("accepted_at", next.AcceptedAt).
			Set("session_start_time", next.StartedAt).
			Set("session_end_time", next.EndedAt).
			Where(squirrel.Eq{"id": next.ID, "lecturer_id": next.LecturerID, "status": string(from)}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, sqlStr, args...)
		if err != nil {
			return fmt.Errorf("error updating consultation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewCustomError(apperrors.ErrConflict, "consultation changed since it was read").
				WithDetails(map[string]any{"id": next.ID, "expectedStatus": string(from)})
		}

		if notification != nil {
			if err := insertNotification(ctx, tx, notification); err != nil {
				return err
			}
		}
		return nil
	})
}

// escapeLike makes user input literal inside a LIKE pattern
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
