package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/dberrors"
)

// EventQuery filters the event listing
type EventQuery struct {
	// From hides events starting before it; zero lists every active event
	From  time.Time
	Limit uint64
}

// EventRepository handles database operations for campus events
type EventRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *EventRepository) selectEvents() squirrel.SelectBuilder {
	return r.sb.Select(
		"id", "title", "description", "hosted_by", "location", "image_url",
		"start_date", "start_time", "status", "COALESCE(created_by::text, '')", "created_at",
	).From("events")
}

func scanEvent(row pgx.Row) (models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.HostedBy, &e.Location, &e.ImageURL,
		&e.StartDate, &e.StartTime, &e.Status, &e.CreatedBy, &e.CreatedAt)
	return e, err
}

// listQuery builds the active event listing, soonest first
func (r *EventRepository) listQuery(q EventQuery) squirrel.SelectBuilder {
	sb := r.selectEvents().
		Where(squirrel.Eq{"status": string(models.EventActive)}).
		OrderBy("start_date ASC", "created_at DESC")
	if !q.From.IsZero() {
		sb = sb.Where(squirrel.GtOrEq{"start_date": q.From})
	}
	if q.Limit > 0 {
		sb = sb.Limit(q.Limit)
	}
	return sb
}

// List returns active events matching q
func (r *EventRepository) List(ctx context.Context, q EventQuery) ([]models.Event, error) {
	sql, args, err := r.listQuery(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID retrieves an active event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	sql, args, err := r.selectEvents().
		Where(squirrel.Eq{"id": id, "status": string(models.EventActive)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	e, err := scanEvent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) || dberrors.IsInvalidText(err) {
			return nil, apperrors.NewResourceNotFoundError("event not found")
		}
		return nil, fmt.Errorf("error retrieving event: %w", err)
	}
	return &e, nil
}

// Create inserts an event and fills its id and creation time
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	var createdBy *string
	if e.CreatedBy != "" {
		createdBy = &e.CreatedBy
	}
	if e.Status == "" {
		e.Status = models.EventActive
	}

	sql, args, err := r.sb.Insert("events").
		Columns("title", "description", "hosted_by", "location", "image_url",
			"start_date", "start_time", "status", "created_by").
		Values(e.Title, e.Description, e.HostedBy, e.Location, e.ImageURL,
			e.StartDate, e.StartTime, string(e.Status), createdBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewValidationError("createdBy", "unknown administrator")
		}
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}
