package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/dberrors"
)

// CommunityRepository handles database operations for communities, their
// members, their message feeds and creation requests
type CommunityRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *CommunityRepository) selectCommunities() squirrel.SelectBuilder {
	return r.sb.Select(
		"c.id", "c.name", "c.type", "c.description", "c.image_url", "c.created_at",
		"(SELECT COUNT(*) FROM community_members m WHERE m.community_id = c.id)",
	).From("communities c")
}

func scanCommunity(row pgx.Row) (models.Community, error) {
	var c models.Community
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Description, &c.ImageURL, &c.CreatedAt, &c.MemberCount)
	return c, err
}

// ListForLecturer returns the communities the lecturer belongs to, by name
func (r *CommunityRepository) ListForLecturer(ctx context.Context, lecturerID string) ([]models.Community, error) {
	sql, args, err := r.selectCommunities().
		Join("community_members cm ON cm.community_id = c.id").
		Where(squirrel.Eq{"cm.lecturer_id": lecturerID}).
		OrderBy("c.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Community, 0)
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning community: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID retrieves a community by ID
func (r *CommunityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	sql, args, err := r.selectCommunities().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	c, err := scanCommunity(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) || dberrors.IsInvalidText(err) {
			return nil, apperrors.NewResourceNotFoundError("community not found")
		}
		return nil, fmt.Errorf("error retrieving community: %w", err)
	}
	return &c, nil
}

// Create inserts a community, used by seeding
func (r *CommunityRepository) Create(ctx context.Context, c *models.Community) error {
	sql, args, err := r.sb.Insert("communities").
		Columns("name", "type", "description", "image_url").
		Values(c.Name, c.Type, c.Description, c.ImageURL).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "") {
			return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "community already exists")
		}
		return fmt.Errorf("error creating community: %w", err)
	}
	return nil
}

// AddMember adds a lecturer to a community; adding twice is a no-op
func (r *CommunityRepository) AddMember(ctx context.Context, communityID, lecturerID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO community_members (community_id, lecturer_id)
		VALUES ($1, $2)
		ON CONFLICT (community_id, lecturer_id) DO NOTHING`,
		communityID, lecturerID)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("community or lecturer not found")
		}
		return fmt.Errorf("error adding community member: %w", err)
	}
	return nil
}

// IsMember reports whether the lecturer belongs to the community
func (r *CommunityRepository) IsMember(ctx context.Context, communityID, lecturerID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM community_members WHERE community_id::text = $1 AND lecturer_id::text = $2)`,
		communityID, lecturerID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("error checking membership: %w", err)
	}
	return ok, nil
}

// Messages returns the community feed in timestamp order. A zero limit returns everything.
func (r *CommunityRepository) Messages(ctx context.Context, communityID string, limit uint64) ([]models.CommunityMessage, error) {
	inner := r.sb.Select("id", "community_id", "user_id", "user_name", "type", "message_text", "file_url", "file_name", "timestamp").
		From("community_messages").
		Where(squirrel.Eq{"community_id": communityID}).
		OrderBy("timestamp DESC", "id DESC")
	if limit > 0 {
		inner = inner.Limit(limit)
	}
	sql, args, err := r.sb.Select("*").FromSelect(inner, "feed").OrderBy("timestamp ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying community messages: %w", err)
	}
	defer rows.Close()

	out := make([]models.CommunityMessage, 0)
	for rows.Next() {
		var m models.CommunityMessage
		if err := rows.Scan(&m.ID, &m.CommunityID, &m.UserID, &m.UserName, &m.Type, &m.Text, &m.FileURL, &m.FileName, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning community message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateMessage appends a message to a community feed
func (r *CommunityRepository) CreateMessage(ctx context.Context, m *models.CommunityMessage) error {
	sql, args, err := r.sb.Insert("community_messages").
		Columns("community_id", "user_id", "user_name", "type", "message_text", "file_url", "file_name").
		Values(m.CommunityID, m.UserID, m.UserName, string(m.Type), m.Text, m.FileURL, m.FileName).
		Suffix("RETURNING id, timestamp").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.Timestamp); err != nil {
		return fmt.Errorf("error creating community message: %w", err)
	}
	return nil
}

// CreateRequest stores a community creation request
func (r *CommunityRepository) CreateRequest(ctx context.Context, req *models.CommunityRequest) error {
	if req.Status == "" {
		req.Status = models.CommunityRequestPending
	}
	sql, args, err := r.sb.Insert("community_requests").
		Columns("lecturer_id", "lecturer_name", "name", "type", "description", "justification", "subject", "status").
		Values(req.LecturerID, req.LecturerName, req.Name, req.Type, req.Description, req.Justification, req.Subject, string(req.Status)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&req.ID, &req.CreatedAt); err != nil {
		return fmt.Errorf("error creating community request: %w", err)
	}
	return nil
}

// ListRequests returns the lecturer's creation requests, newest first
func (r *CommunityRepository) ListRequests(ctx context.Context, lecturerID string) ([]models.CommunityRequest, error) {
	sql, args, err := r.sb.Select("id", "lecturer_id", "lecturer_name", "name", "type", "description",
		"justification", "subject", "status", "created_at").
		From("community_requests").
		Where(squirrel.Eq{"lecturer_id": lecturerID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying community requests: %w", err)
	}
	defer rows.Close()

	out := make([]models.CommunityRequest, 0)
	for rows.Next() {
		var q models.CommunityRequest
		if err := rows.Scan(&q.ID, &q.LecturerID, &q.LecturerName, &q.Name, &q.Type, &q.Description,
			&q.Justification, &q.Subject, &q.Status, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning community request: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
