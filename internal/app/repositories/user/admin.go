package user

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

// AdminRepository handles administrator directory lookups
type AdminRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{
		db: db,
		sb: newBuilder(),
	}
}

var adminColumns = []string{"id", "email", "name", "institutional_id", "department", "university_id", "created_at"}

func scanAdmin(row pgx.Row) (models.Admin, error) {
	var a models.Admin
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.InstitutionalID, &a.Department, &a.UniversityID, &a.CreatedAt)
	return a, err
}

func (r *AdminRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]models.Admin, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build admin query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying admins: %w", err)
	}
	defer rows.Close()

	out := make([]models.Admin, 0)
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning admin: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID retrieves an administrator by document id
func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	sql, args, err := r.sb.Select(adminColumns...).From("admins").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get admin query: %w", err)
	}
	a, err := scanAdmin(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) || dberrors.IsInvalidText(err) {
			return nil, apperrors.NewResourceNotFoundError("admin not found")
		}
		return nil, fmt.Errorf("error retrieving admin: %w", err)
	}
	return &a, nil
}

// GetByIDs resolves many administrators at once; missing ids are simply absent
func (r *AdminRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Admin, error) {
	out := make(map[string]models.Admin, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := r.list(ctx, r.sb.Select(adminColumns...).From("admins").Where("id::text = ANY(?)", ids))
	if err != nil {
		return nil, err
	}
	for _, a := range list {
		out[a.ID] = a
	}
	return out, nil
}

// Search finds administrators by name, email or institutional id
func (r *AdminRepository) Search(ctx context.Context, query string, limit int) ([]models.Admin, error) {
	return r.list(ctx, r.sb.Select(adminColumns...).From("admins").
		Where(searchFilter(query)).
		OrderBy("name").
		Limit(clampLimit(limit)))
}

// Count returns the number of administrators
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting admins: %w", err)
	}
	return n, nil
}

// Create inserts an administrator, used by seeding
func (r *AdminRepository) Create(ctx context.Context, a *models.Admin) error {
	sql, args, err := r.sb.Insert("admins").
		Columns("email", "name", "institutional_id", "department", "university_id").
		Values(a.Email, a.Name, a.InstitutionalID, a.Department, a.UniversityID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create admin query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "") {
			return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "admin already exists")
		}
		return fmt.Errorf("error creating admin: %w", err)
	}
	return nil
}
