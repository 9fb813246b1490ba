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

// StudentRepository handles student directory lookups
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: newBuilder(),
	}
}

var studentColumns = []string{"id", "email", "name", "institutional_id", "degree", "profile_image", "created_at"}

func scanStudent(row pgx.Row) (models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.Email, &s.Name, &s.InstitutionalID, &s.Degree, &s.ProfileImage, &s.CreatedAt)
	return s, err
}

func (r *StudentRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]models.Student, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	out := make([]models.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID retrieves a student by document id
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}
	s, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) || dberrors.IsInvalidText(err) {
			return nil, apperrors.NewResourceNotFoundError("student not found")
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return &s, nil
}

// GetByIDs resolves many students at once; missing ids are simply absent
func (r *StudentRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Student, error) {
	out := make(map[string]models.Student, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := r.list(ctx, r.sb.Select(studentColumns...).From("students").
		Where("id::text = ANY(?)", ids))
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		out[s.ID] = s
	}
	return out, nil
}

// Search finds students by name, email or institutional id
func (r *StudentRepository) Search(ctx context.Context, query string, limit int) ([]models.Student, error) {
	return r.list(ctx, r.sb.Select(studentColumns...).From("students").
		Where(searchFilter(query)).
		OrderBy("name").
		Limit(clampLimit(limit)))
}

// Create inserts a student, used by seeding and tests
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns("email", "name", "institutional_id", "degree", "profile_image").
		Values(s.Email, s.Name, s.InstitutionalID, s.Degree, s.ProfileImage).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "") {
			return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "student already exists")
		}
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}
