package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/dberrors"
	"github.com/yigit/unilink/internal/pkg/logger"
)

// LecturerRepository handles lecturer database operations
type LecturerRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewLecturerRepository creates a new LecturerRepository
func NewLecturerRepository(db *pgxpool.Pool) *LecturerRepository {
	return &LecturerRepository{
		db: db,
		sb: newBuilder(),
	}
}

var lecturerColumns = []string{
	"id", "lecturer_id", "email", "name", "nic", "designation", "department", "faculty",
	"office_location", "google_meet_link", "office_hours", "profile_img", "status",
	"password_hash", "otp_expiry", "expo_push_token", "created_at", "updated_at",
}

func scanLecturer(row pgx.Row) (*models.Lecturer, error) {
	var l models.Lecturer
	err := row.Scan(&l.ID, &l.LecturerID, &l.Email, &l.Name, &l.NIC, &l.Designation, &l.Department, &l.Faculty,
		&l.OfficeLocation, &l.GoogleMeetLink, &l.OfficeHours, &l.ProfileImage, &l.Status,
		&l.PasswordHash, &l.OTPExpiry, &l.ExpoPushToken, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LecturerRepository) getBy(ctx context.Context, column, value string) (*models.Lecturer, error) {
	sql, args, err := r.sb.Select(lecturerColumns...).
		From("lecturers").
		Where(squirrel.Eq{column: value}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get lecturer SQL")
		return nil, fmt.Errorf("failed to build get lecturer query: %w", err)
	}

	l, err := scanLecturer(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) || dberrors.IsInvalidText(err) {
			return nil, apperrors.NewResourceNotFoundError("lecturer not found")
		}
		logger.Error().Err(err).Str(column, value).Msg("Error scanning lecturer row")
		return nil, fmt.Errorf("error retrieving lecturer: %w", err)
	}
	return l, nil
}

// GetByID retrieves a lecturer by document id
func (r *LecturerRepository) GetByID(ctx context.Context, id string) (*models.Lecturer, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail retrieves a lecturer by email, case-insensitively
func (r *LecturerRepository) GetByEmail(ctx context.Context, email string) (*models.Lecturer, error) {
	return r.getBy(ctx, "LOWER(email)", strings.ToLower(strings.TrimSpace(email)))
}

// Create inserts a lecturer and fills its id and timestamps
func (r *LecturerRepository) Create(ctx context.Context, l *models.Lecturer) error {
	if l.OfficeHours == nil {
		l.OfficeHours = []string{}
	}
	if l.Status == "" {
		l.Status = models.AccountActive
	}
	sql, args, err := r.sb.Insert("lecturers").
		Columns("lecturer_id", "email", "name", "nic", "designation", "department", "faculty",
			"office_location", "google_meet_link", "office_hours", "status", "otp_expiry").
		Values(l.LecturerID, strings.ToLower(l.Email), l.Name, l.NIC, l.Designation, l.Department, l.Faculty,
			l.OfficeLocation, l.GoogleMeetLink, l.OfficeHours, string(l.Status), l.OTPExpiry).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create lecturer query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "") {
			logger.Warn().Str("email", l.Email).Msg("Attempted to create duplicate lecturer")
			return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "lecturer already exists")
		}
		return fmt.Errorf("error creating lecturer: %w", err)
	}
	logger.Info().Str("lecturerID", l.ID).Msg("Lecturer created successfully")
	return nil
}

// ProfileUpdate holds the editable profile fields
type ProfileUpdate struct {
	Name           string
	NIC            string
	Designation    string
	OfficeLocation string
	GoogleMeetLink string
	OfficeHours    []string
}

func (r *LecturerRepository) update(ctx context.Context, id string, set map[string]any) error {
	set["updated_at"] = time.Now()
	sql, args, err := r.sb.Update("lecturers").SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update lecturer query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsInvalidText(err) {
			return apperrors.NewResourceNotFoundError("lecturer not found")
		}
		return fmt.Errorf("error updating lecturer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("lecturer not found")
	}
	return nil
}

// UpdateProfile replaces the editable profile fields
func (r *LecturerRepository) UpdateProfile(ctx context.Context, id string, p ProfileUpdate) error {
	hours := p.OfficeHours
	if hours == nil {
		hours = []string{}
	}
	return r.update(ctx, id, map[string]any{
		"name":             p.Name,
		"nic":              p.NIC,
		"designation":      p.Designation,
		"office_location":  p.OfficeLocation,
		"google_meet_link": p.GoogleMeetLink,
		"office_hours":     hours,
	})
}

// SetStatus stores the lecturer's availability flag
func (r *LecturerRepository) SetStatus(ctx context.Context, id string, status models.AccountStatus) error {
	return r.update(ctx, id, map[string]any{"status": string(status)})
}

// SetProfileImage stores the profile image url
func (r *LecturerRepository) SetProfileImage(ctx context.Context, id, url string) error {
	return r.update(ctx, id, map[string]any{"profile_img": url})
}

// SetPushToken stores the device push token
func (r *LecturerRepository) SetPushToken(ctx context.Context, id, token string) error {
	return r.update(ctx, id, map[string]any{"expo_push_token": token})
}

// SetPasswordHash stores a password hash and closes the one-time code window
func (r *LecturerRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.update(ctx, id, map[string]any{"password_hash": hash, "otp_expiry": nil})
}

// SetOTPExpiry opens the one-time code login window until expiry
func (r *LecturerRepository) SetOTPExpiry(ctx context.Context, id string, expiry time.Time) error {
	return r.update(ctx, id, map[string]any{"otp_expiry": expiry})
}
