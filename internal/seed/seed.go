// Package seed creates the default records a fresh installation needs
package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/unilink/internal/app/models"
	appRepos "github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/app/repositories/user"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

// DefaultAdmin is the administrator created on an empty admins table
var DefaultAdmin = appModels.Admin{
	Email:           "admin@unilink.lk",
	Name:            "System Administrator",
	InstitutionalID: "ADM0001",
	Department:      "Administration",
	UniversityID:    "UNI",
}

// DemoCommunity is created once so a new lecturer has a feed to try
var DemoCommunity = appModels.Community{
	Name:        "Faculty Lounge",
	Type:        "General",
	Description: "A place for lecturers to share announcements and resources.",
}

// CreateDefaultData creates the default administrator and the demo community
// if they don't exist. Errors are collected so one failure does not skip the rest.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	adminRepo := user.NewAdminRepository(dbPool)
	communityRepo := appRepos.NewCommunityRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (admin/community)...")
	var finalErr error

	count, err := adminRepo.Count(ctx)
	switch {
	case err != nil:
		lgr.Error().Err(err).Msg("Error counting admins")
		finalErr = errors.Join(finalErr, err)
	case count > 0:
		lgr.Info().Int("admins", count).Msg("Admins already exist, skipping creation")
	default:
		admin := DefaultAdmin
		if err := adminRepo.Create(ctx, &admin); err != nil {
			lgr.Error().Err(err).Msg("Error creating default admin")
			finalErr = errors.Join(finalErr, err)
		} else {
			lgr.Info().Str("adminID", admin.ID).Str("email", admin.Email).Msg("Default admin created successfully")
		}
	}

	community := DemoCommunity
	err = communityRepo.Create(ctx, &community)
	switch {
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		lgr.Info().Str("community", community.Name).Msg("Demo community already exists, skipping creation")
	case err != nil:
		lgr.Error().Err(err).Msg("Error creating demo community")
		finalErr = errors.Join(finalErr, err)
	default:
		lgr.Info().Str("communityID", community.ID).Msg("Demo community created successfully")
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
