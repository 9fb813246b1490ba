package services

import (
	"context"
	"errors"

	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

// resolveParticipant finds a chat counterpart among students, then administrators
func resolveParticipant(ctx context.Context, students StudentDirectory, admins AdminDirectory, id string) (*models.Participant, error) {
	student, err := students.GetByID(ctx, id)
	if err == nil {
		p := student.AsParticipant()
		return &p, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}

	admin, err := admins.GetByID(ctx, id)
	if err == nil {
		p := admin.AsParticipant()
		return &p, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}
	return nil, apperrors.NewCustomError(apperrors.ErrCounterpartNotFound, "no student or administrator with this id")
}
