package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories/user"
	"github.com/yigit/unilink/internal/app/services/mocks"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/filestorage"
)

func newProfileFixture(t *testing.T) (*mocks.MockLecturerStore, *mocks.MockUploader, ProfileService) {
	ctrl := gomock.NewController(t)
	lecturers := mocks.NewMockLecturerStore(ctrl)
	uploader := mocks.NewMockUploader(ctrl)
	attachments := NewAttachments(uploader, testAttachmentConfig(), zerolog.Nop())
	return lecturers, uploader, NewProfileService(lecturers, attachments, zerolog.Nop())
}

func TestProfileService_Update(t *testing.T) {
	session := Session{LecturerID: lecturerID}

	t.Run("trims and drops blank office hours", func(t *testing.T) {
		lecturers, _, svc := newProfileFixture(t)
		lecturers.EXPECT().UpdateProfile(gomock.Any(), lecturerID, user.ProfileUpdate{
			Name:           "Dr. Nimal Perera",
			NIC:            "912345678V",
			OfficeLocation: "Room 204",
			OfficeHours:    []string{"Mon 10-12", "Thu 14-16"},
		}).Return(nil)
		lecturers.EXPECT().GetByID(gomock.Any(), lecturerID).
			Return(&models.Lecturer{ID: lecturerID, Name: "Dr. Nimal Perera", OfficeHours: []string{"Mon 10-12", "Thu 14-16"}}, nil)

		resp, err := svc.Update(context.Background(), session, dto.UpdateProfileRequest{
			Name:           " Dr. Nimal Perera ",
			NIC:            "912345678V",
			OfficeLocation: "Room 204 ",
			OfficeHours:    []string{"Mon 10-12", "  ", " Thu 14-16"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Dr. Nimal Perera", resp.Name)
	})

	t.Run("rejects an invalid NIC", func(t *testing.T) {
		_, _, svc := newProfileFixture(t)
		_, err := svc.Update(context.Background(), session, dto.UpdateProfileRequest{Name: "Dr. Nimal Perera", NIC: "12"})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestProfileService_ToggleStatus(t *testing.T) {
	lecturers, _, svc := newProfileFixture(t)
	lecturers.EXPECT().GetByID(gomock.Any(), lecturerID).
		Return(&models.Lecturer{ID: lecturerID, Status: models.AccountActive}, nil)
	lecturers.EXPECT().SetStatus(gomock.Any(), lecturerID, models.AccountDeactive).Return(nil)

	resp, err := svc.ToggleStatus(context.Background(), Session{LecturerID: lecturerID})
	require.NoError(t, err)
	assert.Equal(t, string(models.AccountDeactive), resp.Status)
}

func TestProfileService_UploadImage(t *testing.T) {
	lecturers, uploader, svc := newProfileFixture(t)
	uploader.EXPECT().Upload(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req filestorage.UploadRequest) (string, error) {
			assert.Equal(t, "avatar.jpg", req.Filename)
			return "https://img/avatar.jpg", nil
		})
	lecturers.EXPECT().SetProfileImage(gomock.Any(), lecturerID, "https://img/avatar.jpg").Return(nil)
	lecturers.EXPECT().GetByID(gomock.Any(), lecturerID).
		Return(&models.Lecturer{ID: lecturerID, ProfileImage: "https://img/avatar.jpg"}, nil)

	resp, err := svc.UploadImage(context.Background(), Session{LecturerID: lecturerID}, bytes.NewReader(pngBytes(t, 64, 64)), "avatar.png")
	require.NoError(t, err)
	assert.Equal(t, "https://img/avatar.jpg", resp.ProfileImage)
}

func TestProfileService_RegisterPushToken(t *testing.T) {
	lecturers, _, svc := newProfileFixture(t)
	lecturers.EXPECT().SetPushToken(gomock.Any(), lecturerID, "ExponentPushToken[abc]").Return(nil)

	require.NoError(t, svc.RegisterPushToken(context.Background(), Session{LecturerID: lecturerID}, dto.PushTokenRequest{Token: " ExponentPushToken[abc] "}))
}
