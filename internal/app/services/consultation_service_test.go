package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/app/services/mocks"
	"github.com/yigit/unilink/internal/domain"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

const (
	lecturerID    = "6b1c0a4e-8b1f-4bbf-9d59-2f7c3f0a1e11"
	otherLecturer = "0d6f3c44-4b1e-4c8e-a0a4-5b6d7e8f9a01"
	studentID     = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
	adminID       = "1f2e3d4c-5b6a-4978-8695-a4b3c2d1e0f9"
	consultID     = "3c2b1a09-8f7e-4d6c-9b5a-4f3e2d1c0b9a"
)

var testNow = time.Date(2026, 3, 2, 4, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type consultationFixture struct {
	store     *mocks.MockConsultationStore
	lecturers *mocks.MockLecturerStore
	publisher *mocks.MockPublisher
	svc       ConsultationService
}

func newConsultationFixture(t *testing.T) *consultationFixture {
	ctrl := gomock.NewController(t)
	f := &consultationFixture{
		store:     mocks.NewMockConsultationStore(ctrl),
		lecturers: mocks.NewMockLecturerStore(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
	}
	members := mocks.NewMockCommunityStore(ctrl)
	loc, err := time.LoadLocation("Asia/Colombo")
	require.NoError(t, err)
	f.svc = NewConsultationService(
		f.store,
		f.lecturers,
		auth.NewAuthorizationService(f.lecturers, members),
		f.publisher,
		mocks.NewMockSubscriber(ctrl),
		domain.NewPolicy(loc, time.Minute),
		fixedClock,
		zerolog.Nop(),
	)
	return f
}

func pendingRow() *repositories.ConsultationWithStudent {
	return &repositories.ConsultationWithStudent{
		Consultation: domain.Consultation{
			ID:         consultID,
			StudentID:  studentID,
			LecturerID: lecturerID,
			Topic:      "Thesis outline",
			Status:     domain.StatusPending,
			CreatedAt:  testNow.Add(-time.Hour),
		},
		Student: &models.Student{ID: studentID, Name: "Kamal Silva", InstitutionalID: "IT21000001"},
	}
}

func TestConsultationService_Accept(t *testing.T) {
	session := Session{LecturerID: lecturerID}
	scheduled := time.Date(2026, 3, 3, 4, 30, 0, 0, time.UTC)

	t.Run("schedules and notifies the student", func(t *testing.T) {
		f := newConsultationFixture(t)
		f.store.EXPECT().GetByID(gomock.Any(), consultID).Return(pendingRow(), nil)
		f.lecturers.EXPECT().GetByID(gomock.Any(), lecturerID).
			Return(&models.Lecturer{ID: lecturerID, Name: "Dr. Nimal Perera", Status: models.AccountActive}, nil)

		var stored domain.Consultation
		var notice *models.Notification
		f.store.EXPECT().Transition(gomock.Any(), domain.StatusPending, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.Status, next domain.Consultation, n *models.Notification) error {
				stored, notice = next, n
				return nil
			})
		f.publisher.EXPECT().Publish(gomock.Any(), realtime.ConsultationsTopic(lecturerID)).Return(nil)

		resp, err := f.svc.Accept(context.Background(), session, consultID, dto.AcceptConsultationRequest{
			MeetingType: "in-person",
			ScheduledAt: scheduled,
			Location:    " Room 204 ",
			Notes:       "Bring your draft",
		})
		require.NoError(t, err)

		assert.Equal(t, "accepted", resp.Status)
		assert.Equal(t, "scheduled", resp.Phase)
		assert.Equal(t, "Room 204", resp.Location)
		assert.Equal(t, domain.SessionNotStarted, stored.SessionStatus)
		require.NotNil(t, stored.AcceptedAt)
		assert.Equal(t, testNow, *stored.AcceptedAt)

		require.NotNil(t, notice)
		assert.Equal(t, models.RecipientStudent, notice.RecipientType)
		assert.Equal(t, studentID, notice.StudentID)
		assert.Equal(t, "consultations", notice.RelatedType)
		assert.Equal(t, consultID, notice.RelatedID)
		assert.Equal(t,
			"Your consultation request has been accepted by Dr. Nimal Perera. Scheduled for Tuesday, March 3, 2026 at 10:00 AM",
			notice.MessageText)
	})

	t.Run("in-person without location is rejected before writing", func(t *testing.T) {
		f := newConsultationFixture(t)
		f.store.EXPECT().GetByID(gomock.Any(), consultID).Return(pendingRow(), nil)
		f.lecturers.EXPECT().GetByID(gomock.Any(), lecturerID).
			Return(&models.Lecturer{ID: lecturerID, Status: models.AccountActive}, nil)

		_, err := f.svc.Accept(context.Background(), session, consultID, dto.AcceptConsultationRequest{
			MeetingType: "in-person",
			ScheduledAt: scheduled,
		})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("another lecturer's consultation is forbidden", func(t *testing.T) {
		f := newConsultationFixture(t)
		f.store.EXPECT().GetByID(gomock.Any(), consultID).Return(pendingRow(), nil)

		_, err := f.svc.Accept(context.Background(), Session{LecturerID: otherLecturer}, consultID, dto.AcceptConsultationRequest{})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("concurrent change surfaces as conflict", func(t *testing.T) {
		f := newConsultationFixture(t)
		f.store.EXPECT().GetByID(gomock.Any(), consultID).Return(pendingRow(), nil)
		f.lecturers.EXPECT().GetByID(gomock.Any(), lecturerID).
			Return(&models.Lecturer{ID: lecturerID, Status: models.AccountActive}, nil)
		f.store.EXPECT().Transition(gomock.Any(), domain.StatusPending, gomock.Any(), gomock.Any()).
			Return(apperrors.NewCustomError(apperrors.ErrConflict, "consultation changed"))

		_, err := f.svc.Accept(context.Background(), session, consultID, dto.AcceptConsultationRequest{
			MeetingType: "online",
			ScheduledAt: scheduled,
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newConsultationFixture(t)
		_, err := f.svc.Accept(context.Background(), session, "nope", dto.AcceptConsultationRequest{})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestConsultationService_DeclineOnlyFromPending(t *testing.T) {
	f := newConsultationFixture(t)
	row := pendingRow()
	row.Status = domain.StatusDeclined
	f.store.EXPECT().GetByID(gomock.Any(), consultID).Return(row, nil)

	_, err := f.svc.Decline(context.Background(), Session{LecturerID: lecturerID}, consultID, dto.DeclineConsultationRequest{Reason: "busy"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestConsultationService_StartOnlineReturnsMeetLink(t *testing.T) {
	f := newConsultationFixture(t)
	row := pendingRow()
	scheduled := testNow.Add(3 * time.Hour)
	row.Status = domain.StatusAccepted
	row.SessionStatus = domain.SessionNotStarted
	row.Mode = domain.ModeOnline
	row.ScheduledAt = &scheduled

	f.store.EXPECT().GetByID(gomock.Any(), consultID).Return(row, nil)
	f.store.EXPECT().Transition(gomock.Any(), domain.StatusAccepted, gomock.Any(), nil).Return(nil)
	f.publisher.EXPECT().Publish(gomock.Any(), realtime.ConsultationsTopic(lecturerID)).Return(nil)
	f.lecturers.EXPECT().GetByID(gomock.Any(), lecturerID).
		Return(&models.Lecturer{ID: lecturerID, GoogleMeetLink: "https://meet.google.com/abc-defg-hij"}, nil)

	resp, err := f.svc.Start(context.Background(), Session{LecturerID: lecturerID}, consultID)
	require.NoError(t, err)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", resp.MeetLink)
	assert.Equal(t, "started", resp.Consultation.Status)
	assert.Equal(t, "in-session", resp.Consultation.Phase)
}

func TestConsultationService_Actions(t *testing.T) {
	f := newConsultationFixture(t)
	row := pendingRow()
	scheduled := testNow.Add(-2 * time.Minute)
	row.Status = domain.StatusAccepted
	row.SessionStatus = domain.SessionNotStarted
	row.Mode = domain.ModeInPerson
	row.ScheduledAt = &scheduled
	f.store.EXPECT().GetByID(gomock.Any(), consultID).Return(row, nil)

	resp, err := f.svc.Actions(context.Background(), Session{LecturerID: lecturerID}, consultID)
	require.NoError(t, err)
	assert.True(t, resp.CanStart)
	assert.False(t, resp.CanEnd)
	assert.Equal(t, "scheduled", resp.Phase)
	assert.Equal(t, testNow, resp.At)
}

func TestConsultationService_List(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		f := newConsultationFixture(t)
		f.store.EXPECT().ListForLecturer(gomock.Any(), lecturerID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, q repositories.ConsultationQuery) ([]repositories.ConsultationWithStudent, error) {
				require.NotNil(t, q.Status)
				assert.Equal(t, domain.StatusPending, *q.Status)
				assert.Equal(t, "kamal", q.Search)
				assert.Equal(t, uint64(defaultConsultationLimit), q.Limit)
				return []repositories.ConsultationWithStudent{*pendingRow()}, nil
			})

		out, err := f.svc.List(context.Background(), Session{LecturerID: lecturerID}, dto.ConsultationListRequest{Status: "pending", Search: " kamal "})
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.NotNil(t, out[0].Student)
		assert.Equal(t, "Kamal Silva", out[0].Student.Name)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		f := newConsultationFixture(t)
		_, err := f.svc.List(context.Background(), Session{LecturerID: lecturerID}, dto.ConsultationListRequest{Status: "archived"})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}
