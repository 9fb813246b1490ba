package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/services/mocks"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/filestorage"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

const communityID = "5d4c3b2a-1908-4f7e-8d6c-5b4a39281706"

type communityFixture struct {
	communities *mocks.MockCommunityStore
	lecturers   *mocks.MockLecturerStore
	uploader    *mocks.MockUploader
	publisher   *mocks.MockPublisher
	svc         CommunityService
}

func newCommunityFixture(t *testing.T) *communityFixture {
	ctrl := gomock.NewController(t)
	f := &communityFixture{
		communities: mocks.NewMockCommunityStore(ctrl),
		lecturers:   mocks.NewMockLecturerStore(ctrl),
		uploader:    mocks.NewMockUploader(ctrl),
		publisher:   mocks.NewMockPublisher(ctrl),
	}
	authz := auth.NewAuthorizationService(f.lecturers, f.communities)
	attachments := NewAttachments(f.uploader, testAttachmentConfig(), zerolog.Nop())
	f.svc = NewCommunityService(f.communities, authz, attachments, mocks.NewMockSubscriber(ctrl), f.publisher, zerolog.Nop())
	return f
}

func (f *communityFixture) expectMember(ok bool) {
	f.communities.EXPECT().GetByID(gomock.Any(), communityID).
		Return(&models.Community{ID: communityID, Name: "AI Research Circle"}, nil)
	f.communities.EXPECT().IsMember(gomock.Any(), communityID, lecturerID).Return(ok, nil)
}

func (f *communityFixture) expectActiveLecturer() {
	f.lecturers.EXPECT().GetByID(gomock.Any(), lecturerID).
		Return(&models.Lecturer{ID: lecturerID, Name: "Dr. Nimal Perera", Status: models.AccountActive}, nil)
}

func TestCommunityService_SendText(t *testing.T) {
	session := Session{LecturerID: lecturerID}

	t.Run("member posts and the feed is signalled", func(t *testing.T) {
		f := newCommunityFixture(t)
		f.expectMember(true)
		f.expectActiveLecturer()
		f.communities.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m *models.CommunityMessage) error {
				assert.Equal(t, "Dr. Nimal Perera", m.UserName)
				assert.Equal(t, models.CommunityMessageText, m.Type)
				m.ID = "m1"
				m.Timestamp = testNow
				return nil
			})
		f.publisher.EXPECT().Publish(gomock.Any(), realtime.CommunityTopic(communityID)).Return(nil)

		resp, err := f.svc.SendText(context.Background(), session, communityID, dto.CommunityTextRequest{Text: " reading group at 4 "})
		require.NoError(t, err)
		assert.Equal(t, "reading group at 4", resp.Text)
		assert.True(t, resp.Outgoing)
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		f := newCommunityFixture(t)
		f.expectMember(false)

		_, err := f.svc.SendText(context.Background(), session, communityID, dto.CommunityTextRequest{Text: "hi"})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("unknown community", func(t *testing.T) {
		f := newCommunityFixture(t)
		f.communities.EXPECT().GetByID(gomock.Any(), communityID).
			Return(nil, apperrors.NewResourceNotFoundError("community not found"))

		_, err := f.svc.SendText(context.Background(), session, communityID, dto.CommunityTextRequest{Text: "hi"})
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestCommunityService_SendPDF(t *testing.T) {
	session := Session{LecturerID: lecturerID}

	t.Run("uploads as a raw document", func(t *testing.T) {
		f := newCommunityFixture(t)
		f.expectMember(true)
		f.expectActiveLecturer()
		f.uploader.EXPECT().Upload(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req filestorage.UploadRequest) (string, error) {
				assert.Equal(t, filestorage.ResourceRaw, req.Kind)
				assert.Equal(t, "unilink-docs", req.Preset)
				assert.Equal(t, "syllabus.pdf", req.Filename)
				return "https://files/syllabus.pdf", nil
			})
		f.communities.EXPECT().CreateMessage(gomock.Any(), gomock.Any()).Return(nil)
		f.publisher.EXPECT().Publish(gomock.Any(), realtime.CommunityTopic(communityID)).Return(nil)

		doc := strings.NewReader("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF")
		resp, err := f.svc.SendPDF(context.Background(), session, communityID, doc, "uploads/syllabus.pdf")
		require.NoError(t, err)
		assert.Equal(t, "pdf", resp.Type)
		assert.Equal(t, "syllabus.pdf", resp.FileName)
		assert.Equal(t, "https://files/syllabus.pdf", resp.FileURL)
	})

	t.Run("rejects other documents", func(t *testing.T) {
		f := newCommunityFixture(t)
		f.expectMember(true)

		_, err := f.svc.SendPDF(context.Background(), session, communityID, strings.NewReader("just some text"), "notes.pdf")
		assert.ErrorIs(t, err, apperrors.ErrUnsupportedMedia)
	})
}

func TestCommunityService_RequestCommunity(t *testing.T) {
	session := Session{LecturerID: lecturerID}

	t.Run("stores a pending request", func(t *testing.T) {
		f := newCommunityFixture(t)
		f.expectActiveLecturer()
		f.communities.EXPECT().CreateRequest(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r *models.CommunityRequest) error {
				r.ID = "r1"
				r.CreatedAt = testNow
				return nil
			})

		resp, err := f.svc.RequestCommunity(context.Background(), session, dto.CreateCommunityRequest{
			Name:          " AI Research Circle ",
			Type:          "Academic",
			Description:   "Weekly paper discussions",
			Justification: "Cross-faculty collaboration",
		})
		require.NoError(t, err)
		assert.Equal(t, "Community Creation Request: AI Research Circle", resp.Subject)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "Dr. Nimal Perera", resp.LecturerName)
	})

	t.Run("requires a justification", func(t *testing.T) {
		f := newCommunityFixture(t)
		f.expectActiveLecturer()

		_, err := f.svc.RequestCommunity(context.Background(), session, dto.CreateCommunityRequest{
			Name: "AI", Type: "Academic", Description: "d",
		})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestCommunityService_Messages(t *testing.T) {
	f := newCommunityFixture(t)
	f.expectMember(true)
	f.communities.EXPECT().Messages(gomock.Any(), communityID, uint64(communityFeedLimit)).Return([]models.CommunityMessage{
		{ID: "m1", UserID: otherLecturer, UserName: "Dr. Silva", Type: models.CommunityMessageText, Text: "hello", Timestamp: testNow},
		{ID: "m2", UserID: lecturerID, UserName: "Dr. Nimal Perera", Type: models.CommunityMessageText, Text: "hi", Timestamp: testNow.Add(time.Minute)},
	}, nil)

	msgs, err := f.svc.Messages(context.Background(), Session{LecturerID: lecturerID}, communityID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.False(t, msgs[0].Outgoing)
	assert.True(t, msgs[1].Outgoing)
}
