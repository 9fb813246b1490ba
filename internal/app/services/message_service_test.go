package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
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
	"github.com/yigit/unilink/internal/domain"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/filestorage"
	"github.com/yigit/unilink/internal/pkg/imaging"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

type messageFixture struct {
	messages  *mocks.MockMessageStore
	students  *mocks.MockStudentDirectory
	admins    *mocks.MockAdminDirectory
	uploader  *mocks.MockUploader
	publisher *mocks.MockPublisher
	svc       MessageService
}

func testAttachmentConfig() AttachmentConfig {
	return AttachmentConfig{
		Imaging:        imaging.Options{MaxWidth: 800, Quality: 50},
		ImagePreset:    "unilink",
		DocumentPreset: "unilink-docs",
		ImageFolder:    "images/chat",
		DocumentFolder: "docs/pdfs",
		UploadTimeout:  time.Second,
	}
}

func newMessageFixture(t *testing.T) *messageFixture {
	ctrl := gomock.NewController(t)
	f := &messageFixture{
		messages:  mocks.NewMockMessageStore(ctrl),
		students:  mocks.NewMockStudentDirectory(ctrl),
		admins:    mocks.NewMockAdminDirectory(ctrl),
		uploader:  mocks.NewMockUploader(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
	}
	authz := auth.NewAuthorizationService(mocks.NewMockLecturerStore(ctrl), mocks.NewMockCommunityStore(ctrl))
	attachments := NewAttachments(f.uploader, testAttachmentConfig(), zerolog.Nop())
	f.svc = NewMessageService(f.messages, f.students, f.admins, attachments, authz, f.publisher, zerolog.Nop())
	return f
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestMessageService_SendText(t *testing.T) {
	session := Session{LecturerID: lecturerID}

	t.Run("stores and publishes both topics", func(t *testing.T) {
		f := newMessageFixture(t)
		f.students.EXPECT().GetByID(gomock.Any(), studentID).Return(&models.Student{ID: studentID}, nil)
		f.messages.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m *domain.Message) error {
			assert.Equal(t, domain.MessageText, m.Type)
			assert.Equal(t, "See you at 10.", m.Text)
			m.ID = "m1"
			m.CreatedAt = testNow
			return nil
		})
		f.publisher.EXPECT().Publish(gomock.Any(), realtime.MessagesTopic(lecturerID, studentID), realtime.InboxTopic(studentID)).Return(nil)

		resp, err := f.svc.SendText(context.Background(), session, studentID, dto.SendTextRequest{Text: "  See you at 10. "})
		require.NoError(t, err)
		assert.Equal(t, "m1", resp.ID)
		assert.True(t, resp.Outgoing)
	})

	t.Run("falls back to the admin directory", func(t *testing.T) {
		f := newMessageFixture(t)
		f.students.EXPECT().GetByID(gomock.Any(), adminID).Return(nil, apperrors.NewResourceNotFoundError("student not found"))
		f.admins.EXPECT().GetByID(gomock.Any(), adminID).Return(&models.Admin{ID: adminID}, nil)
		f.messages.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.svc.SendText(context.Background(), session, adminID, dto.SendTextRequest{Text: "hi"})
		require.NoError(t, err)
	})

	t.Run("unknown counterpart", func(t *testing.T) {
		f := newMessageFixture(t)
		f.students.EXPECT().GetByID(gomock.Any(), adminID).Return(nil, apperrors.NewResourceNotFoundError("student not found"))
		f.admins.EXPECT().GetByID(gomock.Any(), adminID).Return(nil, apperrors.NewResourceNotFoundError("admin not found"))

		_, err := f.svc.SendText(context.Background(), session, adminID, dto.SendTextRequest{Text: "hi"})
		assert.ErrorIs(t, err, apperrors.ErrCounterpartNotFound)
	})

	t.Run("cannot message yourself", func(t *testing.T) {
		f := newMessageFixture(t)
		_, err := f.svc.SendText(context.Background(), session, lecturerID, dto.SendTextRequest{Text: "hi"})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestMessageService_SendImage(t *testing.T) {
	session := Session{LecturerID: lecturerID}

	t.Run("uploads a downscaled jpeg then stores an image_text message", func(t *testing.T) {
		f := newMessageFixture(t)
		f.students.EXPECT().GetByID(gomock.Any(), studentID).Return(&models.Student{ID: studentID}, nil)
		f.uploader.EXPECT().Upload(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req filestorage.UploadRequest) (string, error) {
			assert.Equal(t, "unilink", req.Preset)
			assert.Equal(t, filestorage.ResourceImage, req.Kind)
			assert.Equal(t, imaging.ContentType, req.ContentType)
			assert.Equal(t, "board.jpg", req.Filename)
			return "https://cdn.example/board.jpg", nil
		})
		f.messages.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m *domain.Message) error {
			assert.Equal(t, domain.MessageImageText, m.Type)
			assert.Equal(t, "https://cdn.example/board.jpg", m.ImageURL)
			return nil
		})
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.svc.SendImage(context.Background(), session, studentID, bytes.NewReader(pngBytes(t, 1200, 600)), "board.png", "whiteboard")
		require.NoError(t, err)
	})

	t.Run("upload failure stores nothing", func(t *testing.T) {
		f := newMessageFixture(t)
		f.students.EXPECT().GetByID(gomock.Any(), studentID).Return(&models.Student{ID: studentID}, nil)
		f.uploader.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("", errors.New("connection reset"))

		_, err := f.svc.SendImage(context.Background(), session, studentID, bytes.NewReader(pngBytes(t, 10, 10)), "a.png", "")
		assert.ErrorIs(t, err, apperrors.ErrUploadFailed)
	})

	t.Run("non-image is unsupported", func(t *testing.T) {
		f := newMessageFixture(t)
		f.students.EXPECT().GetByID(gomock.Any(), studentID).Return(&models.Student{ID: studentID}, nil)

		_, err := f.svc.SendImage(context.Background(), session, studentID, strings.NewReader("%PDF-1.4"), "a.pdf", "")
		assert.ErrorIs(t, err, apperrors.ErrUnsupportedMedia)
	})
}

func TestMessageService_Delete(t *testing.T) {
	const messageID = "7e6d5c4b-3a29-4817-9605-f4e3d2c1b0a9"

	t.Run("only the sender may delete", func(t *testing.T) {
		f := newMessageFixture(t)
		f.messages.EXPECT().GetByID(gomock.Any(), messageID).
			Return(&domain.Message{ID: messageID, SenderID: studentID, ReceiverID: lecturerID}, nil)

		err := f.svc.Delete(context.Background(), Session{LecturerID: lecturerID}, messageID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("sender deletes and both topics are signalled", func(t *testing.T) {
		f := newMessageFixture(t)
		f.messages.EXPECT().GetByID(gomock.Any(), messageID).
			Return(&domain.Message{ID: messageID, SenderID: lecturerID, ReceiverID: studentID}, nil)
		f.messages.EXPECT().Delete(gomock.Any(), messageID, lecturerID).Return(true, nil)
		f.publisher.EXPECT().Publish(gomock.Any(), realtime.MessagesTopic(lecturerID, studentID), realtime.InboxTopic(studentID)).Return(nil)

		require.NoError(t, f.svc.Delete(context.Background(), Session{LecturerID: lecturerID}, messageID))
	})
}

func TestMessageService_ThreadMergesAndMarksRead(t *testing.T) {
	f := newMessageFixture(t)
	t0 := testNow

	f.messages.EXPECT().Direction(gomock.Any(), lecturerID, studentID).Return([]domain.Message{
		{ID: "a", SenderID: lecturerID, ReceiverID: studentID, Type: domain.MessageText, Text: "first", CreatedAt: t0},
		{ID: "pending", SenderID: lecturerID, ReceiverID: studentID, Type: domain.MessageText, Text: "sending"},
	}, nil)
	f.messages.EXPECT().Direction(gomock.Any(), studentID, lecturerID).Return([]domain.Message{
		{ID: "b", SenderID: studentID, ReceiverID: lecturerID, Type: domain.MessageText, Text: "reply", CreatedAt: t0.Add(time.Minute)},
	}, nil)
	f.messages.EXPECT().MarkRead(gomock.Any(), lecturerID, studentID, []string{"b"}).Return([]string{"b"}, nil)
	f.publisher.EXPECT().Publish(gomock.Any(), realtime.MessagesTopic(studentID, lecturerID), realtime.InboxTopic(lecturerID)).Return(nil)

	resp, err := f.svc.Thread(context.Background(), Session{LecturerID: lecturerID}, studentID)
	require.NoError(t, err)

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"a", "b", "pending"}, ids)
	assert.True(t, resp.Messages[1].IsRead)
	assert.Nil(t, resp.Messages[2].CreatedAt)
}
