package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/services/mocks"
	"github.com/yigit/unilink/internal/domain"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

const strangerID = "77777777-6666-4555-8444-333322221111"

type inboxFixture struct {
	messages *mocks.MockMessageStore
	students *mocks.MockStudentDirectory
	admins   *mocks.MockAdminDirectory
	svc      InboxService
}

func newInboxFixture(t *testing.T, subscriber realtime.Subscriber) *inboxFixture {
	ctrl := gomock.NewController(t)
	f := &inboxFixture{
		messages: mocks.NewMockMessageStore(ctrl),
		students: mocks.NewMockStudentDirectory(ctrl),
		admins:   mocks.NewMockAdminDirectory(ctrl),
	}
	if subscriber == nil {
		subscriber = mocks.NewMockSubscriber(ctrl)
	}
	f.svc = NewInboxService(f.messages, f.students, f.admins, subscriber, 2, zerolog.Nop())
	return f
}

func inboundMessages() []domain.Message {
	return []domain.Message{
		{ID: "s1", SenderID: studentID, ReceiverID: lecturerID, Type: domain.MessageText, Text: "first", CreatedAt: testNow},
		{ID: "s2", SenderID: studentID, ReceiverID: lecturerID, Type: domain.MessageImage, ImageURL: "https://img/1.jpg", CreatedAt: testNow.Add(2 * time.Minute)},
		{ID: "a1", SenderID: adminID, ReceiverID: lecturerID, Type: domain.MessageText, Text: "meeting moved", CreatedAt: testNow.Add(time.Minute), IsRead: true},
		{ID: "x1", SenderID: strangerID, ReceiverID: lecturerID, Type: domain.MessageText, Text: "who am I", CreatedAt: testNow.Add(3 * time.Minute)},
	}
}

func (f *inboxFixture) expectDirectories() {
	f.students.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ids []string) (map[string]models.Student, error) {
			return map[string]models.Student{
				studentID: {ID: studentID, Name: "Kamal Silva", InstitutionalID: "IT21000001"},
			}, nil
		})
	f.admins.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ids []string) (map[string]models.Admin, error) {
			if len(ids) != 2 {
				return nil, errors.New("admins looked up for resolved students")
			}
			return map[string]models.Admin{
				adminID: {ID: adminID, Name: "Registrar", InstitutionalID: "ADM-01"},
			}, nil
		})
}

func TestInboxService_Inbox(t *testing.T) {
	f := newInboxFixture(t, nil)
	f.messages.EXPECT().Inbound(gomock.Any(), lecturerID).Return(inboundMessages(), nil)
	f.expectDirectories()

	inbox, err := f.svc.Inbox(context.Background(), Session{LecturerID: lecturerID})
	require.NoError(t, err)

	require.Len(t, inbox.Students, 1)
	student := inbox.Students[0]
	assert.Equal(t, studentID, student.Participant.ID)
	assert.Equal(t, "student", student.Participant.Kind)
	assert.Equal(t, 2, student.UnreadCount)
	assert.Equal(t, domain.ImagePreview, student.LastMessage)
	require.NotNil(t, student.LastMessageAt)
	assert.Equal(t, testNow.Add(2*time.Minute), *student.LastMessageAt)

	require.Len(t, inbox.Admins, 1)
	assert.Equal(t, "admin", inbox.Admins[0].Participant.Kind)
	assert.Equal(t, 0, inbox.Admins[0].UnreadCount)
	assert.Equal(t, "meeting moved", inbox.Admins[0].LastMessage)

	assert.Equal(t, 2, inbox.TotalUnread, "unknown counterparts are not counted")
}

func TestInboxService_EmptyInbox(t *testing.T) {
	f := newInboxFixture(t, nil)
	f.messages.EXPECT().Inbound(gomock.Any(), lecturerID).Return(nil, nil)

	inbox, err := f.svc.Inbox(context.Background(), Session{LecturerID: lecturerID})
	require.NoError(t, err)
	assert.Empty(t, inbox.Students)
	assert.Empty(t, inbox.Admins)
	assert.Zero(t, inbox.TotalUnread)
}

func TestInboxService_UnreadCount(t *testing.T) {
	f := newInboxFixture(t, nil)
	f.messages.EXPECT().Inbound(gomock.Any(), lecturerID).Return(inboundMessages(), nil)
	f.expectDirectories()

	count, err := f.svc.UnreadCount(context.Background(), Session{LecturerID: lecturerID})
	require.NoError(t, err)
	assert.Equal(t, &dto.UnreadCountResponse{UnreadCount: 2}, count)
}

func TestInboxService_InboundFailure(t *testing.T) {
	f := newInboxFixture(t, nil)
	f.messages.EXPECT().Inbound(gomock.Any(), lecturerID).Return(nil, errors.New("db down"))

	_, err := f.svc.Inbox(context.Background(), Session{LecturerID: lecturerID})
	assert.Error(t, err)
}

func TestInboxService_Watch(t *testing.T) {
	brokerCtx, stopBroker := context.WithCancel(context.Background())
	defer stopBroker()
	broker := realtime.NewBroker(zerolog.Nop())
	go broker.Run(brokerCtx)

	f := newInboxFixture(t, broker)
	first := inboundMessages()[:1]
	f.messages.EXPECT().Inbound(gomock.Any(), lecturerID).Return(first, nil)
	f.messages.EXPECT().Inbound(gomock.Any(), lecturerID).Return(inboundMessages()[:2], nil)
	f.students.EXPECT().GetByIDs(gomock.Any(), []string{studentID}).
		Return(map[string]models.Student{studentID: {ID: studentID, Name: "Kamal Silva"}}, nil).Times(2)

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := f.svc.Watch(ctx, Session{LecturerID: lecturerID})
	require.NoError(t, err)

	initial := <-updates
	assert.Equal(t, 1, initial.TotalUnread)

	require.NoError(t, broker.Publish(ctx, realtime.InboxTopic(lecturerID)))
	select {
	case next := <-updates:
		assert.Equal(t, 2, next.TotalUnread)
		assert.Equal(t, domain.ImagePreview, next.Students[0].LastMessage)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for inbox update")
	}

	cancel()
	for range updates {
	}
}

func TestInboxService_SearchStudents(t *testing.T) {
	f := newInboxFixture(t, nil)
	f.students.EXPECT().Search(gomock.Any(), "kamal", 10).
		Return([]models.Student{{ID: studentID, Name: "Kamal Silva", Email: "kamal@uni.lk"}}, nil)

	out, err := f.svc.SearchStudents(context.Background(), Session{LecturerID: lecturerID}, dto.ParticipantSearchRequest{Query: "  kamal ", Limit: 10})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Kamal Silva", out[0].Name)
	assert.Equal(t, "student", out[0].Kind)
}
