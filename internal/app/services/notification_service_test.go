package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/services/mocks"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/helpers"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

const notificationID = "2b3c4d5e-6f70-4812-9a3b-4c5d6e7f8091"

func newNotificationFixture(t *testing.T) (*mocks.MockNotificationStore, *mocks.MockPublisher, NotificationService) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockNotificationStore(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	return store, publisher, NewNotificationService(store, publisher, mocks.NewMockSubscriber(ctrl), zerolog.Nop())
}

func TestNotificationService_List(t *testing.T) {
	store, _, svc := newNotificationFixture(t)
	page := helpers.Page{Number: 1, Size: 2}
	store.EXPECT().ListForLecturer(gomock.Any(), lecturerID, page).Return([]models.Notification{
		{ID: "n2", MessageText: "Your consultation request has been accepted", RelatedType: "consultations", Timestamp: testNow},
		{ID: "n1", MessageText: "Welcome", IsRead: true, Timestamp: testNow.Add(-24 * time.Hour)},
	}, int64(5), nil)
	store.EXPECT().CountUnread(gomock.Any(), lecturerID).Return(3, nil)

	resp, err := svc.List(context.Background(), Session{LecturerID: lecturerID}, page)
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 2)
	assert.Equal(t, "n2", resp.Notifications[0].ID)
	assert.Equal(t, 3, resp.UnreadCount)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
}

func TestNotificationService_MarkRead(t *testing.T) {
	session := Session{LecturerID: lecturerID}

	t.Run("marks and signals", func(t *testing.T) {
		store, publisher, svc := newNotificationFixture(t)
		store.EXPECT().MarkRead(gomock.Any(), notificationID, lecturerID).Return(true, nil)
		publisher.EXPECT().Publish(gomock.Any(), realtime.NotificationsTopic(lecturerID)).Return(nil)

		assert.NoError(t, svc.MarkRead(context.Background(), session, notificationID))
	})

	t.Run("someone else's notification is not found", func(t *testing.T) {
		store, _, svc := newNotificationFixture(t)
		store.EXPECT().MarkRead(gomock.Any(), notificationID, lecturerID).Return(false, nil)

		err := svc.MarkRead(context.Background(), session, notificationID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, _, svc := newNotificationFixture(t)
		err := svc.MarkRead(context.Background(), session, "not-a-uuid")
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	t.Run("nothing unread publishes nothing", func(t *testing.T) {
		store, _, svc := newNotificationFixture(t)
		store.EXPECT().MarkAllRead(gomock.Any(), lecturerID).Return(int64(0), nil)

		resp, err := svc.MarkAllRead(context.Background(), Session{LecturerID: lecturerID})
		require.NoError(t, err)
		assert.Zero(t, resp.Updated)
	})

	t.Run("publishes when rows change", func(t *testing.T) {
		store, publisher, svc := newNotificationFixture(t)
		store.EXPECT().MarkAllRead(gomock.Any(), lecturerID).Return(int64(4), nil)
		publisher.EXPECT().Publish(gomock.Any(), realtime.NotificationsTopic(lecturerID)).Return(nil)

		resp, err := svc.MarkAllRead(context.Background(), Session{LecturerID: lecturerID})
		require.NoError(t, err)
		assert.Equal(t, 4, resp.Updated)
	})
}

func TestNotificationService_Delete(t *testing.T) {
	store, _, svc := newNotificationFixture(t)
	store.EXPECT().Delete(gomock.Any(), notificationID, lecturerID).Return(false, nil)

	err := svc.Delete(context.Background(), Session{LecturerID: lecturerID}, notificationID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestNotificationService_Watch(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockNotificationStore(ctrl)

	brokerCtx, stopBroker := context.WithCancel(context.Background())
	defer stopBroker()
	broker := realtime.NewBroker(zerolog.Nop())
	go broker.Run(brokerCtx)

	svc := NewNotificationService(store, broker, broker, zerolog.Nop())
	page := helpers.Page{}.Normalize()
	store.EXPECT().ListForLecturer(gomock.Any(), lecturerID, page).
		Return([]models.Notification{{ID: "n1", MessageText: "Welcome"}}, int64(1), nil).Times(2)
	gomock.InOrder(
		store.EXPECT().CountUnread(gomock.Any(), lecturerID).Return(1, nil),
		store.EXPECT().CountUnread(gomock.Any(), lecturerID).Return(0, nil),
	)
	store.EXPECT().MarkRead(gomock.Any(), notificationID, lecturerID).Return(true, nil)

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := svc.Watch(ctx, Session{LecturerID: lecturerID})
	require.NoError(t, err)
	assert.Equal(t, 1, (<-updates).UnreadCount)

	require.NoError(t, svc.MarkRead(ctx, Session{LecturerID: lecturerID}, notificationID))
	select {
	case next := <-updates:
		assert.Equal(t, 0, next.UnreadCount)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification update")
	}

	cancel()
	for range updates {
	}
}
