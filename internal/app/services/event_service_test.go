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
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/app/services/mocks"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

const eventID = "4d5e6f70-8192-4a3b-8c4d-5e6f70819203"

var colombo = time.FixedZone("LKT", 5*3600+1800)

func newEventFixture(t *testing.T, subscriber realtime.Subscriber) (*mocks.MockEventStore, *mocks.MockPublisher, EventService) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockEventStore(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	if subscriber == nil {
		subscriber = mocks.NewMockSubscriber(ctrl)
	}
	svc := NewEventService(store, publisher, subscriber, colombo, func() time.Time { return testNow }, zerolog.Nop())
	return store, publisher, svc
}

func TestEventService_List(t *testing.T) {
	session := Session{LecturerID: lecturerID}
	events := []models.Event{
		{ID: "e1", Title: "AI Bootcamp", HostedBy: "Department of Computing", StartDate: testNow.Add(72 * time.Hour), CreatedAt: testNow.Add(-24 * time.Hour)},
		{ID: "e2", Title: "Sports Meet", HostedBy: "Sports Council", StartDate: testNow.Add(240 * time.Hour), CreatedAt: testNow.Add(-10 * 24 * time.Hour)},
	}

	t.Run("flags events inside the new window", func(t *testing.T) {
		store, _, svc := newEventFixture(t, nil)
		store.EXPECT().List(gomock.Any(), repositories.EventQuery{}).Return(events, nil)

		resp, err := svc.List(context.Background(), session, dto.EventListRequest{})
		require.NoError(t, err)
		require.Len(t, resp.Events, 2)
		assert.True(t, resp.Events[0].IsNew)
		assert.False(t, resp.Events[1].IsNew)
		assert.Equal(t, 1, resp.NewCount)
	})

	t.Run("upcoming starts at local midnight", func(t *testing.T) {
		store, _, svc := newEventFixture(t, nil)
		// testNow is 10:00 in Colombo on 2 March
		want := repositories.EventQuery{From: time.Date(2026, 3, 2, 0, 0, 0, 0, colombo), Limit: 5}
		store.EXPECT().List(gomock.Any(), want).Return([]models.Event{}, nil)

		resp, err := svc.List(context.Background(), session, dto.EventListRequest{Upcoming: true, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, resp.Events)
		assert.Zero(t, resp.NewCount)
	})

	t.Run("store failure", func(t *testing.T) {
		store, _, svc := newEventFixture(t, nil)
		store.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

		_, err := svc.List(context.Background(), session, dto.EventListRequest{})
		assert.Error(t, err)
	})
}

func TestEventService_Get(t *testing.T) {
	session := Session{LecturerID: lecturerID}

	t.Run("invalid id", func(t *testing.T) {
		_, _, svc := newEventFixture(t, nil)
		_, err := svc.Get(context.Background(), session, "nope")
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("stale event is not new", func(t *testing.T) {
		store, _, svc := newEventFixture(t, nil)
		store.EXPECT().GetByID(gomock.Any(), eventID).Return(&models.Event{
			ID: eventID, Title: "Research Symposium", CreatedAt: testNow.Add(-models.NewEventWindow - time.Minute),
		}, nil)

		resp, err := svc.Get(context.Background(), session, eventID)
		require.NoError(t, err)
		assert.False(t, resp.IsNew)
	})
}

func TestEventService_Create(t *testing.T) {
	req := dto.CreateEventRequest{
		Title:     "  Nagrak Expedition Hike  ",
		HostedBy:  "Hiking Club",
		Location:  "Auditorium A",
		StartDate: testNow.Add(96 * time.Hour),
		StartTime: "10:00 AM",
	}

	t.Run("stores and signals watchers", func(t *testing.T) {
		store, publisher, svc := newEventFixture(t, nil)
		store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *models.Event) error {
			assert.Equal(t, "Nagrak Expedition Hike", e.Title)
			assert.Equal(t, models.EventActive, e.Status)
			e.ID = eventID
			e.CreatedAt = testNow
			return nil
		})
		publisher.EXPECT().Publish(gomock.Any(), realtime.EventsTopic()).Return(nil)

		resp, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, eventID, resp.ID)
		assert.True(t, resp.IsNew)
	})

	t.Run("missing start date", func(t *testing.T) {
		_, _, svc := newEventFixture(t, nil)
		bad := req
		bad.StartDate = time.Time{}
		_, err := svc.Create(context.Background(), bad)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("publish failure does not fail the write", func(t *testing.T) {
		store, publisher, svc := newEventFixture(t, nil)
		store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		publisher.EXPECT().Publish(gomock.Any(), realtime.EventsTopic()).Return(realtime.ErrBrokerStopped)

		_, err := svc.Create(context.Background(), req)
		assert.NoError(t, err)
	})
}

func TestEventService_Watch(t *testing.T) {
	brokerCtx, stopBroker := context.WithCancel(context.Background())
	defer stopBroker()
	broker := realtime.NewBroker(zerolog.Nop())
	go broker.Run(brokerCtx)

	store, _, svc := newEventFixture(t, broker)
	first := []models.Event{{ID: "e1", Title: "AI Bootcamp", CreatedAt: testNow.Add(-5 * 24 * time.Hour)}}
	second := append(first, models.Event{ID: "e2", Title: "Career Fair", CreatedAt: testNow})
	gomock.InOrder(
		store.EXPECT().List(gomock.Any(), gomock.Any()).Return(first, nil),
		store.EXPECT().List(gomock.Any(), gomock.Any()).Return(second, nil),
	)

	ctx, cancel := context.WithCancel(context.Background())
	frames, err := svc.Watch(ctx, Session{LecturerID: lecturerID}, dto.EventListRequest{})
	require.NoError(t, err)

	frame := <-frames
	require.Len(t, frame.Events, 1)
	assert.Zero(t, frame.NewCount)

	require.NoError(t, broker.Publish(ctx, realtime.EventsTopic()))
	frame = <-frames
	require.Len(t, frame.Events, 2)
	assert.Equal(t, 1, frame.NewCount)
	assert.True(t, frame.Events[1].IsNew)

	cancel()
	for range frames {
	}
	assert.Eventually(t, func() bool { return broker.SubscriberCount(realtime.EventsTopic()) == 0 }, time.Second, 10*time.Millisecond)
}
