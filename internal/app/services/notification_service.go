package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/helpers"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

// NotificationService defines operations on the lecturer's notifications
type NotificationService interface {
	List(ctx context.Context, session Session, page helpers.Page) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, session Session) (*dto.UnreadCountResponse, error)
	MarkRead(ctx context.Context, session Session, id string) error
	MarkAllRead(ctx context.Context, session Session) (*dto.MarkReadResponse, error)
	Delete(ctx context.Context, session Session, id string) error
	Watch(ctx context.Context, session Session) (<-chan dto.NotificationListResponse, error)
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	notifications NotificationStore
	publisher     realtime.Publisher
	subscriber    realtime.Subscriber
	logger        zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications NotificationStore, publisher realtime.Publisher, subscriber realtime.Subscriber, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{
		notifications: notifications,
		publisher:     publisher,
		subscriber:    subscriber,
		logger:        logger,
	}
}

func (s *notificationServiceImpl) publish(ctx context.Context, lecturerID string) {
	if err := s.publisher.Publish(ctx, realtime.NotificationsTopic(lecturerID)); err != nil {
		s.logger.Warn().Err(err).Str("lecturerID", lecturerID).Msg("Failed to publish notification change")
	}
}

// List returns a page of notifications, newest first, with the unread total
func (s *notificationServiceImpl) List(ctx context.Context, session Session, page helpers.Page) (*dto.NotificationListResponse, error) {
	page = page.Normalize()
	items, total, err := s.notifications.ListForLecturer(ctx, session.LecturerID, page)
	if err != nil {
		s.logger.Error().Err(err).Str("lecturerID", session.LecturerID).Msg("Failed to list notifications")
		return nil, err
	}
	unread, err := s.notifications.CountUnread(ctx, session.LecturerID)
	if err != nil {
		return nil, err
	}

	resp := &dto.NotificationListResponse{
		Notifications: make([]dto.NotificationResponse, 0, len(items)),
		UnreadCount:   unread,
		Pagination:    helpers.NewPaginationInfo(total, page),
	}
	for _, n := range items {
		resp.Notifications = append(resp.Notifications, dto.NewNotificationResponse(n))
	}
	return resp, nil
}

// UnreadCount returns the number of unread notifications
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, session Session) (*dto.UnreadCountResponse, error) {
	unread, err := s.notifications.CountUnread(ctx, session.LecturerID)
	if err != nil {
		return nil, err
	}
	return &dto.UnreadCountResponse{UnreadCount: unread}, nil
}

// MarkRead marks one of the lecturer's notifications read
func (s *notificationServiceImpl) MarkRead(ctx context.Context, session Session, id string) error {
	if err := requireID("notificationId", id); err != nil {
		return err
	}
	ok, err := s.notifications.MarkRead(ctx, id, session.LecturerID)
	if err != nil {
		s.logger.Error().Err(err).Str("notificationID", id).Msg("Failed to mark notification read")
		return err
	}
	if !ok {
		return apperrors.NewResourceNotFoundError("notification not found")
	}
	s.publish(ctx, session.LecturerID)
	return nil
}

// MarkAllRead marks every unread notification read
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, session Session) (*dto.MarkReadResponse, error) {
	n, err := s.notifications.MarkAllRead(ctx, session.LecturerID)
	if err != nil {
		s.logger.Error().Err(err).Str("lecturerID", session.LecturerID).Msg("Failed to mark notifications read")
		return nil, err
	}
	if n > 0 {
		s.publish(ctx, session.LecturerID)
	}
	return &dto.MarkReadResponse{Updated: int(n)}, nil
}

// Delete removes one of the lecturer's notifications
func (s *notificationServiceImpl) Delete(ctx context.Context, session Session, id string) error {
	if err := requireID("notificationId", id); err != nil {
		return err
	}
	ok, err := s.notifications.Delete(ctx, id, session.LecturerID)
	if err != nil {
		s.logger.Error().Err(err).Str("notificationID", id).Msg("Failed to delete notification")
		return err
	}
	if !ok {
		return apperrors.NewResourceNotFoundError("notification not found")
	}
	s.logger.Info().Str("notificationID", id).Msg("Notification deleted")
	s.publish(ctx, session.LecturerID)
	return nil
}

// Watch emits the first page of notifications, with the unread total, initially
// and after every change
func (s *notificationServiceImpl) Watch(ctx context.Context, session Session) (<-chan dto.NotificationListResponse, error) {
	self := session.LecturerID
	page := helpers.Page{}.Normalize()

	ctx, cancel := context.WithCancel(ctx)
	snaps, err := realtime.Watch(ctx, s.subscriber, realtime.NotificationsTopic(self),
		func(ctx context.Context) ([]dto.NotificationListResponse, error) {
			list, err := s.List(ctx, session, page)
			if err != nil {
				return nil, err
			}
			return []dto.NotificationListResponse{*list}, nil
		},
		func(dto.NotificationListResponse) string { return self })
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan dto.NotificationListResponse)
	go func() {
		defer close(out)
		defer cancel()
		for snap := range snaps {
			if snap.Err != nil {
				s.logger.Warn().Err(snap.Err).Str("lecturerID", self).Msg("Notification refresh failed")
				continue
			}
			select {
			case out <- snap.Docs[0]:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
