package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

// EventService defines operations on the campus event list
type EventService interface {
	List(ctx context.Context, session Session, req dto.EventListRequest) (*dto.EventListResponse, error)
	Get(ctx context.Context, session Session, id string) (*dto.EventResponse, error)
	Watch(ctx context.Context, session Session, req dto.EventListRequest) (<-chan dto.EventListResponse, error)
	Create(ctx context.Context, req dto.CreateEventRequest) (*dto.EventResponse, error)
}

// eventServiceImpl implements EventService
type eventServiceImpl struct {
	events     EventStore
	publisher  realtime.Publisher
	subscriber realtime.Subscriber
	location   *time.Location
	now        Clock
	logger     zerolog.Logger
}

// NewEventService creates a new EventService. loc decides where "today" starts
// for the upcoming filter.
func NewEventService(events EventStore, publisher realtime.Publisher, subscriber realtime.Subscriber, loc *time.Location, now Clock, logger zerolog.Logger) EventService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &eventServiceImpl{
		events:     events,
		publisher:  publisher,
		subscriber: subscriber,
		location:   loc,
		now:        now,
		logger:     logger,
	}
}

func (s *eventServiceImpl) query(req dto.EventListRequest) repositories.EventQuery {
	q := repositories.EventQuery{}
	if req.Limit > 0 {
		q.Limit = uint64(req.Limit)
	}
	if req.Upcoming {
		y, m, d := s.now().In(s.location).Date()
		q.From = time.Date(y, m, d, 0, 0, 0, 0, s.location)
	}
	return q
}

// List returns active events, soonest first
func (s *eventServiceImpl) List(ctx context.Context, session Session, req dto.EventListRequest) (*dto.EventListResponse, error) {
	events, err := s.events.List(ctx, s.query(req))
	if err != nil {
		s.logger.Error().Err(err).Str("lecturerID", session.LecturerID).Msg("Failed to list events")
		return nil, err
	}
	resp := dto.NewEventListResponse(events, s.now())
	return &resp, nil
}

// Get returns one active event
func (s *eventServiceImpl) Get(ctx context.Context, session Session, id string) (*dto.EventResponse, error) {
	if err := requireID("eventId", id); err != nil {
		return nil, err
	}
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewEventResponse(*e, s.now())
	return &resp, nil
}

// Watch emits the event list initially and after every change
func (s *eventServiceImpl) Watch(ctx context.Context, session Session, req dto.EventListRequest) (<-chan dto.EventListResponse, error) {
	q := s.query(req)

	ctx, cancel := context.WithCancel(ctx)
	snaps, err := realtime.Watch(ctx, s.subscriber, realtime.EventsTopic(),
		func(ctx context.Context) ([]models.Event, error) {
			return s.events.List(ctx, q)
		},
		func(e models.Event) string { return e.ID })
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan dto.EventListResponse)
	go func() {
		defer close(out)
		defer cancel()
		for snap := range snaps {
			var frame dto.EventListResponse
			if snap.Err != nil {
				s.logger.Warn().Err(snap.Err).Str("lecturerID", session.LecturerID).Msg("Event list refresh failed")
				frame.Events = []dto.EventResponse{}
				frame.Error = "failed to refresh events"
			} else {
				frame = dto.NewEventListResponse(snap.Docs, s.now())
			}
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Create stores a new active event and signals every event list watcher
func (s *eventServiceImpl) Create(ctx context.Context, req dto.CreateEventRequest) (*dto.EventResponse, error) {
	e := models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		HostedBy:    strings.TrimSpace(req.HostedBy),
		Location:    strings.TrimSpace(req.Location),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		StartDate:   req.StartDate,
		StartTime:   strings.TrimSpace(req.StartTime),
		Status:      models.EventActive,
		CreatedBy:   req.CreatedBy,
	}
	switch {
	case e.Title == "":
		return nil, apperrors.NewValidationError("title", "title is required")
	case e.HostedBy == "":
		return nil, apperrors.NewValidationError("hostedBy", "host is required")
	case e.StartDate.IsZero():
		return nil, apperrors.NewValidationError("startDate", "start date is required")
	}

	if err := s.events.Create(ctx, &e); err != nil {
		s.logger.Error().Err(err).Str("title", e.Title).Msg("Failed to create event")
		return nil, err
	}
	s.logger.Info().Str("eventID", e.ID).Str("title", e.Title).Msg("Event created")

	if err := s.publisher.Publish(ctx, realtime.EventsTopic()); err != nil {
		s.logger.Warn().Err(err).Str("eventID", e.ID).Msg("Failed to publish event change")
	}
	resp := dto.NewEventResponse(e, s.now())
	return &resp, nil
}
