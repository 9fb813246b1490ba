package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/domain"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/helpers"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

const (
	defaultConsultationLimit = 100
	acceptedNoticeTitle      = "Your consultation request has been accepted"
	consultationsRelatedType = "consultations"
)

// ConsultationService defines the lecturer-side consultation operations
type ConsultationService interface {
	List(ctx context.Context, session Session, req dto.ConsultationListRequest) ([]dto.ConsultationResponse, error)
	Counts(ctx context.Context, session Session) (*dto.ConsultationCountsResponse, error)
	Get(ctx context.Context, session Session, id string) (*dto.ConsultationResponse, error)
	Accept(ctx context.Context, session Session, id string, req dto.AcceptConsultationRequest) (*dto.ConsultationResponse, error)
	Decline(ctx context.Context, session Session, id string, req dto.DeclineConsultationRequest) (*dto.ConsultationResponse, error)
	Start(ctx context.Context, session Session, id string) (*dto.StartConsultationResponse, error)
	End(ctx context.Context, session Session, id string) (*dto.ConsultationResponse, error)
	Actions(ctx context.Context, session Session, id string) (*dto.ConsultationActionsResponse, error)
	Watch(ctx context.Context, session Session, req dto.ConsultationListRequest) (<-chan dto.ConsultationFeedResponse, error)
}

// consultationServiceImpl implements ConsultationService
type consultationServiceImpl struct {
	consultations ConsultationStore
	lecturers     LecturerStore
	authz         *auth.AuthorizationService
	publisher     realtime.Publisher
	subscriber    realtime.Subscriber
	policy        domain.Policy
	now           Clock
	logger        zerolog.Logger
}

// NewConsultationService creates a new ConsultationService
func NewConsultationService(
	consultations ConsultationStore,
	lecturers LecturerStore,
	authz *auth.AuthorizationService,
	publisher realtime.Publisher,
	subscriber realtime.Subscriber,
	policy domain.Policy,
	now Clock,
	logger zerolog.Logger,
) ConsultationService {
	return &consultationServiceImpl{
		consultations: consultations,
		lecturers:     lecturers,
		authz:         authz,
		publisher:     publisher,
		subscriber:    subscriber,
		policy:        policy,
		now:           now,
		logger:        logger,
	}
}

func listQuery(req dto.ConsultationListRequest) (repositories.ConsultationQuery, error) {
	q := repositories.ConsultationQuery{
		Search: strings.TrimSpace(req.Search),
		Limit:  defaultConsultationLimit,
	}
	if req.Limit > 0 {
		q.Limit = uint64(req.Limit)
	}
	if req.Status != "" {
		status := domain.Status(req.Status)
		if !status.Valid() {
			return q, apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", req.Status))
		}
		q.Status = &status
	}
	return q, nil
}

// List returns the lecturer's consultations, newest first
func (s *consultationServiceImpl) List(ctx context.Context, session Session, req dto.ConsultationListRequest) ([]dto.ConsultationResponse, error) {
	q, err := listQuery(req)
	if err != nil {
		return nil, err
	}
	rows, err := s.consultations.ListForLecturer(ctx, session.LecturerID, q)
	if err != nil {
		s.logger.Error().Err(err).Str("lecturerID", session.LecturerID).Msg("Failed to list consultations")
		return nil, err
	}

	return consultationResponses(rows), nil
}

func consultationResponses(rows []repositories.ConsultationWithStudent) []dto.ConsultationResponse {
	out := make([]dto.ConsultationResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.NewConsultationResponse(row.Consultation, row.Student))
	}
	return out
}

// Watch emits the filtered list initially and after every transition of one
// of the lecturer's consultations
func (s *consultationServiceImpl) Watch(ctx context.Context, session Session, req dto.ConsultationListRequest) (<-chan dto.ConsultationFeedResponse, error) {
	q, err := listQuery(req)
	if err != nil {
		return nil, err
	}
	self := session.LecturerID

	ctx, cancel := context.WithCancel(ctx)
	snaps, err := realtime.Watch(ctx, s.subscriber, realtime.ConsultationsTopic(self),
		func(ctx context.Context) ([]repositories.ConsultationWithStudent, error) {
			return s.consultations.ListForLecturer(ctx, self, q)
		},
		func(row repositories.ConsultationWithStudent) string { return row.ID })
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan dto.ConsultationFeedResponse)
	go func() {
		defer close(out)
		defer cancel()
		for snap := range snaps {
			var frame dto.ConsultationFeedResponse
			if snap.Err != nil {
				s.logger.Warn().Err(snap.Err).Str("lecturerID", self).Msg("Consultation list refresh failed")
				frame.Error = "failed to refresh consultations"
			} else {
				frame.Consultations = consultationResponses(snap.Docs)
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

// Counts returns the number of consultations in each status
func (s *consultationServiceImpl) Counts(ctx context.Context, session Session) (*dto.ConsultationCountsResponse, error) {
	counts, err := s.consultations.CountByStatus(ctx, session.LecturerID)
	if err != nil {
		s.logger.Error().Err(err).Str("lecturerID", session.LecturerID).Msg("Failed to count consultations")
		return nil, err
	}
	resp := dto.NewConsultationCountsResponse(counts)
	return &resp, nil
}

// load fetches a consultation owned by the session lecturer
func (s *consultationServiceImpl) load(ctx context.Context, session Session, id string) (*repositories.ConsultationWithStudent, error) {
	if err := requireID("consultationId", id); err != nil {
		return nil, err
	}
	row, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateOwner(row.LecturerID, session.LecturerID, "consultation"); err != nil {
		return nil, err
	}
	return row, nil
}

// Get returns one consultation
func (s *consultationServiceImpl) Get(ctx context.Context, session Session, id string) (*dto.ConsultationResponse, error) {
	row, err := s.load(ctx, session, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewConsultationResponse(row.Consultation, row.Student)
	return &resp, nil
}

// apply runs ev through the policy and persists the result with a guarded update
func (s *consultationServiceImpl) apply(
	ctx context.Context,
	session Session,
	row *repositories.ConsultationWithStudent,
	ev domain.Event,
	notice func(domain.Consultation) *models.Notification,
) (*repositories.ConsultationWithStudent, error) {
	next, err := s.policy.Apply(row.Consultation, ev, s.now())
	if err != nil {
		s.logger.Warn().Err(err).
			Str("consultationID", row.ID).
			Str("status", string(row.Status)).
			Msg("Consultation transition rejected")
		return nil, err
	}

	var notification *models.Notification
	if notice != nil {
		notification = notice(next)
	}
	if err := s.consultations.Transition(ctx, row.Status, next, notification); err != nil {
		s.logger.Error().Err(err).Str("consultationID", row.ID).Msg("Failed to persist consultation transition")
		return nil, err
	}

	s.logger.Info().
		Str("consultationID", row.ID).
		Str("lecturerID", session.LecturerID).
		Str("from", string(row.Status)).
		Str("to", string(next.Status)).
		Msg("Consultation transitioned")
	s.publish(ctx, session.LecturerID)

	return &repositories.ConsultationWithStudent{Consultation: next, Student: row.Student}, nil
}

func (s *consultationServiceImpl) publish(ctx context.Context, lecturerID string) {
	if err := s.publisher.Publish(ctx, realtime.ConsultationsTopic(lecturerID)); err != nil {
		s.logger.Warn().Err(err).Str("lecturerID", lecturerID).Msg("Failed to publish consultation change")
	}
}

// Accept schedules a pending consultation and notifies the student in the same transaction
func (s *consultationServiceImpl) Accept(ctx context.Context, session Session, id string, req dto.AcceptConsultationRequest) (*dto.ConsultationResponse, error) {
	row, err := s.load(ctx, session, id)
	if err != nil {
		return nil, err
	}
	lecturer, err := s.authz.ActiveLecturer(ctx, session.LecturerID)
	if err != nil {
		return nil, err
	}

	ev := domain.Accept{
		MeetingType: req.MeetingType,
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
		Location:    req.Location,
	}
	updated, err := s.apply(ctx, session, row, ev, func(next domain.Consultation) *models.Notification {
		return s.acceptedNotice(lecturer, next)
	})
	if err != nil {
		return nil, err
	}
	resp := dto.NewConsultationResponse(updated.Consultation, updated.Student)
	return &resp, nil
}

func (s *consultationServiceImpl) acceptedNotice(lecturer *models.Lecturer, c domain.Consultation) *models.Notification {
	scheduled := ""
	if c.ScheduledAt != nil {
		scheduled = helpers.FormatSchedule(*c.ScheduledAt, s.policy.Location)
	}
	return &models.Notification{
		RecipientType:      models.RecipientStudent,
		LecturerID:         c.LecturerID,
		StudentID:          c.StudentID,
		MessageDescription: acceptedNoticeTitle,
		MessageText:        fmt.Sprintf("Your consultation request has been accepted by %s. Scheduled for %s", lecturer.Name, scheduled),
		RelatedType:        consultationsRelatedType,
		RelatedID:          c.ID,
	}
}

// Decline rejects a pending consultation
func (s *consultationServiceImpl) Decline(ctx context.Context, session Session, id string, req dto.DeclineConsultationRequest) (*dto.ConsultationResponse, error) {
	row, err := s.load(ctx, session, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.apply(ctx, session, row, domain.Decline{Reason: req.Reason}, nil)
	if err != nil {
		return nil, err
	}
	resp := dto.NewConsultationResponse(updated.Consultation, updated.Student)
	return &resp, nil
}

// Start opens the session; online sessions return the lecturer's meeting link
func (s *consultationServiceImpl) Start(ctx context.Context, session Session, id string) (*dto.StartConsultationResponse, error) {
	row, err := s.load(ctx, session, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.apply(ctx, session, row, domain.Start{}, nil)
	if err != nil {
		return nil, err
	}

	resp := &dto.StartConsultationResponse{
		Consultation: dto.NewConsultationResponse(updated.Consultation, updated.Student),
	}
	if updated.Mode == domain.ModeOnline {
		lecturer, err := s.lecturers.GetByID(ctx, session.LecturerID)
		if err != nil {
			s.logger.Warn().Err(err).Str("lecturerID", session.LecturerID).Msg("Failed to load meeting link")
		} else {
			resp.MeetLink = lecturer.GoogleMeetLink
		}
	}
	return resp, nil
}

// End closes a running session
func (s *consultationServiceImpl) End(ctx context.Context, session Session, id string) (*dto.ConsultationResponse, error) {
	row, err := s.load(ctx, session, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.apply(ctx, session, row, domain.End{}, nil)
	if err != nil {
		return nil, err
	}
	resp := dto.NewConsultationResponse(updated.Consultation, updated.Student)
	return &resp, nil
}

// Actions evaluates which session controls apply at server time
func (s *consultationServiceImpl) Actions(ctx context.Context, session Session, id string) (*dto.ConsultationActionsResponse, error) {
	row, err := s.load(ctx, session, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &dto.ConsultationActionsResponse{
		Phase:    row.Phase().String(),
		CanStart: s.policy.CanStart(row.Consultation, now),
		CanEnd:   s.policy.CanEnd(row.Consultation),
		At:       now,
	}, nil
}
