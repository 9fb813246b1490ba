package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/domain"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

// InboxService builds the lecturer's chat list and searches the chat directory
type InboxService interface {
	Inbox(ctx context.Context, session Session) (*dto.InboxResponse, error)
	Watch(ctx context.Context, session Session) (<-chan dto.InboxResponse, error)
	UnreadCount(ctx context.Context, session Session) (*dto.UnreadCountResponse, error)
	SearchStudents(ctx context.Context, session Session, req dto.ParticipantSearchRequest) ([]dto.ParticipantResponse, error)
	SearchAdmins(ctx context.Context, session Session, req dto.ParticipantSearchRequest) ([]dto.ParticipantResponse, error)
}

// inboxServiceImpl implements InboxService
type inboxServiceImpl struct {
	messages      MessageStore
	students      StudentDirectory
	admins        AdminDirectory
	subscriber    realtime.Subscriber
	warnThreshold int
	logger        zerolog.Logger
}

// NewInboxService creates a new InboxService. A scan of more than
// warnThreshold inbound messages is logged as a warning; zero disables it.
func NewInboxService(
	messages MessageStore,
	students StudentDirectory,
	admins AdminDirectory,
	subscriber realtime.Subscriber,
	warnThreshold int,
	logger zerolog.Logger,
) InboxService {
	return &inboxServiceImpl{
		messages:      messages,
		students:      students,
		admins:        admins,
		subscriber:    subscriber,
		warnThreshold: warnThreshold,
		logger:        logger,
	}
}

// Inbox folds every inbound message into one row per counterpart
func (s *inboxServiceImpl) Inbox(ctx context.Context, session Session) (*dto.InboxResponse, error) {
	inbound, err := s.messages.Inbound(ctx, session.LecturerID)
	if err != nil {
		s.logger.Error().Err(err).Str("lecturerID", session.LecturerID).Msg("Failed to load inbound messages")
		return nil, err
	}
	return s.build(ctx, session.LecturerID, inbound)
}

func (s *inboxServiceImpl) build(ctx context.Context, self string, inbound []domain.Message) (*dto.InboxResponse, error) {
	if s.warnThreshold > 0 && len(inbound) > s.warnThreshold {
		s.logger.Warn().
			Str("lecturerID", self).
			Int("scanned", len(inbound)).
			Int("threshold", s.warnThreshold).
			Msg("Inbox scan exceeds threshold")
	}

	summaries := domain.BuildInbox(self, inbound)
	resp := &dto.InboxResponse{
		Students:    []dto.InboxEntryResponse{},
		Admins:      []dto.InboxEntryResponse{},
		TotalUnread: 0,
	}
	if len(summaries) == 0 {
		return resp, nil
	}

	ids := make([]string, 0, len(summaries))
	for _, summary := range summaries {
		ids = append(ids, summary.CounterpartID)
	}
	students, err := s.students.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, id := range ids {
		if _, ok := students[id]; !ok {
			missing = append(missing, id)
		}
	}
	admins := map[string]models.Admin{}
	if len(missing) > 0 {
		if admins, err = s.admins.GetByIDs(ctx, missing); err != nil {
			return nil, err
		}
	}

	for _, summary := range summaries {
		entry := dto.InboxEntryResponse{
			UnreadCount: summary.UnreadCount,
			LastMessage: summary.Latest.Preview(),
		}
		if !summary.Latest.CreatedAt.IsZero() {
			at := summary.Latest.CreatedAt
			entry.LastMessageAt = &at
		}

		if student, ok := students[summary.CounterpartID]; ok {
			entry.Participant = dto.NewParticipantResponse(student.AsParticipant())
			resp.Students = append(resp.Students, entry)
		} else if admin, ok := admins[summary.CounterpartID]; ok {
			entry.Participant = dto.NewParticipantResponse(admin.AsParticipant())
			resp.Admins = append(resp.Admins, entry)
		} else {
			s.logger.Warn().Str("lecturerID", self).Str("counterpartID", summary.CounterpartID).Msg("Skipping unknown chat counterpart")
			continue
		}
		resp.TotalUnread += summary.UnreadCount
	}
	return resp, nil
}

// Watch emits a rebuilt inbox whenever a message addressed to the lecturer changes
func (s *inboxServiceImpl) Watch(ctx context.Context, session Session) (<-chan dto.InboxResponse, error) {
	self := session.LecturerID
	ctx, cancel := context.WithCancel(ctx)
	snaps, err := realtime.Watch(ctx, s.subscriber, realtime.InboxTopic(self),
		func(ctx context.Context) ([]domain.Message, error) {
			return s.messages.Inbound(ctx, self)
		}, messageKey)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan dto.InboxResponse)
	go func() {
		defer close(out)
		defer cancel()
		for snap := range snaps {
			if snap.Err != nil {
				s.logger.Warn().Err(snap.Err).Str("lecturerID", self).Msg("Inbox refresh failed")
				continue
			}
			inbox, err := s.build(ctx, self, snap.Docs)
			if err != nil {
				s.logger.Warn().Err(err).Str("lecturerID", self).Msg("Inbox rebuild failed")
				continue
			}
			select {
			case out <- *inbox:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// UnreadCount is the total unread direct messages across resolvable counterparts
func (s *inboxServiceImpl) UnreadCount(ctx context.Context, session Session) (*dto.UnreadCountResponse, error) {
	inbox, err := s.Inbox(ctx, session)
	if err != nil {
		return nil, err
	}
	return &dto.UnreadCountResponse{UnreadCount: inbox.TotalUnread}, nil
}

// SearchStudents looks students up by name, email or institutional id
func (s *inboxServiceImpl) SearchStudents(ctx context.Context, session Session, req dto.ParticipantSearchRequest) ([]dto.ParticipantResponse, error) {
	students, err := s.students.Search(ctx, strings.TrimSpace(req.Query), req.Limit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", req.Query).Msg("Student search failed")
		return nil, err
	}
	out := make([]dto.ParticipantResponse, 0, len(students))
	for i := range students {
		out = append(out, dto.NewParticipantResponse(students[i].AsParticipant()))
	}
	return out, nil
}

// SearchAdmins looks administrators up by name, email or institutional id
func (s *inboxServiceImpl) SearchAdmins(ctx context.Context, session Session, req dto.ParticipantSearchRequest) ([]dto.ParticipantResponse, error) {
	admins, err := s.admins.Search(ctx, strings.TrimSpace(req.Query), req.Limit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", req.Query).Msg("Admin search failed")
		return nil, err
	}
	out := make([]dto.ParticipantResponse, 0, len(admins))
	for i := range admins {
		out = append(out, dto.NewParticipantResponse(admins[i].AsParticipant()))
	}
	return out, nil
}
