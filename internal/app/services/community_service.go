package services

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

// communityFeedLimit bounds how many of the newest messages a feed carries
const communityFeedLimit = 500

// CommunityService defines the interface for community operations
type CommunityService interface {
	List(ctx context.Context, session Session) ([]dto.CommunityResponse, error)
	Get(ctx context.Context, session Session, id string) (*dto.CommunityResponse, error)
	Messages(ctx context.Context, session Session, id string) ([]dto.CommunityMessageResponse, error)
	Watch(ctx context.Context, session Session, id string) (<-chan dto.CommunityFeedResponse, error)
	SendText(ctx context.Context, session Session, id string, req dto.CommunityTextRequest) (*dto.CommunityMessageResponse, error)
	SendImage(ctx context.Context, session Session, id string, image io.Reader, filename string) (*dto.CommunityMessageResponse, error)
	SendPDF(ctx context.Context, session Session, id string, doc io.Reader, filename string) (*dto.CommunityMessageResponse, error)
	RequestCommunity(ctx context.Context, session Session, req dto.CreateCommunityRequest) (*dto.CommunityRequestResponse, error)
	ListRequests(ctx context.Context, session Session) ([]dto.CommunityRequestResponse, error)
}

// communityServiceImpl implements CommunityService
type communityServiceImpl struct {
	communities CommunityStore
	authz       *auth.AuthorizationService
	attachments *Attachments
	subscriber  realtime.Subscriber
	publisher   realtime.Publisher
	logger      zerolog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(
	communities CommunityStore,
	authz *auth.AuthorizationService,
	attachments *Attachments,
	subscriber realtime.Subscriber,
	publisher realtime.Publisher,
	logger zerolog.Logger,
) CommunityService {
	return &communityServiceImpl{
		communities: communities,
		authz:       authz,
		attachments: attachments,
		subscriber:  subscriber,
		publisher:   publisher,
		logger:      logger,
	}
}

// List returns the communities the lecturer belongs to
func (s *communityServiceImpl) List(ctx context.Context, session Session) ([]dto.CommunityResponse, error) {
	communities, err := s.communities.ListForLecturer(ctx, session.LecturerID)
	if err != nil {
		s.logger.Error().Err(err).Str("lecturerID", session.LecturerID).Msg("Failed to list communities")
		return nil, err
	}
	out := make([]dto.CommunityResponse, 0, len(communities))
	for _, c := range communities {
		out = append(out, dto.NewCommunityResponse(c))
	}
	return out, nil
}

// member checks the id and the lecturer's membership
func (s *communityServiceImpl) member(ctx context.Context, session Session, id string) error {
	if err := requireID("communityId", id); err != nil {
		return err
	}
	if _, err := s.communities.GetByID(ctx, id); err != nil {
		return err
	}
	return s.authz.ValidateMember(ctx, id, session.LecturerID)
}

// Get returns community details for a member
func (s *communityServiceImpl) Get(ctx context.Context, session Session, id string) (*dto.CommunityResponse, error) {
	if err := requireID("communityId", id); err != nil {
		return nil, err
	}
	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateMember(ctx, id, session.LecturerID); err != nil {
		return nil, err
	}
	resp := dto.NewCommunityResponse(*community)
	return &resp, nil
}

// Messages returns the community feed, oldest first
func (s *communityServiceImpl) Messages(ctx context.Context, session Session, id string) ([]dto.CommunityMessageResponse, error) {
	if err := s.member(ctx, session, id); err != nil {
		return nil, err
	}
	msgs, err := s.communities.Messages(ctx, id, communityFeedLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("communityID", id).Msg("Failed to load community messages")
		return nil, err
	}
	return dto.NewCommunityMessageResponses(msgs, session.LecturerID), nil
}

// Watch emits the full feed initially and after every new message
func (s *communityServiceImpl) Watch(ctx context.Context, session Session, id string) (<-chan dto.CommunityFeedResponse, error) {
	if err := s.member(ctx, session, id); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	snaps, err := realtime.Watch(ctx, s.subscriber, realtime.CommunityTopic(id),
		func(ctx context.Context) ([]models.CommunityMessage, error) {
			return s.communities.Messages(ctx, id, communityFeedLimit)
		},
		func(m models.CommunityMessage) string { return m.ID })
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan dto.CommunityFeedResponse)
	go func() {
		defer close(out)
		defer cancel()
		for snap := range snaps {
			frame := dto.CommunityFeedResponse{CommunityID: id}
			if snap.Err != nil {
				s.logger.Warn().Err(snap.Err).Str("communityID", id).Msg("Community feed refresh failed")
				frame.Error = "failed to refresh messages"
			} else {
				frame.Messages = dto.NewCommunityMessageResponses(snap.Docs, session.LecturerID)
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

func (s *communityServiceImpl) post(ctx context.Context, session Session, m *models.CommunityMessage) (*dto.CommunityMessageResponse, error) {
	lecturer, err := s.authz.ActiveLecturer(ctx, session.LecturerID)
	if err != nil {
		return nil, err
	}
	m.UserID = session.LecturerID
	m.UserName = lecturer.Name

	if err := s.communities.CreateMessage(ctx, m); err != nil {
		s.logger.Error().Err(err).Str("communityID", m.CommunityID).Msg("Failed to store community message")
		return nil, err
	}
	s.logger.Info().Str("communityID", m.CommunityID).Str("messageID", m.ID).Str("type", string(m.Type)).Msg("Community message posted")

	if err := s.publisher.Publish(ctx, realtime.CommunityTopic(m.CommunityID)); err != nil {
		s.logger.Warn().Err(err).Str("communityID", m.CommunityID).Msg("Failed to publish community change")
	}
	resp := dto.NewCommunityMessageResponses([]models.CommunityMessage{*m}, session.LecturerID)[0]
	return &resp, nil
}

// SendText posts a text message
func (s *communityServiceImpl) SendText(ctx context.Context, session Session, id string, req dto.CommunityTextRequest) (*dto.CommunityMessageResponse, error) {
	if err := s.member(ctx, session, id); err != nil {
		return nil, err
	}
	return s.post(ctx, session, &models.CommunityMessage{
		CommunityID: id,
		Type:        models.CommunityMessageText,
		Text:        strings.TrimSpace(req.Text),
	})
}

// SendImage downscales and uploads an image, then posts it
func (s *communityServiceImpl) SendImage(ctx context.Context, session Session, id string, image io.Reader, filename string) (*dto.CommunityMessageResponse, error) {
	if err := s.member(ctx, session, id); err != nil {
		return nil, err
	}
	url, err := s.attachments.UploadImage(ctx, image, filename)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, session, &models.CommunityMessage{
		CommunityID: id,
		Type:        models.CommunityMessageImage,
		FileURL:     url,
	})
}

// SendPDF uploads a PDF document, then posts it with its file name
func (s *communityServiceImpl) SendPDF(ctx context.Context, session Session, id string, doc io.Reader, filename string) (*dto.CommunityMessageResponse, error) {
	if err := s.member(ctx, session, id); err != nil {
		return nil, err
	}
	url, err := s.attachments.UploadPDF(ctx, doc, filename)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, session, &models.CommunityMessage{
		CommunityID: id,
		Type:        models.CommunityMessagePDF,
		FileURL:     url,
		FileName:    path.Base(filename),
	})
}

// RequestCommunity files a creation request for administrators
func (s *communityServiceImpl) RequestCommunity(ctx context.Context, session Session, req dto.CreateCommunityRequest) (*dto.CommunityRequestResponse, error) {
	lecturer, err := s.authz.ActiveLecturer(ctx, session.LecturerID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	for _, f := range []struct{ field, value string }{
		{"name", name},
		{"type", req.Type},
		{"description", req.Description},
		{"justification", req.Justification},
	} {
		if strings.TrimSpace(f.value) == "" {
			return nil, apperrors.NewValidationError(f.field, f.field+" is required")
		}
	}
	request := &models.CommunityRequest{
		LecturerID:    session.LecturerID,
		LecturerName:  lecturer.Name,
		Name:          name,
		Type:          strings.TrimSpace(req.Type),
		Description:   strings.TrimSpace(req.Description),
		Justification: strings.TrimSpace(req.Justification),
		Subject:       models.CommunityRequestSubject(name),
		Status:        models.CommunityRequestPending,
	}
	if err := s.communities.CreateRequest(ctx, request); err != nil {
		s.logger.Error().Err(err).Str("lecturerID", session.LecturerID).Msg("Failed to store community request")
		return nil, err
	}
	s.logger.Info().Str("requestID", request.ID).Str("name", name).Msg("Community creation requested")
	resp := dto.NewCommunityRequestResponse(*request)
	return &resp, nil
}

// ListRequests returns the lecturer's creation requests
func (s *communityServiceImpl) ListRequests(ctx context.Context, session Session) ([]dto.CommunityRequestResponse, error) {
	requests, err := s.communities.ListRequests(ctx, session.LecturerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CommunityRequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, dto.NewCommunityRequestResponse(r))
	}
	return out, nil
}
