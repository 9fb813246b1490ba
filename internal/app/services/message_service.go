package services

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/domain"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

// MessageService defines direct message operations for the session lecturer
type MessageService interface {
	SendText(ctx context.Context, session Session, counterpartID string, req dto.SendTextRequest) (*dto.MessageResponse, error)
	SendImage(ctx context.Context, session Session, counterpartID string, image io.Reader, filename, caption string) (*dto.MessageResponse, error)
	Delete(ctx context.Context, session Session, messageID string) error
	Thread(ctx context.Context, session Session, counterpartID string) (*dto.ThreadResponse, error)
	MarkThreadRead(ctx context.Context, session Session, counterpartID string) (*dto.MarkReadResponse, error)
}

// messageServiceImpl implements MessageService
type messageServiceImpl struct {
	messages    MessageStore
	students    StudentDirectory
	admins      AdminDirectory
	attachments *Attachments
	authz       *auth.AuthorizationService
	publisher   realtime.Publisher
	logger      zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messages MessageStore,
	students StudentDirectory,
	admins AdminDirectory,
	attachments *Attachments,
	authz *auth.AuthorizationService,
	publisher realtime.Publisher,
	logger zerolog.Logger,
) MessageService {
	return &messageServiceImpl{
		messages:    messages,
		students:    students,
		admins:      admins,
		attachments: attachments,
		authz:       authz,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *messageServiceImpl) publish(ctx context.Context, senderID, receiverID string) {
	if err := s.publisher.Publish(ctx, realtime.MessageTopics(senderID, receiverID)...); err != nil {
		s.logger.Warn().Err(err).Str("senderID", senderID).Str("receiverID", receiverID).Msg("Failed to publish message change")
	}
}

func (s *messageServiceImpl) checkCounterpart(ctx context.Context, session Session, counterpartID string) error {
	if err := requireID("counterpartId", counterpartID); err != nil {
		return err
	}
	if counterpartID == session.LecturerID {
		return apperrors.NewValidationError("counterpartId", "cannot open a conversation with yourself")
	}
	_, err := resolveParticipant(ctx, s.students, s.admins, counterpartID)
	return err
}

func (s *messageServiceImpl) create(ctx context.Context, m *domain.Message) (*dto.MessageResponse, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.messages.Create(ctx, m); err != nil {
		s.logger.Error().Err(err).Str("senderID", m.SenderID).Str("receiverID", m.ReceiverID).Msg("Failed to store message")
		return nil, err
	}
	s.logger.Info().Str("messageID", m.ID).Str("type", string(m.Type)).Msg("Message sent")
	s.publish(ctx, m.SenderID, m.ReceiverID)

	resp := dto.NewMessageResponse(*m, m.SenderID)
	return &resp, nil
}

// SendText stores a text message from the lecturer to the counterpart
func (s *messageServiceImpl) SendText(ctx context.Context, session Session, counterpartID string, req dto.SendTextRequest) (*dto.MessageResponse, error) {
	if err := s.checkCounterpart(ctx, session, counterpartID); err != nil {
		return nil, err
	}
	return s.create(ctx, &domain.Message{
		SenderID:   session.LecturerID,
		ReceiverID: counterpartID,
		Type:       domain.MessageText,
		Text:       strings.TrimSpace(req.Text),
	})
}

// SendImage downscales and uploads the image, then stores the message.
// Nothing is stored when the upload fails.
func (s *messageServiceImpl) SendImage(ctx context.Context, session Session, counterpartID string, image io.Reader, filename, caption string) (*dto.MessageResponse, error) {
	if err := s.checkCounterpart(ctx, session, counterpartID); err != nil {
		return nil, err
	}
	url, err := s.attachments.UploadImage(ctx, image, filename)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(caption)
	return s.create(ctx, &domain.Message{
		SenderID:   session.LecturerID,
		ReceiverID: counterpartID,
		Type:       domain.MessageTypeFor(text, url),
		Text:       text,
		ImageURL:   url,
	})
}

// Delete removes a message sent by the lecturer
func (s *messageServiceImpl) Delete(ctx context.Context, session Session, messageID string) error {
	if err := requireID("messageId", messageID); err != nil {
		return err
	}
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateOwner(m.SenderID, session.LecturerID, "message"); err != nil {
		return err
	}
	deleted, err := s.messages.Delete(ctx, messageID, session.LecturerID)
	if err != nil {
		s.logger.Error().Err(err).Str("messageID", messageID).Msg("Failed to delete message")
		return err
	}
	if !deleted {
		return apperrors.NewResourceNotFoundError("message not found")
	}
	s.publish(ctx, m.SenderID, m.ReceiverID)
	return nil
}

// Thread fetches both directions once, merges them and marks the inbound side read
func (s *messageServiceImpl) Thread(ctx context.Context, session Session, counterpartID string) (*dto.ThreadResponse, error) {
	if err := requireID("counterpartId", counterpartID); err != nil {
		return nil, err
	}
	outbound, err := s.messages.Direction(ctx, session.LecturerID, counterpartID)
	if err != nil {
		return nil, err
	}
	inbound, err := s.messages.Direction(ctx, counterpartID, session.LecturerID)
	if err != nil {
		return nil, err
	}

	thread := domain.NewThread()
	thread.Merge(outbound)
	thread.Merge(inbound)

	if unread := thread.UnreadFor(session.LecturerID, counterpartID); len(unread) > 0 {
		marked, err := s.messages.MarkRead(ctx, session.LecturerID, counterpartID, unread)
		if err != nil {
			s.logger.Warn().Err(err).Str("counterpartID", counterpartID).Msg("Failed to mark thread read")
		} else if thread.MarkRead(marked...) > 0 {
			s.publish(ctx, counterpartID, session.LecturerID)
		}
	}

	resp := dto.NewThreadResponse(session.LecturerID, counterpartID, thread.Messages())
	return &resp, nil
}

// MarkThreadRead marks every message from the counterpart as read
func (s *messageServiceImpl) MarkThreadRead(ctx context.Context, session Session, counterpartID string) (*dto.MarkReadResponse, error) {
	if err := requireID("counterpartId", counterpartID); err != nil {
		return nil, err
	}
	marked, err := s.messages.MarkThreadRead(ctx, session.LecturerID, counterpartID)
	if err != nil {
		s.logger.Error().Err(err).Str("counterpartID", counterpartID).Msg("Failed to mark thread read")
		return nil, err
	}
	if len(marked) > 0 {
		s.publish(ctx, counterpartID, session.LecturerID)
	}
	return &dto.MarkReadResponse{Updated: len(marked)}, nil
}
