// Package services holds the lecturer portal's business logic.
//
// Services defined in this package:
//   - AuthService: lecturer login with password or one-time code, password management
//   - ProfileService: profile edits, availability status, profile picture, push token
//   - ConsultationService: consultation list, counts and lifecycle transitions
//   - MessageService and ThreadSynchronizer: direct messages and live merged threads
//   - InboxService: chat list with unread counts, directory search
//   - NotificationService: the lecturer's notification list
//   - CommunityService: community feeds, attachments and creation requests
//   - EventService: the live campus event list
package services

import (
	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/domain"
	jwtauth "github.com/yigit/unilink/internal/pkg/auth"
	"github.com/yigit/unilink/internal/pkg/filestorage"
	"github.com/yigit/unilink/internal/pkg/realtime"
)

// Settings are the tunables services need from configuration
type Settings struct {
	Policy                 domain.Policy
	Attachments            AttachmentConfig
	InboxScanWarnThreshold int
}

// Services holds all the service instances
type Services struct {
	Auth          *AuthService
	Profile       ProfileService
	Consultations ConsultationService
	Messages      MessageService
	Threads       ThreadSynchronizer
	Inbox         InboxService
	Notifications NotificationService
	Communities   CommunityService
	Events        EventService
}

// NewServices wires every service onto the repositories
func NewServices(
	repos *repositories.Repositories,
	jwtService *jwtauth.JWTService,
	uploader filestorage.Uploader,
	publisher realtime.Publisher,
	subscriber realtime.Subscriber,
	settings Settings,
	now Clock,
	logger zerolog.Logger,
) *Services {
	authz := auth.NewAuthorizationService(repos.LecturerRepository, repos.CommunityRepository)
	attachments := NewAttachments(uploader, settings.Attachments, logger.With().Str("component", "attachments").Logger())

	return &Services{
		Auth: NewAuthService(repos.LecturerRepository, jwtService, now,
			logger.With().Str("service", "auth").Logger()),
		Profile: NewProfileService(repos.LecturerRepository, attachments,
			logger.With().Str("service", "profile").Logger()),
		Consultations: NewConsultationService(repos.ConsultationRepository, repos.LecturerRepository, authz, publisher, subscriber,
			settings.Policy, now, logger.With().Str("service", "consultations").Logger()),
		Messages: NewMessageService(repos.MessageRepository, repos.StudentRepository, repos.AdminRepository,
			attachments, authz, publisher, logger.With().Str("service", "messages").Logger()),
		Threads: NewThreadSynchronizer(repos.MessageRepository, subscriber, publisher,
			logger.With().Str("service", "threads").Logger()),
		Inbox: NewInboxService(repos.MessageRepository, repos.StudentRepository, repos.AdminRepository, subscriber,
			settings.InboxScanWarnThreshold, logger.With().Str("service", "inbox").Logger()),
		Notifications: NewNotificationService(repos.NotificationRepository, publisher, subscriber,
			logger.With().Str("service", "notifications").Logger()),
		Communities: NewCommunityService(repos.CommunityRepository, authz, attachments, subscriber, publisher,
			logger.With().Str("service", "communities").Logger()),
		Events: NewEventService(repos.EventRepository, publisher, subscriber, settings.Policy.Location, now,
			logger.With().Str("service", "events").Logger()),
	}
}
