package services

import (
	"context"
	"time"

	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/app/repositories/user"
	"github.com/yigit/unilink/internal/domain"
	"github.com/yigit/unilink/internal/pkg/helpers"
)

//go:generate mockgen -source=dependencies.go -destination=mocks/mock_dependencies.go -package=mocks

// ConsultationStore persists consultations
type ConsultationStore interface {
	ListForLecturer(ctx context.Context, lecturerID string, q repositories.ConsultationQuery) ([]repositories.ConsultationWithStudent, error)
	CountByStatus(ctx context.Context, lecturerID string) (map[domain.Status]int, error)
	GetByID(ctx context.Context, id string) (*repositories.ConsultationWithStudent, error)
	Transition(ctx context.Context, from domain.Status, next domain.Consultation, notification *models.Notification) error
}

// MessageStore persists direct messages
type MessageStore interface {
	Direction(ctx context.Context, senderID, receiverID string) ([]domain.Message, error)
	Inbound(ctx context.Context, receiverID string) ([]domain.Message, error)
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	Delete(ctx context.Context, id, senderID string) (bool, error)
	MarkRead(ctx context.Context, readerID, senderID string, ids []string) ([]string, error)
	MarkThreadRead(ctx context.Context, readerID, senderID string) ([]string, error)
}

// NotificationStore persists lecturer notifications
type NotificationStore interface {
	ListForLecturer(ctx context.Context, lecturerID string, page helpers.Page) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, lecturerID string) (int, error)
	MarkRead(ctx context.Context, id, lecturerID string) (bool, error)
	MarkAllRead(ctx context.Context, lecturerID string) (int64, error)
	Delete(ctx context.Context, id, lecturerID string) (bool, error)
}

// CommunityStore persists communities, their feeds and creation requests
type CommunityStore interface {
	ListForLecturer(ctx context.Context, lecturerID string) ([]models.Community, error)
	GetByID(ctx context.Context, id string) (*models.Community, error)
	IsMember(ctx context.Context, communityID, lecturerID string) (bool, error)
	Messages(ctx context.Context, communityID string, limit uint64) ([]models.CommunityMessage, error)
	CreateMessage(ctx context.Context, msg *models.CommunityMessage) error
	CreateRequest(ctx context.Context, req *models.CommunityRequest) error
	ListRequests(ctx context.Context, lecturerID string) ([]models.CommunityRequest, error)
}

// EventStore persists campus events
type EventStore interface {
	List(ctx context.Context, q repositories.EventQuery) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, e *models.Event) error
}

// LecturerStore persists lecturer accounts
type LecturerStore interface {
	GetByID(ctx context.Context, id string) (*models.Lecturer, error)
	GetByEmail(ctx context.Context, email string) (*models.Lecturer, error)
	UpdateProfile(ctx context.Context, id string, p user.ProfileUpdate) error
	SetStatus(ctx context.Context, id string, status models.AccountStatus) error
	SetProfileImage(ctx context.Context, id, url string) error
	SetPushToken(ctx context.Context, id, token string) error
	SetPasswordHash(ctx context.Context, id, hash string) error
	SetOTPExpiry(ctx context.Context, id string, expiry time.Time) error
}

// StudentDirectory looks up student profiles
type StudentDirectory interface {
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Student, error)
	Search(ctx context.Context, query string, limit int) ([]models.Student, error)
}

// AdminDirectory looks up administrator profiles
type AdminDirectory interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Admin, error)
	Search(ctx context.Context, query string, limit int) ([]models.Admin, error)
}

// Clock returns the current server time
type Clock func() time.Time
