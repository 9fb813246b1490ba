package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/repositories/user"
)

// Repositories holds all the repository instances
type Repositories struct {
	LecturerRepository     *user.LecturerRepository
	StudentRepository      *user.StudentRepository
	AdminRepository        *user.AdminRepository
	ConsultationRepository *ConsultationRepository
	MessageRepository      *MessageRepository
	NotificationRepository *NotificationRepository
	CommunityRepository    *CommunityRepository
	EventRepository        *EventRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		LecturerRepository:     user.NewLecturerRepository(db),
		StudentRepository:      user.NewStudentRepository(db),
		AdminRepository:        user.NewAdminRepository(db),
		ConsultationRepository: NewConsultationRepository(db),
		MessageRepository:      NewMessageRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		CommunityRepository:    NewCommunityRepository(db),
		EventRepository:        NewEventRepository(db),
	}
}
