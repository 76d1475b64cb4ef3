package service

import (
	"errors"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"estudiapro_backend/internal/util"
	"estudiapro_backend/pkg/logger"
	"estudiapro_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier creates an in-app notification for a user.
type Notifier interface {
	Notify(userID uint, kind model.NotificationType, title, message, link string) (*model.Notification, error)
}

type NotificationService struct {
	Repo *repository.NotificationRepository
	Hub  *NotificationHub
}

func NewNotificationService(repo *repository.NotificationRepository, hub *NotificationHub) *NotificationService {
	return &NotificationService{Repo: repo, Hub: hub}
}

// Notify stores the notification and pushes it to the user's open sockets.
func (s *NotificationService) Notify(userID uint, kind model.NotificationType, title, message, link string) (*model.Notification, error) {
	n := &model.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.Repo.Create(n); err != nil {
		return nil, err
	}
	monitoring.NotificationsSent.WithLabelValues(string(kind)).Inc()

	if s.Hub != nil {
		s.Hub.Push([]uint{userID}, WSMessage{Type: "NOTIFICATION", Data: n})
	}
	logger.Log.Debug("notification created", zap.Uint("userID", userID), zap.String("type", string(kind)))
	return n, nil
}

func (s *NotificationService) List(userID uint, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	return s.Repo.List(userID, unreadOnly, page, limit)
}

func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	return s.Repo.CountUnread(userID)
}

func (s *NotificationService) MarkRead(userID, id uint) error {
	n, err := s.Repo.FindForUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotificationNotFound
		}
		return err
	}
	if n.Read {
		return nil
	}
	return s.Repo.MarkRead(n.ID)
}

func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	return s.Repo.MarkAllRead(userID)
}
