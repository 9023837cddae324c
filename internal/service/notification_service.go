package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"blogify/internal/domain"
	"blogify/internal/repository"
)

// NotificationService expone las notificaciones no leídas de un usuario.
type NotificationService struct {
	notifications repository.NotificationRepository
}

func NewNotificationService(notifications repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.notifications.ListUnreadByUser(ctx, userID)
}

// MarkRead borra la notificación: leída equivale a descartada.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) (domain.Notification, error) {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Notification{}, ErrNotificationNotFound
		}
		return domain.Notification{}, err
	}
	if n.UserID != userID {
		return domain.Notification{}, ErrNotRecipient
	}
	if err := s.notifications.Delete(ctx, id); err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}
