package service

import (
	"context"
	"errors"

	"vidaview-backend/internal/domain"
	"vidaview-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, unreadOnly bool, page, pageSize int32) ([]domain.Notification, int32, error) {
	page, pageSize = NormalizePage(page, pageSize)
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, unreadOnly, pageSize, offset)
}

func (s *notificationService) CountUnread(ctx context.Context, userID int32) (int32, error) {
	return s.noteRepo.CountUnread(ctx, userID)
}

// MarkAsRead only touches the caller's own notifications; anything else is reported as missing.
func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	err := s.noteRepo.MarkAsRead(ctx, notificationID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFound("notification")
	}
	return err
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID int32) (int64, error) {
	return s.noteRepo.MarkAllAsRead(ctx, userID)
}
