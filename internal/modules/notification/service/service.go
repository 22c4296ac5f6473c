package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/modules/notification/dto"
	notifRepo "gabconcours.ga/backend/internal/modules/notification/repository"
	"gabconcours.ga/backend/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationService interface {
	// Notify records one status transition and queues its email. The caller's
	// mutation is already committed; a returned error is only meant to be logged.
	Notify(ctx context.Context, notification *entity.Notification) error
	ListForCandidate(ctx context.Context, nupcan string, query dto.ListQuery) (*dto.NotificationList, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, nupcan string) error
}

type notificationService struct {
	repo  notifRepo.NotificationRepository
	queue Queue
}

func NewNotificationService(repo notifRepo.NotificationRepository, queue Queue) NotificationService {
	return &notificationService{
		repo:  repo,
		queue: queue,
	}
}

func (s *notificationService) Notify(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	if err := s.queue.Enqueue(ctx, notification.ID); err != nil {
		return fmt.Errorf("notification %s saved but not queued: %w", notification.ID, err)
	}
	return nil
}

func (s *notificationService) ListForCandidate(ctx context.Context, nupcan string, query dto.ListQuery) (*dto.NotificationList, error) {
	nupcan = strings.TrimSpace(nupcan)
	if nupcan == "" {
		return nil, apperror.Validation("NUPCAN requis")
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	notifications, err := s.repo.ListByNupcan(ctx, nupcan, query.Limit, (query.Page-1)*query.Limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, nupcan)
	if err != nil {
		return nil, err
	}

	return &dto.NotificationList{Data: notifications, Unread: unread}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Notification introuvable")
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, nupcan string) error {
	return s.repo.MarkAllAsRead(ctx, strings.TrimSpace(nupcan))
}
