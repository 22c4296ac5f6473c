package repository

import (
	"context"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	ListByNupcan(ctx context.Context, nupcan string, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, nupcan string) error
	MarkEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error
	FindUnsent(ctx context.Context, from, to time.Time, limit int) ([]uuid.UUID, error)
	CountUnread(ctx context.Context, nupcan string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	var notification entity.Notification
	if err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) ListByNupcan(ctx context.Context, nupcan string, limit, offset int) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := r.db.WithContext(ctx).Where("nupcan = ?", nupcan).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&entity.Notification{}).Where("id = ?", id).Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, nupcan string) error {
	return r.db.WithContext(ctx).Model(&entity.Notification{}).Where("nupcan = ? AND is_read = ?", nupcan, false).Update("is_read", true).Error
}

// MarkEmailSent stamps the row only once; a second call leaves the first timestamp.
func (r *notificationRepository) MarkEmailSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ? AND email_sent_at IS NULL", id).
		Update("email_sent_at", at).Error
}

// FindUnsent returns ids of rows created in [from, to) that were never emailed, oldest first.
func (r *notificationRepository) FindUnsent(ctx context.Context, from, to time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("email_sent_at IS NULL AND created_at >= ? AND created_at < ?", from, to).
		Order("created_at asc").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *notificationRepository) CountUnread(ctx context.Context, nupcan string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).Where("nupcan = ? AND is_read = ?", nupcan, false).Count(&count).Error
	return count, err
}
