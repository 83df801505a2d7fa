// File: internal/notification/repository.go
package notification

import (
	"context"
	"errors"
	"fmt"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByRecipientID(ctx context.Context, recipientID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	FindByID(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) (*Notification, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

// Create inserts a new notification into the database.
func (r *GORMRepository) Create(ctx context.Context, notification *Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByRecipientID retrieves a paginated list of notifications for a user, newest first.
func (r *GORMRepository) GetByRecipientID(ctx context.Context, recipientID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	var notifications []Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&Notification{}).Where("recipient_id = ?", recipientID)

	if err := query.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting notifications for user %s failed: %w", recipientID, err)
	}

	pagination := common.NewPagination(total, page, pageSize)

	offset := (page - 1) * pageSize
	if page <= 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching notifications for user %s failed: %w", recipientID, err)
	}
	return notifications, pagination, nil
}

// FindByID retrieves a specific notification, ensuring it belongs to recipientID.
func (r *GORMRepository) FindByID(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) (*Notification, error) {
	var notification Notification
	err := r.db.WithContext(ctx).Where("id = ? AND recipient_id = ?", notificationID, recipientID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Notification not found or not owned by user.")
		}
		return nil, fmt.Errorf("failed to find notification %s for user %s: %w", notificationID, recipientID, err)
	}
	return &notification, nil
}

// MarkAsRead marks a specific notification as read for a user.
func (r *GORMRepository) MarkAsRead(ctx context.Context, notificationID uuid.UUID, recipientID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)

	if result.Error != nil {
		return fmt.Errorf("failed to mark notification %s as read for user %s: %w", notificationID, recipientID, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Notification not found or not owned by user.")
	}
	return nil
}

// MarkAllAsRead marks all unread notifications for a user as read.
// It returns the count of notifications that were updated.
func (r *GORMRepository) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read for user %s: %w", recipientID, result.Error)
	}
	return result.RowsAffected, nil
}
