// File: internal/message/repository.go
package message

import (
	"context"
	"fmt"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for message data operations.
type Repository interface {
	Create(ctx context.Context, msg *Message) error
	GetByListingID(ctx context.Context, listingID uuid.UUID, page, pageSize int) ([]Message, *common.Pagination, error)
	GetParticipants(ctx context.Context, listingID uuid.UUID) ([]uuid.UUID, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM message repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, msg *Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByListingID(ctx context.Context, listingID uuid.UUID, page, pageSize int) ([]Message, *common.Pagination, error) {
	var messages []Message
	var total int64

	query := r.db.WithContext(ctx).Model(&Message{}).Where("listing_id = ?", listingID)

	if err := query.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting messages for listing %s failed: %w", listingID, err)
	}

	pagination := common.NewPagination(total, page, pageSize)

	offset := (page - 1) * pageSize
	if page <= 0 {
		offset = 0
	}

	err := query.Order("created_at ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching messages for listing %s failed: %w", listingID, err)
	}
	return messages, pagination, nil
}

// GetParticipants returns the distinct set of users that appear on either
// side of the listing's conversation. System messages do not make a user
// "interested", so they are excluded.
func (r *gormRepository) GetParticipants(ctx context.Context, listingID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT sender_id AS user_id FROM messages WHERE listing_id = ? AND is_system = ?
		UNION
		SELECT DISTINCT receiver_id AS user_id FROM messages WHERE listing_id = ? AND is_system = ?`,
		listingID, false, listingID, false,
	).Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("fetching participants for listing %s failed: %w", listingID, err)
	}
	return ids, nil
}
