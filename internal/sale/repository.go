// File: internal/sale/repository.go
package sale

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for sale record operations.
type Repository interface {
	// Create inserts the sale record. The unique index on listing_id makes
	// this the single linearization point for "who sold it first": the
	// loser of a race gets ErrAlreadySold, never a second row.
	Create(ctx context.Context, s *Sale) error

	// FindByListingID returns (nil, nil) when the listing has not been sold.
	FindByListingID(ctx context.Context, listingID uuid.UUID) (*Sale, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM sale repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, s *Sale) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "UNIQUE constraint") {
			return common.ErrAlreadySold
		}
		return fmt.Errorf("failed to create sale record: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByListingID(ctx context.Context, listingID uuid.UUID) (*Sale, error) {
	var s Sale
	err := r.db.WithContext(ctx).First(&s, "listing_id = ?", listingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
