// File: internal/listing/repository.go
package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for listing data operations.
type Repository interface {
	Create(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id uuid.UUID, preloadOwner bool) (*Listing, error)
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
	Search(ctx context.Context, query ListingSearchQuery) ([]Listing, *common.Pagination, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ListingStatus) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM listing repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, listing *Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A similar listing might already exist or a unique constraint was violated.")
		}
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID, preloadOwner bool) (*Listing, error) {
	var listing Listing
	query := r.db.WithContext(ctx)
	if preloadOwner {
		query = query.Preload("Owner")
	}
	err := query.First(&listing, "listings.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Listing not found.")
		}
		return nil, err
	}
	return &listing, nil
}

func (r *gormRepository) Update(ctx context.Context, listing *Listing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&Listing{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Listing not found or you do not have permission to delete it.")
	}
	return nil
}

func (r *gormRepository) Search(ctx context.Context, queryParams ListingSearchQuery) ([]Listing, *common.Pagination, error) {
	var listings []Listing
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&Listing{}).Preload("Owner")

	if queryParams.SearchTerm != "" {
		searchTerm := "%" + strings.ToLower(queryParams.SearchTerm) + "%"
		dbQuery = dbQuery.Where("LOWER(listings.title) LIKE ? OR LOWER(listings.description) LIKE ?", searchTerm, searchTerm)
	}
	if queryParams.Category != nil && *queryParams.Category != "" {
		dbQuery = dbQuery.Where("listings.category = ?", *queryParams.Category)
	}
	if queryParams.OwnerID != nil && *queryParams.OwnerID != "" {
		dbQuery = dbQuery.Where("listings.owner_id = ?", *queryParams.OwnerID)
	}
	if queryParams.Status != "" {
		dbQuery = dbQuery.Where("listings.status = ?", queryParams.Status)
	}

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count listings: %w", err)
	}

	sortOrder := "ASC"
	if strings.ToLower(queryParams.SortOrder) == "desc" {
		sortOrder = "DESC"
	}
	validSortableFields := map[string]string{
		"created_at": "listings.created_at",
		"price":      "listings.price",
		"title":      "listings.title",
	}
	if dbSortField, ok := validSortableFields[queryParams.SortBy]; ok {
		dbQuery = dbQuery.Order(fmt.Sprintf("%s %s", dbSortField, sortOrder))
	} else {
		dbQuery = dbQuery.Order("listings.created_at DESC")
	}

	pagination := common.NewPagination(totalItems, queryParams.Page, queryParams.PageSize)
	dbQuery = dbQuery.Offset(queryParams.Offset()).Limit(queryParams.Limit())

	if err := dbQuery.Find(&listings).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to search listings: %w", err)
	}

	return listings, pagination, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status ListingStatus) error {
	result := r.db.WithContext(ctx).Model(&Listing{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Listing not found.")
	}
	return nil
}
