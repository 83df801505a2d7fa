// File: internal/listing/model.go
package listing

import (
	"context"
	"time"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/user"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// --- Main Listing Model ---

type ListingCategory string

const (
	CategoryHousing  ListingCategory = "housing"
	CategoryVehicles ListingCategory = "vehicles"
	CategoryBuySell  ListingCategory = "buy_sell"
)

type ListingStatus string

const (
	StatusActive   ListingStatus = "active"
	StatusInactive ListingStatus = "inactive"
)

type Listing struct {
	common.BaseModel
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Owner       *user.User      `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Title       string          `gorm:"type:varchar(255);not null"`
	Slug        string          `gorm:"type:varchar(280);not null;index"`
	Description string          `gorm:"type:text;not null"`
	Category    ListingCategory `gorm:"type:varchar(50);not null;index"`
	Price       float64         `gorm:"type:numeric(12,2);not null"`
	Tags        pq.StringArray  `gorm:"type:text[]"`
	Status      ListingStatus   `gorm:"type:varchar(50);not null;default:'active'"`
}

func (Listing) TableName() string {
	return "listings"
}

// --- Availability View ---

// AvailabilityState is the single externally visible state of a listing,
// composed from the sale record, the reservation ledger and the listing's own
// status, in that priority order.
type AvailabilityState string

const (
	AvailabilityActive   AvailabilityState = "active"
	AvailabilityInactive AvailabilityState = "inactive"
	AvailabilityReserved AvailabilityState = "reserved"
	AvailabilitySold     AvailabilityState = "sold"
)

// Availability is the tagged variant consumers receive instead of
// re-deriving the three-way sold/reserved/status check themselves.
type Availability struct {
	State            AvailabilityState `json:"state"`
	ReservedByUserID *uuid.UUID        `json:"reserved_by_user_id,omitempty"`
	ReservedUntil    *time.Time        `json:"reserved_until,omitempty"`
	BuyerID          *uuid.UUID        `json:"buyer_id,omitempty"`
}

// AvailabilityResolver produces the composed Availability for a listing.
// It is never persisted; every resolution re-evaluates the live predicates.
type AvailabilityResolver interface {
	Resolve(ctx context.Context, l *Listing) (*Availability, error)
}

// --- DTOs for API ---

type CreateListingRequest struct {
	Title       string          `json:"title" binding:"required,min=5,max=255"`
	Description string          `json:"description" binding:"required,min=20"`
	Category    ListingCategory `json:"category" binding:"required,oneof=housing vehicles buy_sell"`
	Price       float64         `json:"price" binding:"required,gt=0"`
	Tags        []string        `json:"tags,omitempty" binding:"omitempty,dive,max=50"`
}

type UpdateListingRequest struct {
	Title       *string  `json:"title,omitempty" binding:"omitempty,min=5,max=255"`
	Description *string  `json:"description,omitempty" binding:"omitempty,min=20"`
	Price       *float64 `json:"price,omitempty" binding:"omitempty,gt=0"`
	Tags        []string `json:"tags,omitempty" binding:"omitempty,dive,max=50"`
}

type UpdateListingStatusRequest struct {
	Status ListingStatus `json:"status" binding:"required,oneof=active inactive"`
}

type ListingSearchQuery struct {
	common.PaginationQuery
	SearchTerm string  `form:"q"`
	Category   *string `form:"category"`
	OwnerID    *string `form:"owner_id"`
	Status     string  `form:"status"`
	SortBy     string  `form:"sort_by"`
	SortOrder  string  `form:"sort_order"`
}

type ListingResponse struct {
	ID           uuid.UUID         `json:"id"`
	OwnerID      uuid.UUID         `json:"owner_id"`
	Owner        *user.UserResponse `json:"owner,omitempty"`
	Title        string            `json:"title"`
	Slug         string            `json:"slug"`
	Description  string            `json:"description"`
	Category     ListingCategory   `json:"category"`
	Price        float64           `json:"price"`
	Tags         []string          `json:"tags,omitempty"`
	Status       ListingStatus     `json:"status"`
	Availability *Availability     `json:"availability,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func ToListingResponse(l *Listing, availability *Availability) ListingResponse {
	resp := ListingResponse{
		ID:           l.ID,
		OwnerID:      l.OwnerID,
		Title:        l.Title,
		Slug:         l.Slug,
		Description:  l.Description,
		Category:     l.Category,
		Price:        l.Price,
		Tags:         l.Tags,
		Status:       l.Status,
		Availability: availability,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.Owner != nil {
		ownerResp := user.ToUserResponse(l.Owner)
		resp.Owner = &ownerResp
	}
	return resp
}
