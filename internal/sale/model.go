// File: internal/sale/model.go
package sale

import (
	"time"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
)

// Sale is the permanent record of a completed transaction. Exactly one row
// may ever exist per listing; the unique index is what enforces the
// irreversibility of a sale under concurrent writers.
type Sale struct {
	common.BaseModel
	ListingID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	SellerID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	BuyerID   *uuid.UUID `gorm:"type:uuid;index"`
	SoldAt    time.Time  `gorm:"not null"`
}

func (Sale) TableName() string {
	return "sales"
}

// --- DTOs for API ---

// MarkSoldRequest carries the optional buyer for a sale. Sellers may close a
// transaction that happened off-platform, in which case no buyer is known.
type MarkSoldRequest struct {
	BuyerID *uuid.UUID `json:"buyer_id,omitempty"`
}

type SaleResponse struct {
	ID        uuid.UUID  `json:"id"`
	ListingID uuid.UUID  `json:"listing_id"`
	SellerID  uuid.UUID  `json:"seller_id"`
	BuyerID   *uuid.UUID `json:"buyer_id,omitempty"`
	SoldAt    time.Time  `json:"sold_at"`
}

func ToSaleResponse(s *Sale) SaleResponse {
	return SaleResponse{
		ID:        s.ID,
		ListingID: s.ListingID,
		SellerID:  s.SellerID,
		BuyerID:   s.BuyerID,
		SoldAt:    s.SoldAt,
	}
}
