// File: internal/reservation/model.go
package reservation

import (
	"time"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
)

// Reservation is one row in the reservation ledger. Rows are never mutated
// by the passage of time: a reservation is live when cancelled is false and
// end_time is still in the future, and every reader evaluates that predicate
// against its own clock. Expiry is therefore a property of reading, not a
// state transition something has to perform.
type Reservation struct {
	common.BaseModel
	ListingID        uuid.UUID `gorm:"type:uuid;not null;index:idx_reservations_listing_live"`
	ReservedByUserID uuid.UUID `gorm:"type:uuid;not null;index"`
	SellerID         uuid.UUID `gorm:"type:uuid;not null"`
	EndTime          time.Time `gorm:"not null;index:idx_reservations_listing_live"`
	Cancelled        bool      `gorm:"not null;default:false"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// IsLive reports whether the reservation holds at the given instant.
func (r *Reservation) IsLive(now time.Time) bool {
	return !r.Cancelled && r.EndTime.After(now)
}

// --- DTOs for API ---

// ReserveRequest carries the desired hold duration. SellerID is accepted for
// client convenience but the listing's owner is always authoritative.
type ReserveRequest struct {
	DurationHours int        `json:"hours" binding:"required"`
	SellerID      *uuid.UUID `json:"seller_id,omitempty"`
}

type ReservationResponse struct {
	ID               uuid.UUID `json:"id"`
	ListingID        uuid.UUID `json:"listing_id"`
	ReservedByUserID uuid.UUID `json:"reserved_by_user_id"`
	SellerID         uuid.UUID `json:"seller_id"`
	EndTime          time.Time `json:"end_time"`
	CreatedAt        time.Time `json:"created_at"`
}

func ToReservationResponse(r *Reservation) ReservationResponse {
	return ReservationResponse{
		ID:               r.ID,
		ListingID:        r.ListingID,
		ReservedByUserID: r.ReservedByUserID,
		SellerID:         r.SellerID,
		EndTime:          r.EndTime,
		CreatedAt:        r.CreatedAt,
	}
}

// StatusResponse is the public reservation view of a listing. When no live
// hold exists only IsReserved is populated.
type StatusResponse struct {
	IsReserved       bool       `json:"is_reserved"`
	ReservedByUserID *uuid.UUID `json:"reserved_by_user_id,omitempty"`
	ReservedByName   *string    `json:"reserved_by_name,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
}
