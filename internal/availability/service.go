// File: internal/availability/service.go

// Package availability composes the sale record, the reservation ledger and
// the listing's own status into the single state consumers see. Sold always
// wins, a live reservation beats the listing status, and only then does the
// listing's active/inactive flag show through.
package availability

import (
	"context"
	"time"

	"marketplace_backend/internal/listing"
	"marketplace_backend/internal/reservation"
	"marketplace_backend/internal/sale"
)

// Resolver implements listing.AvailabilityResolver.
type Resolver struct {
	reservations reservation.Repository
	sales        sale.Repository
	now          func() time.Time
}

// NewResolver creates an availability resolver.
func NewResolver(reservations reservation.Repository, sales sale.Repository) *Resolver {
	return &Resolver{
		reservations: reservations,
		sales:        sales,
		now:          time.Now,
	}
}

// Resolve returns the composed availability for the listing. It reads, it
// never writes: an expired reservation simply stops mattering.
func (r *Resolver) Resolve(ctx context.Context, l *listing.Listing) (*listing.Availability, error) {
	sold, err := r.sales.FindByListingID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if sold != nil {
		return &listing.Availability{
			State:   listing.AvailabilitySold,
			BuyerID: sold.BuyerID,
		}, nil
	}

	res, err := r.reservations.FindLive(ctx, l.ID, r.now())
	if err != nil {
		return nil, err
	}
	if res != nil {
		return &listing.Availability{
			State:            listing.AvailabilityReserved,
			ReservedByUserID: &res.ReservedByUserID,
			ReservedUntil:    &res.EndTime,
		}, nil
	}

	state := listing.AvailabilityActive
	if l.Status == listing.StatusInactive {
		state = listing.AvailabilityInactive
	}
	return &listing.Availability{State: state}, nil
}
