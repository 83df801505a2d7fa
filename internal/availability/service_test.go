package availability

import (
	"context"
	"testing"
	"time"

	"marketplace_backend/internal/listing"
	"marketplace_backend/internal/reservation"
	"marketplace_backend/internal/sale"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockReservationRepository is a mock type for reservation.Repository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, r *reservation.Reservation, now time.Time) error {
	args := m.Called(ctx, r, now)
	return args.Error(0)
}

func (m *MockReservationRepository) FindLive(ctx context.Context, listingID uuid.UUID, now time.Time) (*reservation.Reservation, error) {
	args := m.Called(ctx, listingID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Cancel(ctx context.Context, r *reservation.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockSaleRepository is a mock type for sale.Repository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSaleRepository) FindByListingID(ctx context.Context, listingID uuid.UUID) (*sale.Sale, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Sale), args.Error(1)
}

func setupResolver(t *testing.T) (*Resolver, *MockReservationRepository, *MockSaleRepository, time.Time) {
	reservations := new(MockReservationRepository)
	sales := new(MockSaleRepository)
	resolver := NewResolver(reservations, sales)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	resolver.now = func() time.Time { return now }
	return resolver, reservations, sales, now
}

func activeTestListing() *listing.Listing {
	l := &listing.Listing{Status: listing.StatusActive}
	l.ID = uuid.New()
	return l
}

// --- Test Cases ---

func TestResolver_SoldWins(t *testing.T) {
	resolver, reservations, sales, _ := setupResolver(t)
	ctx := context.Background()
	l := activeTestListing()
	buyerID := uuid.New()

	sales.On("FindByListingID", ctx, l.ID).
		Return(&sale.Sale{ListingID: l.ID, BuyerID: &buyerID}, nil)

	avail, err := resolver.Resolve(ctx, l)

	assert.NoError(t, err)
	assert.Equal(t, listing.AvailabilitySold, avail.State)
	assert.Equal(t, buyerID, *avail.BuyerID)
	// Sold short-circuits: the ledger is not even consulted.
	reservations.AssertNotCalled(t, "FindLive", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolver_SoldWinsOverStaleReservation(t *testing.T) {
	resolver, _, sales, _ := setupResolver(t)
	ctx := context.Background()
	l := activeTestListing()

	// A listing can carry both an old reservation row and a sale record;
	// the answer is still sold.
	sales.On("FindByListingID", ctx, l.ID).
		Return(&sale.Sale{ListingID: l.ID}, nil)

	avail, err := resolver.Resolve(ctx, l)

	assert.NoError(t, err)
	assert.Equal(t, listing.AvailabilitySold, avail.State)
	assert.Nil(t, avail.BuyerID)
}

func TestResolver_LiveReservation(t *testing.T) {
	resolver, reservations, sales, now := setupResolver(t)
	ctx := context.Background()
	l := activeTestListing()
	buyerID := uuid.New()
	endTime := now.Add(24 * time.Hour)

	sales.On("FindByListingID", ctx, l.ID).Return(nil, nil)
	reservations.On("FindLive", ctx, l.ID, now).
		Return(&reservation.Reservation{ListingID: l.ID, ReservedByUserID: buyerID, EndTime: endTime}, nil)

	avail, err := resolver.Resolve(ctx, l)

	assert.NoError(t, err)
	assert.Equal(t, listing.AvailabilityReserved, avail.State)
	assert.Equal(t, buyerID, *avail.ReservedByUserID)
	assert.Equal(t, endTime, *avail.ReservedUntil)
}

func TestResolver_FallsBackToListingStatus(t *testing.T) {
	resolver, reservations, sales, now := setupResolver(t)
	ctx := context.Background()

	active := activeTestListing()
	inactive := &listing.Listing{Status: listing.StatusInactive}
	inactive.ID = uuid.New()

	sales.On("FindByListingID", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil, nil)
	reservations.On("FindLive", ctx, mock.AnythingOfType("uuid.UUID"), now).Return(nil, nil)

	avail, err := resolver.Resolve(ctx, active)
	assert.NoError(t, err)
	assert.Equal(t, listing.AvailabilityActive, avail.State)

	avail, err = resolver.Resolve(ctx, inactive)
	assert.NoError(t, err)
	assert.Equal(t, listing.AvailabilityInactive, avail.State)
}
