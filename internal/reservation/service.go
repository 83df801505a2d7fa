// File: internal/reservation/service.go
package reservation

import (
	"context"
	"fmt"
	"time"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/listing"
	"marketplace_backend/internal/notification"
	"marketplace_backend/internal/sale"
	"marketplace_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for reservation business logic.
type Service interface {
	CreateReservation(ctx context.Context, listingID, buyerID uuid.UUID, req ReserveRequest) (*Reservation, error)
	GetReservationStatus(ctx context.Context, listingID uuid.UUID) (*StatusResponse, error)
	CancelReservation(ctx context.Context, listingID, requesterID uuid.UUID) error
	PurgeStaleReservations(ctx context.Context) (int64, error)
}

// ServiceImplementation implements the reservation Service interface.
type ServiceImplementation struct {
	repo        Repository
	listingRepo listing.Repository
	saleRepo    sale.Repository
	userRepo    user.Repository
	notifier    notification.Service
	cfg         *config.Config
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new reservation service.
func NewService(
	repo Repository,
	listingRepo listing.Repository,
	saleRepo sale.Repository,
	userRepo user.Repository,
	notifier notification.Service,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:        repo,
		listingRepo: listingRepo,
		saleRepo:    saleRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateReservation places a hold on a listing for the requested number of
// hours. At most one live hold can exist per listing; a sold listing can
// never be reserved again.
func (s *ServiceImplementation) CreateReservation(ctx context.Context, listingID, buyerID uuid.UUID, req ReserveRequest) (*Reservation, error) {
	if req.DurationHours < s.cfg.ReservationMinHours || req.DurationHours > s.cfg.ReservationMaxHours {
		return nil, common.ErrInvalidDuration
	}

	l, err := s.listingRepo.FindByID(ctx, listingID, false)
	if err != nil {
		return nil, err
	}
	if l.OwnerID == buyerID {
		return nil, common.ErrForbidden.WithDetails("You cannot reserve your own listing.")
	}

	sold, err := s.saleRepo.FindByListingID(ctx, listingID)
	if err != nil {
		s.logger.Error("Failed to check sale record", zap.Error(err), zap.String("listingID", listingID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not create reservation.")
	}
	if sold != nil {
		return nil, common.ErrAlreadySold
	}

	now := s.now()
	res := &Reservation{
		ListingID:        listingID,
		ReservedByUserID: buyerID,
		SellerID:         l.OwnerID,
		EndTime:          now.Add(time.Duration(req.DurationHours) * time.Hour),
	}
	res.ID = uuid.New()

	if err := s.repo.Create(ctx, res, now); err != nil {
		if apiErr, ok := common.IsAPIError(err); ok {
			return nil, apiErr
		}
		s.logger.Error("Failed to create reservation", zap.Error(err), zap.String("listingID", listingID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not create reservation.")
	}

	s.logger.Info("Reservation created",
		zap.String("listingID", listingID.String()),
		zap.String("reservedBy", buyerID.String()),
		zap.Time("endTime", res.EndTime),
	)
	s.notifier.NotifyReservationCreated(ctx, l.ID, l.Title, buyerID, res.EndTime)

	return res, nil
}

// GetReservationStatus reports whether a live hold exists for the listing.
// No live hold is a normal answer, not an error.
func (s *ServiceImplementation) GetReservationStatus(ctx context.Context, listingID uuid.UUID) (*StatusResponse, error) {
	if _, err := s.listingRepo.FindByID(ctx, listingID, false); err != nil {
		return nil, err
	}

	res, err := s.repo.FindLive(ctx, listingID, s.now())
	if err != nil {
		s.logger.Error("Failed to fetch live reservation", zap.Error(err), zap.String("listingID", listingID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve reservation status.")
	}
	if res == nil {
		return &StatusResponse{IsReserved: false}, nil
	}

	status := &StatusResponse{
		IsReserved:       true,
		ReservedByUserID: &res.ReservedByUserID,
		EndTime:          &res.EndTime,
	}
	if u, err := s.userRepo.FindByID(ctx, res.ReservedByUserID); err == nil {
		status.ReservedByName = &u.DisplayName
	} else {
		s.logger.Warn("Failed to resolve reserver name",
			zap.Error(err), zap.String("userID", res.ReservedByUserID.String()))
	}
	return status, nil
}

// CancelReservation releases the listing's live hold. Only the user who
// placed the hold may release it; expiry takes care of everyone else.
func (s *ServiceImplementation) CancelReservation(ctx context.Context, listingID, requesterID uuid.UUID) error {
	res, err := s.repo.FindLive(ctx, listingID, s.now())
	if err != nil {
		s.logger.Error("Failed to fetch live reservation", zap.Error(err), zap.String("listingID", listingID.String()))
		return common.ErrInternalServer.WithDetails("Could not cancel reservation.")
	}
	if res == nil {
		return common.ErrNotFound.WithDetails("This listing has no active reservation.")
	}
	if res.ReservedByUserID != requesterID {
		return common.ErrForbidden.WithDetails("Only the user who placed this reservation can cancel it.")
	}

	if err := s.repo.Cancel(ctx, res); err != nil {
		if apiErr, ok := common.IsAPIError(err); ok {
			return apiErr
		}
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	s.logger.Info("Reservation cancelled",
		zap.String("listingID", listingID.String()),
		zap.String("cancelledBy", requesterID.String()),
	)
	return nil
}

// PurgeStaleReservations removes cancelled holds and holds that expired before
// the configured retention window. Validity never depends on these rows being
// gone; this only reclaims storage.
func (s *ServiceImplementation) PurgeStaleReservations(ctx context.Context) (int64, error) {
	cutoff := s.now().AddDate(0, 0, -s.cfg.ReservationRetentionDays)
	purged, err := s.repo.PurgeStale(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to purge stale reservations", zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not purge stale reservations.")
	}
	s.logger.Info("Purged stale reservations", zap.Int64("count", purged))
	return purged, nil
}
