// File: internal/listing/service.go
package listing

import (
	"context"
	"fmt"
	"time"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/notification"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Service defines the interface for listing business logic.
type Service interface {
	CreateListing(ctx context.Context, ownerID uuid.UUID, req CreateListingRequest) (*Listing, error)
	GetListingByID(ctx context.Context, id uuid.UUID) (*Listing, *Availability, error)
	SearchListings(ctx context.Context, query ListingSearchQuery) ([]ListingResponse, *common.Pagination, error)
	UpdateListing(ctx context.Context, id, requesterID uuid.UUID, req UpdateListingRequest) (*Listing, error)
	UpdateListingStatus(ctx context.Context, id, requesterID uuid.UUID, requesterRole string, req UpdateListingStatusRequest) (*Listing, error)
	DeleteListing(ctx context.Context, id, requesterID uuid.UUID, requesterRole string) error
}

// ServiceImplementation implements the listing Service interface.
type ServiceImplementation struct {
	repo         Repository
	availability AvailabilityResolver
	notifier     notification.Service
	logger       *zap.Logger
}

// NewService creates a new listing service.
func NewService(
	repo Repository,
	availability AvailabilityResolver,
	notifier notification.Service,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:         repo,
		availability: availability,
		notifier:     notifier,
		logger:       logger,
	}
}

// CreateListing creates a new listing owned by the given user.
func (s *ServiceImplementation) CreateListing(ctx context.Context, ownerID uuid.UUID, req CreateListingRequest) (*Listing, error) {
	l := &Listing{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Tags:        req.Tags,
		Status:      StatusActive,
	}
	l.ID = uuid.New()
	l.Slug = fmt.Sprintf("%s-%s", slug.Make(req.Title), l.ID.String()[:8])

	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("Failed to create listing", zap.Error(err), zap.String("ownerID", ownerID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not create listing.")
	}
	s.logger.Info("Listing created", zap.String("listingID", l.ID.String()), zap.String("slug", l.Slug))
	return l, nil
}

// GetListingByID fetches a listing together with its composed availability.
func (s *ServiceImplementation) GetListingByID(ctx context.Context, id uuid.UUID) (*Listing, *Availability, error) {
	l, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, nil, err
	}
	avail, err := s.availability.Resolve(ctx, l)
	if err != nil {
		s.logger.Error("Failed to resolve availability", zap.Error(err), zap.String("listingID", id.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not determine listing availability.")
	}
	return l, avail, nil
}

// SearchListings returns listings matching the query, each with availability.
func (s *ServiceImplementation) SearchListings(ctx context.Context, query ListingSearchQuery) ([]ListingResponse, *common.Pagination, error) {
	listings, pagination, err := s.repo.Search(ctx, query)
	if err != nil {
		s.logger.Error("Failed to search listings", zap.Error(err))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not search listings.")
	}

	responses := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		avail, err := s.availability.Resolve(ctx, &listings[i])
		if err != nil {
			// A single bad row must not take down the whole page.
			s.logger.Warn("Failed to resolve availability for search result",
				zap.Error(err), zap.String("listingID", listings[i].ID.String()))
			avail = nil
		}
		responses = append(responses, ToListingResponse(&listings[i], avail))
	}
	return responses, pagination, nil
}

// UpdateListing applies partial updates. A strict price decrease notifies
// everyone who has messaged about the listing.
func (s *ServiceImplementation) UpdateListing(ctx context.Context, id, requesterID uuid.UUID, req UpdateListingRequest) (*Listing, error) {
	l, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != requesterID {
		return nil, common.ErrForbidden.WithDetails("You can only update your own listings.")
	}

	oldPrice := l.Price
	if req.Title != nil {
		l.Title = *req.Title
		l.Slug = fmt.Sprintf("%s-%s", slug.Make(l.Title), l.ID.String()[:8])
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.Price != nil {
		l.Price = *req.Price
	}
	if req.Tags != nil {
		l.Tags = req.Tags
	}
	l.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, l); err != nil {
		s.logger.Error("Failed to update listing", zap.Error(err), zap.String("listingID", id.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not update listing.")
	}

	if req.Price != nil && *req.Price < oldPrice {
		s.notifier.NotifyPriceDrop(ctx, l.ID, l.Title, requesterID, oldPrice, *req.Price)
	}
	return l, nil
}

// UpdateListingStatus toggles a listing between active and inactive.
func (s *ServiceImplementation) UpdateListingStatus(ctx context.Context, id, requesterID uuid.UUID, requesterRole string, req UpdateListingStatusRequest) (*Listing, error) {
	l, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != requesterID && requesterRole != common.RoleAdmin {
		return nil, common.ErrForbidden.WithDetails("You can only manage your own listings.")
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		s.logger.Error("Failed to update listing status", zap.Error(err), zap.String("listingID", id.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not update listing status.")
	}
	l.Status = req.Status
	return l, nil
}

// DeleteListing removes a listing owned by the requester (or any listing for admins).
func (s *ServiceImplementation) DeleteListing(ctx context.Context, id, requesterID uuid.UUID, requesterRole string) error {
	if requesterRole == common.RoleAdmin {
		l, err := s.repo.FindByID(ctx, id, false)
		if err != nil {
			return err
		}
		return s.repo.Delete(ctx, id, l.OwnerID)
	}
	return s.repo.Delete(ctx, id, requesterID)
}
