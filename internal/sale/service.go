// File: internal/sale/service.go
package sale

import (
	"context"
	"time"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/listing"
	"marketplace_backend/internal/message"
	"marketplace_backend/internal/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for sale record business logic.
type Service interface {
	MarkSold(ctx context.Context, listingID, sellerID uuid.UUID, req MarkSoldRequest) (*Sale, error)
	GetSale(ctx context.Context, listingID uuid.UUID) (*Sale, error)
}

// ServiceImplementation implements the sale Service interface.
type ServiceImplementation struct {
	repo        Repository
	listingRepo listing.Repository
	notifier    notification.Service
	messages    message.Service
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new sale service.
func NewService(
	repo Repository,
	listingRepo listing.Repository,
	notifier notification.Service,
	messages message.Service,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:        repo,
		listingRepo: listingRepo,
		notifier:    notifier,
		messages:    messages,
		logger:      logger,
		now:         time.Now,
	}
}

// MarkSold records the listing's one and only sale. Repeating the call, from
// any caller, yields ALREADY_SOLD; the first record is never replaced.
func (s *ServiceImplementation) MarkSold(ctx context.Context, listingID, sellerID uuid.UUID, req MarkSoldRequest) (*Sale, error) {
	l, err := s.listingRepo.FindByID(ctx, listingID, false)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != sellerID {
		return nil, common.ErrForbidden.WithDetails("Only the listing's owner can mark it as sold.")
	}
	if req.BuyerID != nil && *req.BuyerID == sellerID {
		return nil, common.ErrBadRequest.WithDetails("You cannot be the buyer of your own listing.")
	}

	sold := &Sale{
		ListingID: listingID,
		SellerID:  sellerID,
		BuyerID:   req.BuyerID,
		SoldAt:    s.now(),
	}
	sold.ID = uuid.New()

	if err := s.repo.Create(ctx, sold); err != nil {
		if apiErr, ok := common.IsAPIError(err); ok {
			return nil, apiErr
		}
		s.logger.Error("Failed to create sale record", zap.Error(err), zap.String("listingID", listingID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not mark listing as sold.")
	}

	s.logger.Info("Listing sold",
		zap.String("listingID", listingID.String()),
		zap.String("sellerID", sellerID.String()),
	)
	s.notifier.NotifySold(ctx, l.ID, l.Title, sellerID, req.BuyerID)

	if req.BuyerID != nil {
		text := "This listing has been marked as sold. If the transaction went well, please take a moment to rate each other."
		if err := s.messages.CreateSystemMessage(ctx, listingID, sellerID, *req.BuyerID, text); err != nil {
			// The sale already stands; a missing follow-up message is not
			// worth failing it over.
			s.logger.Warn("Failed to post post-sale system message",
				zap.Error(err), zap.String("listingID", listingID.String()))
		}
	}
	return sold, nil
}

// GetSale returns the listing's sale record, or (nil, nil) when it has not
// been sold.
func (s *ServiceImplementation) GetSale(ctx context.Context, listingID uuid.UUID) (*Sale, error) {
	if _, err := s.listingRepo.FindByID(ctx, listingID, false); err != nil {
		return nil, err
	}

	sold, err := s.repo.FindByListingID(ctx, listingID)
	if err != nil {
		s.logger.Error("Failed to fetch sale record", zap.Error(err), zap.String("listingID", listingID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve sale record.")
	}
	return sold, nil
}
