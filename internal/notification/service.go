// File: internal/notification/service.go
package notification

import (
	"context"
	"fmt"
	"time"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParticipantSource supplies the set of users who exchanged messages about a
// listing. The message gateway implements it.
type ParticipantSource interface {
	GetParticipants(ctx context.Context, listingID uuid.UUID) ([]uuid.UUID, error)
}

// Service defines the interface for notification fan-out and inbox access.
type Service interface {
	CreateNotification(ctx context.Context, recipientID, listingID uuid.UUID, notifType NotificationType, title, message string, metadata Metadata) (*Notification, error)

	// Fan-out entry points. These never return an error to the triggering
	// operation: per-recipient failures are logged and skipped.
	NotifyReservationCreated(ctx context.Context, listingID uuid.UUID, listingTitle string, buyerID uuid.UUID, endTime time.Time)
	NotifySold(ctx context.Context, listingID uuid.UUID, listingTitle string, sellerID uuid.UUID, buyerID *uuid.UUID)
	NotifyPriceDrop(ctx context.Context, listingID uuid.UUID, listingTitle string, setterID uuid.UUID, oldPrice, newPrice float64)

	GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID uuid.UUID) (*Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ServiceImplementation implements the notification Service interface.
type ServiceImplementation struct {
	repo         Repository
	participants ParticipantSource
	logger       *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, participants ParticipantSource, logger *zap.Logger) Service {
	return &ServiceImplementation{
		repo:         repo,
		participants: participants,
		logger:       logger,
	}
}

// CreateNotification persists a single notification for one recipient.
func (s *ServiceImplementation) CreateNotification(
	ctx context.Context,
	recipientID, listingID uuid.UUID,
	notifType NotificationType,
	title, message string,
	metadata Metadata,
) (*Notification, error) {
	notif := &Notification{
		RecipientID: recipientID,
		ListingID:   listingID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Metadata:    metadata,
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		s.logger.Error("Failed to create notification",
			zap.Error(err),
			zap.String("recipientID", recipientID.String()),
			zap.String("listingID", listingID.String()),
			zap.String("type", string(notifType)),
		)
		return nil, common.ErrInternalServer.WithDetails("Could not create notification.")
	}
	return notif, nil
}

// fanOut derives recipients from the message participants of the listing,
// excludes the user who caused the event and delivers independently per
// recipient. One failed write never aborts delivery to the rest.
func (s *ServiceImplementation) fanOut(
	ctx context.Context,
	listingID uuid.UUID,
	causerID uuid.UUID,
	notifType NotificationType,
	title, message string,
	metadata Metadata,
) {
	participants, err := s.participants.GetParticipants(ctx, listingID)
	if err != nil {
		s.logger.Error("Failed to derive notification recipients",
			zap.Error(err),
			zap.String("listingID", listingID.String()),
			zap.String("type", string(notifType)),
		)
		return
	}

	delivered := 0
	for _, recipientID := range participants {
		if recipientID == causerID {
			continue
		}
		if _, err := s.CreateNotification(ctx, recipientID, listingID, notifType, title, message, metadata); err != nil {
			s.logger.Warn("Skipping undeliverable notification recipient",
				zap.Error(err),
				zap.String("recipientID", recipientID.String()),
				zap.String("listingID", listingID.String()),
			)
			continue
		}
		delivered++
	}

	s.logger.Info("Notification fan-out completed",
		zap.String("listingID", listingID.String()),
		zap.String("type", string(notifType)),
		zap.Int("recipients", delivered),
	)
}

// NotifyReservationCreated informs every interested user except the buyer.
func (s *ServiceImplementation) NotifyReservationCreated(ctx context.Context, listingID uuid.UUID, listingTitle string, buyerID uuid.UUID, endTime time.Time) {
	title := "Listing reserved"
	message := fmt.Sprintf("'%s' has been reserved by another buyer until %s.", listingTitle, endTime.UTC().Format(time.RFC3339))
	s.fanOut(ctx, listingID, buyerID, TypeReservation, title, message, Metadata{
		"reserved_by": buyerID.String(),
		"end_time":    endTime.UTC().Format(time.RFC3339),
	})
}

// NotifySold informs every interested user except the seller.
func (s *ServiceImplementation) NotifySold(ctx context.Context, listingID uuid.UUID, listingTitle string, sellerID uuid.UUID, buyerID *uuid.UUID) {
	title := "Listing sold"
	message := fmt.Sprintf("'%s' has been sold and is no longer available.", listingTitle)
	metadata := Metadata{}
	if buyerID != nil {
		metadata["buyer_id"] = buyerID.String()
	}
	s.fanOut(ctx, listingID, sellerID, TypeSold, title, message, metadata)
}

// NotifyPriceDrop informs every interested user except the price setter.
// It only fires when the new price is strictly lower than the old one.
func (s *ServiceImplementation) NotifyPriceDrop(ctx context.Context, listingID uuid.UUID, listingTitle string, setterID uuid.UUID, oldPrice, newPrice float64) {
	if newPrice >= oldPrice {
		return
	}
	discount := oldPrice - newPrice
	title := "Price drop"
	message := fmt.Sprintf("The price of '%s' dropped from %.2f to %.2f. You save %.2f.", listingTitle, oldPrice, newPrice, discount)
	s.fanOut(ctx, listingID, setterID, TypePriceDrop, title, message, Metadata{
		"old_price": oldPrice,
		"new_price": newPrice,
		"discount":  discount,
	})
}

// GetNotificationsForUser returns the recipient-scoped inbox, newest first.
func (s *ServiceImplementation) GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Notification, *common.Pagination, error) {
	notifications, pagination, err := s.repo.GetByRecipientID(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to fetch notifications", zap.Error(err), zap.String("userID", userID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}
	return notifications, pagination, nil
}

// MarkNotificationRead flips the read flag and returns the updated notification.
func (s *ServiceImplementation) MarkNotificationRead(ctx context.Context, notificationID, userID uuid.UUID) (*Notification, error) {
	if err := s.repo.MarkAsRead(ctx, notificationID, userID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, notificationID, userID)
}

// MarkAllNotificationsRead marks the whole inbox read and reports how many changed.
func (s *ServiceImplementation) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications read", zap.Error(err), zap.String("userID", userID.String()))
		return 0, common.ErrInternalServer.WithDetails("Could not update notifications.")
	}
	return count, nil
}
