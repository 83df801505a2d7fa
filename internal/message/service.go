// File: internal/message/service.go
package message

import (
	"context"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for the message gateway.
type Service interface {
	SendMessage(ctx context.Context, listingID, senderID uuid.UUID, req SendMessageRequest) (*Message, error)
	GetConversation(ctx context.Context, listingID, requesterID uuid.UUID, page, pageSize int) ([]Message, *common.Pagination, error)
	GetParticipants(ctx context.Context, listingID uuid.UUID) ([]uuid.UUID, error)
	CreateSystemMessage(ctx context.Context, listingID, fromID, toID uuid.UUID, text string) error
}

// ServiceImplementation implements the message Service interface.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new message service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger,
	}
}

// SendMessage records a direct message between two users about a listing.
func (s *ServiceImplementation) SendMessage(ctx context.Context, listingID, senderID uuid.UUID, req SendMessageRequest) (*Message, error) {
	if req.ReceiverID == senderID {
		return nil, common.ErrBadRequest.WithDetails("You cannot message yourself.")
	}

	msg := &Message{
		ListingID:  listingID,
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Body:       req.Body,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		s.logger.Error("Failed to create message", zap.Error(err), zap.String("listingID", listingID.String()))
		return nil, common.ErrInternalServer.WithDetails("Could not send message.")
	}
	return msg, nil
}

// GetConversation returns the listing's conversation, restricted to participants.
func (s *ServiceImplementation) GetConversation(ctx context.Context, listingID, requesterID uuid.UUID, page, pageSize int) ([]Message, *common.Pagination, error) {
	participants, err := s.repo.GetParticipants(ctx, listingID)
	if err != nil {
		s.logger.Error("Failed to check conversation participants", zap.Error(err), zap.String("listingID", listingID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve conversation.")
	}
	isParticipant := false
	for _, id := range participants {
		if id == requesterID {
			isParticipant = true
			break
		}
	}
	if !isParticipant {
		return nil, nil, common.ErrForbidden.WithDetails("You are not part of this conversation.")
	}

	messages, pagination, err := s.repo.GetByListingID(ctx, listingID, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to fetch conversation", zap.Error(err), zap.String("listingID", listingID.String()))
		return nil, nil, common.ErrInternalServer.WithDetails("Could not retrieve conversation.")
	}
	return messages, pagination, nil
}

// GetParticipants exposes the interested-user set for a listing.
func (s *ServiceImplementation) GetParticipants(ctx context.Context, listingID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.GetParticipants(ctx, listingID)
}

// CreateSystemMessage posts an engine-generated message into a conversation.
func (s *ServiceImplementation) CreateSystemMessage(ctx context.Context, listingID, fromID, toID uuid.UUID, text string) error {
	msg := &Message{
		ListingID:  listingID,
		SenderID:   fromID,
		ReceiverID: toID,
		Body:       text,
		IsSystem:   true,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		s.logger.Error("Failed to create system message",
			zap.Error(err),
			zap.String("listingID", listingID.String()),
			zap.String("toID", toID.String()),
		)
		return err
	}
	return nil
}
