// File: internal/message/handler.go
package message

import (
	"errors"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for message handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new message handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the listing conversation routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/listings/:listing_id/messages")
	group.Use(authMW)
	{
		group.POST("", h.sendMessage)
		group.GET("", h.getConversation)
	}
}

func (h *Handler) sendMessage(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	senderID := middleware.GetUserIDFromContext(c)
	if senderID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body: "+err.Error()))
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), listingID, senderID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Message sent successfully.", msg)
}

func (h *Handler) getConversation(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	requesterID := middleware.GetUserIDFromContext(c)
	if requesterID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	page, pageSize := common.GetPaginationParams(c)
	messages, pagination, err := h.service.GetConversation(c.Request.Context(), listingID, requesterID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Conversation retrieved successfully.", messages, pagination)
}
