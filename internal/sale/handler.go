// File: internal/sale/handler.go
package sale

import (
	"marketplace_backend/internal/common"
	"marketplace_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for sale handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new sale handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the sale routes under a listing.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, optionalAuthMW gin.HandlerFunc) {
	listings := router.Group("/listings/:listing_id")
	{
		listings.GET("/sale", optionalAuthMW, h.getSale)
		listings.POST("/sold", authMW, h.markSold)
	}
}

func (h *Handler) markSold(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	sellerID := middleware.GetUserIDFromContext(c)
	if sellerID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	// The buyer is optional, so an empty body is acceptable here.
	var req MarkSoldRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body: "+err.Error()))
			return
		}
	}

	sold, err := h.service.MarkSold(c.Request.Context(), listingID, sellerID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing marked as sold.", ToSaleResponse(sold))
}

func (h *Handler) getSale(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	sold, err := h.service.GetSale(c.Request.Context(), listingID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if sold == nil {
		common.RespondOK(c, "Listing has not been sold.", nil)
		return
	}
	common.RespondOK(c, "Sale record retrieved successfully.", ToSaleResponse(sold))
}
