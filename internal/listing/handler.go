// File: internal/listing/handler.go
package listing

import (
	"errors"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for listing handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new listing handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for listing operations. Reads are open to
// anonymous callers; optionalAuthMW still populates user context when a token
// is present.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, optionalAuthMW gin.HandlerFunc) {
	listings := router.Group("/listings")
	{
		listings.GET("", optionalAuthMW, h.searchListings)
		listings.GET("/:listing_id", optionalAuthMW, h.getListing)

		listings.POST("", authMW, h.createListing)
		listings.PUT("/:listing_id", authMW, h.updateListing)
		listings.PATCH("/:listing_id/status", authMW, h.updateListingStatus)
		listings.DELETE("/:listing_id", authMW, h.deleteListing)
	}
}

func (h *Handler) createListing(c *gin.Context) {
	ownerID := middleware.GetUserIDFromContext(c)
	if ownerID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body: "+err.Error()))
		return
	}

	l, err := h.service.CreateListing(c.Request.Context(), ownerID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Listing created successfully.", ToListingResponse(l, nil))
}

func (h *Handler) getListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	l, avail, err := h.service.GetListingByID(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing retrieved successfully.", ToListingResponse(l, avail))
}

func (h *Handler) searchListings(c *gin.Context) {
	var query ListingSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid query parameters: "+err.Error()))
		return
	}

	responses, pagination, err := h.service.SearchListings(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Listings retrieved successfully.", responses, pagination)
}

func (h *Handler) updateListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	requesterID := middleware.GetUserIDFromContext(c)
	if requesterID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body: "+err.Error()))
		return
	}

	l, err := h.service.UpdateListing(c.Request.Context(), id, requesterID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing updated successfully.", ToListingResponse(l, nil))
}

func (h *Handler) updateListingStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	requesterID := middleware.GetUserIDFromContext(c)
	if requesterID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	requesterRole := middleware.GetUserRoleFromContext(c)

	var req UpdateListingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body: "+err.Error()))
		return
	}

	l, err := h.service.UpdateListingStatus(c.Request.Context(), id, requesterID, requesterRole, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing status updated successfully.", ToListingResponse(l, nil))
}

func (h *Handler) deleteListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	requesterID := middleware.GetUserIDFromContext(c)
	if requesterID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	requesterRole := middleware.GetUserRoleFromContext(c)

	if err := h.service.DeleteListing(c.Request.Context(), id, requesterID, requesterRole); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}
