// File: internal/reservation/handler.go
package reservation

import (
	"errors"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for reservation handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new reservation handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the reservation routes under a listing.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, optionalAuthMW, adminRoleMW gin.HandlerFunc) {
	listings := router.Group("/listings/:listing_id")
	{
		listings.GET("/reservation", optionalAuthMW, h.getReservationStatus)
		listings.POST("/reserve", authMW, h.createReservation)
		listings.POST("/reservation/cancel", authMW, h.cancelReservation)
	}

	adminGroup := router.Group("/admin/reservations")
	adminGroup.Use(authMW)
	adminGroup.Use(adminRoleMW)
	{
		adminGroup.POST("/purge", h.purgeStale)
	}
}

func (h *Handler) createReservation(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	buyerID := middleware.GetUserIDFromContext(c)
	if buyerID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body: "+err.Error()))
		return
	}

	res, err := h.service.CreateReservation(c.Request.Context(), listingID, buyerID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing reserved successfully.", ToReservationResponse(res))
}

func (h *Handler) getReservationStatus(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return
	}

	status, err := h.service.GetReservationStatus(c.Request.Context(), listingID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Reservation status retrieved successfully.", status)
}

func (h *Handler) cancelReservation(c *gin.Context) {
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

	if err := h.service.CancelReservation(c.Request.Context(), listingID, requesterID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Reservation cancelled successfully.", nil)
}

func (h *Handler) purgeStale(c *gin.Context) {
	purged, err := h.service.PurgeStaleReservations(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Stale reservations purged.", gin.H{"purged_count": purged})
}
