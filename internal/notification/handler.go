// File: internal/notification/handler.go
package notification

import (
	"marketplace_backend/internal/common"
	"marketplace_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for notification operations.
// All routes in this group require authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.getNotifications)
	router.PUT("/:notification_id/read", h.markNotificationAsRead)
	router.POST("/mark-all-read", h.markAllNotificationsAsRead)
}

func (h *Handler) getNotifications(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	page, pageSize := common.GetPaginationParams(c)

	notifications, pagination, err := h.service.GetNotificationsForUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Notifications retrieved successfully.", notifications, pagination)
}

func (h *Handler) markNotificationAsRead(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	notificationID, err := uuid.Parse(c.Param("notification_id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return
	}

	notif, err := h.service.MarkNotificationRead(c.Request.Context(), notificationID, userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification marked as read successfully.", notif)
}

func (h *Handler) markAllNotificationsAsRead(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	count, err := h.service.MarkAllNotificationsRead(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications marked as read successfully.", gin.H{"updated": count})
}
