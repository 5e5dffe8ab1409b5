package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/madadhq/invoice-financing/internal/application/service"
	"github.com/madadhq/invoice-financing/internal/domain/entity"
)

// NotificationHandlers contains the notification feed HTTP handlers
type NotificationHandlers struct {
	notificationService service.NotificationService
	debug               bool
	logger              Logger
}

// NewNotificationHandlers creates a new NotificationHandlers instance
func NewNotificationHandlers(notificationService service.NotificationService, debug bool, logger Logger) *NotificationHandlers {
	return &NotificationHandlers{
		notificationService: notificationService,
		debug:               debug,
		logger:              logger,
	}
}

// List handles GET /notification. Returned notifications are marked read.
func (h *NotificationHandlers) List(c *gin.Context) {
	principal, _ := principalFrom(c)

	notifications, err := h.notificationService.ListForUser(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}
	if notifications == nil {
		notifications = []*entity.Notification{}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: notifications})
}

// UnreadCount handles GET /notification/getNotificationsunread
func (h *NotificationHandlers) UnreadCount(c *gin.Context) {
	principal, _ := principalFrom(c)

	count, err := h.notificationService.UnreadCount(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"numOfUnRead": count},
	})
}
