package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogify/internal/service"
)

// NotificationHandler mantiene dependencias para endpoints de notificaciones.
type NotificationHandler struct {
	logger        *zap.Logger
	notifications *service.NotificationService
}

func NewNotificationHandler(logger *zap.Logger, notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{logger: logger, notifications: notifications}
}

// List maneja GET /notification.
func (h *NotificationHandler) List(c *gin.Context) {
	user, _ := CurrentUser(c)
	notifications, err := h.notifications.List(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("list notifications failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkRead maneja PUT /notification/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user, _ := CurrentUser(c)
	n, err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotificationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		case errors.Is(err, service.ErrNotRecipient):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		default:
			h.logger.Error("mark notification read failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read", "notification": n})
}
