package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/audora-app/backend/internal/models"
	"github.com/audora-app/backend/internal/repositories"
)

const defaultNotificationLimit = 15

// NotificationHandler handles the notification inbox
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notifRepo}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("", h.GetNotifications, auth)
	g.PATCH("/:id/read", h.MarkAsRead, auth)
	g.POST("/read-all", h.MarkAllAsRead, auth)
}

// GetNotifications returns a newest-first page plus the recipient's
// unread count for badge rendering.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	page, limit, offset := getPaginationParams(c, defaultNotificationLimit)

	notifications, total, err := h.notificationRepository.GetByRecipientID(userID, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notifications")
	}

	unreadCount, err := h.notificationRepository.GetUnreadCount(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notifications")
	}

	views := make([]models.NotificationView, len(notifications))
	for i, n := range notifications {
		views[i] = n.ToView()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"notifications": views,
		"pagination":    newPagination(page, limit, total),
		"unreadCount":   unreadCount,
	})
}

// MarkAsRead flips a single notification to read. Already-read rows are a
// 200 no-op; rows that are missing or belong to someone else are a 404.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	notifID, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	updated, found, err := h.notificationRepository.MarkAsRead(userID, notifID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark notification as read")
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found or you do not have permission to modify it.")
	}
	if !updated {
		return c.JSON(http.StatusOK, echo.Map{"message": "Notification was already marked as read."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read successfully."})
}

// MarkAllAsRead flips every unread notification for the recipient.
// Idempotent; the second call reports zero affected rows.
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notificationRepository.MarkAllAsRead(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark all notifications as read")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Successfully marked %d notifications as read.", count),
		"count":   count,
	})
}
