package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/services"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("", h.GetNotifications)
	g.GET("/grouped", h.GetGroupedNotifications)
	g.GET("/unread", h.GetUnreadCount)
	g.PUT("/read-all", h.MarkAllAsRead)
	g.PUT("/:notificationId/read", h.MarkAsRead)
	g.DELETE("/all", h.DeleteAllNotifications)
	g.DELETE("/:notificationId", h.DeleteNotification)
}

func notificationID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("notificationId"), 10, 64)
	if err != nil {
		return 0, apperr.ErrNotificationNotFound
	}
	return uint(id), nil
}

// GetNotifications returns a page of notifications plus the unread total
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	list, err := h.notificationService.List(c.Request().Context(), currentUserID(c), pagination(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"notifications": list.Notifications,
		"unreadCount":   list.UnreadCount,
		"pagination":    list.Page,
	})
}

// GetGroupedNotifications buckets notifications into today, yesterday, this week and older
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	grouped, err := h.notificationService.Grouped(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "notifications": grouped})
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	n, err := h.notificationService.UnreadCount(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "unreadCount": n})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	id, err := notificationID(c)
	if err != nil {
		return err
	}
	if err := h.notificationService.MarkRead(c.Request().Context(), currentUserID(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	if err := h.notificationService.MarkAllRead(c.Request().Context(), currentUserID(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "All notifications marked as read"})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	id, err := notificationID(c)
	if err != nil {
		return err
	}
	if err := h.notificationService.Delete(c.Request().Context(), currentUserID(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Notification deleted"})
}

func (h *NotificationHandler) DeleteAllNotifications(c echo.Context) error {
	if err := h.notificationService.DeleteAll(c.Request().Context(), currentUserID(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "All notifications deleted"})
}
