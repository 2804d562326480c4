package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/services"
)

// MessageHandler handles direct message HTTP requests
type MessageHandler struct {
	messageService *services.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// RegisterMessageRoutes registers message routes. Static paths go before /:userId.
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("", h.GetConversations)
	g.GET("/unread", h.GetUnreadCount)
	g.GET("/:userId", h.GetConversation)
	g.POST("/:userId", h.SendMessage)
	g.PUT("/:userId/read", h.MarkAsRead)
	g.DELETE("/:messageId", h.DeleteMessage)
}

// SendMessage accepts "text" and an optional "image" file
func (h *MessageHandler) SendMessage(c echo.Context) error {
	toID, err := objectIDParam(c, "userId", apperr.ErrUserNotFound)
	if err != nil {
		return err
	}
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var files uploads
	defer files.Close()
	image, err := files.file(c, "image")
	if err != nil {
		return err
	}

	msg, err := h.messageService.SendMessage(c.Request().Context(), currentUserID(c), toID, req.Text, image)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": msg})
}

// GetConversation returns one page of the thread with userId, oldest first, and marks it seen
func (h *MessageHandler) GetConversation(c echo.Context) error {
	otherID, err := objectIDParam(c, "userId", apperr.ErrUserNotFound)
	if err != nil {
		return err
	}
	page, err := h.messageService.GetConversation(c.Request().Context(), currentUserID(c), otherID, pagination(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "messages": page.Messages, "recipient": page.Recipient})
}

// GetConversations returns the inbox
func (h *MessageHandler) GetConversations(c echo.Context) error {
	conversations, err := h.messageService.GetConversations(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "conversations": conversations})
}

func (h *MessageHandler) MarkAsRead(c echo.Context) error {
	otherID, err := objectIDParam(c, "userId", apperr.ErrUserNotFound)
	if err != nil {
		return err
	}
	if err := h.messageService.MarkConversationRead(c.Request().Context(), currentUserID(c), otherID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Messages marked as read"})
}

func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	messageID, err := objectIDParam(c, "messageId", apperr.ErrMessageNotFound)
	if err != nil {
		return err
	}
	if err := h.messageService.DeleteMessage(c.Request().Context(), currentUserID(c), messageID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Message deleted"})
}

func (h *MessageHandler) GetUnreadCount(c echo.Context) error {
	n, err := h.messageService.UnreadCount(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "unreadCount": n})
}
