package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/services"
	"github.com/anonto42/pingup/backend/pkg/logging"
	"github.com/anonto42/pingup/backend/pkg/webhook"
)

// WebhookHandler receives signed identity-provider events
type WebhookHandler struct {
	userService *services.UserService
	verifier    *webhook.Verifier
}

// NewWebhookHandler creates a WebhookHandler. A nil verifier rejects every delivery.
func NewWebhookHandler(userService *services.UserService, verifier *webhook.Verifier) *WebhookHandler {
	return &WebhookHandler{userService: userService, verifier: verifier}
}

func (h *WebhookHandler) RegisterWebhookRoutes(g *echo.Group) {
	g.POST("/webhook", h.HandleIdentityWebhook)
}

// HandleIdentityWebhook verifies the svix signature over the raw body before decoding it
func (h *WebhookHandler) HandleIdentityWebhook(c echo.Context) error {
	if h.verifier == nil {
		return apperr.Internal("Webhook secret not configured", nil)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperr.Validation("Invalid request payload")
	}
	if err := h.verifier.Verify(c.Request().Header, body); err != nil {
		logging.Ctx(c.Request().Context()).Warn().Err(err).Msg("webhook verification failed")
		return apperr.Validation("Webhook verification failed")
	}

	var evt models.IdentityEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return apperr.Validation("Invalid webhook payload")
	}
	if err := h.userService.HandleIdentityEvent(c.Request().Context(), evt); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Webhook processed"})
}
