package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/services"
)

// ConnectionHandler handles follow/unfollow HTTP requests
type ConnectionHandler struct {
	graphService *services.GraphService
}

// NewConnectionHandler creates a new ConnectionHandler
func NewConnectionHandler(graphService *services.GraphService) *ConnectionHandler {
	return &ConnectionHandler{graphService: graphService}
}

// RegisterConnectionRoutes registers follow graph routes
func (h *ConnectionHandler) RegisterConnectionRoutes(g *echo.Group) {
	g.POST("/follow/:userId", h.FollowUser)
	g.POST("/unfollow/:userId", h.UnfollowUser)
	g.GET("/followers/:userId", h.GetFollowers)
	g.GET("/following/:userId", h.GetFollowing)
	g.GET("/connections", h.GetConnections)
	g.GET("/status/:userId", h.CheckFollowStatus)
}

// FollowUser follows a user
func (h *ConnectionHandler) FollowUser(c echo.Context) error {
	targetID, err := objectIDParam(c, "userId", apperr.ErrUserNotFound)
	if err != nil {
		return err
	}
	if err := h.graphService.Follow(c.Request().Context(), currentUserID(c), targetID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "User followed successfully", "isFollowing": true})
}

// UnfollowUser unfollows a user
func (h *ConnectionHandler) UnfollowUser(c echo.Context) error {
	targetID, err := objectIDParam(c, "userId", apperr.ErrUserNotFound)
	if err != nil {
		return err
	}
	if err := h.graphService.Unfollow(c.Request().Context(), currentUserID(c), targetID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "User unfollowed successfully", "isFollowing": false})
}

func (h *ConnectionHandler) GetFollowers(c echo.Context) error {
	userID, err := objectIDParam(c, "userId", apperr.ErrUserNotFound)
	if err != nil {
		return err
	}
	list, err := h.graphService.ListFollowers(c.Request().Context(), userID, pagination(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "followers": list.Users, "total": list.Total})
}

func (h *ConnectionHandler) GetFollowing(c echo.Context) error {
	userID, err := objectIDParam(c, "userId", apperr.ErrUserNotFound)
	if err != nil {
		return err
	}
	list, err := h.graphService.ListFollowing(c.Request().Context(), userID, pagination(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "following": list.Users, "total": list.Total})
}

// GetConnections lists the caller's mutual follows
func (h *ConnectionHandler) GetConnections(c echo.Context) error {
	list, err := h.graphService.ListConnections(c.Request().Context(), currentUserID(c), pagination(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "connections": list.Users, "total": list.Total})
}

func (h *ConnectionHandler) CheckFollowStatus(c echo.Context) error {
	targetID, err := objectIDParam(c, "userId", apperr.ErrUserNotFound)
	if err != nil {
		return err
	}
	status, err := h.graphService.CheckStatus(c.Request().Context(), currentUserID(c), targetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"isFollowing":  status.IsFollowing,
		"isFollower":   status.IsFollower,
		"isConnection": status.IsConnection,
	})
}
