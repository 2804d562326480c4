package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/pingup/backend/internal/middleware"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/services"
)

// UserHandler handles account sync and profile HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterUserRoutes registers user routes. Sync needs only an identity; the rest need a local user.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, requireUser echo.MiddlewareFunc) {
	g.POST("/sync", h.SyncUser)
	g.GET("/me", h.GetMe, requireUser)
	g.GET("/profile/:userId", h.GetProfile, requireUser)
	g.PUT("/profile", h.UpdateProfile, requireUser)
	g.PUT("/profile/picture", h.UpdateProfilePicture, requireUser)
	g.PUT("/profile/cover", h.UpdateCoverPhoto, requireUser)
	g.GET("/search", h.SearchUsers, requireUser)
	g.GET("/suggestions", h.GetSuggestions, requireUser)
}

// SyncUser creates or refreshes the local mirror of the caller's identity
func (h *UserHandler) SyncUser(c echo.Context) error {
	var req models.SyncUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, created, err := h.userService.SyncUser(c.Request().Context(), middleware.IdentityID(c), req)
	if err != nil {
		return err
	}
	if created {
		return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "User created", "user": user})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "User synced", "user": user})
}

// GetMe returns the caller with followers and following resolved
func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := h.userService.GetMe(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// GetProfile returns a profile by id or username
func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.userService.GetProfile(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": profile})
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Profile updated successfully", "user": user})
}

func (h *UserHandler) UpdateProfilePicture(c echo.Context) error {
	var files uploads
	defer files.Close()
	image, err := files.file(c, "image")
	if err != nil {
		return err
	}

	user, url, err := h.userService.UpdateProfilePicture(c.Request().Context(), currentUserID(c), image)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Profile picture updated", "profile_picture": url, "user": user})
}

func (h *UserHandler) UpdateCoverPhoto(c echo.Context) error {
	var files uploads
	defer files.Close()
	image, err := files.file(c, "image")
	if err != nil {
		return err
	}

	user, url, err := h.userService.UpdateCoverPhoto(c.Request().Context(), currentUserID(c), image)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Cover photo updated", "cover_photo": url, "user": user})
}

// SearchUsers matches ?q against username and full name
func (h *UserHandler) SearchUsers(c echo.Context) error {
	users, err := h.userService.SearchUsers(c.Request().Context(), currentUserID(c), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "users": users})
}

func (h *UserHandler) GetSuggestions(c echo.Context) error {
	users, err := h.userService.Suggestions(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "users": users, "suggestions": users})
}
