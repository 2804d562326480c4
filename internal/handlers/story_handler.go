package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/services"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	storyService *services.StoryService
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(storyService *services.StoryService) *StoryHandler {
	return &StoryHandler{storyService: storyService}
}

// RegisterStoryRoutes registers story routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.POST("", h.CreateStory)
	g.GET("", h.GetStories)
	g.GET("/user/:userId", h.GetUserStories)
	g.POST("/:storyId/view", h.ViewStory)
	g.GET("/:storyId/viewers", h.GetStoryViewers)
	g.DELETE("/:storyId", h.DeleteStory)
}

// CreateStory accepts text fields and an optional "media" file
func (h *StoryHandler) CreateStory(c echo.Context) error {
	var req models.CreateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var files uploads
	defer files.Close()
	media, err := files.file(c, "media")
	if err != nil {
		return err
	}
	if media == nil {
		if media, err = files.file(c, "image"); err != nil {
			return err
		}
	}

	story, err := h.storyService.CreateStory(c.Request().Context(), currentUserID(c), services.StoryInput{
		Content:         req.Content,
		MediaType:       req.MediaType,
		BackgroundColor: req.BackgroundColor,
		Media:           media,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Story created successfully", "story": story})
}

// GetStories returns active stories of the caller and everyone they follow
func (h *StoryHandler) GetStories(c echo.Context) error {
	stories, err := h.storyService.ListActiveStories(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "stories": stories})
}

func (h *StoryHandler) GetUserStories(c echo.Context) error {
	userID, err := objectIDParam(c, "userId", apperr.ErrUserNotFound)
	if err != nil {
		return err
	}
	stories, err := h.storyService.ListUserStories(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "stories": stories})
}

func (h *StoryHandler) ViewStory(c echo.Context) error {
	storyID, err := objectIDParam(c, "storyId", apperr.ErrStoryNotFound)
	if err != nil {
		return err
	}
	count, err := h.storyService.ViewStory(c.Request().Context(), currentUserID(c), storyID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Story viewed", "views_count": count})
}

func (h *StoryHandler) GetStoryViewers(c echo.Context) error {
	storyID, err := objectIDParam(c, "storyId", apperr.ErrStoryNotFound)
	if err != nil {
		return err
	}
	viewers, err := h.storyService.ListStoryViewers(c.Request().Context(), currentUserID(c), storyID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "viewers": viewers, "views_count": len(viewers)})
}

func (h *StoryHandler) DeleteStory(c echo.Context) error {
	storyID, err := objectIDParam(c, "storyId", apperr.ErrStoryNotFound)
	if err != nil {
		return err
	}
	if err := h.storyService.DeleteStory(c.Request().Context(), currentUserID(c), storyID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Story deleted successfully"})
}
