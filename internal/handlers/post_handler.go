package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/pingup/backend/internal/apperr"
	"github.com/anonto42/pingup/backend/internal/models"
	"github.com/anonto42/pingup/backend/internal/services"
)

// PostHandler handles HTTP requests related to posts, likes and comments
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("", h.CreatePost)
	g.GET("/feed", h.GetFeed)
	g.GET("/all", h.GetAllPosts)
	g.GET("/user/:userId", h.GetUserPosts)
	g.GET("/hashtag/:tag", h.SearchByHashtag)
	g.GET("/:postId", h.GetPost)
	g.PUT("/:postId", h.UpdatePost)
	g.DELETE("/:postId", h.DeletePost)
	g.POST("/:postId/like", h.ToggleLike)
	g.POST("/:postId/comment", h.AddComment)
	g.DELETE("/:postId/comment/:commentId", h.DeleteComment)
}

func postList(c echo.Context, posts []models.PostView, page models.Page) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "posts": posts, "pagination": page})
}

// CreatePost accepts multipart content plus up to four images
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var files uploads
	defer files.Close()
	images, err := files.all(c, "images")
	if err != nil {
		return err
	}

	post, err := h.postService.CreatePost(c.Request().Context(), currentUserID(c), req.Content, images)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Post created successfully", "post": post})
}

// GetFeed returns the caller's and followed users' posts
func (h *PostHandler) GetFeed(c echo.Context) error {
	posts, page, err := h.postService.GetFeed(c.Request().Context(), currentUserID(c), pagination(c))
	if err != nil {
		return err
	}
	return postList(c, posts, page)
}

func (h *PostHandler) GetAllPosts(c echo.Context) error {
	posts, page, err := h.postService.ListAllPosts(c.Request().Context(), pagination(c))
	if err != nil {
		return err
	}
	return postList(c, posts, page)
}

func (h *PostHandler) GetUserPosts(c echo.Context) error {
	userID, err := objectIDParam(c, "userId", apperr.ErrUserNotFound)
	if err != nil {
		return err
	}
	posts, page, err := h.postService.ListUserPosts(c.Request().Context(), userID, pagination(c))
	if err != nil {
		return err
	}
	return postList(c, posts, page)
}

func (h *PostHandler) SearchByHashtag(c echo.Context) error {
	posts, page, err := h.postService.SearchByHashtag(c.Request().Context(), c.Param("tag"), pagination(c))
	if err != nil {
		return err
	}
	return postList(c, posts, page)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := objectIDParam(c, "postId", apperr.ErrPostNotFound)
	if err != nil {
		return err
	}
	post, err := h.postService.GetPost(c.Request().Context(), postID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "post": post})
}

// UpdatePost replaces the content of the caller's post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	postID, err := objectIDParam(c, "postId", apperr.ErrPostNotFound)
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.UpdatePost(c.Request().Context(), currentUserID(c), postID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Post updated successfully", "post": post})
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	postID, err := objectIDParam(c, "postId", apperr.ErrPostNotFound)
	if err != nil {
		return err
	}
	if err := h.postService.DeletePost(c.Request().Context(), currentUserID(c), postID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Post deleted successfully"})
}

func (h *PostHandler) ToggleLike(c echo.Context) error {
	postID, err := objectIDParam(c, "postId", apperr.ErrPostNotFound)
	if err != nil {
		return err
	}
	res, err := h.postService.ToggleLike(c.Request().Context(), currentUserID(c), postID)
	if err != nil {
		return err
	}
	message := "Post unliked"
	if res.IsLiked {
		message = "Post liked"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"message":     message,
		"isLiked":     res.IsLiked,
		"likes_count": res.LikesCount,
	})
}

func (h *PostHandler) AddComment(c echo.Context) error {
	postID, err := objectIDParam(c, "postId", apperr.ErrPostNotFound)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.postService.AddComment(c.Request().Context(), currentUserID(c), postID, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "Comment added", "comment": comment})
}

func (h *PostHandler) DeleteComment(c echo.Context) error {
	postID, err := objectIDParam(c, "postId", apperr.ErrPostNotFound)
	if err != nil {
		return err
	}
	commentID, err := objectIDParam(c, "commentId", apperr.ErrCommentNotFound)
	if err != nil {
		return err
	}
	if err := h.postService.DeleteComment(c.Request().Context(), currentUserID(c), postID, commentID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Comment deleted"})
}
