package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/middleware"
	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/services"
)

// Forum is the forum service used by the post and comment handlers.
type Forum interface {
	PostQuota(ctx context.Context, authorID string) (services.Decision, error)
	CreatePost(ctx context.Context, authorID string, req *models.CreatePostRequest) (*models.Post, error)
	ListPosts(ctx context.Context, viewer, tag, sortBy string, page, limit int) ([]models.PostView, error)
	GetPost(ctx context.Context, viewer string, id uint) (*models.PostView, []models.CommentView, error)
	DeletePost(ctx context.Context, actorID string, id uint) error
	AddComment(ctx context.Context, authorID string, postID uint, req *models.CreateCommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, viewer string, postID uint) ([]models.CommentView, error)
	DeleteComment(ctx context.Context, actorID string, id uint) error
}

// PostHandler handles forum post HTTP requests
type PostHandler struct {
	forum Forum
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(forum Forum) *PostHandler {
	return &PostHandler{forum: forum}
}

// RegisterPostRoutes registers post routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.ListPosts)
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/quota", h.GetQuota)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// ListPosts returns a page of posts (?tag=&sort=recent|likes|comments&page=&limit=).
func (h *PostHandler) ListPosts(c echo.Context) error {
	posts, err := h.forum.ListPosts(
		c.Request().Context(),
		middleware.CurrentUserID(c),
		c.QueryParam("tag"),
		c.QueryParam("sort"),
		queryInt(c, "page", 1),
		queryInt(c, "limit", 20),
	)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// CreatePost publishes a post within the daily quota.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.forum.CreatePost(c.Request().Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetQuota returns how many posts the caller has left today.
func (h *PostHandler) GetQuota(c echo.Context) error {
	decision, err := h.forum.PostQuota(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, decision)
}

// GetPost returns a post with its comments.
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	post, comments, err := h.forum.GetPost(c.Request().Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post, "comments": comments})
}

// DeletePost deletes one of the caller's posts.
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	if err := h.forum.DeletePost(c.Request().Context(), middleware.CurrentUserID(c), id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
