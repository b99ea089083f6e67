package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/middleware"
	"github.com/yopdevs/platform/backend/internal/models"
)

// CommentHandler handles forum comment HTTP requests
type CommentHandler struct {
	forum Forum
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(forum Forum) *CommentHandler {
	return &CommentHandler{forum: forum}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.ListComments)
	g.POST("/posts/:id/comments", h.CreateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// ListComments returns a post's comments, oldest first.
func (h *CommentHandler) ListComments(c echo.Context) error {
	postID, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.forum.ListComments(c.Request().Context(), middleware.CurrentUserID(c), postID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

// CreateComment replies to a post.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	postID, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.forum.AddComment(c.Request().Context(), middleware.CurrentUserID(c), postID, &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// DeleteComment deletes one of the caller's comments.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	if err := h.forum.DeleteComment(c.Request().Context(), middleware.CurrentUserID(c), id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
