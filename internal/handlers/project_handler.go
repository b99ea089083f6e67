package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/middleware"
	"github.com/yopdevs/platform/backend/internal/models"
	"github.com/yopdevs/platform/backend/internal/services"
)

// Marketplace is the project service used by ProjectHandler.
type Marketplace interface {
	ProjectQuota(ctx context.Context, ownerID string) (services.Decision, error)
	CreateProject(ctx context.Context, ownerID string, req *models.CreateProjectRequest) (*models.Project, error)
	ListProjects(ctx context.Context, page, limit int) ([]models.ProjectView, error)
	MyProjects(ctx context.Context, ownerID string) ([]models.ProjectView, error)
	GetProject(ctx context.Context, viewer string, id uint) (*models.ProjectView, error)
	UpdateStatus(ctx context.Context, actorID string, id uint, status models.ProjectStatus) error
	DeleteProject(ctx context.Context, actorID string, id uint) error
	ExpressInterest(ctx context.Context, userID string, projectID uint, req *models.ExpressInterestRequest) (*models.ProjectInterest, error)
	ListInterests(ctx context.Context, actorID string, projectID uint) ([]models.InterestView, error)
	DecideInterest(ctx context.Context, actorID string, interestID uint, status models.InterestStatus) (*models.ProjectInterest, error)
	Partners(ctx context.Context, viewer string, projectID uint) ([]models.Identity, error)
	MyInterests(ctx context.Context, userID string) ([]models.ProjectInterest, error)
}

// ProjectHandler handles marketplace HTTP requests
type ProjectHandler struct {
	marketplace Marketplace
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(marketplace Marketplace) *ProjectHandler {
	return &ProjectHandler{marketplace: marketplace}
}

// RegisterProjectRoutes registers project and interest routes
func (h *ProjectHandler) RegisterProjectRoutes(g *echo.Group) {
	g.GET("/projects", h.ListProjects)
	g.POST("/projects", h.CreateProject)
	g.GET("/projects/mine", h.MyProjects)
	g.GET("/projects/quota", h.GetQuota)
	g.GET("/projects/:id", h.GetProject)
	g.PUT("/projects/:id/status", h.UpdateStatus)
	g.DELETE("/projects/:id", h.DeleteProject)
	g.POST("/projects/:id/interests", h.ExpressInterest)
	g.GET("/projects/:id/interests", h.ListInterests)
	g.GET("/projects/:id/partners", h.ListPartners)
	g.PUT("/interests/:id", h.DecideInterest)
	g.GET("/interests/mine", h.MyInterests)
}

// ListProjects returns a page of public projects.
func (h *ProjectHandler) ListProjects(c echo.Context) error {
	projects, err := h.marketplace.ListProjects(c.Request().Context(), queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

// CreateProject launches a project within the daily quota.
func (h *ProjectHandler) CreateProject(c echo.Context) error {
	var req models.CreateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	project, err := h.marketplace.CreateProject(c.Request().Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, project)
}

// MyProjects lists the caller's projects, private ones included.
func (h *ProjectHandler) MyProjects(c echo.Context) error {
	projects, err := h.marketplace.MyProjects(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

// GetQuota returns how many projects the caller can still launch today.
func (h *ProjectHandler) GetQuota(c echo.Context) error {
	decision, err := h.marketplace.ProjectQuota(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, decision)
}

// GetProject returns one project.
func (h *ProjectHandler) GetProject(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	project, err := h.marketplace.GetProject(c.Request().Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, project)
}

// UpdateStatus moves a project between open, in progress and closed.
func (h *ProjectHandler) UpdateStatus(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateProjectStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.marketplace.UpdateStatus(c.Request().Context(), middleware.CurrentUserID(c), id, req.Status); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteProject deletes one of the caller's projects.
func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	if err := h.marketplace.DeleteProject(c.Request().Context(), middleware.CurrentUserID(c), id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ExpressInterest records the caller's interest in a project.
func (h *ProjectHandler) ExpressInterest(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	var req models.ExpressInterestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	interest, err := h.marketplace.ExpressInterest(c.Request().Context(), middleware.CurrentUserID(c), id, &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, interest)
}

// ListInterests returns the interests a project received. Owner only.
func (h *ProjectHandler) ListInterests(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	interests, err := h.marketplace.ListInterests(c.Request().Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, interests)
}

// ListPartners returns the accepted collaborators of a project.
func (h *ProjectHandler) ListPartners(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	partners, err := h.marketplace.Partners(c.Request().Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, partners)
}

// DecideInterest accepts or declines an interest. Owner only.
func (h *ProjectHandler) DecideInterest(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	var req models.DecideInterestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	interest, err := h.marketplace.DecideInterest(c.Request().Context(), middleware.CurrentUserID(c), id, req.Status)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, interest)
}

// MyInterests lists the interests the caller expressed.
func (h *ProjectHandler) MyInterests(c echo.Context) error {
	interests, err := h.marketplace.MyInterests(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, interests)
}
