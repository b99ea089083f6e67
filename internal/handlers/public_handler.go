package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/models"
)

// Portfolios serves public resume pages.
type Portfolios interface {
	GetBySlug(ctx context.Context, slug string) (*models.Portfolio, error)
}

// ContactForm forwards contact form submissions.
type ContactForm interface {
	Submit(ctx context.Context, req *models.ContactRequest) (string, error)
}

// PublicHandler serves the unauthenticated pages.
type PublicHandler struct {
	portfolios Portfolios
	contact    ContactForm
}

// NewPublicHandler creates a new PublicHandler. contact may be nil when SMTP
// is not configured.
func NewPublicHandler(portfolios Portfolios, contact ContactForm) *PublicHandler {
	return &PublicHandler{portfolios: portfolios, contact: contact}
}

// RegisterPublicRoutes registers the public routes
func (h *PublicHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/portfolio/:slug", h.GetPortfolio)
	g.POST("/send", h.SendContact)
}

// GetPortfolio returns a profile and its public projects.
func (h *PublicHandler) GetPortfolio(c echo.Context) error {
	portfolio, err := h.portfolios.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, portfolio)
}

// SendContact forwards the contact form to the team inbox.
func (h *PublicHandler) SendContact(c echo.Context) error {
	if h.contact == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Contact form is not available")
	}
	var req models.ContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	receipt, err := h.contact.Submit(c.Request().Context(), &req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "sent", "receipt": receipt})
}
