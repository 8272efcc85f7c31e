package handler

import (
	"github.com/gin-gonic/gin"

	billingapp "github.com/invoicehub/backend/internal/application/billing"
)

// PortalHandler serves the public, unauthenticated invoice view.
// Access is authorized by the opaque link token alone.
type PortalHandler struct {
	BaseHandler
	portalService *billingapp.PortalService
}

// NewPortalHandler creates a new PortalHandler
func NewPortalHandler(portalService *billingapp.PortalService) *PortalHandler {
	return &PortalHandler{
		portalService: portalService,
	}
}

// GetInvoice returns the public view of an invoice by link token
func (h *PortalHandler) GetInvoice(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		h.BadRequest(c, "Missing link token")
		return
	}

	resp, err := h.portalService.GetByToken(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers all portal routes
func (h *PortalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	portal := rg.Group("/portal")
	{
		portal.GET("/invoices/:token", h.GetInvoice)
	}
}
